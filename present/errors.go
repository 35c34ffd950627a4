// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import "errors"

var (
	// ErrSurfaceOutOfDate is returned when the surface no longer matches the
	// ring (for example after a resize). Recover with Recreate and retry.
	ErrSurfaceOutOfDate = errors.New("present: surface out of date")

	// ErrSurfaceMinimized is returned when the surface extent is zero. The
	// ring stays torn down until Recreate is called with a non-zero extent.
	ErrSurfaceMinimized = errors.New("present: surface extent is zero")

	// ErrFrameState is returned when frame operations are called out of
	// order, such as EndFrame without a matching BeginFrame.
	ErrFrameState = errors.New("present: invalid frame state")
)
