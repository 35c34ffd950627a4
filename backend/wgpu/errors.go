// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import "errors"

var (
	// ErrNoAdapter is returned when the hal instance exposes no adapters.
	ErrNoAdapter = errors.New("wgpu: no GPU adapters found")

	// ErrHALUnavailable is returned when the requested hal backend is not
	// compiled in or cannot be loaded.
	ErrHALUnavailable = errors.New("wgpu: hal backend not available")

	// ErrNotHALProvider is returned by FromProvider when the provider does
	// not expose hal.Device and hal.Queue.
	ErrNotHALProvider = errors.New("wgpu: provider does not expose HAL types")

	// ErrForeignObject is returned when an object created by a different
	// device implementation is passed in.
	ErrForeignObject = errors.New("wgpu: object not created by this device")

	// ErrNotRecorded is returned when submitting a command buffer that has
	// not been ended.
	ErrNotRecorded = errors.New("wgpu: command buffer not recorded")

	// ErrNotRendered is returned by OffscreenSurface.Present when the
	// render-finished semaphore was never signaled.
	ErrNotRendered = errors.New("wgpu: present before render finished")
)
