// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import "errors"

// Fatal errors. Neither is retried anywhere in the module: retrying after a
// driver-level failure needs a reset protocol that does not exist here.
var (
	// ErrDeviceLost is returned when the GPU refuses further work or a fence
	// wait exceeds its timeout.
	ErrDeviceLost = errors.New("gpucore: GPU device lost")

	// ErrAllocationFailure is returned when the backend cannot create a GPU
	// object (fence, semaphore, texture, bind group, command buffer).
	ErrAllocationFailure = errors.New("gpucore: GPU allocation failed")
)
