// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package present drives the acquire → record → submit → present frame loop
// over a ring of presentable images.
//
// A [Pipeline] owns N frame slots (N = 2 by default), each holding an
// image-available semaphore, a render-finished semaphore and an in-flight
// fence, plus a [Ring] of presentable images with one depth target and one
// command buffer per image.
//
// Each iteration:
//
//	frame, err := p.BeginFrame()     // waits on the slot fence, acquires an image
//	if errors.Is(err, present.ErrSurfaceOutOfDate) {
//	    err = p.Recreate(extent)       // GPU idle wait, full rebuild
//	}
//	// record into frame.Commands using frame.Color / frame.Depth
//	err = p.EndFrame(frame)           // submit, present, advance slot
//
// The fence wait inside [Pipeline.AcquireNextImage] is the only blocking
// point. It keeps the CPU at most N-1 frames ahead of the GPU: the work
// submitted from slot i in iteration k has retired before slot i's fence or
// command buffer is touched in iteration k+N.
//
// The GPU and the window system are reached through the [Device] and
// [Surface] interfaces; backend/wgpu provides hal-based implementations.
//
// A Pipeline is owned by a single goroutine.
package present
