// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpucore provides the types shared by the binding allocator, the
// frame pipeline and the GPU backends.
//
// The package is deliberately small: it holds the 2D [Extent] used to size
// presentable images and depth targets, the [Attachment] and
// [NativeResource] abstractions that let backend-specific objects travel
// through backend-neutral code, and the fatal error sentinels
// ([ErrDeviceLost], [ErrAllocationFailure]) that every layer reports in
// the same way.
//
//	            +-----------+
//	            |  gfxcore  |   Engine: allocate / free / begin / end
//	            +-----+-----+
//	                  |
//	       +----------+----------+
//	       |                     |
//	+------v------+       +------v------+
//	|   binding   |       |   present   |
//	|  (channels) |       | (frame ring)|
//	+------+------+       +------+------+
//	       |                     |
//	       +----------+----------+
//	                  |
//	           +------v------+
//	           |   gpucore   |
//	           +------+------+
//	                  |
//	           +------v------+
//	           | backend/wgpu|   hal.Device, hal.Queue
//	           +-------------+
package gpucore
