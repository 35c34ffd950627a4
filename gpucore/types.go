// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// UndefinedExtent is the sentinel dimension a surface reports when the
// extent is chosen by the application rather than by the window system.
const UndefinedExtent = 0xFFFFFFFF

// Extent is a 2D size in pixels.
type Extent struct {
	Width  uint32
	Height uint32
}

// IsZero reports whether either dimension is zero. A zero extent is what a
// minimized window reports.
func (e Extent) IsZero() bool {
	return e.Width == 0 || e.Height == 0
}

// IsUndefined reports whether the extent carries the [UndefinedExtent]
// sentinel.
func (e Extent) IsUndefined() bool {
	return e.Width == UndefinedExtent && e.Height == UndefinedExtent
}

// Clamp returns e clamped component-wise to [lo, hi].
func (e Extent) Clamp(lo, hi Extent) Extent {
	return Extent{
		Width:  clamp(e.Width, lo.Width, hi.Width),
		Height: clamp(e.Height, lo.Height, hi.Height),
	}
}

// String returns "WxH".
func (e Extent) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

func clamp(v, lo, hi uint32) uint32 {
	if hi != 0 && v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// NativeResource is any backend object that exposes a native handle.
// hal buffers, texture views and samplers all satisfy it.
type NativeResource interface {
	NativeHandle() uintptr
}

// Attachment is a render target owned by a backend: a presentable color
// image or a depth buffer. Backends type-assert to their concrete
// attachment when recording.
type Attachment interface {
	// Extent returns the attachment size in pixels.
	Extent() Extent

	// Format returns the pixel format.
	Format() gputypes.TextureFormat

	// Destroy releases the attachment. Presentable images are owned by
	// their surface and are never destroyed by the frame pipeline.
	Destroy()
}
