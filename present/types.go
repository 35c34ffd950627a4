// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import (
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfxcore/gpucore"
)

// Fence is a CPU-observable GPU completion signal.
type Fence interface {
	// Wait blocks until the fence is signaled or timeout elapses. It
	// returns false on timeout.
	Wait(timeout time.Duration) (bool, error)

	// Reset unsignals the fence. The next Submit that carries it signals
	// it again on completion.
	Reset() error

	Destroy()
}

// Semaphore orders queue operations on the GPU. The CPU never waits on it.
type Semaphore interface {
	Destroy()
}

// CommandBuffer records GPU commands for one frame.
type CommandBuffer interface {
	// Reset discards previous contents. The GPU must be done with them.
	Reset() error
	Begin() error
	End() error
	Destroy()
}

// Submission is one queue submit.
type Submission struct {
	Commands CommandBuffer

	// Wait is waited on before the commands execute.
	Wait Semaphore

	// Signal is signaled when the commands complete.
	Signal Semaphore

	// Fence is signaled when the commands complete.
	Fence Fence
}

// Device creates synchronization objects and per-image resources and
// submits recorded work.
type Device interface {
	CreateFence(signaled bool) (Fence, error)
	CreateSemaphore() (Semaphore, error)
	CreateCommandBuffer(label string) (CommandBuffer, error)
	CreateDepthTarget(extent gpucore.Extent, format gputypes.TextureFormat) (gpucore.Attachment, error)
	Submit(s Submission) error

	// WaitIdle blocks until all submitted work has completed.
	WaitIdle() error
}

// SurfaceCapabilities describes what a surface supports.
type SurfaceCapabilities struct {
	// MinImageCount is the minimum number of images the surface needs.
	MinImageCount uint32

	// MaxImageCount is the maximum number of images, 0 for no limit.
	MaxImageCount uint32

	// CurrentExtent is the surface size. gpucore.UndefinedExtent in both
	// dimensions means the application picks the size.
	CurrentExtent gpucore.Extent

	MinExtent gpucore.Extent
	MaxExtent gpucore.Extent

	// Format is the presentable image format.
	Format gputypes.TextureFormat
}

// SurfaceConfig configures a surface's image set.
type SurfaceConfig struct {
	ImageCount uint32
	Extent     gpucore.Extent
	Format     gputypes.TextureFormat
}

// Surface is the presentation target: a window swapchain or an offscreen
// image ring.
type Surface interface {
	Capabilities() (SurfaceCapabilities, error)

	// Configure replaces the surface images. The returned attachments are
	// owned by the surface and may contain more images than requested.
	Configure(cfg SurfaceConfig) ([]gpucore.Attachment, error)

	// Acquire returns the index of the next image to render into and
	// arranges for signal to be signaled when the image is ready. It
	// returns ErrSurfaceOutOfDate when the surface must be reconfigured.
	Acquire(signal Semaphore, timeout time.Duration) (uint32, error)

	// Present queues image index for display once wait is signaled. It
	// may return ErrSurfaceOutOfDate.
	Present(index uint32, wait Semaphore) error
}
