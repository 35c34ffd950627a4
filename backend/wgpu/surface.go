// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfxcore/gpucore"
	"github.com/gogpu/gfxcore/present"
)

const (
	defaultOffscreenImages = 3
	maxOffscreenDimension  = 8192
)

// OffscreenSurface is a headless present.Surface: a ring of render-target
// textures handed out in order. Presenting records the image as the latest
// finished frame, which the host can read back or sample.
//
// Resize marks the surface out of date; the next Acquire reports
// present.ErrSurfaceOutOfDate and the pipeline reconfigures it at the new
// extent.
type OffscreenSurface struct {
	dev        *Device
	format     gputypes.TextureFormat
	imageCount uint32

	images    []*Texture
	extent    gpucore.Extent
	pending   gpucore.Extent
	outOfDate bool
	next      uint32

	presented uint64
	last      int
}

var _ present.Surface = (*OffscreenSurface)(nil)

// NewOffscreenSurface creates an unconfigured offscreen surface with a fixed
// image count.
func NewOffscreenSurface(d *Device, format gputypes.TextureFormat, imageCount int) *OffscreenSurface {
	if imageCount < 1 {
		imageCount = defaultOffscreenImages
	}
	if format == gputypes.TextureFormatUndefined {
		format = gputypes.TextureFormatRGBA8Unorm
	}
	return &OffscreenSurface{
		dev:        d,
		format:     format,
		imageCount: uint32(imageCount),
		pending: gpucore.Extent{
			Width:  gpucore.UndefinedExtent,
			Height: gpucore.UndefinedExtent,
		},
		last: -1,
	}
}

// Capabilities reports a fixed image count. The extent is chosen by the
// application unless a Resize is pending.
func (s *OffscreenSurface) Capabilities() (present.SurfaceCapabilities, error) {
	minImages := s.imageCount - 1
	if minImages == 0 {
		minImages = 1
	}
	return present.SurfaceCapabilities{
		MinImageCount: minImages,
		MaxImageCount: s.imageCount,
		CurrentExtent: s.pending,
		MinExtent:     gpucore.Extent{Width: 1, Height: 1},
		MaxExtent:     gpucore.Extent{Width: maxOffscreenDimension, Height: maxOffscreenDimension},
		Format:        s.format,
	}, nil
}

// Configure replaces the image ring.
func (s *OffscreenSurface) Configure(cfg present.SurfaceConfig) ([]gpucore.Attachment, error) {
	s.destroyImages()

	format := cfg.Format
	if format == gputypes.TextureFormatUndefined {
		format = s.format
	}
	usage := gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopySrc

	images := make([]gpucore.Attachment, 0, cfg.ImageCount)
	for i := uint32(0); i < cfg.ImageCount; i++ {
		t, err := s.dev.createTexture(fmt.Sprintf("%s-offscreen-%d", s.dev.label, i), cfg.Extent, format, usage)
		if err != nil {
			s.destroyImages()
			return nil, err
		}
		s.images = append(s.images, t)
		images = append(images, t)
	}
	s.extent = cfg.Extent
	s.outOfDate = false
	s.next = 0
	s.last = -1
	s.dev.log.Debug("wgpu: offscreen surface configured", "images", len(s.images), "extent", cfg.Extent.String())
	return images, nil
}

// Resize requests a new extent. A zero extent behaves like a minimized
// window.
func (s *OffscreenSurface) Resize(extent gpucore.Extent) {
	s.pending = extent
	s.outOfDate = true
}

// Acquire hands out the next image in ring order.
func (s *OffscreenSurface) Acquire(signal present.Semaphore, _ time.Duration) (uint32, error) {
	if err := s.dev.checkOpen(); err != nil {
		return 0, err
	}
	if s.outOfDate || len(s.images) == 0 {
		return 0, present.ErrSurfaceOutOfDate
	}
	idx := s.next
	s.next = (s.next + 1) % uint32(len(s.images))
	if sem, ok := signal.(*Semaphore); ok && sem != nil {
		sem.Signal()
	}
	return idx, nil
}

// Present records index as the latest finished image. The wait semaphore
// must have been signaled by the frame's submit.
func (s *OffscreenSurface) Present(index uint32, wait present.Semaphore) error {
	if sem, ok := wait.(*Semaphore); ok && sem != nil {
		if !sem.Signaled() {
			return fmt.Errorf("%w: image %d", ErrNotRendered, index)
		}
		sem.consume()
	}
	if int(index) >= len(s.images) {
		return fmt.Errorf("wgpu: present image %d of %d", index, len(s.images))
	}
	s.last = int(index)
	s.presented++
	if s.outOfDate {
		return present.ErrSurfaceOutOfDate
	}
	return nil
}

// Latest returns the most recently presented image.
func (s *OffscreenSurface) Latest() (*Texture, bool) {
	if s.last < 0 {
		return nil, false
	}
	return s.images[s.last], true
}

// Presented returns the number of presented frames.
func (s *OffscreenSurface) Presented() uint64 { return s.presented }

// Extent returns the configured extent.
func (s *OffscreenSurface) Extent() gpucore.Extent { return s.extent }

// Destroy releases the images.
func (s *OffscreenSurface) Destroy() {
	s.destroyImages()
}

func (s *OffscreenSurface) destroyImages() {
	for _, t := range s.images {
		t.Destroy()
	}
	s.images = nil
	s.last = -1
}
