// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfxcore/gpucore"
)

// Ring is the set of presentable images together with their per-image
// depth targets and command buffers. All images share one extent.
//
// A Ring is never resized in place; a surface change replaces it.
type Ring struct {
	extent   gpucore.Extent
	format   gputypes.TextureFormat
	images   []gpucore.Attachment
	depth    []gpucore.Attachment
	commands []CommandBuffer

	// owner is the frame slot whose submission last used each image, or -1.
	owner []int
}

// Extent returns the extent shared by every image.
func (r *Ring) Extent() gpucore.Extent { return r.extent }

// Format returns the presentable image format.
func (r *Ring) Format() gputypes.TextureFormat { return r.format }

// ImageCount returns the number of images.
func (r *Ring) ImageCount() int { return len(r.images) }

// Image returns the color attachment of image i.
func (r *Ring) Image(i int) gpucore.Attachment { return r.images[i] }

// Depth returns the depth attachment paired with image i.
func (r *Ring) Depth(i int) gpucore.Attachment { return r.depth[i] }

// Commands returns the command buffer recorded for image i.
func (r *Ring) Commands(i int) CommandBuffer { return r.commands[i] }

// destroy releases the per-image resources. The surface owns the images.
func (r *Ring) destroy() {
	for _, cb := range r.commands {
		cb.Destroy()
	}
	for _, d := range r.depth {
		d.Destroy()
	}
	r.commands = nil
	r.depth = nil
	r.images = nil
	r.owner = nil
}

// ChooseImageCount picks the number of images to request: one more than the
// surface minimum, never fewer than frames, clamped to the maximum. A
// maximum of zero means no limit.
func ChooseImageCount(caps SurfaceCapabilities, frames int) uint32 {
	count := caps.MinImageCount + 1
	if frames > 0 && uint32(frames) > count {
		count = uint32(frames)
	}
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// ChooseExtent picks the ring extent. A defined current extent wins; an
// undefined one lets the requested extent through, clamped to the surface
// limits.
func ChooseExtent(caps SurfaceCapabilities, requested gpucore.Extent) gpucore.Extent {
	if !caps.CurrentExtent.IsUndefined() {
		return caps.CurrentExtent
	}
	return requested.Clamp(caps.MinExtent, caps.MaxExtent)
}

// buildRing configures the surface and creates one depth target and one
// command buffer per image.
func buildRing(dev Device, surface Surface, requested gpucore.Extent, frames int, depthFormat gputypes.TextureFormat) (*Ring, error) {
	if requested.IsZero() {
		return nil, ErrSurfaceMinimized
	}
	caps, err := surface.Capabilities()
	if err != nil {
		return nil, fmt.Errorf("present: query surface capabilities: %w", err)
	}

	extent := ChooseExtent(caps, requested)
	if extent.IsZero() {
		return nil, ErrSurfaceMinimized
	}

	images, err := surface.Configure(SurfaceConfig{
		ImageCount: ChooseImageCount(caps, frames),
		Extent:     extent,
		Format:     caps.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("present: configure surface %s: %w", extent, err)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("present: surface returned no images: %w", gpucore.ErrAllocationFailure)
	}

	r := &Ring{
		extent:   extent,
		format:   caps.Format,
		images:   images,
		depth:    make([]gpucore.Attachment, 0, len(images)),
		commands: make([]CommandBuffer, 0, len(images)),
		owner:    make([]int, len(images)),
	}
	for i := range images {
		r.owner[i] = noImage

		d, err := dev.CreateDepthTarget(extent, depthFormat)
		if err != nil {
			r.destroy()
			return nil, fmt.Errorf("present: depth target %d: %w", i, err)
		}
		r.depth = append(r.depth, d)

		cb, err := dev.CreateCommandBuffer(fmt.Sprintf("frame-%d", i))
		if err != nil {
			r.destroy()
			return nil, fmt.Errorf("present: command buffer %d: %w", i, err)
		}
		r.commands = append(r.commands, cb)
	}
	return r, nil
}
