// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfxcore/gpucore"
)

// Texture is a 2D hal texture with its default view. It implements
// gpucore.Attachment for color and depth targets.
type Texture struct {
	dev    *Device
	raw    hal.Texture
	view   hal.TextureView
	extent gpucore.Extent
	format gputypes.TextureFormat
}

var _ gpucore.Attachment = (*Texture)(nil)

func (d *Device) createTexture(label string, extent gpucore.Extent, format gputypes.TextureFormat, usage gputypes.TextureUsage) (*Texture, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	raw, err := d.raw.CreateTexture(&hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              extent.Width,
			Height:             extent.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create texture %s %s: %w", gpucore.ErrAllocationFailure, label, extent, err)
	}
	view, err := d.raw.CreateTextureView(raw, &hal.TextureViewDescriptor{
		Label: label + "-view",
	})
	if err != nil {
		d.raw.DestroyTexture(raw)
		return nil, fmt.Errorf("%w: create texture view %s: %w", gpucore.ErrAllocationFailure, label, err)
	}
	return &Texture{dev: d, raw: raw, view: view, extent: extent, format: format}, nil
}

// Extent returns the texture size.
func (t *Texture) Extent() gpucore.Extent { return t.extent }

// Format returns the texture format.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// Raw returns the hal texture.
func (t *Texture) Raw() hal.Texture { return t.raw }

// View returns the default view.
func (t *Texture) View() hal.TextureView { return t.view }

// NativeHandle returns the view handle, so a Texture can be written into a
// sampled-image channel directly.
func (t *Texture) NativeHandle() uintptr {
	if t.view == nil {
		return 0
	}
	return t.view.NativeHandle()
}

// Destroy releases the view and the texture.
func (t *Texture) Destroy() {
	if t.view != nil {
		t.dev.raw.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.raw != nil {
		t.dev.raw.DestroyTexture(t.raw)
		t.raw = nil
	}
}
