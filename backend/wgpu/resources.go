// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfxcore/binding"
	"github.com/gogpu/gfxcore/gpucore"
)

// CreateBuffer creates a buffer that can be bound in a channel of type t.
func (d *Device) CreateBuffer(label string, t binding.ResourceType, size uint64) (hal.Buffer, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	var usage gputypes.BufferUsage
	switch t {
	case binding.ResourceUniformBuffer:
		usage = gputypes.BufferUsageUniform
	case binding.ResourceStorageBuffer:
		usage = gputypes.BufferUsageStorage
	default:
		return nil, fmt.Errorf("%w: buffer for %s", binding.ErrUnsupportedResourceType, t)
	}
	buf, err := d.raw.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create buffer %s: %w", gpucore.ErrAllocationFailure, label, err)
	}
	return buf, nil
}

// DestroyBuffer releases a buffer created by CreateBuffer.
func (d *Device) DestroyBuffer(b hal.Buffer) {
	if b != nil {
		d.raw.DestroyBuffer(b)
	}
}

// CreateSampledTexture creates a texture that can be bound in a
// sampled-image channel.
func (d *Device) CreateSampledTexture(label string, extent gpucore.Extent, format gputypes.TextureFormat) (*Texture, error) {
	return d.createTexture(label, extent, format,
		gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
}

// CreateSampler creates a linear, clamp-to-edge sampler.
func (d *Device) CreateSampler(label string) (hal.Sampler, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	sampler, err := d.raw.CreateSampler(&hal.SamplerDescriptor{
		Label:        label,
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create sampler %s: %w", gpucore.ErrAllocationFailure, label, err)
	}
	return sampler, nil
}

// DestroySampler releases a sampler created by CreateSampler.
func (d *Device) DestroySampler(s hal.Sampler) {
	if s != nil {
		d.raw.DestroySampler(s)
	}
}
