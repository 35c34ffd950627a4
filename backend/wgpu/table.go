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

// placeholderBufferSize covers the largest std140 uniform a shader is
// likely to read from an unwritten slot.
const placeholderBufferSize = 256

// channelVisibility is the stage mask of every channel binding.
const channelVisibility = gputypes.ShaderStageVertex | gputypes.ShaderStageFragment | gputypes.ShaderStageCompute

// SlotBinding returns the binding number of slot index in a channel of
// type t. For sampled images it is the texture binding; the sampler sits at
// the next binding.
func SlotBinding(t binding.ResourceType, index uint32) uint32 {
	if t.Kind() == binding.KindImage {
		return 2 * index
	}
	return index
}

// retiredGroup is a replaced bind group waiting for the submissions that
// may still reference it.
type retiredGroup struct {
	group hal.BindGroup
	after uint64
}

// Table is the bind group behind one binding channel.
type Table struct {
	dev   *Device
	id    uint32
	cfg   binding.ChannelConfig
	label string

	layout  hal.BindGroupLayout
	group   hal.BindGroup
	retired []retiredGroup
	dirty   bool

	// entries holds the written contents per slot; nil means placeholder.
	entries []binding.Contents

	// placeholders for unwritten slots.
	fillBuffer  hal.Buffer
	fillTexture *Texture
	fillSampler hal.Sampler
}

var _ binding.Table = (*Table)(nil)

func newTable(d *Device, id uint32, cfg binding.ChannelConfig) (*Table, error) {
	t := &Table{
		dev:     d,
		id:      id,
		cfg:     cfg,
		label:   fmt.Sprintf("%s-%s", d.label, cfg.Label),
		entries: make([]binding.Contents, cfg.Capacity),
		dirty:   true,
	}

	layout, err := d.raw.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   t.label + "-layout",
		Entries: t.layoutEntries(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: channel %d bind group layout: %w", gpucore.ErrAllocationFailure, id, err)
	}
	t.layout = layout

	if err := t.createPlaceholders(); err != nil {
		t.Destroy()
		return nil, err
	}
	return t, nil
}

func (t *Table) layoutEntries() []gputypes.BindGroupLayoutEntry {
	n := t.cfg.Capacity
	switch t.cfg.Type {
	case binding.ResourceSampledImage:
		entries := make([]gputypes.BindGroupLayoutEntry, 0, 2*n)
		for i := uint32(0); i < n; i++ {
			entries = append(entries,
				gputypes.BindGroupLayoutEntry{
					Binding:    2 * i,
					Visibility: channelVisibility,
					Texture: &gputypes.TextureBindingLayout{
						SampleType:    gputypes.TextureSampleTypeFloat,
						ViewDimension: gputypes.TextureViewDimension2D,
					},
				},
				gputypes.BindGroupLayoutEntry{
					Binding:    2*i + 1,
					Visibility: channelVisibility,
					Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
				})
		}
		return entries
	default:
		typ := gputypes.BufferBindingTypeUniform
		if t.cfg.Type == binding.ResourceStorageBuffer {
			typ = gputypes.BufferBindingTypeReadOnlyStorage
		}
		entries := make([]gputypes.BindGroupLayoutEntry, n)
		for i := uint32(0); i < n; i++ {
			entries[i] = gputypes.BindGroupLayoutEntry{
				Binding:    i,
				Visibility: channelVisibility,
				Buffer:     &gputypes.BufferBindingLayout{Type: typ},
			}
		}
		return entries
	}
}

func (t *Table) createPlaceholders() error {
	d := t.dev
	if t.cfg.Type.Kind() == binding.KindBuffer {
		buf, err := d.CreateBuffer(t.label+"-placeholder", t.cfg.Type, placeholderBufferSize)
		if err != nil {
			return fmt.Errorf("channel %d placeholder: %w", t.id, err)
		}
		t.fillBuffer = buf
		return nil
	}

	tex, err := d.CreateSampledTexture(t.label+"-placeholder", gpucore.Extent{Width: 1, Height: 1},
		gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		return err
	}
	t.fillTexture = tex

	sampler, err := d.CreateSampler(t.label + "-placeholder-sampler")
	if err != nil {
		return fmt.Errorf("channel %d placeholder: %w", t.id, err)
	}
	t.fillSampler = sampler
	return nil
}

// Write stores c in slot index. The bind group is rebuilt on the next
// Group call.
func (t *Table) Write(index uint32, c binding.Contents) error {
	if index >= uint32(len(t.entries)) {
		return fmt.Errorf("wgpu: channel %d slot %d out of range", t.id, index)
	}
	switch v := c.(type) {
	case binding.BufferContents:
		if v.Buffer == nil {
			return fmt.Errorf("wgpu: channel %d slot %d: nil buffer", t.id, index)
		}
	case binding.ImageContents:
		if v.View == nil || v.Sampler == nil {
			return fmt.Errorf("wgpu: channel %d slot %d: nil view or sampler", t.id, index)
		}
	default:
		return fmt.Errorf("wgpu: channel %d slot %d: unsupported contents %T", t.id, index, c)
	}
	t.entries[index] = c
	t.dirty = true
	return nil
}

// Layout returns the bind group layout, for building pipeline layouts.
func (t *Table) Layout() hal.BindGroupLayout { return t.layout }

// Group returns the bind group with every written slot, rebuilding it if
// slots changed since the last call.
func (t *Table) Group() (hal.BindGroup, error) {
	t.collect()
	if !t.dirty && t.group != nil {
		return t.group, nil
	}

	group, err := t.dev.raw.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   t.label,
		Layout:  t.layout,
		Entries: t.groupEntries(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: channel %d bind group: %w", gpucore.ErrAllocationFailure, t.id, err)
	}

	if t.group != nil {
		// The group may be bound by recorded work up to and including the
		// submission being recorded now.
		submitted, _ := t.dev.submitCounts()
		t.retired = append(t.retired, retiredGroup{group: t.group, after: submitted + 1})
	}
	t.group = group
	t.dirty = false
	return group, nil
}

func (t *Table) groupEntries() []gputypes.BindGroupEntry {
	if t.cfg.Type.Kind() == binding.KindImage {
		entries := make([]gputypes.BindGroupEntry, 0, 2*len(t.entries))
		for i, c := range t.entries {
			view, sampler := t.fillTexture.NativeHandle(), t.fillSampler.NativeHandle()
			if img, ok := c.(binding.ImageContents); ok {
				view, sampler = img.View.NativeHandle(), img.Sampler.NativeHandle()
			}
			entries = append(entries,
				gputypes.BindGroupEntry{Binding: uint32(2 * i), Resource: gputypes.TextureViewBinding{TextureView: view}},
				gputypes.BindGroupEntry{Binding: uint32(2*i + 1), Resource: gputypes.SamplerBinding{Sampler: sampler}})
		}
		return entries
	}

	entries := make([]gputypes.BindGroupEntry, len(t.entries))
	for i, c := range t.entries {
		res := gputypes.BufferBinding{Buffer: t.fillBuffer.NativeHandle(), Offset: 0, Size: placeholderBufferSize}
		if buf, ok := c.(binding.BufferContents); ok {
			res = gputypes.BufferBinding{Buffer: buf.Buffer.NativeHandle(), Offset: buf.Offset, Size: buf.Size}
		}
		entries[i] = gputypes.BindGroupEntry{Binding: uint32(i), Resource: res}
	}
	return entries
}

// collect destroys retired groups whose submissions have all completed.
func (t *Table) collect() {
	if len(t.retired) == 0 {
		return
	}
	_, completed := t.dev.submitCounts()
	kept := t.retired[:0]
	for _, r := range t.retired {
		if r.after <= completed {
			t.dev.raw.DestroyBindGroup(r.group)
			continue
		}
		kept = append(kept, r)
	}
	t.retired = kept
}

// Pending returns the number of replaced groups not yet destroyed.
func (t *Table) Pending() int { return len(t.retired) }

// Destroy releases the group, the layout and the placeholders.
func (t *Table) Destroy() {
	d := t.dev.raw
	for _, r := range t.retired {
		d.DestroyBindGroup(r.group)
	}
	t.retired = nil
	if t.group != nil {
		d.DestroyBindGroup(t.group)
		t.group = nil
	}
	if t.layout != nil {
		d.DestroyBindGroupLayout(t.layout)
		t.layout = nil
	}
	if t.fillBuffer != nil {
		d.DestroyBuffer(t.fillBuffer)
		t.fillBuffer = nil
	}
	if t.fillTexture != nil {
		t.fillTexture.Destroy()
		t.fillTexture = nil
	}
	if t.fillSampler != nil {
		d.DestroySampler(t.fillSampler)
		t.fillSampler = nil
	}
}
