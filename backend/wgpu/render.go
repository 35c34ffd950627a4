// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfxcore/binding"
	"github.com/gogpu/gfxcore/present"
)

// BeginRenderPass opens a render pass over the frame's color image and
// depth target, clearing both. The caller records draws and calls End on
// the returned encoder before present.Pipeline.EndFrame.
func BeginRenderPass(f *present.Frame, clear gputypes.Color) (hal.RenderPassEncoder, error) {
	cb, ok := f.Commands.(*CommandBuffer)
	if !ok {
		return nil, fmt.Errorf("%w: command buffer %T", ErrForeignObject, f.Commands)
	}
	encoder := cb.Encoder()
	if encoder == nil {
		return nil, fmt.Errorf("wgpu: frame %d is not recording", f.Serial)
	}
	color, ok := f.Color.(*Texture)
	if !ok {
		return nil, fmt.Errorf("%w: color attachment %T", ErrForeignObject, f.Color)
	}
	depth, ok := f.Depth.(*Texture)
	if !ok {
		return nil, fmt.Errorf("%w: depth attachment %T", ErrForeignObject, f.Depth)
	}

	return encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: fmt.Sprintf("%s-pass-%d", cb.label, f.Serial),
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       color.View(),
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: clear,
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:            depth.View(),
			DepthLoadOp:     gputypes.LoadOpClear,
			DepthStoreOp:    gputypes.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}), nil
}

// BindTable binds the bind group of the channel behind ch at groupIndex.
// Shaders index the channel's slots with the handle's Index via
// SlotBinding.
func BindTable(pass hal.RenderPassEncoder, groupIndex uint32, ch *binding.Channel) error {
	t, ok := ch.Table().(*Table)
	if !ok {
		return fmt.Errorf("%w: table %T of channel %d", ErrForeignObject, ch.Table(), ch.ID())
	}
	group, err := t.Group()
	if err != nil {
		return err
	}
	pass.SetBindGroup(groupIndex, group, nil)
	return nil
}
