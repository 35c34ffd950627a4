// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// CommandBuffer records one frame's commands into a hal encoder.
//
// Begin creates a fresh encoder, End turns it into a hal.CommandBuffer that
// is kept, together with its encoder, until the next Reset. The frame
// pipeline only resets after the fence of the submission that used it has
// been waited on.
type CommandBuffer struct {
	dev   *Device
	label string

	encoder   hal.CommandEncoder
	recording bool
	recorded  hal.CommandBuffer
}

// Reset frees the previously recorded hal command buffer, discards an open
// recording and destroys the encoder.
func (c *CommandBuffer) Reset() error {
	if c.recording {
		c.encoder.DiscardEncoding()
		c.recording = false
	}
	if c.recorded != nil {
		c.dev.raw.FreeCommandBuffer(c.recorded)
		c.recorded = nil
	}
	if c.encoder != nil {
		c.encoder.Destroy()
		c.encoder = nil
	}
	return nil
}

// Begin starts recording.
func (c *CommandBuffer) Begin() error {
	if c.recording {
		return errors.New("wgpu: command buffer already recording")
	}
	if c.recorded != nil {
		return errors.New("wgpu: command buffer not reset")
	}
	if err := c.dev.checkOpen(); err != nil {
		return err
	}
	if c.encoder != nil {
		c.encoder.Destroy()
		c.encoder = nil
	}
	encoder, err := c.dev.raw.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: c.label,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder %s: %w", c.label, err)
	}
	if err := encoder.BeginEncoding(c.label); err != nil {
		encoder.Destroy()
		return fmt.Errorf("wgpu: begin encoding %s: %w", c.label, err)
	}
	c.encoder = encoder
	c.recording = true
	return nil
}

// End finishes recording.
func (c *CommandBuffer) End() error {
	if !c.recording {
		return errors.New("wgpu: command buffer not recording")
	}
	c.recording = false
	cb, err := c.encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding %s: %w", c.label, err)
	}
	c.recorded = cb
	return nil
}

// Encoder returns the open encoder, nil outside Begin/End.
func (c *CommandBuffer) Encoder() hal.CommandEncoder {
	if !c.recording {
		return nil
	}
	return c.encoder
}

// Label returns the command buffer label.
func (c *CommandBuffer) Label() string { return c.label }

// Destroy releases any held hal objects.
func (c *CommandBuffer) Destroy() {
	_ = c.Reset()
}
