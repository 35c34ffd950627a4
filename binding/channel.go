// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package binding

import (
	"errors"
	"fmt"

	"github.com/gogpu/gfxcore/gpucore"
	"github.com/gogpu/gfxcore/internal/arena"
)

// ChannelConfig describes one channel.
type ChannelConfig struct {
	// Type is the resource type every slot of the channel holds.
	Type ResourceType

	// Capacity is the fixed number of slots. Must be > 0.
	Capacity uint32

	// Label names the channel in logs and backend debug labels.
	// Defaults to "<type>-<id>".
	Label string
}

// Channel is a typed, fixed-capacity pool of binding slots backed by one
// Table.
type Channel struct {
	id    uint32
	typ   ResourceType
	label string
	table Table
	slots *arena.Arena[Contents]
}

func newChannel(id uint32, cfg ChannelConfig, table Table) *Channel {
	ch := &Channel{
		id:    id,
		typ:   cfg.Type,
		label: cfg.Label,
		table: table,
	}
	ch.slots = arena.New(cfg.Capacity, ch.writeSlot)
	return ch
}

// ID returns the channel id, which is also its position in the device.
func (c *Channel) ID() uint32 { return c.id }

// Type returns the channel resource type.
func (c *Channel) Type() ResourceType { return c.typ }

// Label returns the channel label.
func (c *Channel) Label() string { return c.label }

// Table returns the backing binding table.
func (c *Channel) Table() Table { return c.table }

// Capacity returns the fixed slot count.
func (c *Channel) Capacity() uint32 { return c.slots.Cap() }

// HighWaterMark returns the number of indices ever issued.
func (c *Channel) HighWaterMark() uint32 { return c.slots.HighWaterMark() }

// Live returns the number of allocated slots.
func (c *Channel) Live() int { return c.slots.Live() }

// FreeList returns a copy of the free stack, bottom first. The next
// allocation takes the last element.
func (c *Channel) FreeList() []uint32 { return c.slots.FreeList() }

// Contents returns the contents last written at index, including stale
// contents of a freed slot.
func (c *Channel) Contents(index uint32) (Contents, bool) {
	return c.slots.Value(index)
}

func (c *Channel) allocate(contents Contents) (uint32, error) {
	return c.slots.Alloc(contents)
}

func (c *Channel) rebind(index uint32, contents Contents) error {
	err := c.slots.Write(index, contents)
	if errors.Is(err, arena.ErrOutOfRange) {
		return fmt.Errorf("%w: %d:%d never allocated", ErrInvalidHandle, c.id, index)
	}
	return err
}

func (c *Channel) release(index uint32) error {
	if err := c.slots.Release(index); err != nil {
		return fmt.Errorf("%w: %d:%d never allocated", ErrInvalidHandle, c.id, index)
	}
	return nil
}

func (c *Channel) writeSlot(index uint32, contents Contents) error {
	if err := c.table.Write(index, contents); err != nil {
		return fmt.Errorf("%w: channel %q slot %d: %w", gpucore.ErrAllocationFailure, c.label, index, err)
	}
	return nil
}
