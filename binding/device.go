// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package binding

import (
	"fmt"
	"log/slog"
)

// DeviceConfig configures a Device.
type DeviceConfig struct {
	// Channels lists the channels in lookup order. Allocate picks the first
	// channel of the requested type that has room, so order matters when a
	// type has several channels.
	Channels []ChannelConfig

	// Tables creates one binding table per channel. Defaults to
	// MemoryTables.
	Tables TableFactory

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger
}

// retirement is a freed handle waiting for the frame that last used it.
type retirement struct {
	handle Handle
	serial uint64
}

// Device is the single entry point for allocating, rebinding and freeing
// binding slots.
//
// Device is not safe for concurrent use.
type Device struct {
	channels []*Channel
	pending  []retirement
	log      *slog.Logger
}

// NewDevice creates the channels and their tables. On error every table
// created so far is destroyed.
func NewDevice(cfg DeviceConfig) (*Device, error) {
	if len(cfg.Channels) == 0 {
		return nil, fmt.Errorf("%w: no channels", ErrInvalidConfig)
	}
	tables := cfg.Tables
	if tables == nil {
		tables = &MemoryTables{}
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	d := &Device{log: log}
	for i, cc := range cfg.Channels {
		if cc.Type.Kind() == 0 {
			d.Destroy()
			return nil, fmt.Errorf("%w: channel %d: %w", ErrInvalidConfig, i, fmt.Errorf("%w: %s", ErrUnsupportedResourceType, cc.Type))
		}
		if cc.Capacity == 0 {
			d.Destroy()
			return nil, fmt.Errorf("%w: channel %d (%s) has zero capacity", ErrInvalidConfig, i, cc.Type)
		}
		id := uint32(i) //nolint:gosec // G115: channel count is small
		if cc.Label == "" {
			cc.Label = fmt.Sprintf("%s-%d", cc.Type, id)
		}
		table, err := tables.NewTable(id, cc)
		if err != nil {
			d.Destroy()
			return nil, fmt.Errorf("binding: create table for channel %d (%s): %w", i, cc.Type, err)
		}
		d.channels = append(d.channels, newChannel(id, cc, table))
	}

	d.log.Info("binding: device created", "channels", len(d.channels))
	return d, nil
}

// Allocate writes c into a free slot of the first channel configured for t
// that has room and returns its handle.
//
// Errors: ErrUnsupportedResourceType when no channel has type t,
// ErrContentsMismatch when c is the wrong variant for t,
// ErrResourceExhausted when every channel of type t is full, and
// gpucore.ErrAllocationFailure when the table write fails. In every error
// case all channel state is left unchanged.
func (d *Device) Allocate(t ResourceType, c Contents) (Handle, error) {
	var channels []*Channel
	for _, ch := range d.channels {
		if ch.typ == t {
			channels = append(channels, ch)
		}
	}
	if len(channels) == 0 {
		return Handle{}, fmt.Errorf("%w: %s", ErrUnsupportedResourceType, t)
	}
	if err := checkKind(t, c); err != nil {
		return Handle{}, err
	}
	for _, ch := range channels {
		if !ch.slots.CanAlloc() {
			continue
		}
		index, err := ch.allocate(c)
		if err != nil {
			return Handle{}, err
		}
		return Handle{Channel: ch.id, Index: index}, nil
	}
	d.log.Warn("binding: resource exhausted", "type", t.String())
	return Handle{}, fmt.Errorf("%w: %s", ErrResourceExhausted, t)
}

// Rebind replaces the contents of an allocated slot in place. The handle
// keeps its identity; the table is written once at h.Index.
func (d *Device) Rebind(h Handle, c Contents) error {
	ch, err := d.lookup(h)
	if err != nil {
		return err
	}
	if err := checkKind(ch.typ, c); err != nil {
		return err
	}
	return ch.rebind(h.Index, c)
}

// Free returns h.Index to its channel's free list immediately. The slot
// contents are not cleared.
//
// A handle naming an unknown channel or an index the channel never issued
// is logged and ignored. Freeing a live handle twice is a caller error and
// is not detected.
func (d *Device) Free(h Handle) {
	ch, err := d.lookup(h)
	if err == nil {
		err = ch.release(h.Index)
	}
	if err != nil {
		d.log.Warn("binding: free of invalid handle", "handle", h.String(), "err", err)
	}
}

// Retire schedules h to be freed once the frame with the given serial has
// completed on the GPU. Until then the index is not reused.
func (d *Device) Retire(h Handle, serial uint64) {
	d.pending = append(d.pending, retirement{handle: h, serial: serial})
}

// Collect frees every retired handle whose serial is <= completed, in the
// order they were retired, and returns how many were freed.
func (d *Device) Collect(completed uint64) int {
	n := 0
	kept := d.pending[:0]
	for _, r := range d.pending {
		if r.serial <= completed {
			d.Free(r.handle)
			n++
			continue
		}
		kept = append(kept, r)
	}
	clear(d.pending[len(kept):])
	d.pending = kept
	if n > 0 {
		d.log.Debug("binding: collected retired slots", "count", n, "completed", completed)
	}
	return n
}

// Pending returns the number of retired handles not yet collected.
func (d *Device) Pending() int { return len(d.pending) }

// Channel returns the channel with the given id.
func (d *Device) Channel(id uint32) (*Channel, bool) {
	if int(id) >= len(d.channels) {
		return nil, false
	}
	return d.channels[id], true
}

// Channels returns the channels in lookup order.
func (d *Device) Channels() []*Channel {
	out := make([]*Channel, len(d.channels))
	copy(out, d.channels)
	return out
}

// ChannelStats is a point-in-time view of one channel.
type ChannelStats struct {
	ID            uint32
	Type          ResourceType
	Label         string
	Capacity      uint32
	HighWaterMark uint32
	Live          int
	FreeList      []uint32
	Pending       int
}

// Stats returns a snapshot of every channel.
func (d *Device) Stats() []ChannelStats {
	pending := make(map[uint32]int)
	for _, r := range d.pending {
		pending[r.handle.Channel]++
	}
	out := make([]ChannelStats, 0, len(d.channels))
	for _, ch := range d.channels {
		out = append(out, ChannelStats{
			ID:            ch.id,
			Type:          ch.typ,
			Label:         ch.label,
			Capacity:      ch.Capacity(),
			HighWaterMark: ch.HighWaterMark(),
			Live:          ch.Live(),
			FreeList:      ch.FreeList(),
			Pending:       pending[ch.id],
		})
	}
	return out
}

// Destroy destroys every channel table. The GPU must be idle.
func (d *Device) Destroy() {
	for _, ch := range d.channels {
		ch.table.Destroy()
	}
	d.channels = nil
	d.pending = nil
}

func (d *Device) lookup(h Handle) (*Channel, error) {
	ch, ok := d.Channel(h.Channel)
	if !ok {
		return nil, fmt.Errorf("%w: unknown channel %d", ErrInvalidHandle, h.Channel)
	}
	return ch, nil
}

func checkKind(t ResourceType, c Contents) error {
	if c == nil {
		return fmt.Errorf("%w: nil contents for %s", ErrContentsMismatch, t)
	}
	if want := t.Kind(); want != 0 && c.Kind() != want {
		return fmt.Errorf("%w: %s contents for %s slot", ErrContentsMismatch, c.Kind(), t)
	}
	return nil
}
