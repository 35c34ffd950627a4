// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package binding

import "fmt"

// Table is the GPU-visible storage behind one channel: the equivalent of a
// descriptor set or an array of bind groups.
//
// Write is called exactly once per allocation or rebind, with contents
// whose Kind already matches the channel type. After Write returns, any GPU
// work recorded afterwards that references index sees the new contents.
type Table interface {
	Write(index uint32, c Contents) error
	Destroy()
}

// TableFactory creates the table for a channel.
type TableFactory interface {
	NewTable(id uint32, cfg ChannelConfig) (Table, error)
}

// TableFactoryFunc adapts a function to TableFactory.
type TableFactoryFunc func(id uint32, cfg ChannelConfig) (Table, error)

// NewTable calls f.
func (f TableFactoryFunc) NewTable(id uint32, cfg ChannelConfig) (Table, error) {
	return f(id, cfg)
}

// MemoryTable is a CPU-side Table. It keeps the contents of every slot and
// counts writes, which makes it useful for headless runs and tests.
type MemoryTable struct {
	slots     []Contents
	writes    int
	destroyed bool
}

// NewMemoryTable creates a table with capacity slots.
func NewMemoryTable(capacity uint32) *MemoryTable {
	return &MemoryTable{slots: make([]Contents, capacity)}
}

// Write stores c at index.
func (m *MemoryTable) Write(index uint32, c Contents) error {
	if m.destroyed {
		return fmt.Errorf("binding: write to destroyed memory table")
	}
	if int(index) >= len(m.slots) {
		return fmt.Errorf("binding: memory table index %d out of range [0, %d)", index, len(m.slots))
	}
	m.slots[index] = c
	m.writes++
	return nil
}

// Contents returns whatever was last written at index.
func (m *MemoryTable) Contents(index uint32) Contents {
	if int(index) >= len(m.slots) {
		return nil
	}
	return m.slots[index]
}

// Writes returns the number of successful writes.
func (m *MemoryTable) Writes() int { return m.writes }

// Destroy marks the table unusable.
func (m *MemoryTable) Destroy() { m.destroyed = true }

// Destroyed reports whether Destroy was called.
func (m *MemoryTable) Destroyed() bool { return m.destroyed }

// MemoryTables is a TableFactory producing MemoryTable values. Created
// tables are kept in channel order for inspection.
type MemoryTables struct {
	Tables []*MemoryTable
}

// NewTable creates a MemoryTable sized to cfg.Capacity.
func (f *MemoryTables) NewTable(_ uint32, cfg ChannelConfig) (Table, error) {
	t := NewMemoryTable(cfg.Capacity)
	f.Tables = append(f.Tables, t)
	return t, nil
}
