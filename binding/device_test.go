// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package binding

import (
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/gogpu/gfxcore/gpucore"
)

// fakeResource is a test double for gpucore.NativeResource.
type fakeResource uintptr

func (r fakeResource) NativeHandle() uintptr { return uintptr(r) }

func buf(id uintptr) BufferContents {
	return BufferContents{Buffer: fakeResource(id), Size: 256}
}

func img(id uintptr) ImageContents {
	return ImageContents{View: fakeResource(id), Sampler: fakeResource(1000 + id)}
}

func newTestDevice(t *testing.T, channels ...ChannelConfig) (*Device, *MemoryTables) {
	t.Helper()
	tables := &MemoryTables{}
	d, err := NewDevice(DeviceConfig{Channels: channels, Tables: tables})
	if err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}
	return d, tables
}

func mustAllocate(t *testing.T, d *Device, rt ResourceType, c Contents) Handle {
	t.Helper()
	h, err := d.Allocate(rt, c)
	if err != nil {
		t.Fatalf("Allocate(%s) error = %v", rt, err)
	}
	return h
}

func TestAllocateLIFOReuse(t *testing.T) {
	d, _ := newTestDevice(t, ChannelConfig{Type: ResourceUniformBuffer, Capacity: 8})

	var got []uint32
	for i := 0; i < 3; i++ {
		got = append(got, mustAllocate(t, d, ResourceUniformBuffer, buf(uintptr(i))).Index)
	}
	if !slices.Equal(got, []uint32{0, 1, 2}) {
		t.Fatalf("indices = %v, want [0 1 2]", got)
	}

	d.Free(Handle{Channel: 0, Index: 1})
	h := mustAllocate(t, d, ResourceUniformBuffer, buf(9))
	if h.Index != 1 {
		t.Errorf("reallocated index = %d, want 1 (most recently freed)", h.Index)
	}
}

func TestFreeIgnoresUnissuedIndex(t *testing.T) {
	d, _ := newTestDevice(t, ChannelConfig{Type: ResourceUniformBuffer, Capacity: 4})
	first := mustAllocate(t, d, ResourceUniformBuffer, buf(1))

	// Index 3 was never issued; the high-water mark is 1.
	d.Free(Handle{Channel: 0, Index: 3})
	d.Free(Handle{Channel: 7, Index: 0})

	ch, _ := d.Channel(0)
	if ch.HighWaterMark() != 1 {
		t.Errorf("HighWaterMark() = %d, want 1", ch.HighWaterMark())
	}
	h := mustAllocate(t, d, ResourceUniformBuffer, buf(2))
	if h.Index != 1 || h == first {
		t.Errorf("Allocate() after bogus Free = %v, want index 1", h)
	}
}

func TestAllocateLIFOOrderAcrossSeveralFrees(t *testing.T) {
	d, _ := newTestDevice(t, ChannelConfig{Type: ResourceStorageBuffer, Capacity: 8})
	for i := 0; i < 4; i++ {
		mustAllocate(t, d, ResourceStorageBuffer, buf(uintptr(i)))
	}
	d.Free(Handle{0, 2})
	d.Free(Handle{0, 0})
	d.Free(Handle{0, 3})

	var got []uint32
	for i := 0; i < 4; i++ {
		got = append(got, mustAllocate(t, d, ResourceStorageBuffer, buf(10)).Index)
	}
	if want := []uint32{3, 0, 2, 4}; !slices.Equal(got, want) {
		t.Errorf("indices = %v, want %v", got, want)
	}
}

func TestAllocateExhaustion(t *testing.T) {
	d, _ := newTestDevice(t, ChannelConfig{Type: ResourceSampledImage, Capacity: 2})

	a := mustAllocate(t, d, ResourceSampledImage, img(1))
	b := mustAllocate(t, d, ResourceSampledImage, img(2))
	if a.Index != 0 || b.Index != 1 {
		t.Fatalf("indices = %d, %d; want 0, 1", a.Index, b.Index)
	}

	if _, err := d.Allocate(ResourceSampledImage, img(3)); !errors.Is(err, ErrResourceExhausted) {
		t.Fatalf("allocate C error = %v, want ErrResourceExhausted", err)
	}
	if _, err := d.Allocate(ResourceSampledImage, img(4)); !errors.Is(err, ErrResourceExhausted) {
		t.Fatalf("allocate D error = %v, want ErrResourceExhausted", err)
	}

	d.Free(a)
	h, err := d.Allocate(ResourceSampledImage, img(4))
	if err != nil {
		t.Fatalf("allocate D after free error = %v", err)
	}
	if h.Index != 0 {
		t.Errorf("allocate D index = %d, want 0", h.Index)
	}
}

func TestAllocateExhaustionLeavesStateUnchanged(t *testing.T) {
	d, tables := newTestDevice(t, ChannelConfig{Type: ResourceUniformBuffer, Capacity: 3})
	for i := 0; i < 3; i++ {
		mustAllocate(t, d, ResourceUniformBuffer, buf(uintptr(i)))
	}
	d.Free(Handle{0, 1})
	mustAllocate(t, d, ResourceUniformBuffer, buf(7))

	before := d.Stats()
	writes := tables.Tables[0].Writes()
	if _, err := d.Allocate(ResourceUniformBuffer, buf(8)); !errors.Is(err, ErrResourceExhausted) {
		t.Fatalf("Allocate() error = %v, want ErrResourceExhausted", err)
	}
	if after := d.Stats(); !reflect.DeepEqual(before, after) {
		t.Errorf("stats changed on failure:\n before %+v\n after  %+v", before, after)
	}
	if got := tables.Tables[0].Writes(); got != writes {
		t.Errorf("table writes = %d, want %d", got, writes)
	}
}

func TestAllocateUnsupportedType(t *testing.T) {
	d, _ := newTestDevice(t, ChannelConfig{Type: ResourceUniformBuffer, Capacity: 4})
	_, err := d.Allocate(ResourceSampledImage, img(1))
	if !errors.Is(err, ErrUnsupportedResourceType) {
		t.Errorf("Allocate() error = %v, want ErrUnsupportedResourceType", err)
	}
}

func TestAllocateUnsupportedTypeWinsOverMismatch(t *testing.T) {
	d, tables := newTestDevice(t, ChannelConfig{Type: ResourceUniformBuffer, Capacity: 4})
	tests := []struct {
		name string
		rt   ResourceType
		c    Contents
	}{
		{"buffer contents", ResourceSampledImage, buf(1)},
		{"nil contents", ResourceStorageBuffer, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Allocate(tt.rt, tt.c)
			if !errors.Is(err, ErrUnsupportedResourceType) {
				t.Errorf("Allocate() error = %v, want ErrUnsupportedResourceType", err)
			}
			if errors.Is(err, ErrContentsMismatch) {
				t.Errorf("Allocate() error = %v, should not report a contents mismatch", err)
			}
		})
	}
	if tables.Tables[0].Writes() != 0 {
		t.Errorf("table writes = %d, want 0", tables.Tables[0].Writes())
	}
}

func TestAllocateContentsMismatch(t *testing.T) {
	d, tables := newTestDevice(t,
		ChannelConfig{Type: ResourceUniformBuffer, Capacity: 4},
		ChannelConfig{Type: ResourceSampledImage, Capacity: 4},
	)
	tests := []struct {
		name string
		rt   ResourceType
		c    Contents
	}{
		{"image into buffer", ResourceUniformBuffer, img(1)},
		{"buffer into image", ResourceSampledImage, buf(1)},
		{"nil contents", ResourceUniformBuffer, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := d.Allocate(tt.rt, tt.c); !errors.Is(err, ErrContentsMismatch) {
				t.Errorf("Allocate() error = %v, want ErrContentsMismatch", err)
			}
		})
	}
	for i, tbl := range tables.Tables {
		if tbl.Writes() != 0 {
			t.Errorf("table %d writes = %d, want 0", i, tbl.Writes())
		}
	}
}

func TestAllocateSpillsToNextChannelOfSameType(t *testing.T) {
	d, _ := newTestDevice(t,
		ChannelConfig{Type: ResourceStorageBuffer, Capacity: 1},
		ChannelConfig{Type: ResourceUniformBuffer, Capacity: 4},
		ChannelConfig{Type: ResourceStorageBuffer, Capacity: 2},
	)
	want := []Handle{{0, 0}, {2, 0}, {2, 1}}
	for i, w := range want {
		if got := mustAllocate(t, d, ResourceStorageBuffer, buf(uintptr(i))); got != w {
			t.Errorf("allocation %d = %v, want %v", i, got, w)
		}
	}
	if _, err := d.Allocate(ResourceStorageBuffer, buf(9)); !errors.Is(err, ErrResourceExhausted) {
		t.Errorf("Allocate() error = %v, want ErrResourceExhausted", err)
	}

	// A free in the first channel makes it preferred again.
	d.Free(Handle{0, 0})
	if got := mustAllocate(t, d, ResourceStorageBuffer, buf(10)); got != (Handle{0, 0}) {
		t.Errorf("allocation after free = %v, want 0:0", got)
	}
}

func TestAllocateWritesTableOnce(t *testing.T) {
	d, tables := newTestDevice(t, ChannelConfig{Type: ResourceUniformBuffer, Capacity: 4})
	c := buf(42)
	h := mustAllocate(t, d, ResourceUniformBuffer, c)

	tbl := tables.Tables[0]
	if tbl.Writes() != 1 {
		t.Errorf("writes = %d, want 1", tbl.Writes())
	}
	if got := tbl.Contents(h.Index); got != c {
		t.Errorf("table contents = %v, want %v", got, c)
	}
}

func TestRebind(t *testing.T) {
	d, tables := newTestDevice(t, ChannelConfig{Type: ResourceSampledImage, Capacity: 4})
	h := mustAllocate(t, d, ResourceSampledImage, img(1))
	mustAllocate(t, d, ResourceSampledImage, img(2))

	if err := d.Rebind(h, img(3)); err != nil {
		t.Fatalf("Rebind() error = %v", err)
	}
	tbl := tables.Tables[0]
	if tbl.Writes() != 3 {
		t.Errorf("writes = %d, want 3", tbl.Writes())
	}
	if got := tbl.Contents(h.Index); got != img(3) {
		t.Errorf("contents after rebind = %v, want %v", got, img(3))
	}
	ch, _ := d.Channel(0)
	if ch.HighWaterMark() != 2 {
		t.Errorf("HighWaterMark() = %d, want 2", ch.HighWaterMark())
	}

	if err := d.Rebind(h, buf(1)); !errors.Is(err, ErrContentsMismatch) {
		t.Errorf("Rebind() wrong variant error = %v, want ErrContentsMismatch", err)
	}
	if err := d.Rebind(Handle{Channel: 5}, img(1)); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("Rebind() unknown channel error = %v, want ErrInvalidHandle", err)
	}
	if err := d.Rebind(Handle{Channel: 0, Index: 3}, img(1)); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("Rebind() unissued index error = %v, want ErrInvalidHandle", err)
	}
}

func TestFreeKeepsStaleContents(t *testing.T) {
	d, tables := newTestDevice(t, ChannelConfig{Type: ResourceUniformBuffer, Capacity: 2})
	h := mustAllocate(t, d, ResourceUniformBuffer, buf(5))
	d.Free(h)

	if got := tables.Tables[0].Contents(h.Index); got != buf(5) {
		t.Errorf("table contents after free = %v, want stale %v", got, buf(5))
	}
	ch, _ := d.Channel(0)
	if c, ok := ch.Contents(h.Index); !ok || c != buf(5) {
		t.Errorf("channel contents after free = %v, %v", c, ok)
	}
}

// failingTable fails writes while fail is set.
type failingTable struct {
	MemoryTable
	fail bool
}

func (f *failingTable) Write(index uint32, c Contents) error {
	if f.fail {
		return errors.New("driver refused update")
	}
	return f.MemoryTable.Write(index, c)
}

func TestAllocateTableFailureRollsBack(t *testing.T) {
	ft := &failingTable{MemoryTable: *NewMemoryTable(4)}
	d, err := NewDevice(DeviceConfig{
		Channels: []ChannelConfig{{Type: ResourceUniformBuffer, Capacity: 4}},
		Tables: TableFactoryFunc(func(uint32, ChannelConfig) (Table, error) {
			return ft, nil
		}),
	})
	if err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}
	mustAllocate(t, d, ResourceUniformBuffer, buf(1))
	h := mustAllocate(t, d, ResourceUniformBuffer, buf(2))
	d.Free(h)

	before := d.Stats()
	ft.fail = true
	_, err = d.Allocate(ResourceUniformBuffer, buf(3))
	if !errors.Is(err, gpucore.ErrAllocationFailure) {
		t.Fatalf("Allocate() error = %v, want ErrAllocationFailure", err)
	}
	if after := d.Stats(); !reflect.DeepEqual(before, after) {
		t.Errorf("stats changed on failure:\n before %+v\n after  %+v", before, after)
	}

	ft.fail = false
	if got := mustAllocate(t, d, ResourceUniformBuffer, buf(3)); got.Index != h.Index {
		t.Errorf("index after recovery = %d, want %d", got.Index, h.Index)
	}
}

func TestRetireDefersReuse(t *testing.T) {
	d, _ := newTestDevice(t, ChannelConfig{Type: ResourceUniformBuffer, Capacity: 4})
	a := mustAllocate(t, d, ResourceUniformBuffer, buf(1))
	b := mustAllocate(t, d, ResourceUniformBuffer, buf(2))

	d.Retire(a, 5)
	d.Retire(b, 6)
	if got := mustAllocate(t, d, ResourceUniformBuffer, buf(3)).Index; got != 2 {
		t.Fatalf("index while retirements pending = %d, want 2", got)
	}
	if st := d.Stats(); st[0].Pending != 2 {
		t.Errorf("Pending = %d, want 2", st[0].Pending)
	}

	if n := d.Collect(4); n != 0 {
		t.Errorf("Collect(4) = %d, want 0", n)
	}
	if n := d.Collect(5); n != 1 {
		t.Errorf("Collect(5) = %d, want 1", n)
	}
	if got := mustAllocate(t, d, ResourceUniformBuffer, buf(4)).Index; got != a.Index {
		t.Errorf("index after collect = %d, want %d", got, a.Index)
	}
	if n := d.Collect(100); n != 1 {
		t.Errorf("Collect(100) = %d, want 1", n)
	}
	if d.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", d.Pending())
	}
}

func TestCollectPreservesRetireOrder(t *testing.T) {
	d, _ := newTestDevice(t, ChannelConfig{Type: ResourceUniformBuffer, Capacity: 4})
	for i := 0; i < 3; i++ {
		mustAllocate(t, d, ResourceUniformBuffer, buf(uintptr(i)))
	}
	d.Retire(Handle{0, 2}, 1)
	d.Retire(Handle{0, 0}, 1)
	d.Retire(Handle{0, 1}, 1)
	d.Collect(1)

	ch, _ := d.Channel(0)
	if got := ch.FreeList(); !slices.Equal(got, []uint32{2, 0, 1}) {
		t.Errorf("FreeList() = %v, want [2 0 1]", got)
	}
}

func TestUniquenessInvariant(t *testing.T) {
	d, _ := newTestDevice(t,
		ChannelConfig{Type: ResourceUniformBuffer, Capacity: 5},
		ChannelConfig{Type: ResourceUniformBuffer, Capacity: 3},
	)
	live := map[Handle]bool{}
	var order []Handle
	for step := 0; step < 400; step++ {
		if step%4 == 3 && len(order) > 0 {
			victim := order[(step*7)%len(order)]
			d.Free(victim)
			delete(live, victim)
			order = slices.DeleteFunc(order, func(h Handle) bool { return h == victim })
			continue
		}
		h, err := d.Allocate(ResourceUniformBuffer, buf(uintptr(step)))
		if errors.Is(err, ErrResourceExhausted) {
			if len(live) != 8 {
				t.Fatalf("step %d: exhausted with %d live handles, want 8", step, len(live))
			}
			continue
		}
		if err != nil {
			t.Fatalf("step %d: Allocate() error = %v", step, err)
		}
		if live[h] {
			t.Fatalf("step %d: handle %v issued while live", step, h)
		}
		live[h] = true
		order = append(order, h)
	}
}

func TestNewDeviceInvalidConfig(t *testing.T) {
	tests := []struct {
		name     string
		channels []ChannelConfig
	}{
		{"no channels", nil},
		{"zero capacity", []ChannelConfig{{Type: ResourceUniformBuffer}}},
		{"unknown type", []ChannelConfig{{Type: ResourceType(99), Capacity: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDevice(DeviceConfig{Channels: tt.channels})
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("NewDevice() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestNewDeviceTableFailureDestroysCreatedTables(t *testing.T) {
	var created []*MemoryTable
	factory := TableFactoryFunc(func(id uint32, cfg ChannelConfig) (Table, error) {
		if id == 1 {
			return nil, errors.New("out of descriptor pool memory")
		}
		tbl := NewMemoryTable(cfg.Capacity)
		created = append(created, tbl)
		return tbl, nil
	})
	_, err := NewDevice(DeviceConfig{
		Channels: []ChannelConfig{
			{Type: ResourceUniformBuffer, Capacity: 2},
			{Type: ResourceSampledImage, Capacity: 2},
		},
		Tables: factory,
	})
	if err == nil {
		t.Fatal("NewDevice() error = nil")
	}
	if len(created) != 1 || !created[0].Destroyed() {
		t.Errorf("created tables not destroyed: %d created", len(created))
	}
}

func TestChannelLabels(t *testing.T) {
	d, _ := newTestDevice(t,
		ChannelConfig{Type: ResourceUniformBuffer, Capacity: 1},
		ChannelConfig{Type: ResourceSampledImage, Capacity: 1, Label: "textures"},
	)
	chans := d.Channels()
	if chans[0].Label() != "uniform-buffer-0" {
		t.Errorf("default label = %q", chans[0].Label())
	}
	if chans[1].Label() != "textures" {
		t.Errorf("label = %q, want %q", chans[1].Label(), "textures")
	}
}

func TestParseResourceType(t *testing.T) {
	for _, rt := range []ResourceType{ResourceUniformBuffer, ResourceStorageBuffer, ResourceSampledImage} {
		got, err := ParseResourceType(rt.String())
		if err != nil || got != rt {
			t.Errorf("ParseResourceType(%q) = %v, %v", rt.String(), got, err)
		}
	}
	if _, err := ParseResourceType("vertex-buffer"); !errors.Is(err, ErrUnsupportedResourceType) {
		t.Errorf("ParseResourceType(unknown) error = %v", err)
	}
}

func TestDestroy(t *testing.T) {
	d, tables := newTestDevice(t,
		ChannelConfig{Type: ResourceUniformBuffer, Capacity: 1},
		ChannelConfig{Type: ResourceSampledImage, Capacity: 1},
	)
	d.Destroy()
	for i, tbl := range tables.Tables {
		if !tbl.Destroyed() {
			t.Errorf("table %d not destroyed", i)
		}
	}
}
