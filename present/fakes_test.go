// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfxcore/gpucore"
)

// =============================================================================
// Fakes
// =============================================================================

// recorder is a shared, ordered event log.
type recorder struct {
	events []string
}

func (r *recorder) add(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

// since returns the events logged after mark.
func (r *recorder) since(mark int) []string {
	return append([]string(nil), r.events[mark:]...)
}

type fakeFence struct {
	id        int
	rec       *recorder
	signaled  bool
	hang      bool
	destroyed bool
}

// Wait models a GPU that always finishes: the pending submission retires
// as soon as somebody waits for it.
func (f *fakeFence) Wait(_ time.Duration) (bool, error) {
	f.rec.add("wait fence%d", f.id)
	if f.hang {
		return false, nil
	}
	f.signaled = true
	return true, nil
}

func (f *fakeFence) Reset() error {
	f.rec.add("reset fence%d", f.id)
	f.signaled = false
	return nil
}

func (f *fakeFence) Destroy() { f.destroyed = true }

type fakeSemaphore struct {
	id        int
	destroyed bool
}

func (s *fakeSemaphore) Destroy() { s.destroyed = true }

type fakeCommands struct {
	id        int
	label     string
	rec       *recorder
	recording bool
	destroyed bool
}

func (c *fakeCommands) Reset() error {
	c.rec.add("reset cmd%d", c.id)
	c.recording = false
	return nil
}

func (c *fakeCommands) Begin() error {
	c.rec.add("begin cmd%d", c.id)
	c.recording = true
	return nil
}

func (c *fakeCommands) End() error {
	c.rec.add("end cmd%d", c.id)
	c.recording = false
	return nil
}

func (c *fakeCommands) Destroy() { c.destroyed = true }

type fakeAttachment struct {
	extent    gpucore.Extent
	format    gputypes.TextureFormat
	destroyed bool
}

func (a *fakeAttachment) Extent() gpucore.Extent         { return a.extent }
func (a *fakeAttachment) Format() gputypes.TextureFormat { return a.format }
func (a *fakeAttachment) Destroy()                       { a.destroyed = true }

type fakeDevice struct {
	rec *recorder

	fences   []*fakeFence
	sems     []*fakeSemaphore
	commands []*fakeCommands
	depth    []*fakeAttachment
	submits  []Submission
	idles    int

	// failDepthAt fails the n-th depth target creation (1-based).
	failDepthAt int
}

func newFakeDevice(rec *recorder) *fakeDevice {
	return &fakeDevice{rec: rec}
}

func (d *fakeDevice) CreateFence(signaled bool) (Fence, error) {
	f := &fakeFence{id: len(d.fences), rec: d.rec, signaled: signaled}
	d.fences = append(d.fences, f)
	d.rec.add("create fence%d signaled=%v", f.id, signaled)
	return f, nil
}

func (d *fakeDevice) CreateSemaphore() (Semaphore, error) {
	s := &fakeSemaphore{id: len(d.sems)}
	d.sems = append(d.sems, s)
	return s, nil
}

func (d *fakeDevice) CreateCommandBuffer(label string) (CommandBuffer, error) {
	c := &fakeCommands{id: len(d.commands), label: label, rec: d.rec}
	d.commands = append(d.commands, c)
	d.rec.add("create cmd%d", c.id)
	return c, nil
}

func (d *fakeDevice) CreateDepthTarget(extent gpucore.Extent, format gputypes.TextureFormat) (gpucore.Attachment, error) {
	if d.failDepthAt > 0 && len(d.depth)+1 == d.failDepthAt {
		return nil, fmt.Errorf("fake depth: %w", gpucore.ErrAllocationFailure)
	}
	a := &fakeAttachment{extent: extent, format: format}
	d.depth = append(d.depth, a)
	return a, nil
}

func (d *fakeDevice) Submit(s Submission) error {
	d.submits = append(d.submits, s)
	d.rec.add("submit cmd%d fence%d", s.Commands.(*fakeCommands).id, s.Fence.(*fakeFence).id)
	return nil
}

func (d *fakeDevice) WaitIdle() error {
	d.idles++
	d.rec.add("wait idle")
	for _, f := range d.fences {
		f.signaled = true
	}
	return nil
}

type fakeSurface struct {
	rec  *recorder
	caps SurfaceCapabilities

	// extra images handed out beyond the requested count.
	extra int

	configured []SurfaceConfig
	images     []*fakeAttachment

	// order, when set, is the sequence of image indices Acquire returns.
	order []uint32
	next  uint32

	acquireOutOfDate int
	presentOutOfDate int

	presented []uint32
}

func newFakeSurface(rec *recorder) *fakeSurface {
	return &fakeSurface{
		rec: rec,
		caps: SurfaceCapabilities{
			MinImageCount: 2,
			MaxImageCount: 0,
			CurrentExtent: gpucore.Extent{Width: gpucore.UndefinedExtent, Height: gpucore.UndefinedExtent},
			MinExtent:     gpucore.Extent{Width: 1, Height: 1},
			MaxExtent:     gpucore.Extent{Width: 4096, Height: 4096},
			Format:        gputypes.TextureFormatBGRA8Unorm,
		},
	}
}

func (s *fakeSurface) Capabilities() (SurfaceCapabilities, error) {
	return s.caps, nil
}

func (s *fakeSurface) Configure(cfg SurfaceConfig) ([]gpucore.Attachment, error) {
	s.configured = append(s.configured, cfg)
	s.rec.add("configure %d %s", cfg.ImageCount, cfg.Extent)
	n := int(cfg.ImageCount) + s.extra
	s.images = make([]*fakeAttachment, n)
	out := make([]gpucore.Attachment, n)
	for i := range s.images {
		s.images[i] = &fakeAttachment{extent: cfg.Extent, format: cfg.Format}
		out[i] = s.images[i]
	}
	s.next = 0
	return out, nil
}

func (s *fakeSurface) Acquire(_ Semaphore, _ time.Duration) (uint32, error) {
	if s.acquireOutOfDate > 0 {
		s.acquireOutOfDate--
		s.rec.add("acquire out of date")
		return 0, ErrSurfaceOutOfDate
	}
	var idx uint32
	if len(s.order) > 0 {
		idx, s.order = s.order[0], s.order[1:]
	} else {
		idx = s.next % uint32(len(s.images))
		s.next++
	}
	s.rec.add("acquire image%d", idx)
	return idx, nil
}

func (s *fakeSurface) Present(index uint32, _ Semaphore) error {
	s.presented = append(s.presented, index)
	s.rec.add("present image%d", index)
	if s.presentOutOfDate > 0 {
		s.presentOutOfDate--
		return ErrSurfaceOutOfDate
	}
	return nil
}
