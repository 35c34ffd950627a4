// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfxcore/gpucore"
)

// DefaultFramesInFlight is the number of frame slots used when
// Config.FramesInFlight is zero.
const DefaultFramesInFlight = 2

// State is the position of a Pipeline in its frame cycle.
type State int

const (
	// StateIdle means no frame is in progress.
	StateIdle State = iota

	// StateAcquiring means an image has been acquired but recording has
	// not begun.
	StateAcquiring

	// StateRecording means a frame is being recorded.
	StateRecording

	// StateSubmitted means the frame was submitted and is being presented.
	StateSubmitted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiring:
		return "acquiring"
	case StateRecording:
		return "recording"
	case StateSubmitted:
		return "submitted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config configures a Pipeline.
type Config struct {
	// FramesInFlight is the number of frame slots. Default: 2.
	FramesInFlight int

	// FenceTimeout bounds each fence wait. Zero waits without limit. A
	// wait that times out is reported as gpucore.ErrDeviceLost.
	FenceTimeout time.Duration

	// DepthFormat is the per-image depth target format.
	// Default: gputypes.TextureFormatDepth32Float.
	DepthFormat gputypes.TextureFormat

	// Logger receives pipeline diagnostics. Nil discards them.
	Logger *slog.Logger
}

func (c *Config) setDefaults() {
	if c.FramesInFlight <= 0 {
		c.FramesInFlight = DefaultFramesInFlight
	}
	if c.DepthFormat == gputypes.TextureFormatUndefined {
		c.DepthFormat = gputypes.TextureFormatDepth32Float
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
}

func (c *Config) timeout() time.Duration {
	if c.FenceTimeout <= 0 {
		return time.Duration(math.MaxInt64)
	}
	return c.FenceTimeout
}

// Frame is one frame being recorded.
type Frame struct {
	// Slot is the frame slot index.
	Slot int

	// ImageIndex is the acquired ring image.
	ImageIndex uint32

	// Serial is the submission serial this frame will carry.
	Serial uint64

	// Commands is the image's command buffer, reset and begun.
	Commands CommandBuffer

	// Color and Depth are the attachments to render into.
	Color gpucore.Attachment
	Depth gpucore.Attachment

	Extent gpucore.Extent
}

// Pipeline runs the frame loop over a surface. Create with NewPipeline.
type Pipeline struct {
	dev     Device
	surface Surface
	cfg     Config
	log     *slog.Logger

	slots   []*FrameSlot
	ring    *Ring
	current int
	state   State
	extent  gpucore.Extent

	image int
	frame *Frame

	submitted uint64
	completed uint64
}

// NewPipeline creates the frame slots and the image ring for surface. When
// the surface extent is zero the pipeline is returned together with
// ErrSurfaceMinimized; call Recreate once the surface has a size.
func NewPipeline(dev Device, surface Surface, extent gpucore.Extent, cfg Config) (*Pipeline, error) {
	if dev == nil || surface == nil {
		return nil, errors.New("present: nil device or surface")
	}
	cfg.setDefaults()

	p := &Pipeline{
		dev:     dev,
		surface: surface,
		cfg:     cfg,
		log:     cfg.Logger,
		extent:  extent,
		image:   noImage,
	}
	if err := p.build(); err != nil {
		if errors.Is(err, ErrSurfaceMinimized) {
			return p, err
		}
		p.teardown()
		return nil, err
	}
	return p, nil
}

// build creates slots and ring for p.extent. Slots survive a minimized
// surface so that Recreate has a consistent starting point.
func (p *Pipeline) build() error {
	slots, err := newFrameSlots(p.dev, p.cfg.FramesInFlight)
	if err != nil {
		return err
	}
	p.slots = slots
	p.current = 0
	p.state = StateIdle

	ring, err := buildRing(p.dev, p.surface, p.extent, p.cfg.FramesInFlight, p.cfg.DepthFormat)
	if err != nil {
		if errors.Is(err, ErrSurfaceMinimized) {
			p.log.Info("present: surface minimized", "extent", p.extent.String())
		}
		return err
	}
	p.ring = ring
	p.log.Debug("present: ring built",
		"extent", ring.extent.String(),
		"images", ring.ImageCount(),
		"frames_in_flight", len(p.slots))
	return nil
}

func (p *Pipeline) teardown() {
	if p.ring != nil {
		p.ring.destroy()
		p.ring = nil
	}
	destroySlots(p.slots)
	p.slots = nil
	p.image = noImage
	p.frame = nil
}

// AcquireNextImage waits until the current slot's previous submission has
// retired, then acquires the next ring image.
//
// On ErrSurfaceOutOfDate the slot is not consumed: the pipeline stays idle
// on the same slot and the caller should Recreate and retry.
func (p *Pipeline) AcquireNextImage() (uint32, error) {
	if p.state != StateIdle {
		return 0, fmt.Errorf("%w: acquire while %s", ErrFrameState, p.state)
	}
	if p.ring == nil {
		return 0, ErrSurfaceMinimized
	}
	p.state = StateAcquiring

	slot := p.slots[p.current]
	if err := p.waitSlot(p.current); err != nil {
		p.state = StateIdle
		return 0, err
	}

	index, err := p.surface.Acquire(slot.ImageAvailable, p.cfg.timeout())
	if err != nil {
		p.state = StateIdle
		if errors.Is(err, ErrSurfaceOutOfDate) {
			p.log.Debug("present: acquire out of date", "slot", p.current)
			return 0, err
		}
		return 0, fmt.Errorf("present: acquire image: %w", err)
	}
	if int(index) >= p.ring.ImageCount() {
		p.state = StateIdle
		return 0, fmt.Errorf("present: surface returned image %d of %d", index, p.ring.ImageCount())
	}

	// The image may still be in use by a different slot's submission when
	// the surface hands images out of order.
	if owner := p.ring.owner[index]; owner != noImage && owner != p.current {
		if err := p.waitSlot(owner); err != nil {
			p.state = StateIdle
			return 0, err
		}
	}
	p.ring.owner[index] = p.current
	slot.Image = int(index)
	p.image = int(index)
	return index, nil
}

// waitSlot blocks on slot i's in-flight fence and advances the completed
// serial.
func (p *Pipeline) waitSlot(i int) error {
	slot := p.slots[i]
	ok, err := slot.InFlight.Wait(p.cfg.timeout())
	if err != nil {
		return fmt.Errorf("present: wait frame slot %d: %w", i, err)
	}
	if !ok {
		p.log.Error("present: fence wait timed out", "slot", i, "timeout", p.cfg.FenceTimeout)
		return fmt.Errorf("%w: frame slot %d fence not signaled after %v", gpucore.ErrDeviceLost, i, p.cfg.FenceTimeout)
	}
	if slot.serial > p.completed {
		p.completed = slot.serial
	}
	return nil
}

// BeginFrame acquires an image (unless AcquireNextImage already did) and
// resets and begins the image's command buffer.
func (p *Pipeline) BeginFrame() (*Frame, error) {
	switch p.state {
	case StateIdle:
		if _, err := p.AcquireNextImage(); err != nil {
			return nil, err
		}
	case StateAcquiring:
	default:
		return nil, fmt.Errorf("%w: begin frame while %s", ErrFrameState, p.state)
	}

	cb := p.ring.commands[p.image]
	if err := cb.Reset(); err != nil {
		p.state = StateIdle
		return nil, fmt.Errorf("present: reset command buffer %d: %w", p.image, err)
	}
	if err := cb.Begin(); err != nil {
		p.state = StateIdle
		return nil, fmt.Errorf("present: begin command buffer %d: %w", p.image, err)
	}

	p.frame = &Frame{
		Slot:       p.current,
		ImageIndex: uint32(p.image),
		Serial:     p.submitted + 1,
		Commands:   cb,
		Color:      p.ring.images[p.image],
		Depth:      p.ring.depth[p.image],
		Extent:     p.ring.extent,
	}
	p.state = StateRecording
	return p.frame, nil
}

// EndFrame ends recording, submits the frame and presents it. The slot
// fence is reset immediately before the submit that signals it again.
//
// The slot advances even when Present reports ErrSurfaceOutOfDate, since
// the submission was made.
func (p *Pipeline) EndFrame(f *Frame) error {
	if p.state != StateRecording || f == nil || f != p.frame {
		return fmt.Errorf("%w: end frame while %s", ErrFrameState, p.state)
	}
	slot := p.slots[p.current]

	if err := f.Commands.End(); err != nil {
		p.abandonFrame()
		return fmt.Errorf("present: end command buffer %d: %w", f.ImageIndex, err)
	}
	if err := slot.InFlight.Reset(); err != nil {
		p.abandonFrame()
		return fmt.Errorf("present: reset frame slot %d fence: %w", p.current, err)
	}
	err := p.dev.Submit(Submission{
		Commands: f.Commands,
		Wait:     slot.ImageAvailable,
		Signal:   slot.RenderFinished,
		Fence:    slot.InFlight,
	})
	if err != nil {
		p.abandonFrame()
		return fmt.Errorf("present: submit frame %d: %w", f.Serial, err)
	}
	p.submitted++
	slot.serial = p.submitted
	p.state = StateSubmitted

	err = p.surface.Present(f.ImageIndex, slot.RenderFinished)

	p.current = (p.current + 1) % len(p.slots)
	p.state = StateIdle
	p.image = noImage
	p.frame = nil

	if err != nil {
		if errors.Is(err, ErrSurfaceOutOfDate) {
			p.log.Debug("present: present out of date", "serial", slot.serial)
			return err
		}
		return fmt.Errorf("present: present image %d: %w", f.ImageIndex, err)
	}
	return nil
}

func (p *Pipeline) abandonFrame() {
	p.state = StateIdle
	p.image = noImage
	p.frame = nil
}

// Recreate rebuilds slots and ring for extent after waiting for the GPU to
// go idle. The pipeline restarts at slot 0. A zero extent tears the ring
// down and returns ErrSurfaceMinimized.
func (p *Pipeline) Recreate(extent gpucore.Extent) error {
	if p.state == StateRecording || p.state == StateSubmitted {
		return fmt.Errorf("%w: recreate while %s", ErrFrameState, p.state)
	}
	if err := p.dev.WaitIdle(); err != nil {
		return fmt.Errorf("present: wait idle before recreate: %w", err)
	}
	p.completed = p.submitted

	old := 0
	if p.ring != nil {
		old = p.ring.ImageCount()
	}
	p.teardown()
	p.extent = extent

	if err := p.build(); err != nil {
		if !errors.Is(err, ErrSurfaceMinimized) {
			p.teardown()
		}
		return err
	}
	p.log.Info("present: recreated",
		"extent", p.ring.extent.String(),
		"images", p.ring.ImageCount(),
		"previous_images", old)
	return nil
}

// Close waits for the GPU to go idle and releases slots and ring.
func (p *Pipeline) Close() error {
	err := p.dev.WaitIdle()
	if err == nil {
		p.completed = p.submitted
	}
	p.teardown()
	p.state = StateIdle
	if err != nil {
		return fmt.Errorf("present: wait idle on close: %w", err)
	}
	return nil
}

// State returns the current frame-cycle state.
func (p *Pipeline) State() State { return p.state }

// Ring returns the current image ring, nil while minimized.
func (p *Pipeline) Ring() *Ring { return p.ring }

// FramesInFlight returns the number of frame slots.
func (p *Pipeline) FramesInFlight() int { return p.cfg.FramesInFlight }

// CurrentSlot returns the index of the slot the next frame will use.
func (p *Pipeline) CurrentSlot() int { return p.current }

// Slot returns frame slot i, nil when out of range or torn down.
func (p *Pipeline) Slot(i int) *FrameSlot {
	if i < 0 || i >= len(p.slots) {
		return nil
	}
	return p.slots[i]
}

// Extent returns the extent last requested through NewPipeline or
// Recreate.
func (p *Pipeline) Extent() gpucore.Extent { return p.extent }

// SubmittedSerial returns the serial of the last submitted frame.
func (p *Pipeline) SubmittedSerial() uint64 { return p.submitted }

// CompletedSerial returns the highest serial known to have retired on the
// GPU. Every submission with a serial at or below it is complete.
func (p *Pipeline) CompletedSerial() uint64 { return p.completed }
