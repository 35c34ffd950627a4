// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfxcore

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gfxcore/backend"
	"github.com/gogpu/gfxcore/binding"
	"github.com/gogpu/gfxcore/gpucore"
	"github.com/gogpu/gfxcore/present"
)

// Engine owns the binding channels and the frame pipeline of one device
// and surface. Create with NewEngine.
//
// Engine is not safe for concurrent use. All calls must come from the
// thread that drives the frame loop.
type Engine struct {
	dev      backend.Device
	bindings *binding.Device
	pipeline *present.Pipeline
	opts     engineOptions
	log      *slog.Logger

	frames uint64
}

// Stats is a point-in-time view of an engine.
type Stats struct {
	// Channels holds one entry per channel in lookup order.
	Channels []binding.ChannelStats

	// FramesPresented counts frames that reached EndFrame successfully.
	FramesPresented uint64

	// SubmittedSerial and CompletedSerial are the pipeline serials.
	SubmittedSerial uint64
	CompletedSerial uint64

	// Slot is the frame slot the next frame will use.
	Slot int

	// Extent is the ring extent, or the requested extent while the
	// surface is minimized.
	Extent gpucore.Extent
	State  present.State
}

// NewEngine creates the channels on dev and a frame pipeline over surface.
//
// A minimized surface is not an error: the engine is returned without a
// ring and BeginFrame reports ErrSurfaceMinimized until Recreate is called
// with a non-zero extent.
func NewEngine(dev backend.Device, surface present.Surface, extent gpucore.Extent, channels []binding.ChannelConfig, opts ...Option) (*Engine, error) {
	if dev == nil {
		return nil, errors.New("gfxcore: nil device")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = Logger()
	}

	bindings, err := binding.NewDevice(binding.DeviceConfig{
		Channels: channels,
		Tables:   dev,
		Logger:   log,
	})
	if err != nil {
		return nil, fmt.Errorf("gfxcore: create bindings: %w", err)
	}

	pipeline, err := present.NewPipeline(dev, surface, extent, present.Config{
		FramesInFlight: o.framesInFlight,
		FenceTimeout:   o.fenceTimeout,
		DepthFormat:    o.depthFormat,
		Logger:         log,
	})
	if err != nil && !errors.Is(err, present.ErrSurfaceMinimized) {
		bindings.Destroy()
		return nil, fmt.Errorf("gfxcore: create pipeline: %w", err)
	}

	e := &Engine{
		dev:      dev,
		bindings: bindings,
		pipeline: pipeline,
		opts:     o,
		log:      log,
	}
	log.Info("gfxcore: engine created",
		"adapter", dev.AdapterName(),
		"channels", len(channels),
		"frames_in_flight", pipeline.FramesInFlight(),
		"minimized", err != nil)
	return e, nil
}

// Allocate writes c into a free slot of the first channel of type t with
// room and returns its handle.
func (e *Engine) Allocate(t binding.ResourceType, c binding.Contents) (binding.Handle, error) {
	return e.bindings.Allocate(t, c)
}

// Rebind replaces the contents of a live slot.
func (e *Engine) Rebind(h binding.Handle, c binding.Contents) error {
	return e.bindings.Rebind(h, c)
}

// Free releases h. With deferred free enabled the index is reused only
// after the last frame that could reference it has completed on the GPU:
// the frame being recorded, or else the last submitted one.
func (e *Engine) Free(h binding.Handle) {
	if !e.opts.deferredFree {
		e.bindings.Free(h)
		return
	}
	serial := e.pipeline.SubmittedSerial()
	if e.pipeline.State() == present.StateRecording {
		serial++
	}
	e.bindings.Retire(h, serial)
}

// BeginFrame starts the next frame. When the surface reports it is out of
// date the pipeline is recreated at its current extent and the acquire is
// retried once.
func (e *Engine) BeginFrame() (*present.Frame, error) {
	f, err := e.pipeline.BeginFrame()
	if errors.Is(err, present.ErrSurfaceOutOfDate) {
		e.log.Warn("gfxcore: surface out of date, recreating", "extent", e.pipeline.Extent().String())
		if err := e.Recreate(e.pipeline.Extent()); err != nil {
			return nil, err
		}
		f, err = e.pipeline.BeginFrame()
	}
	if err != nil {
		return nil, err
	}
	e.bindings.Collect(e.pipeline.CompletedSerial())
	return f, nil
}

// EndFrame submits and presents f. An out-of-date surface on present is
// handled by recreating the pipeline; the frame itself was submitted.
func (e *Engine) EndFrame(f *present.Frame) error {
	err := e.pipeline.EndFrame(f)
	if errors.Is(err, present.ErrSurfaceOutOfDate) {
		e.frames++
		e.log.Warn("gfxcore: present out of date, recreating", "serial", f.Serial)
		return e.Recreate(e.pipeline.Extent())
	}
	if err != nil {
		return err
	}
	e.frames++
	return nil
}

// Recreate waits for the GPU to go idle and rebuilds the pipeline for
// extent. Slots retired by completed frames are collected.
func (e *Engine) Recreate(extent gpucore.Extent) error {
	err := e.pipeline.Recreate(extent)
	e.bindings.Collect(e.pipeline.CompletedSerial())
	return err
}

// Device returns the binding device.
func (e *Engine) Device() *binding.Device { return e.bindings }

// Pipeline returns the frame pipeline.
func (e *Engine) Pipeline() *present.Pipeline { return e.pipeline }

// Backend returns the backend device the engine was created on.
func (e *Engine) Backend() backend.Device { return e.dev }

// Stats returns a snapshot of channel occupancy and frame counters.
func (e *Engine) Stats() Stats {
	s := Stats{
		Channels:        e.bindings.Stats(),
		FramesPresented: e.frames,
		SubmittedSerial: e.pipeline.SubmittedSerial(),
		CompletedSerial: e.pipeline.CompletedSerial(),
		Slot:            e.pipeline.CurrentSlot(),
		Extent:          e.pipeline.Extent(),
		State:           e.pipeline.State(),
	}
	if ring := e.pipeline.Ring(); ring != nil {
		s.Extent = ring.Extent()
	}
	return s
}

// Close waits for the GPU to go idle, then destroys the ring, the frame
// slots and the channel tables, in that order. The backend device is left
// open.
func (e *Engine) Close() error {
	err := e.pipeline.Close()
	e.bindings.Destroy()
	if err != nil {
		return fmt.Errorf("gfxcore: close: %w", err)
	}
	e.log.Info("gfxcore: engine closed", "frames", e.frames)
	return nil
}
