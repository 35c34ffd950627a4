package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfxcore"
	"github.com/gogpu/gfxcore/binding"
	"github.com/gogpu/gfxcore/gpucore"

	"github.com/gogpu/gfxcore/backend/wgpu"
)

// churnEvery is how often, in frames, the demo frees and reallocates one
// slot per channel.
const churnEvery = 8

// resource is one allocation owned by the demo.
type resource struct {
	handle  binding.Handle
	buffer  hal.Buffer
	texture *wgpu.Texture
	sampler hal.Sampler
}

// retiredResource is a freed resource and the serial of the last frame
// that may read it.
type retiredResource struct {
	resource
	serial uint64
}

// demo drives an engine over an offscreen surface.
type demo struct {
	cfg     gfxcore.Config
	dev     *wgpu.Device
	surface *wgpu.OffscreenSurface
	engine  *gfxcore.Engine
	log     *slog.Logger

	live map[uint32][]resource

	// retired holds freed resources until the frames that may read them
	// have completed.
	retired []retiredResource

	frame   int
	resized bool
	shader  hal.ShaderModule
}

func newDemo(dev *wgpu.Device, cfg gfxcore.Config, log *slog.Logger) (*demo, error) {
	channels, err := cfg.ChannelConfigs()
	if err != nil {
		return nil, err
	}
	surface := wgpu.NewOffscreenSurface(dev, gputypes.TextureFormatRGBA8Unorm, 0)

	opts := append(cfg.Options(), gfxcore.WithLogger(log))
	engine, err := gfxcore.NewEngine(dev, surface, cfg.Extent(), channels, opts...)
	if err != nil {
		surface.Destroy()
		return nil, err
	}

	d := &demo{
		cfg:     cfg,
		dev:     dev,
		surface: surface,
		engine:  engine,
		log:     log,
		live:    make(map[uint32][]resource),
	}
	if err := d.compileShader(); err != nil {
		d.Close()
		return nil, err
	}
	if err := d.populate(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// compileShader builds a fragment shader declaring every channel, which
// checks the generated bindings against the WGSL front end.
func (d *demo) compileShader() error {
	var b strings.Builder
	for _, ch := range d.engine.Device().Channels() {
		b.WriteString(wgpu.ChannelWGSL(ch.ID(), ch, fmt.Sprintf("ch%d", ch.ID()), "vec4<f32>"))
	}
	b.WriteString("\n@fragment\nfn fs_main() -> @location(0) vec4<f32> {\n    return vec4<f32>(0.0, 0.0, 0.0, 1.0);\n}\n")

	module, err := d.dev.CreateShaderModule("gfxdemo-channels", b.String())
	if err != nil {
		return err
	}
	d.shader = module
	return nil
}

// populate fills half of every channel.
func (d *demo) populate() error {
	for _, ch := range d.engine.Device().Channels() {
		for i := uint32(0); i < (ch.Capacity()+1)/2; i++ {
			if err := d.allocate(ch); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *demo) allocate(ch *binding.Channel) error {
	label := fmt.Sprintf("%s-%d", ch.Label(), ch.HighWaterMark())
	var (
		r        resource
		contents binding.Contents
	)
	switch ch.Type().Kind() {
	case binding.KindBuffer:
		buf, err := d.dev.CreateBuffer(label, ch.Type(), 256)
		if err != nil {
			return err
		}
		r.buffer = buf
		contents = binding.BufferContents{Buffer: buf, Size: 256}
	case binding.KindImage:
		tex, err := d.dev.CreateSampledTexture(label, gpucore.Extent{Width: 16, Height: 16}, gputypes.TextureFormatRGBA8Unorm)
		if err != nil {
			return err
		}
		sampler, err := d.dev.CreateSampler(label + "-sampler")
		if err != nil {
			tex.Destroy()
			return err
		}
		r.texture, r.sampler = tex, sampler
		contents = binding.ImageContents{View: tex, Sampler: sampler}
	}

	h, err := d.engine.Allocate(ch.Type(), contents)
	if err != nil {
		d.release(r)
		return err
	}
	r.handle = h
	d.live[ch.ID()] = append(d.live[ch.ID()], r)
	return nil
}

// churn frees the oldest resource of every channel and allocates a new
// one. The freed resource is kept alive until frame serial completes.
// Exhaustion is expected while freed slots wait for retirement.
func (d *demo) churn(serial uint64) error {
	for _, ch := range d.engine.Device().Channels() {
		live := d.live[ch.ID()]
		if len(live) == 0 {
			continue
		}
		d.engine.Free(live[0].handle)
		d.retired = append(d.retired, retiredResource{resource: live[0], serial: serial})
		d.live[ch.ID()] = live[1:]

		if err := d.allocate(ch); err != nil {
			if errors.Is(err, gfxcore.ErrResourceExhausted) {
				d.log.Debug("gfxdemo: channel full", "channel", ch.Label())
				continue
			}
			return err
		}
	}
	return nil
}

// step renders one frame. Halfway through the run the surface is resized
// once, which makes the engine recreate its ring.
func (d *demo) step() error {
	if !d.resized && d.frame == d.cfg.Frames/2 {
		d.resized = true
		ext := d.engine.Pipeline().Extent()
		d.surface.Resize(gpucore.Extent{Width: ext.Width / 2, Height: ext.Height / 2})
	}

	f, err := d.engine.BeginFrame()
	if err != nil {
		return err
	}
	d.reap()

	t := float64(d.frame%60) / 60
	pass, err := wgpu.BeginRenderPass(f, gputypes.Color{R: 0.1, G: 0.2 + 0.4*t, B: 0.4, A: 1})
	if err != nil {
		return err
	}
	for _, ch := range d.engine.Device().Channels() {
		if err := wgpu.BindTable(pass, ch.ID(), ch); err != nil {
			pass.End()
			return err
		}
	}
	pass.End()

	if d.frame > 0 && d.frame%churnEvery == 0 {
		if err := d.churn(f.Serial); err != nil {
			return err
		}
	}

	if err := d.engine.EndFrame(f); err != nil {
		return err
	}
	d.frame++
	return nil
}

// reap destroys retired resources whose frames have completed.
func (d *demo) reap() {
	completed := d.engine.Pipeline().CompletedSerial()
	kept := d.retired[:0]
	for _, r := range d.retired {
		if r.serial <= completed {
			d.release(r.resource)
			continue
		}
		kept = append(kept, r)
	}
	clear(d.retired[len(kept):])
	d.retired = kept
}

func (d *demo) done() bool { return d.frame >= d.cfg.Frames }

func (d *demo) release(r resource) {
	d.dev.DestroyBuffer(r.buffer)
	if r.texture != nil {
		r.texture.Destroy()
	}
	d.dev.DestroySampler(r.sampler)
}

// Close shuts the engine down and releases every demo resource.
func (d *demo) Close() error {
	err := d.engine.Close()
	for _, rs := range d.live {
		for _, r := range rs {
			d.release(r)
		}
	}
	for _, r := range d.retired {
		d.release(r.resource)
	}
	d.live = nil
	d.retired = nil
	if d.shader != nil {
		d.dev.DestroyShaderModule(d.shader)
		d.shader = nil
	}
	d.surface.Destroy()
	return err
}
