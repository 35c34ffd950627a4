// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/gfxcore/backend"
	"github.com/gogpu/gfxcore/binding"
	"github.com/gogpu/gfxcore/gpucore"
	"github.com/gogpu/gfxcore/present"
)

// fencePollInterval is the sleep between PollCompleted checks while a
// fence or WaitIdle waits on the queue.
const fencePollInterval = 50 * time.Microsecond

func init() {
	backend.Register(backend.BackendVulkan, func() backend.Backend { return halBackend{name: backend.BackendVulkan} })
	backend.Register(backend.BackendNoop, func() backend.Backend { return halBackend{name: backend.BackendNoop} })
}

// halBackend opens hal devices for the registry.
type halBackend struct {
	name string
}

func (b halBackend) Name() string { return b.name }

func (b halBackend) Open(opts backend.Options) (backend.Device, error) {
	var (
		dev *Device
		err error
	)
	if b.name == backend.BackendNoop {
		dev, err = OpenNoop(opts)
	} else {
		dev, err = OpenVulkan(opts)
	}
	if err != nil {
		return nil, err
	}
	return dev, nil
}

// GPUInfo describes the adapter a device runs on.
type GPUInfo struct {
	// Name is the adapter name (e.g., "NVIDIA GeForce RTX 3080").
	Name string
	// DeviceType is the type of GPU (discrete, integrated, etc.).
	DeviceType gputypes.DeviceType
	// Backend is the registry name of the backend that opened it.
	Backend string
}

// String returns a human-readable description of the GPU.
func (g GPUInfo) String() string {
	return fmt.Sprintf("%s (%v, %s)", g.Name, g.DeviceType, g.Backend)
}

// Device is a hal device implementing backend.Device.
type Device struct {
	raw      hal.Device
	queue    hal.Queue
	instance hal.Instance
	external bool
	info     GPUInfo
	label    string
	log      *slog.Logger

	// fenceTimeout bounds WaitIdle. Zero waits without limit.
	fenceTimeout time.Duration

	mu     sync.Mutex
	fences map[*Fence]struct{}
	closed bool

	// polled is the highest queue index PollCompleted has reported.
	// lastSubmit is the queue index of this device's latest submit, and
	// inflight holds the indices of its submits not yet seen complete,
	// oldest first.
	polled     uint64
	lastSubmit uint64
	inflight   []uint64

	// submits counts this device's submissions; completed counts those
	// known to have retired. A shared queue may interleave foreign
	// submissions, so these are kept apart from queue indices.
	submits   uint64
	completed uint64
}

var _ backend.Device = (*Device)(nil)

// OpenVulkan opens a device on the hal Vulkan backend.
func OpenVulkan(opts backend.Options) (*Device, error) {
	vk, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan", ErrHALUnavailable)
	}
	return open(backend.BackendVulkan, func() (hal.Instance, error) {
		return vk.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	}, opts)
}

// OpenNoop opens a hal no-op device.
func OpenNoop(opts backend.Options) (*Device, error) {
	return open(backend.BackendNoop, func() (hal.Instance, error) {
		api := noop.API{}
		return api.CreateInstance(nil)
	}, opts)
}

func open(name string, createInstance func() (hal.Instance, error), opts backend.Options) (*Device, error) {
	instance, err := createInstance()
	if err != nil {
		return nil, fmt.Errorf("wgpu: create %s instance: %w", name, err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w (%s)", ErrNoAdapter, name)
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open %s device: %w", name, err)
	}

	d := newDevice(openDev.Device, openDev.Queue, opts)
	d.instance = instance
	d.info = GPUInfo{Name: selected.Info.Name, DeviceType: selected.Info.DeviceType, Backend: name}
	d.log.Info("wgpu: device opened", "gpu", d.info.String())
	return d, nil
}

// FromProvider wraps the hal device of a host such as a gogpu window. The
// provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue. Close does not destroy a shared device.
func FromProvider(provider gpucontext.DeviceProvider, opts backend.Options) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := any(provider).(halProvider)
	if !ok {
		return nil, ErrNotHALProvider
	}
	raw, ok := hp.HalDevice().(hal.Device)
	if !ok || raw == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNotHALProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNotHALProvider)
	}
	d := newDevice(raw, queue, opts)
	d.external = true
	d.info = GPUInfo{Name: "shared", Backend: "provider"}
	return d, nil
}

func newDevice(raw hal.Device, queue hal.Queue, opts backend.Options) *Device {
	label := opts.Label
	if label == "" {
		label = "gfxcore"
	}
	return &Device{
		raw:          raw,
		queue:        queue,
		label:        label,
		log:          loggerOrNop(opts.Logger),
		fenceTimeout: opts.FenceTimeout,
		fences:       make(map[*Fence]struct{}),
	}
}

// HalDevice returns the underlying hal.Device, so a Device can itself act
// as a provider for other gogpu components.
func (d *Device) HalDevice() any { return d.raw }

// HalQueue returns the underlying hal.Queue.
func (d *Device) HalQueue() any { return d.queue }

// Info returns the adapter description.
func (d *Device) Info() GPUInfo { return d.info }

// AdapterName returns the adapter name.
func (d *Device) AdapterName() string { return d.info.Name }

// NewTable creates the bind group backing channel id.
func (d *Device) NewTable(id uint32, cfg binding.ChannelConfig) (binding.Table, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	t, err := newTable(d, id, cfg)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CreateFence creates a fence. A signaled fence reports true from Wait
// until it is reset.
func (d *Device) CreateFence(signaled bool) (present.Fence, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, backend.ErrDeviceClosed
	}
	f := &Fence{dev: d, signaled: signaled}
	d.fences[f] = struct{}{}
	return f, nil
}

// CreateSemaphore creates an ordering marker.
func (d *Device) CreateSemaphore() (present.Semaphore, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	return &Semaphore{}, nil
}

// CreateCommandBuffer creates a command buffer. Encoders are created on
// Begin.
func (d *Device) CreateCommandBuffer(label string) (present.CommandBuffer, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	return &CommandBuffer{dev: d, label: d.label + "-" + label}, nil
}

// CreateDepthTarget creates a depth attachment.
func (d *Device) CreateDepthTarget(extent gpucore.Extent, format gputypes.TextureFormat) (gpucore.Attachment, error) {
	t, err := d.createTexture(d.label+"-depth", extent, format, gputypes.TextureUsageRenderAttachment)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Submit submits a recorded command buffer. The queue index the submit
// receives is recorded on the fence, which signals once PollCompleted
// reaches it.
func (d *Device) Submit(s present.Submission) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	cb, ok := s.Commands.(*CommandBuffer)
	if !ok || cb == nil {
		return fmt.Errorf("%w: command buffer %T", ErrForeignObject, s.Commands)
	}
	if cb.recorded == nil {
		return fmt.Errorf("%w: %s", ErrNotRecorded, cb.label)
	}

	var fence *Fence
	if s.Fence != nil {
		if fence, ok = s.Fence.(*Fence); !ok || fence.dev != d {
			return fmt.Errorf("%w: fence %T", ErrForeignObject, s.Fence)
		}
	}

	index, err := d.queue.Submit([]hal.CommandBuffer{cb.recorded})
	if err != nil {
		return fmt.Errorf("wgpu: submit %s: %w", cb.label, err)
	}

	d.mu.Lock()
	d.submits++
	d.lastSubmit = index
	d.inflight = append(d.inflight, index)
	if fence != nil {
		fence.submitIndex = index
		fence.signaled, fence.pending = false, true
	}
	d.mu.Unlock()

	if w, ok := s.Wait.(*Semaphore); ok && w != nil {
		w.consume()
	}
	if sig, ok := s.Signal.(*Semaphore); ok && sig != nil {
		sig.Signal()
	}
	return nil
}

// checkOpen returns backend.ErrDeviceClosed once Close has been called.
func (d *Device) checkOpen() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return backend.ErrDeviceClosed
	}
	return nil
}

// polledLocked refreshes the completed queue index and retires the
// in-flight submits at or below it. d.mu must be held.
func (d *Device) polledLocked() uint64 {
	if done := d.queue.PollCompleted(); done > d.polled {
		d.polled = done
	}
	n := 0
	for n < len(d.inflight) && d.inflight[n] <= d.polled {
		n++
	}
	if n > 0 {
		d.completed += uint64(n)
		d.inflight = append(d.inflight[:0], d.inflight[n:]...)
	}
	return d.polled
}

// waitSubmission polls the queue until submission index has completed or
// timeout elapses. A timeout of zero or less checks once.
func (d *Device) waitSubmission(index uint64, timeout time.Duration) bool {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		d.mu.Lock()
		done := d.polledLocked() >= index
		d.mu.Unlock()
		if done {
			return true
		}
		if timeout <= 0 || time.Now().After(deadline) {
			return false
		}
		time.Sleep(fencePollInterval)
	}
}

// submitCounts returns how many submits this device has made and how many
// of them have completed.
func (d *Device) submitCounts() (submitted, completed uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.polledLocked()
	return d.submits, d.completed
}

// WaitIdle waits for the last submission to complete, bounded by
// Options.FenceTimeout, then idles the hal device. Every pending fence is
// signaled afterwards.
func (d *Device) WaitIdle() error {
	d.mu.Lock()
	last := d.lastSubmit
	d.mu.Unlock()

	timeout := d.fenceTimeout
	if timeout <= 0 {
		timeout = time.Duration(math.MaxInt64)
	}
	if last > 0 && !d.waitSubmission(last, timeout) {
		return fmt.Errorf("%w: wait idle timed out after %v", gpucore.ErrDeviceLost, d.fenceTimeout)
	}
	if err := d.raw.WaitIdle(); err != nil {
		return fmt.Errorf("wgpu: wait idle: %w", err)
	}

	d.mu.Lock()
	for f := range d.fences {
		if f.pending {
			f.signaled, f.pending = true, false
		}
	}
	d.completed += uint64(len(d.inflight))
	d.inflight = d.inflight[:0]
	d.mu.Unlock()
	return nil
}

// NewOffscreenSurface creates a headless surface of three images.
func (d *Device) NewOffscreenSurface(format gputypes.TextureFormat) (present.Surface, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	return NewOffscreenSurface(d, format, defaultOffscreenImages), nil
}

// Close waits for outstanding work and releases the device. A device
// obtained from FromProvider is left to its owner.
func (d *Device) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	err := d.WaitIdle()
	if err != nil {
		d.log.Warn("wgpu: close with pending work", "err", err)
	}

	d.mu.Lock()
	clear(d.fences)
	d.mu.Unlock()

	if !d.external {
		d.raw.Destroy()
		if d.instance != nil {
			d.instance.Destroy()
			d.instance = nil
		}
	}
	d.log.Debug("wgpu: device closed", "gpu", d.info.String())
	return err
}
