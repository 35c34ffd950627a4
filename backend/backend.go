package backend

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfxcore/binding"
	"github.com/gogpu/gfxcore/present"
)

// Backend names.
const (
	// BackendVulkan opens a hal Vulkan device.
	BackendVulkan = "vulkan"

	// BackendNoop opens the hal no-op device. It accepts every call and
	// renders nothing; used for tests and headless runs.
	BackendNoop = "noop"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or no registered backend could be opened.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrDeviceClosed is returned by operations on a closed device.
	ErrDeviceClosed = errors.New("backend: device closed")
)

// Options configures Backend.Open.
type Options struct {
	// Label prefixes the labels of created GPU objects. Default: "gfxcore".
	Label string

	// Logger receives backend diagnostics. Nil discards them.
	Logger *slog.Logger

	// FenceTimeout bounds the wait for outstanding submissions in
	// WaitIdle and Close. Zero waits without limit.
	FenceTimeout time.Duration
}

// Device is an opened GPU device. It backs channel tables for the binding
// layer and fences, semaphores, command buffers and depth targets for the
// frame pipeline.
type Device interface {
	binding.TableFactory
	present.Device

	// AdapterName returns the name of the adapter the device runs on.
	AdapterName() string

	// NewOffscreenSurface creates a headless presentation target whose
	// images are plain render-attachment textures.
	NewOffscreenSurface(format gputypes.TextureFormat) (present.Surface, error)

	// Close waits for outstanding work and releases the device.
	Close() error
}

// Backend opens devices of one kind.
//
// Backends are registered via Register() and are selected via Get(),
// Default() or Open().
type Backend interface {
	// Name returns the backend identifier (e.g., "vulkan", "noop").
	Name() string

	// Open creates a device.
	Open(opts Options) (Device, error)
}
