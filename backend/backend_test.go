package backend

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfxcore/binding"
	"github.com/gogpu/gfxcore/present"
)

// stubDevice satisfies Device through embedded nil interfaces; registry
// tests never call into it.
type stubDevice struct {
	binding.TableFactory
	present.Device
	name string
}

func (d *stubDevice) AdapterName() string { return d.name }

func (d *stubDevice) NewOffscreenSurface(_ gputypes.TextureFormat) (present.Surface, error) {
	return nil, nil //nolint:nilnil // unused by registry tests
}

func (d *stubDevice) Close() error { return nil }

type stubBackend struct {
	name string
	err  error
}

func (b *stubBackend) Name() string { return b.name }

func (b *stubBackend) Open(_ Options) (Device, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &stubDevice{name: b.name}, nil
}

func register(t *testing.T, name string, err error) {
	t.Helper()
	Register(name, func() Backend { return &stubBackend{name: name, err: err} })
	t.Cleanup(func() { Unregister(name) })
}

func TestRegistry_RegisterGetUnregister(t *testing.T) {
	if IsRegistered("stub") {
		t.Fatal("stub registered before test")
	}
	register(t, "stub", nil)

	if !IsRegistered("stub") {
		t.Fatal("IsRegistered(stub) = false after Register")
	}
	b := Get("stub")
	if b == nil || b.Name() != "stub" {
		t.Fatalf("Get(stub) = %v", b)
	}

	Unregister("stub")
	if Get("stub") != nil {
		t.Error("Get after Unregister returned a backend")
	}
}

func TestRegistry_AvailableSorted(t *testing.T) {
	register(t, "zeta", nil)
	register(t, "alpha", nil)
	register(t, BackendNoop, nil)

	want := []string{"alpha", BackendNoop, "zeta"}
	if got := Available(); !slices.Equal(got, want) {
		t.Errorf("Available() = %v, want %v", got, want)
	}
}

func TestRegistry_DefaultPriority(t *testing.T) {
	if Default() != nil {
		t.Fatal("Default() with empty registry should be nil")
	}

	register(t, "alpha", nil)
	if got := Default().Name(); got != "alpha" {
		t.Errorf("Default() = %q, want alpha", got)
	}

	register(t, BackendNoop, nil)
	if got := Default().Name(); got != BackendNoop {
		t.Errorf("Default() = %q, want %q", got, BackendNoop)
	}

	register(t, BackendVulkan, nil)
	if got := Default().Name(); got != BackendVulkan {
		t.Errorf("Default() = %q, want %q", got, BackendVulkan)
	}
}

func TestRegistry_OpenFallsThrough(t *testing.T) {
	gpuErr := errors.New("no adapter")
	register(t, BackendVulkan, gpuErr)
	register(t, BackendNoop, nil)

	dev, err := Open("", Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if dev.AdapterName() != BackendNoop {
		t.Errorf("opened %q, want %q", dev.AdapterName(), BackendNoop)
	}

	if _, err := Open(BackendVulkan, Options{}); !errors.Is(err, gpuErr) {
		t.Errorf("Open(vulkan) error = %v, want %v", err, gpuErr)
	}
}

func TestRegistry_OpenNotAvailable(t *testing.T) {
	if _, err := Open("missing", Options{}); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Open(missing) error = %v, want ErrBackendNotAvailable", err)
	}
	if _, err := Open("", Options{}); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Open(\"\") on empty registry = %v, want ErrBackendNotAvailable", err)
	}

	gpuErr := errors.New("no adapter")
	register(t, BackendVulkan, gpuErr)
	_, err := Open("", Options{})
	if !errors.Is(err, ErrBackendNotAvailable) || !errors.Is(err, gpuErr) {
		t.Errorf("Open(\"\") with failing backend = %v, want both causes", err)
	}
}
