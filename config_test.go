package gfxcore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogpu/gfxcore/binding"
	"github.com/gogpu/gfxcore/gpucore"
)

const sampleConfig = `
backend = "noop"
width = 1280
height = 720
frames_in_flight = 3
fence_timeout = "1500ms"
frames = 10

[[channel]]
type = "uniform-buffer"
capacity = 8
label = "camera"

[[channel]]
type = "sampled-image"
capacity = 32
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.Backend != "noop" {
		t.Errorf("Backend = %q, want noop", cfg.Backend)
	}
	if got := cfg.Extent(); got != (gpucore.Extent{Width: 1280, Height: 720}) {
		t.Errorf("Extent() = %v, want 1280x720", got)
	}
	if cfg.FramesInFlight != 3 {
		t.Errorf("FramesInFlight = %d, want 3", cfg.FramesInFlight)
	}
	if got := time.Duration(cfg.FenceTimeout); got != 1500*time.Millisecond {
		t.Errorf("FenceTimeout = %v, want 1.5s", got)
	}
	if cfg.Frames != 10 {
		t.Errorf("Frames = %d, want 10", cfg.Frames)
	}

	channels, err := cfg.ChannelConfigs()
	if err != nil {
		t.Fatalf("ChannelConfigs() error = %v", err)
	}
	want := []binding.ChannelConfig{
		{Type: binding.ResourceUniformBuffer, Capacity: 8, Label: "camera"},
		{Type: binding.ResourceSampledImage, Capacity: 32},
	}
	if len(channels) != len(want) {
		t.Fatalf("ChannelConfigs() len = %d, want %d", len(channels), len(want))
	}
	for i := range want {
		if channels[i] != want[i] {
			t.Errorf("channel %d = %+v, want %+v", i, channels[i], want[i])
		}
	}
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no channels", `width = 10`},
		{"unknown key", "colour = 1\n[[channel]]\ntype = \"uniform-buffer\"\ncapacity = 1\n"},
		{"unknown type", "[[channel]]\ntype = \"vertex-buffer\"\ncapacity = 1\n"},
		{"zero capacity", "[[channel]]\ntype = \"uniform-buffer\"\ncapacity = 0\n"},
		{"negative frames in flight", "frames_in_flight = -1\n[[channel]]\ntype = \"uniform-buffer\"\ncapacity = 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.doc))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("ParseConfig() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestParseConfig_BadDuration(t *testing.T) {
	doc := "fence_timeout = \"soon\"\n[[channel]]\ntype = \"uniform-buffer\"\ncapacity = 1\n"
	if _, err := ParseConfig([]byte(doc)); err == nil {
		t.Error("ParseConfig() with bad duration should fail")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gfxcore.toml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if len(cfg.Channels) != 2 {
		t.Errorf("channels = %d, want 2", len(cfg.Channels))
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("LoadConfig(missing) should fail")
	}
}

func TestConfigEncodeParses(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FenceTimeout = Duration(2 * time.Second)

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := ParseConfig(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseConfig(encoded) error = %v\n%s", err, buf.String())
	}
	if got.FenceTimeout != cfg.FenceTimeout {
		t.Errorf("FenceTimeout = %v, want %v", time.Duration(got.FenceTimeout), time.Duration(cfg.FenceTimeout))
	}
	if len(got.Channels) != len(cfg.Channels) {
		t.Errorf("channels = %d, want %d", len(got.Channels), len(cfg.Channels))
	}
}

func TestConfigOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ImmediateFree = true
	cfg.FenceTimeout = Duration(time.Second)

	o := defaultOptions()
	for _, opt := range cfg.Options() {
		opt(&o)
	}
	if o.deferredFree {
		t.Error("immediate_free should disable deferred free")
	}
	if o.fenceTimeout != time.Second {
		t.Errorf("fenceTimeout = %v, want 1s", o.fenceTimeout)
	}
	if o.framesInFlight != 2 {
		t.Errorf("framesInFlight = %d, want 2", o.framesInFlight)
	}
}

func TestConfigBackendOptions(t *testing.T) {
	tests := []struct {
		name    string
		timeout Duration
		want    time.Duration
	}{
		{"unbounded", 0, 0},
		{"bounded", Duration(250 * time.Millisecond), 250 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.FenceTimeout = tt.timeout
			opts := cfg.BackendOptions("demo", nil)
			if opts.FenceTimeout != tt.want {
				t.Errorf("FenceTimeout = %v, want %v", opts.FenceTimeout, tt.want)
			}
			if opts.Label != "demo" {
				t.Errorf("Label = %q, want demo", opts.Label)
			}
		})
	}
}
