// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfxcore

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/gfxcore/backend"
	"github.com/gogpu/gfxcore/binding"
	"github.com/gogpu/gfxcore/gpucore"
)

// ErrInvalidConfig is returned when a configuration file fails validation.
var ErrInvalidConfig = errors.New("gfxcore: invalid configuration")

// Duration is a time.Duration that reads and writes TOML strings such as
// "500ms" or "2s".
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// ChannelSpec is one [[channel]] table of a configuration file.
type ChannelSpec struct {
	// Type is "uniform-buffer", "storage-buffer" or "sampled-image".
	Type     string `toml:"type"`
	Capacity uint32 `toml:"capacity"`
	Label    string `toml:"label,omitempty"`
}

// Config is the file form of an engine setup.
//
// Example:
//
//	backend = "noop"
//	width = 1280
//	height = 720
//	frames_in_flight = 2
//	fence_timeout = "2s"
//
//	[[channel]]
//	type = "uniform-buffer"
//	capacity = 64
//
//	[[channel]]
//	type = "sampled-image"
//	capacity = 256
type Config struct {
	// Backend names a registered backend. Empty picks the default.
	Backend string `toml:"backend"`

	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`

	// FramesInFlight is the number of frame slots. Zero means 2.
	FramesInFlight int `toml:"frames_in_flight"`

	// FenceTimeout bounds fence waits. Zero waits without limit.
	FenceTimeout Duration `toml:"fence_timeout"`

	// ImmediateFree disables deferred slot reuse.
	ImmediateFree bool `toml:"immediate_free"`

	// Frames is the number of frames a headless run renders.
	Frames int `toml:"frames"`

	Channels []ChannelSpec `toml:"channel"`
}

// DefaultConfig returns a configuration with one channel per resource
// type.
func DefaultConfig() Config {
	return Config{
		Width:          640,
		Height:         480,
		FramesInFlight: 2,
		Frames:         120,
		Channels: []ChannelSpec{
			{Type: binding.ResourceUniformBuffer.String(), Capacity: 16},
			{Type: binding.ResourceStorageBuffer.String(), Capacity: 16},
			{Type: binding.ResourceSampledImage.String(), Capacity: 64},
		},
	}
}

// ParseConfig decodes and validates a TOML document. Unknown keys are
// rejected.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("gfxcore: parse config: %w", err)
	}
	if err := checkUndecoded(md); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads, decodes and validates a TOML file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("gfxcore: load config %s: %w", path, err)
	}
	if err := checkUndecoded(md); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func checkUndecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return fmt.Errorf("%w: unknown keys %s", ErrInvalidConfig, strings.Join(names, ", "))
}

// Validate checks the channel layout and frame settings.
func (c *Config) Validate() error {
	if len(c.Channels) == 0 {
		return fmt.Errorf("%w: no channels", ErrInvalidConfig)
	}
	for i, ch := range c.Channels {
		if _, err := binding.ParseResourceType(ch.Type); err != nil {
			return fmt.Errorf("%w: channel %d: %w", ErrInvalidConfig, i, err)
		}
		if ch.Capacity == 0 {
			return fmt.Errorf("%w: channel %d (%s) has zero capacity", ErrInvalidConfig, i, ch.Type)
		}
	}
	if c.FramesInFlight < 0 {
		return fmt.Errorf("%w: frames_in_flight %d", ErrInvalidConfig, c.FramesInFlight)
	}
	if c.FenceTimeout < 0 {
		return fmt.Errorf("%w: fence_timeout %v", ErrInvalidConfig, time.Duration(c.FenceTimeout))
	}
	if c.Frames < 0 {
		return fmt.Errorf("%w: frames %d", ErrInvalidConfig, c.Frames)
	}
	return nil
}

// ChannelConfigs converts the channel tables. Call Validate first.
func (c *Config) ChannelConfigs() ([]binding.ChannelConfig, error) {
	out := make([]binding.ChannelConfig, 0, len(c.Channels))
	for i, ch := range c.Channels {
		t, err := binding.ParseResourceType(ch.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: channel %d: %w", ErrInvalidConfig, i, err)
		}
		out = append(out, binding.ChannelConfig{Type: t, Capacity: ch.Capacity, Label: ch.Label})
	}
	return out, nil
}

// Extent returns the configured surface size.
func (c *Config) Extent() gpucore.Extent {
	return gpucore.Extent{Width: c.Width, Height: c.Height}
}

// Options returns the engine options the configuration selects.
func (c *Config) Options() []Option {
	return []Option{
		WithFramesInFlight(c.FramesInFlight),
		WithFenceTimeout(time.Duration(c.FenceTimeout)),
		WithDeferredFree(!c.ImmediateFree),
	}
}

// BackendOptions returns the device options the configuration selects.
// The fence timeout also bounds the device's idle wait on Close.
func (c *Config) BackendOptions(label string, logger *slog.Logger) backend.Options {
	return backend.Options{
		Label:        label,
		Logger:       logger,
		FenceTimeout: time.Duration(c.FenceTimeout),
	}
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("gfxcore: encode config: %w", err)
	}
	return nil
}
