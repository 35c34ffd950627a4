package gfxcore

import (
	"log/slog"
	"time"

	"github.com/gogpu/gputypes"
)

// Option configures an Engine during creation.
//
// Example:
//
//	eng, err := gfxcore.NewEngine(dev, surface, extent, channels,
//		gfxcore.WithFramesInFlight(3),
//		gfxcore.WithFenceTimeout(2*time.Second))
type Option func(*engineOptions)

// engineOptions holds optional configuration for Engine creation.
type engineOptions struct {
	logger         *slog.Logger
	framesInFlight int
	fenceTimeout   time.Duration
	depthFormat    gputypes.TextureFormat
	deferredFree   bool
}

// defaultOptions returns the default engine options.
func defaultOptions() engineOptions {
	return engineOptions{
		logger:         nil, // package logger at NewEngine time
		framesInFlight: 0,   // present.DefaultFramesInFlight
		deferredFree:   true,
	}
}

// WithLogger sets the engine logger. Without it the engine uses the
// package logger current at creation.
func WithLogger(l *slog.Logger) Option {
	return func(o *engineOptions) {
		o.logger = l
	}
}

// WithFramesInFlight sets the number of frames the CPU may record ahead of
// the GPU. Values below 1 select the default of 2.
func WithFramesInFlight(n int) Option {
	return func(o *engineOptions) {
		o.framesInFlight = n
	}
}

// WithFenceTimeout bounds every fence wait. A wait that times out fails
// with ErrDeviceLost. Zero waits without limit.
func WithFenceTimeout(d time.Duration) Option {
	return func(o *engineOptions) {
		o.fenceTimeout = d
	}
}

// WithDepthFormat sets the per-image depth target format.
// Default: gputypes.TextureFormatDepth32Float.
func WithDepthFormat(f gputypes.TextureFormat) Option {
	return func(o *engineOptions) {
		o.depthFormat = f
	}
}

// WithDeferredFree controls Engine.Free. When enabled (the default), a
// freed slot returns to its channel's free list only after every frame
// submitted before the free has retired on the GPU. When disabled, Free
// releases the slot at once and the caller guarantees the GPU is done
// with it.
func WithDeferredFree(enabled bool) Option {
	return func(o *engineOptions) {
		o.deferredFree = enabled
	}
}
