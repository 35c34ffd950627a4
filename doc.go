// Package gfxcore is the GPU resource and presentation core of a bindless
// renderer.
//
// # Overview
//
// gfxcore does two things:
//
//   - Resource channels hand out stable small-integer slots in GPU binding
//     tables, so shaders can index resources instead of being rebound per
//     draw (package binding).
//   - The frame pipeline cycles a fixed number of frames in flight through
//     acquire, record, submit and present, and rebuilds its image ring when
//     the surface changes (package present).
//
// [Engine] ties both together over one backend device.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/gfxcore"
//		"github.com/gogpu/gfxcore/backend"
//		"github.com/gogpu/gfxcore/binding"
//		_ "github.com/gogpu/gfxcore/backend/wgpu"
//	)
//
//	dev, _ := backend.Open("", backend.Options{})
//	surface, _ := dev.NewOffscreenSurface(gputypes.TextureFormatRGBA8Unorm)
//	eng, err := gfxcore.NewEngine(dev, surface, gpucore.Extent{Width: 800, Height: 600},
//		[]binding.ChannelConfig{
//			{Type: binding.ResourceUniformBuffer, Capacity: 16},
//			{Type: binding.ResourceSampledImage, Capacity: 64},
//		})
//
//	h, _ := eng.Allocate(binding.ResourceUniformBuffer, binding.BufferContents{Buffer: buf, Size: 64})
//
//	for running {
//		frame, err := eng.BeginFrame()
//		// record into frame.Commands
//		err = eng.EndFrame(frame)
//	}
//
// # Configuration
//
// Engines are configured with functional options, or from a TOML file
// with [LoadConfig].
//
// # Logging
//
// gfxcore is silent by default. Call [SetLogger] to route diagnostics to a
// log/slog logger.
package gfxcore

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
