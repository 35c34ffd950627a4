// Package backend provides the pluggable GPU device abstraction.
//
// A backend opens a [Device], which serves both layers of gfxcore: it
// creates the tables behind binding channels and the fences, semaphores,
// command buffers and depth targets the frame pipeline cycles through.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// The hal backends are registered on import:
//
//	import _ "github.com/gogpu/gfxcore/backend/wgpu"
//
// # Backend Selection
//
// Use Open with a name to request a specific backend, or with an empty
// name to take the first one that opens:
//
//	dev, err := backend.Open("", backend.Options{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer dev.Close()
//
// # Available Backends
//
//   - "vulkan": hal Vulkan device (discrete or integrated GPU preferred)
//   - "noop": hal no-op device, always available
package backend
