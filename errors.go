package gfxcore

import (
	"github.com/gogpu/gfxcore/binding"
	"github.com/gogpu/gfxcore/gpucore"
	"github.com/gogpu/gfxcore/present"
)

// Errors re-exported from the sub-packages so callers can test every
// failure with errors.Is against one package.
var (
	// ErrResourceExhausted: every channel of the requested type is full.
	ErrResourceExhausted = binding.ErrResourceExhausted

	// ErrUnsupportedResourceType: no channel is configured for the type.
	ErrUnsupportedResourceType = binding.ErrUnsupportedResourceType

	// ErrContentsMismatch: contents variant does not match the type.
	ErrContentsMismatch = binding.ErrContentsMismatch

	// ErrInvalidHandle: the handle does not name an allocated slot.
	ErrInvalidHandle = binding.ErrInvalidHandle

	// ErrSurfaceOutOfDate: the surface must be recreated.
	ErrSurfaceOutOfDate = present.ErrSurfaceOutOfDate

	// ErrSurfaceMinimized: the surface extent is zero.
	ErrSurfaceMinimized = present.ErrSurfaceMinimized

	// ErrFrameState: frame calls made out of order.
	ErrFrameState = present.ErrFrameState

	// ErrDeviceLost: the GPU stopped responding. Fatal.
	ErrDeviceLost = gpucore.ErrDeviceLost

	// ErrAllocationFailure: a backend object could not be created. Fatal.
	ErrAllocationFailure = gpucore.ErrAllocationFailure
)
