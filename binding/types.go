// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package binding

import (
	"fmt"

	"github.com/gogpu/gfxcore/gpucore"
)

// ResourceType identifies what a channel's slots hold.
type ResourceType uint8

const (
	// ResourceUniformBuffer is a uniform buffer range.
	ResourceUniformBuffer ResourceType = iota + 1

	// ResourceStorageBuffer is a read-only storage buffer range.
	ResourceStorageBuffer

	// ResourceSampledImage is a texture view paired with a sampler.
	ResourceSampledImage
)

// String returns the resource type name.
func (t ResourceType) String() string {
	switch t {
	case ResourceUniformBuffer:
		return "uniform-buffer"
	case ResourceStorageBuffer:
		return "storage-buffer"
	case ResourceSampledImage:
		return "sampled-image"
	default:
		return fmt.Sprintf("ResourceType(%d)", uint8(t))
	}
}

// ParseResourceType parses the names produced by String.
func ParseResourceType(s string) (ResourceType, error) {
	for _, t := range []ResourceType{ResourceUniformBuffer, ResourceStorageBuffer, ResourceSampledImage} {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedResourceType, s)
}

// Kind returns the contents variant that slots of this type accept.
func (t ResourceType) Kind() Kind {
	switch t {
	case ResourceUniformBuffer, ResourceStorageBuffer:
		return KindBuffer
	case ResourceSampledImage:
		return KindImage
	default:
		return 0
	}
}

// Kind tags the variant of a [Contents] value.
type Kind uint8

// Contents variants.
const (
	KindBuffer Kind = iota + 1
	KindImage
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindBuffer:
		return "buffer"
	case KindImage:
		return "image"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Contents is the payload written into a binding slot. It is a closed sum
// type: the only implementations are [BufferContents] and [ImageContents].
type Contents interface {
	Kind() Kind
	contents()
}

// BufferContents binds a range of a GPU buffer.
type BufferContents struct {
	Buffer gpucore.NativeResource
	Offset uint64

	// Size is the bound range in bytes. Zero binds the rest of the buffer.
	Size uint64
}

// Kind returns KindBuffer.
func (BufferContents) Kind() Kind { return KindBuffer }
func (BufferContents) contents()  {}

// ImageContents binds a texture view with the sampler used to read it.
type ImageContents struct {
	View    gpucore.NativeResource
	Sampler gpucore.NativeResource
}

// Kind returns KindImage.
func (ImageContents) Kind() Kind { return KindImage }
func (ImageContents) contents()  {}

// Handle addresses one live slot. It carries no ownership: the caller
// decides when it stops being valid.
type Handle struct {
	Channel uint32
	Index   uint32
}

// String returns "channel:index".
func (h Handle) String() string {
	return fmt.Sprintf("%d:%d", h.Channel, h.Index)
}
