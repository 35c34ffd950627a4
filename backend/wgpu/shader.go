// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfxcore/binding"
)

// CompileWGSL compiles WGSL source to SPIR-V words.
func CompileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("wgpu: compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// CreateShaderModule compiles WGSL and creates a shader module on d.
func (d *Device) CreateShaderModule(label, source string) (hal.ShaderModule, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	words, err := CompileWGSL(source)
	if err != nil {
		return nil, err
	}
	module, err := d.raw.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create shader module %s: %w", label, err)
	}
	return module, nil
}

// ChannelWGSL returns the WGSL declarations of a channel bound at group.
// Buffer slots are declared as name_<index> with element type elem; image
// slots as name_<index> (texture_2d<f32>) and name_<index>_sampler.
func ChannelWGSL(group uint32, ch *binding.Channel, name, elem string) string {
	var b strings.Builder
	for i := uint32(0); i < ch.Capacity(); i++ {
		slot := SlotBinding(ch.Type(), i)
		switch ch.Type() {
		case binding.ResourceUniformBuffer:
			fmt.Fprintf(&b, "@group(%d) @binding(%d) var<uniform> %s_%d: %s;\n", group, slot, name, i, elem)
		case binding.ResourceStorageBuffer:
			fmt.Fprintf(&b, "@group(%d) @binding(%d) var<storage, read> %s_%d: %s;\n", group, slot, name, i, elem)
		case binding.ResourceSampledImage:
			fmt.Fprintf(&b, "@group(%d) @binding(%d) var %s_%d: texture_2d<f32>;\n", group, slot, name, i)
			fmt.Fprintf(&b, "@group(%d) @binding(%d) var %s_%d_sampler: sampler;\n", group, slot+1, name, i)
		}
	}
	return b.String()
}

// DestroyShaderModule releases a module created by CreateShaderModule.
func (d *Device) DestroyShaderModule(m hal.ShaderModule) {
	if m != nil {
		d.raw.DestroyShaderModule(m)
	}
}
