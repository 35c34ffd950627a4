// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements the gfxcore backend on top of gogpu/wgpu/hal.
//
// Importing the package registers two backends:
//
//   - "vulkan": hal Vulkan instance, discrete or integrated GPU preferred
//   - "noop": hal no-op device, for tests and headless runs
//
// A host that already owns a hal device (for example a gogpu window) shares
// it through [FromProvider].
//
// # Mapping
//
// Binding channels map to one bind group each. Slot i of a buffer channel
// is binding i; slot i of a sampled-image channel is binding 2i (texture)
// and 2i+1 (sampler). Unwritten slots hold a placeholder resource so the
// bind group is always complete. The group is rebuilt lazily after writes;
// replaced groups are destroyed once every submission that could have
// bound them has retired.
//
// Frame-pipeline fences are hal timeline fences: Reset advances the target
// value and the next Submit signals it. Semaphores are ordering markers,
// since a hal queue executes submissions in order.
//
// Each frame's command buffer owns a fresh hal.CommandEncoder per Begin.
// [BeginRenderPass] opens a pass over a frame's color and depth targets and
// [BindTable] binds a channel's group into it.
//
// Channel capacity is bounded by the device's per-stage binding limits.
package wgpu
