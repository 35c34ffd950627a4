// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package binding implements bindless resource slots: typed,
// fixed-capacity channels of shader-visible bindings, each backed by one
// binding table.
//
// A [Device] owns an ordered list of [Channel] values. Allocate picks the
// first channel configured for the requested [ResourceType] that still has
// room, reuses the most recently freed index of that channel before growing
// its high-water mark, and writes the contents to the channel's [Table]
// exactly once at the chosen index. The resulting [Handle] is a plain
// (channel, index) pair that shaders and draw calls use to address the
// resource.
//
// # Freeing
//
// [Device.Free] returns an index to its free list immediately and does not
// clear the table slot: stale contents stay readable until the index is
// reused. GPU work that is still in flight may reference the slot, so code
// that frees resources during a frame loop should use [Device.Retire] with
// the serial of the last frame that used the handle, and call
// [Device.Collect] once that frame is known to be complete.
//
// # Concurrency
//
// Device and Channel are single-writer. All calls must come from the
// goroutine that drives the frame loop, or be serialized onto it.
package binding
