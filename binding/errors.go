// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package binding

import "errors"

var (
	// ErrResourceExhausted is returned by Allocate when every channel of the
	// requested type is full. No channel state is modified.
	ErrResourceExhausted = errors.New("binding: resource exhausted")

	// ErrUnsupportedResourceType is returned when no channel is configured
	// for the requested type.
	ErrUnsupportedResourceType = errors.New("binding: unsupported resource type")

	// ErrContentsMismatch is returned when the contents variant does not
	// match the slot's resource type.
	ErrContentsMismatch = errors.New("binding: contents do not match resource type")

	// ErrInvalidHandle is returned when a handle names an unknown channel or
	// an index that was never issued.
	ErrInvalidHandle = errors.New("binding: invalid handle")

	// ErrInvalidConfig is returned by NewDevice for an unusable channel
	// layout.
	ErrInvalidConfig = errors.New("binding: invalid channel configuration")
)
