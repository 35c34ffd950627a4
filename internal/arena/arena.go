// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package arena implements a fixed-capacity index allocator with a LIFO
// free list.
//
// An [Arena] hands out dense indices in [0, capacity). Released indices are
// pushed onto a stack and popped before the monotonic high-water mark is
// advanced, so the most recently released index is always reused first.
// Every allocation and in-place rewrite is routed through an on-write
// callback; if the callback fails, the arena is left exactly as it was.
//
// Arena is not safe for concurrent use.
package arena

import (
	"errors"
	"fmt"
)

var (
	// ErrFull is returned by Alloc when no released index is available and
	// the high-water mark has reached capacity.
	ErrFull = errors.New("arena: capacity exhausted")

	// ErrOutOfRange is returned by Write and Release for an index that was
	// never issued.
	ErrOutOfRange = errors.New("arena: index out of range")
)

// WriteFunc is called with the index being (re)written and its new value.
// A non-nil error aborts the operation without mutating the arena.
type WriteFunc[T any] func(index uint32, value T) error

// Arena is a fixed-capacity pool of indices with LIFO reuse.
type Arena[T any] struct {
	capacity uint32
	next     uint32
	free     []uint32
	values   []T
	onWrite  WriteFunc[T]
}

// New creates an arena holding at most capacity indices. onWrite may be nil.
func New[T any](capacity uint32, onWrite WriteFunc[T]) *Arena[T] {
	return &Arena[T]{
		capacity: capacity,
		onWrite:  onWrite,
	}
}

// Alloc reserves an index for value. The most recently released index is
// reused before the high-water mark grows.
func (a *Arena[T]) Alloc(value T) (uint32, error) {
	index, fromFree, ok := a.peek()
	if !ok {
		return 0, ErrFull
	}
	if err := a.write(index, value); err != nil {
		return 0, err
	}
	if fromFree {
		a.free = a.free[:len(a.free)-1]
	} else {
		a.next++
		a.values = append(a.values, value)
	}
	a.values[index] = value
	return index, nil
}

// Write replaces the value at an already issued index in place.
func (a *Arena[T]) Write(index uint32, value T) error {
	if index >= a.next {
		return fmt.Errorf("%w: %d (high-water mark %d)", ErrOutOfRange, index, a.next)
	}
	if err := a.write(index, value); err != nil {
		return err
	}
	a.values[index] = value
	return nil
}

// Release pushes index onto the free stack. The stored value is kept and
// stays readable through Value until the index is reused. An index at or
// past the high-water mark is rejected with ErrOutOfRange.
//
// Releasing an issued index that is not live, or releasing it twice,
// corrupts the free list; callers own that precondition.
func (a *Arena[T]) Release(index uint32) error {
	if index >= a.next {
		return fmt.Errorf("%w: %d (high-water mark %d)", ErrOutOfRange, index, a.next)
	}
	a.free = append(a.free, index)
	return nil
}

// Value returns the last value written at index.
func (a *Arena[T]) Value(index uint32) (T, bool) {
	if index >= a.next {
		var zero T
		return zero, false
	}
	return a.values[index], true
}

// CanAlloc reports whether Alloc would find an index.
func (a *Arena[T]) CanAlloc() bool {
	_, _, ok := a.peek()
	return ok
}

// Cap returns the arena capacity.
func (a *Arena[T]) Cap() uint32 { return a.capacity }

// HighWaterMark returns the number of indices ever issued.
func (a *Arena[T]) HighWaterMark() uint32 { return a.next }

// Live returns the number of issued indices not on the free stack.
func (a *Arena[T]) Live() int { return int(a.next) - len(a.free) }

// FreeList returns a copy of the free stack, bottom first.
func (a *Arena[T]) FreeList() []uint32 {
	out := make([]uint32, len(a.free))
	copy(out, a.free)
	return out
}

func (a *Arena[T]) peek() (index uint32, fromFree, ok bool) {
	if n := len(a.free); n > 0 {
		return a.free[n-1], true, true
	}
	if a.next < a.capacity {
		return a.next, false, true
	}
	return 0, false, false
}

func (a *Arena[T]) write(index uint32, value T) error {
	if a.onWrite == nil {
		return nil
	}
	return a.onWrite(index, value)
}
