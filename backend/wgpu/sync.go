// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"time"
)

// Fence tracks the queue submission that signals it.
//
// A hal queue numbers its submissions and reports the highest one the GPU
// has finished through PollCompleted. Submit records that number on the
// fence, and the fence is signaled once the queue has completed it.
type Fence struct {
	dev *Device

	// signaled is set once the carrying submission is known complete.
	signaled bool
	// pending is set between the Submit that carries the fence and the
	// Wait that observes its completion.
	pending bool
	// submitIndex is the queue submission index of the last submit that
	// carried this fence.
	submitIndex uint64
}

// Wait blocks until the fence is signaled or timeout elapses. A timeout of
// zero or less only checks the current state. An unsignaled fence that no
// submission carries can never signal and reports false at once.
func (f *Fence) Wait(timeout time.Duration) (bool, error) {
	d := f.dev
	d.mu.Lock()
	signaled, pending, index := f.signaled, f.pending, f.submitIndex
	d.mu.Unlock()

	if signaled {
		return true, nil
	}
	if !pending {
		return false, nil
	}
	if !d.waitSubmission(index, timeout) {
		return false, nil
	}
	d.mu.Lock()
	if f.submitIndex == index {
		f.signaled, f.pending = true, false
	}
	d.mu.Unlock()
	return true, nil
}

// Reset unsignals the fence. A fence whose submission has not been waited
// on cannot be reset.
func (f *Fence) Reset() error {
	d := f.dev
	d.mu.Lock()
	defer d.mu.Unlock()
	if f.pending && d.polledLocked() < f.submitIndex {
		return errors.New("wgpu: reset of fence with pending submission")
	}
	f.signaled, f.pending = false, false
	return nil
}

// SubmitIndex returns the queue index of the last submit that carried the
// fence, zero if none has.
func (f *Fence) SubmitIndex() uint64 {
	f.dev.mu.Lock()
	defer f.dev.mu.Unlock()
	return f.submitIndex
}

// Destroy unregisters the fence. Safe to call after the device closed.
func (f *Fence) Destroy() {
	d := f.dev
	d.mu.Lock()
	delete(d.fences, f)
	d.mu.Unlock()
}

// Semaphore orders a submit against an acquire or a present. A hal queue
// already executes in submission order, so the semaphore only tracks
// whether its producer has run.
type Semaphore struct {
	signaled bool
}

// Signal marks the semaphore signaled. Host surfaces call it when an
// acquired image is ready.
func (s *Semaphore) Signal() { s.signaled = true }

// Signaled reports whether the semaphore is signaled.
func (s *Semaphore) Signaled() bool { return s.signaled }

func (s *Semaphore) consume() { s.signaled = false }

// Destroy is a no-op; semaphores hold no hal object.
func (s *Semaphore) Destroy() {}
