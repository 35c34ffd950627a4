// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import "fmt"

// noImage marks a slot or ring image with no current assignment.
const noImage = -1

// FrameSlot holds the synchronization objects of one frame in flight.
type FrameSlot struct {
	// ImageAvailable is signaled by the surface when the acquired image
	// may be rendered into.
	ImageAvailable Semaphore

	// RenderFinished is signaled by the submit and gates Present.
	RenderFinished Semaphore

	// InFlight is signaled when the slot's last submission retires. It is
	// created signaled so the first wait on a fresh slot returns at once.
	InFlight Fence

	// Image is the ring image the slot last acquired, or -1.
	Image int

	// serial is the submission serial of the slot's last submit.
	serial uint64
}

func newFrameSlot(dev Device) (*FrameSlot, error) {
	s := &FrameSlot{Image: noImage}
	var err error
	if s.ImageAvailable, err = dev.CreateSemaphore(); err != nil {
		return nil, fmt.Errorf("present: create image-available semaphore: %w", err)
	}
	if s.RenderFinished, err = dev.CreateSemaphore(); err != nil {
		s.destroy()
		return nil, fmt.Errorf("present: create render-finished semaphore: %w", err)
	}
	if s.InFlight, err = dev.CreateFence(true); err != nil {
		s.destroy()
		return nil, fmt.Errorf("present: create in-flight fence: %w", err)
	}
	return s, nil
}

// Serial returns the serial of the last submission made from this slot.
func (s *FrameSlot) Serial() uint64 {
	return s.serial
}

func (s *FrameSlot) destroy() {
	if s.InFlight != nil {
		s.InFlight.Destroy()
		s.InFlight = nil
	}
	if s.RenderFinished != nil {
		s.RenderFinished.Destroy()
		s.RenderFinished = nil
	}
	if s.ImageAvailable != nil {
		s.ImageAvailable.Destroy()
		s.ImageAvailable = nil
	}
}

func newFrameSlots(dev Device, n int) ([]*FrameSlot, error) {
	slots := make([]*FrameSlot, 0, n)
	for i := 0; i < n; i++ {
		s, err := newFrameSlot(dev)
		if err != nil {
			destroySlots(slots)
			return nil, fmt.Errorf("present: frame slot %d: %w", i, err)
		}
		slots = append(slots, s)
	}
	return slots, nil
}

func destroySlots(slots []*FrameSlot) {
	for _, s := range slots {
		s.destroy()
	}
}
