package model

import (
	"go.uber.org/multierr"

	"github.com/Faultbox/objviewer/internal/engine/gpu"
)

// arena records every GPU object created during an import so a failure
// releases all of them. Objects are released in reverse creation order.
// Binding a layout moves its buffers out of the arena: from then on only
// the layout is tracked.
type arena struct {
	device  gpu.Device
	entries []arenaEntry
}

type arenaEntry struct {
	buffer gpu.BufferHandle
	layout gpu.LayoutHandle
}

func newArena(device gpu.Device) *arena {
	return &arena{device: device}
}

// createBuffer creates a buffer and tracks it. Empty data yields the null
// handle, which is not tracked.
func (a *arena) createBuffer(kind gpu.BufferKind, data []byte) (gpu.BufferHandle, error) {
	h, err := a.device.CreateBuffer(kind, data)
	if err != nil {
		return 0, err
	}
	if h != 0 {
		a.entries = append(a.entries, arenaEntry{buffer: h})
	}
	return h, nil
}

// bindLayout binds the buffer pair and transfers their ownership to the layout.
// On failure the buffers stay tracked.
func (a *arena) bindLayout(vertices, indices gpu.BufferHandle) (gpu.LayoutHandle, error) {
	h, err := a.device.BindLayout(vertices, indices)
	if err != nil {
		return 0, err
	}
	a.forgetBuffer(vertices)
	a.forgetBuffer(indices)
	a.entries = append(a.entries, arenaEntry{layout: h})
	return h, nil
}

func (a *arena) forgetBuffer(h gpu.BufferHandle) {
	for i := len(a.entries) - 1; i >= 0; i-- {
		if a.entries[i].buffer == h {
			a.entries = append(a.entries[:i], a.entries[i+1:]...)
			return
		}
	}
}

// release frees every tracked object, newest first, and empties the arena.
// All objects are attempted even if some fail.
func (a *arena) release() error {
	var err error
	for i := len(a.entries) - 1; i >= 0; i-- {
		e := a.entries[i]
		if e.layout != 0 {
			err = multierr.Append(err, a.device.DeleteLayout(e.layout))
		} else {
			err = multierr.Append(err, a.device.DeleteBuffer(e.buffer))
		}
	}
	a.entries = nil
	return err
}

// commit hands ownership of every tracked object to the caller.
func (a *arena) commit() {
	a.entries = nil
}

// size returns the number of tracked objects.
func (a *arena) size() int {
	return len(a.entries)
}
