// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package rmt

import "sync"

// Heap accounts for encoder storage. A Heap with a positive capacity hands
// out at most that many live blocks and fails further allocations with
// ErrNoMem, which models the fixed driver memory encoders are carved from.
type Heap struct {
	mu       sync.Mutex
	capacity int
	live     int
	allocs   uint64
	frees    uint64
}

// DefaultHeap is an unbounded heap used when no heap is configured.
var DefaultHeap = NewHeap(0)

// NewHeap creates a heap with room for capacity live blocks (0 = unbounded).
func NewHeap(capacity int) *Heap {
	return &Heap{capacity: capacity}
}

// Alloc reserves one block.
func (h *Heap) Alloc() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.capacity > 0 && h.live >= h.capacity {
		return ErrNoMem
	}
	h.live++
	h.allocs++
	return nil
}

// Free returns one block. Freeing more blocks than were allocated panics.
func (h *Heap) Free() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.live == 0 {
		panic("rmt: heap free without matching alloc")
	}
	h.live--
	h.frees++
}

// Live returns the number of blocks currently allocated
func (h *Heap) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.live
}

// Allocs returns the total number of successful allocations
func (h *Heap) Allocs() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.allocs
}

// Frees returns the total number of frees
func (h *Heap) Frees() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frees
}

func heapOrDefault(h *Heap) *Heap {
	if h == nil {
		return DefaultHeap
	}
	return h
}
