// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package rmt

// MemBlock is a Channel backed by a fixed number of symbol slots, like the
// memory block of one transmit channel.
type MemBlock struct {
	symbols  []Symbol
	capacity int
}

// NewMemBlock creates a memory block holding up to capacity symbols.
// A capacity of 0 or less creates an unbounded block.
func NewMemBlock(capacity int) *MemBlock {
	if capacity < 0 {
		capacity = 0
	}
	return &MemBlock{
		symbols:  make([]Symbol, 0, capacity),
		capacity: capacity,
	}
}

// Free returns the number of empty slots
func (m *MemBlock) Free() int {
	if m.capacity == 0 {
		return int(^uint(0) >> 1)
	}
	return m.capacity - len(m.symbols)
}

// Write stores sym if a slot is free
func (m *MemBlock) Write(sym Symbol) bool {
	if m.Free() <= 0 {
		return false
	}
	m.symbols = append(m.symbols, sym)
	return true
}

// Symbols returns the symbols written since the last Reset.
// The slice is reused after Reset.
func (m *MemBlock) Symbols() []Symbol {
	return m.symbols
}

// Len returns the number of symbols written since the last Reset
func (m *MemBlock) Len() int {
	return len(m.symbols)
}

// Cap returns the block capacity (0 = unbounded)
func (m *MemBlock) Cap() int {
	return m.capacity
}

// Reset empties the block for the next window
func (m *MemBlock) Reset() {
	m.symbols = m.symbols[:0]
}
