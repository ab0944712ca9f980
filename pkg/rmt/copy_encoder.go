// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package rmt

import (
	"encoding/binary"
	"fmt"
)

// CopyEncoderConfig configures a CopyEncoder
type CopyEncoderConfig struct {
	Heap *Heap // storage to allocate from (nil = DefaultHeap)
}

// CopyEncoder copies symbols through unchanged. Its input is a sequence of
// packed little-endian symbol words (see SymbolBytes).
type CopyEncoder struct {
	heap            *Heap
	lastSymbolIndex int
	released        bool
}

// NewCopyEncoder creates a copy encoder.
func NewCopyEncoder(cfg *CopyEncoderConfig) (*CopyEncoder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("copy encoder: %w", ErrInvalidArgument)
	}
	heap := heapOrDefault(cfg.Heap)
	if err := heap.Alloc(); err != nil {
		return nil, fmt.Errorf("copy encoder: %w", err)
	}
	return &CopyEncoder{heap: heap}, nil
}

// Encode copies the symbol words in data into ch, resuming after the last
// symbol written by a previous truncated call.
func (e *CopyEncoder) Encode(ch Channel, data []byte) (int, EncodeState) {
	var state EncodeState

	want := len(data)/SymbolSize - e.lastSymbolIndex
	if want < 0 {
		want = 0
	}
	have := ch.Free()
	n := min(want, have)

	written := 0
	for written < n {
		off := (e.lastSymbolIndex + written) * SymbolSize
		if !ch.Write(SymbolFromWord(binary.LittleEndian.Uint32(data[off:]))) {
			break
		}
		written++
	}

	if written < want {
		e.lastSymbolIndex += written
	} else {
		e.lastSymbolIndex = 0
		state |= EncodeComplete
	}
	if have <= want || written < n {
		state |= EncodeMemFull
	}

	return written, state
}

// Reset forgets any truncated position
func (e *CopyEncoder) Reset() {
	e.lastSymbolIndex = 0
}

// Release returns the encoder's storage to its heap
func (e *CopyEncoder) Release() error {
	if e.released {
		return fmt.Errorf("copy encoder: %w", ErrReleased)
	}
	e.released = true
	e.heap.Free()
	return nil
}
