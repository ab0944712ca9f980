// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package rmt

import "fmt"

// BytesEncoderConfig configures a BytesEncoder
type BytesEncoderConfig struct {
	Bit0     Symbol // symbol emitted for a 0 bit
	Bit1     Symbol // symbol emitted for a 1 bit
	MSBFirst bool   // encode the most significant bit of each byte first
	Heap     *Heap  // storage to allocate from (nil = DefaultHeap)
}

// BytesEncoder maps every bit of its input to one of two symbol templates.
type BytesEncoder struct {
	heap        *Heap
	bit0        Symbol
	bit1        Symbol
	msbFirst    bool
	lastByteIdx int
	lastBitIdx  int
	released    bool
}

// NewBytesEncoder creates a bytes encoder.
func NewBytesEncoder(cfg *BytesEncoderConfig) (*BytesEncoder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bytes encoder: %w", ErrInvalidArgument)
	}
	heap := heapOrDefault(cfg.Heap)
	if err := heap.Alloc(); err != nil {
		return nil, fmt.Errorf("bytes encoder: %w", err)
	}
	return &BytesEncoder{
		heap:     heap,
		bit0:     cfg.Bit0,
		bit1:     cfg.Bit1,
		msbFirst: cfg.MSBFirst,
	}, nil
}

// Encode writes one symbol per bit of data into ch, resuming at the bit
// where a previous truncated call stopped.
func (e *BytesEncoder) Encode(ch Channel, data []byte) (int, EncodeState) {
	var state EncodeState

	byteIdx := e.lastByteIdx
	bitIdx := e.lastBitIdx

	want := 0
	if byteIdx < len(data) {
		want = (len(data)-byteIdx-1)*8 + (8 - bitIdx)
	}
	have := ch.Free()
	n := min(want, have)

	written := 0
	for written < n {
		shift := bitIdx
		if e.msbFirst {
			shift = 7 - bitIdx
		}
		sym := e.bit0
		if data[byteIdx]>>shift&1 == 1 {
			sym = e.bit1
		}
		if !ch.Write(sym) {
			break
		}
		written++
		bitIdx++
		if bitIdx == 8 {
			bitIdx = 0
			byteIdx++
		}
	}

	if written < want {
		e.lastByteIdx = byteIdx
		e.lastBitIdx = bitIdx
	} else {
		e.lastByteIdx = 0
		e.lastBitIdx = 0
		state |= EncodeComplete
	}
	if have <= want || written < n {
		state |= EncodeMemFull
	}

	return written, state
}

// Reset forgets any truncated position
func (e *BytesEncoder) Reset() {
	e.lastByteIdx = 0
	e.lastBitIdx = 0
}

// Release returns the encoder's storage to its heap
func (e *BytesEncoder) Release() error {
	if e.released {
		return fmt.Errorf("bytes encoder: %w", ErrReleased)
	}
	e.released = true
	e.heap.Free()
	return nil
}
