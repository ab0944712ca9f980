// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package rmt

import "strings"

// EncodeState is the bit set an encoder reports after each Encode call.
type EncodeState uint8

const (
	// EncodeComplete means all input has been encoded and the encoder is
	// ready for a new, independent session.
	EncodeComplete EncodeState = 1 << iota

	// EncodeMemFull means the channel has no room left. The caller must call
	// Encode again with the same input once space is available.
	EncodeMemFull
)

// Complete reports whether EncodeComplete is set
func (s EncodeState) Complete() bool {
	return s&EncodeComplete != 0
}

// MemFull reports whether EncodeMemFull is set
func (s EncodeState) MemFull() bool {
	return s&EncodeMemFull != 0
}

// String returns "complete", "mem_full", "complete|mem_full" or "partial"
func (s EncodeState) String() string {
	parts := []string{}
	if s.Complete() {
		parts = append(parts, "complete")
	}
	if s.MemFull() {
		parts = append(parts, "mem_full")
	}
	if len(parts) == 0 {
		return "partial"
	}
	return strings.Join(parts, "|")
}

// Channel is the destination memory an encoder writes symbols into.
type Channel interface {
	// Free returns how many more symbols fit in the current window.
	Free() int

	// Write stores one symbol. It returns false when no room is left.
	Write(sym Symbol) bool
}

// Encoder turns input data into symbols written to a Channel.
//
// Encode either consumes its whole input (EncodeComplete) or stops when the
// channel fills (EncodeMemFull), keeping enough internal state to continue
// exactly where it stopped on the next call with the same data. Encoders are
// not safe for concurrent use.
type Encoder interface {
	// Encode writes symbols for data into ch and returns how many were written
	Encode(ch Channel, data []byte) (int, EncodeState)

	// Reset discards any partial progress
	Reset()

	// Release frees the encoder's storage. The encoder must not be used afterwards.
	Release() error
}
