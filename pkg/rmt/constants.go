// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package rmt provides the pulse-timing building blocks used to drive a
// remote-control style transmit peripheral from software.
//
// A transmit peripheral only accepts symbols, each describing two line
// segments as (level, duration) pairs. Encoders turn arbitrary input into
// symbols and write them into a bounded memory block; when the block fills
// up they report EncodeMemFull and are called again with the same input once
// the peripheral has drained it.
package rmt

import "errors"

// Symbol limits
const (
	MaxDuration = 0x7FFF // 15-bit duration field
	SymbolSize  = 4      // bytes per packed symbol word
)

// Channel defaults
const (
	DefaultMemBlockSymbols = 64
	DefaultResolutionHz    = 1000000 // 1 tick = 1 us
)

// Line levels
const (
	LevelLow  uint8 = 0
	LevelHigh uint8 = 1
)

var (
	// ErrInvalidArgument is returned when a required argument is missing or malformed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoMem is returned when a Heap cannot supply storage for an encoder.
	ErrNoMem = errors.New("out of memory")

	// ErrReleased is returned when an encoder is released more than once.
	ErrReleased = errors.New("encoder already released")

	// ErrStalled is returned by a TxChannel when an encoder neither completes
	// nor makes progress in a fresh memory window.
	ErrStalled = errors.New("encoder stalled")
)
