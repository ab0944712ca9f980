// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package rmt

import (
	"encoding/binary"
	"fmt"
)

// Symbol is one pulse-timing symbol: two line segments, each held at a level
// for a number of resolution ticks.
type Symbol struct {
	Level0    uint8
	Duration0 uint16
	Level1    uint8
	Duration1 uint16
}

// NewSymbol creates a symbol from two (level, duration) segments.
// Levels are reduced to a single bit and durations to 15 bits.
func NewSymbol(level0 uint8, duration0 uint16, level1 uint8, duration1 uint16) Symbol {
	return Symbol{
		Level0:    level0 & 1,
		Duration0: duration0 & MaxDuration,
		Level1:    level1 & 1,
		Duration1: duration1 & MaxDuration,
	}
}

// Word packs the symbol into the peripheral's 32-bit memory layout:
// duration0[14:0], level0[15], duration1[30:16], level1[31].
func (s Symbol) Word() uint32 {
	return uint32(s.Duration0&MaxDuration) |
		uint32(s.Level0&1)<<15 |
		uint32(s.Duration1&MaxDuration)<<16 |
		uint32(s.Level1&1)<<31
}

// SymbolFromWord unpacks a 32-bit memory word.
func SymbolFromWord(w uint32) Symbol {
	return Symbol{
		Duration0: uint16(w & MaxDuration),
		Level0:    uint8(w>>15) & 1,
		Duration1: uint16((w >> 16) & MaxDuration),
		Level1:    uint8(w>>31) & 1,
	}
}

// Ticks returns the total duration of both segments.
func (s Symbol) Ticks() uint32 {
	return uint32(s.Duration0) + uint32(s.Duration1)
}

// String returns the symbol as "[l0:d0 l1:d1]"
func (s Symbol) String() string {
	return fmt.Sprintf("[%d:%d %d:%d]", s.Level0, s.Duration0, s.Level1, s.Duration1)
}

// AppendSymbols appends the little-endian word form of each symbol to b.
func AppendSymbols(b []byte, syms ...Symbol) []byte {
	for _, s := range syms {
		b = binary.LittleEndian.AppendUint32(b, s.Word())
	}
	return b
}

// SymbolBytes returns the little-endian word form of the symbols.
func SymbolBytes(syms ...Symbol) []byte {
	return AppendSymbols(make([]byte, 0, len(syms)*SymbolSize), syms...)
}

// ParseSymbols decodes little-endian symbol words.
// Trailing bytes that do not form a complete word are ignored.
func ParseSymbols(data []byte) []Symbol {
	syms := make([]Symbol, 0, len(data)/SymbolSize)
	for i := 0; i+SymbolSize <= len(data); i += SymbolSize {
		syms = append(syms, SymbolFromWord(binary.LittleEndian.Uint32(data[i:])))
	}
	return syms
}

// TotalTicks sums the duration of all symbols.
func TotalTicks(syms []Symbol) uint64 {
	var total uint64
	for _, s := range syms {
		total += uint64(s.Ticks())
	}
	return total
}
