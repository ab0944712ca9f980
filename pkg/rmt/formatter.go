// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package rmt

import (
	"fmt"
	"strings"
)

// Waveform glyphs
const (
	GlyphHigh = '‾'
	GlyphLow  = '_'
)

// FormatWindow formats one memory window into a human-readable block
func FormatWindow(index int, syms []Symbol) string {
	var b strings.Builder
	fmt.Fprintf(&b, "window %d: %d symbols, %d ticks\n", index, len(syms), TotalTicks(syms))
	b.WriteString(FormatSymbols(syms, 8))
	return b.String()
}

// FormatSymbols formats symbols perLine to a line, indented by two spaces
func FormatSymbols(syms []Symbol, perLine int) string {
	if perLine <= 0 {
		perLine = 8
	}

	var b strings.Builder
	for i, s := range syms {
		if i%perLine == 0 {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("  ")
		} else {
			b.WriteString(" ")
		}
		b.WriteString(s.String())
	}
	if len(syms) > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

// FormatWords formats symbols as packed hex words, 8 to a line
func FormatWords(syms []Symbol) string {
	var b strings.Builder
	for i, s := range syms {
		if i > 0 && i%8 == 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%08X ", s.Word())
	}
	if len(syms) > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

// RenderWaveform draws the line levels as a single row of glyphs, one
// column per ticksPerColumn ticks. Every non-empty segment gets at least one
// column so short pulses stay visible.
func RenderWaveform(syms []Symbol, ticksPerColumn uint32) string {
	if ticksPerColumn == 0 {
		ticksPerColumn = 1
	}

	var b strings.Builder
	segment := func(level uint8, duration uint16) {
		if duration == 0 {
			return
		}
		cols := (uint32(duration) + ticksPerColumn/2) / ticksPerColumn
		if cols == 0 {
			cols = 1
		}
		glyph := GlyphLow
		if level != 0 {
			glyph = GlyphHigh
		}
		b.WriteString(strings.Repeat(string(glyph), int(cols)))
	}

	for _, s := range syms {
		segment(s.Level0, s.Duration0)
		segment(s.Level1, s.Duration1)
	}
	return b.String()
}
