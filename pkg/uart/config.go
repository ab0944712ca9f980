// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package uart encodes byte streams as asynchronous serial frames made of
// pulse-timing symbols.
//
// Every byte becomes one frame: a start bit, eight data bits (least
// significant first) and a stop bit, one symbol per bit. The encoder is
// resumable: when the destination memory fills up mid-frame it stops and
// continues from the same bit on the next call.
package uart

import "github.com/Thermoquad/irtx/pkg/rmt"

// Frame layout
const (
	StartBits     = 1
	DataBits      = 8
	StopBits      = 1
	FrameSymbols  = StartBits + DataBits + StopBits
	DefaultBaud   = 2000
	DefaultIdle   = rmt.LevelHigh
	HalfBitsInBit = 2
)

// Config holds the timing configuration of an Encoder.
//
// Resolution / (2 * BaudRate) must be in [1, rmt.MaxDuration]. It is not
// validated here: larger values are truncated to the 15-bit duration field.
type Config struct {
	Resolution uint32    // symbol tick rate, in Hz
	BaudRate   uint32    // bits per second
	IdleLevel  uint8     // line level between frames (0 or 1)
	Heap       *rmt.Heap // storage for the encoder and its sub-encoders (nil = rmt.DefaultHeap)
}

// HalfBitTicks returns the number of ticks in half a bit time.
func (c *Config) HalfBitTicks() uint32 {
	if c.BaudRate == 0 {
		return 0
	}
	return c.Resolution / (HalfBitsInBit * c.BaudRate)
}

// ActiveLevel returns the level opposite to the idle level.
func (c *Config) ActiveLevel() uint8 {
	return 1 - c.IdleLevel&1
}

// BitTemplates returns the symbols for a 0 bit (line active for a full bit
// time) and a 1 bit (line idle for a full bit time). They double as the start
// and stop bit respectively.
func (c *Config) BitTemplates() (bit0, bit1 rmt.Symbol) {
	half := uint16(c.HalfBitTicks())
	active := c.ActiveLevel()
	idle := c.IdleLevel & 1
	bit0 = rmt.NewSymbol(active, half, active, half)
	bit1 = rmt.NewSymbol(idle, half, idle, half)
	return bit0, bit1
}
