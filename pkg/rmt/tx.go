// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package rmt

import (
	"context"
	"fmt"
	"time"
)

// Sink receives the symbols of each filled memory window.
// syms is only valid for the duration of the call.
type Sink interface {
	WriteSymbols(syms []Symbol) error
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(syms []Symbol) error

// WriteSymbols calls f(syms)
func (f SinkFunc) WriteSymbols(syms []Symbol) error {
	return f(syms)
}

// EOTSink is implemented by sinks that are told when a transmission ends
// and which level the line is held at afterwards.
type EOTSink interface {
	Sink
	EndTransmission(level uint8) error
}

// Collector is a Sink that keeps a copy of every window it receives.
type Collector struct {
	Symbols   []Symbol
	Blocks    [][]Symbol // one entry per window
	Windows   int
	EOTLevels []uint8 // one entry per completed transmission
}

// WriteSymbols appends syms to the collected sequence
func (c *Collector) WriteSymbols(syms []Symbol) error {
	c.Symbols = append(c.Symbols, syms...)
	c.Blocks = append(c.Blocks, append([]Symbol(nil), syms...))
	c.Windows++
	return nil
}

// EndTransmission records the end-of-transmission level
func (c *Collector) EndTransmission(level uint8) error {
	c.EOTLevels = append(c.EOTLevels, level)
	return nil
}

// TxChannelConfig configures a TxChannel
type TxChannelConfig struct {
	ResolutionHz    uint32 // tick rate of symbol durations
	MemBlockSymbols int    // symbols per memory window (0 = unbounded)
}

// TransmitConfig configures a single Transmit call
type TransmitConfig struct {
	LoopCount int   // extra repetitions of the whole transaction
	EOTLevel  uint8 // line level held after the transaction
}

// TxReport summarises one Transmit call
type TxReport struct {
	Windows       int    // memory windows handed to the sink
	Symbols       int    // symbols produced
	MemFullYields int    // Encode calls that returned EncodeMemFull
	Ticks         uint64 // total symbol duration
	EOTLevel      uint8
}

// Duration converts the report's ticks to wall time at the given resolution
func (r TxReport) Duration(resolutionHz uint32) time.Duration {
	if resolutionHz == 0 {
		return 0
	}
	return time.Duration(r.Ticks * uint64(time.Second) / uint64(resolutionHz))
}

// TxChannel is a software transmit channel. It owns one memory block and
// drives an encoder window by window, handing each filled window to a sink,
// the way the hardware refills its memory whenever the previous block has
// been sent.
type TxChannel struct {
	config TxChannelConfig
	mem    *MemBlock
	sink   Sink
}

// NewTxChannel creates a transmit channel writing to sink.
func NewTxChannel(cfg TxChannelConfig, sink Sink) (*TxChannel, error) {
	if sink == nil {
		return nil, fmt.Errorf("tx channel: nil sink: %w", ErrInvalidArgument)
	}
	if cfg.MemBlockSymbols < 0 {
		return nil, fmt.Errorf("tx channel: mem block symbols %d: %w", cfg.MemBlockSymbols, ErrInvalidArgument)
	}
	if cfg.ResolutionHz == 0 {
		cfg.ResolutionHz = DefaultResolutionHz
	}
	return &TxChannel{
		config: cfg,
		mem:    NewMemBlock(cfg.MemBlockSymbols),
		sink:   sink,
	}, nil
}

// Config returns the channel configuration
func (c *TxChannel) Config() TxChannelConfig {
	return c.config
}

// Transmit encodes data with enc and streams the result to the sink.
//
// The encoder is reset before every repetition. Cancelling ctx stops the
// transaction between windows and resets the encoder so it can be reused.
func (c *TxChannel) Transmit(ctx context.Context, enc Encoder, data []byte, tc TransmitConfig) (TxReport, error) {
	report := TxReport{EOTLevel: tc.EOTLevel}
	if enc == nil {
		return report, fmt.Errorf("transmit: nil encoder: %w", ErrInvalidArgument)
	}
	if tc.LoopCount < 0 {
		return report, fmt.Errorf("transmit: loop count %d: %w", tc.LoopCount, ErrInvalidArgument)
	}

	for loop := 0; loop <= tc.LoopCount; loop++ {
		enc.Reset()
		if err := c.transmitOnce(ctx, enc, data, &report); err != nil {
			enc.Reset()
			return report, err
		}
	}

	// the line settles at the EOT level once the last window is out
	if eot, ok := c.sink.(EOTSink); ok {
		if err := eot.EndTransmission(tc.EOTLevel); err != nil {
			return report, fmt.Errorf("sink end of transmission failed: %w", err)
		}
	}

	return report, nil
}

func (c *TxChannel) transmitOnce(ctx context.Context, enc Encoder, data []byte, report *TxReport) error {
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("transmit aborted: %w", err)
		}

		c.mem.Reset()
		_, state := enc.Encode(c.mem, data)

		if c.mem.Len() > 0 {
			syms := c.mem.Symbols()
			report.Windows++
			report.Symbols += len(syms)
			report.Ticks += TotalTicks(syms)
			if err := c.sink.WriteSymbols(syms); err != nil {
				return fmt.Errorf("sink write failed: %w", err)
			}
		}

		if state.Complete() {
			return nil
		}
		if !state.MemFull() || c.mem.Len() == 0 {
			return fmt.Errorf("transmit: %w (state %s after %d symbols)", ErrStalled, state, report.Symbols)
		}
		report.MemFullYields++
	}
}
