// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/Thermoquad/irtx/pkg/rmt"
)

// Validate checks configuration correctness and reports every problem found.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	var result *multierror.Error

	// ------------------------------------------------------------
	// ENCODER TIMING
	// ------------------------------------------------------------

	enc := cfg.Encoder
	if enc.BaudRate == 0 {
		result = multierror.Append(result, fmt.Errorf("encoder.baud_rate must be > 0"))
	} else {
		half := uint64(enc.ResolutionHz) / (2 * uint64(enc.BaudRate))
		if half < 1 || half > rmt.MaxDuration {
			result = multierror.Append(result, fmt.Errorf(
				"encoder: resolution_hz=%d baud_rate=%d gives %d ticks per half bit (want 1..%d)",
				enc.ResolutionHz, enc.BaudRate, half, rmt.MaxDuration,
			))
		}
	}
	if enc.IdleLevel > 1 {
		result = multierror.Append(result, fmt.Errorf("encoder.idle_level must be 0 or 1, got %d", enc.IdleLevel))
	}

	// ------------------------------------------------------------
	// CHANNEL
	// ------------------------------------------------------------

	if cfg.Channel.MemBlockSymbols < 1 {
		result = multierror.Append(result, fmt.Errorf("channel.mem_block_symbols must be >= 1, got %d", cfg.Channel.MemBlockSymbols))
	}

	// ------------------------------------------------------------
	// TRANSMIT
	// ------------------------------------------------------------

	tx := cfg.Transmit
	if tx.MessageHex != "" {
		if _, err := decodeHex(tx.MessageHex); err != nil {
			result = multierror.Append(result, fmt.Errorf("transmit.message_hex: %w", err))
		}
	}
	if tx.IntervalMs < 0 {
		result = multierror.Append(result, fmt.Errorf("transmit.interval_ms must be >= 0, got %d", tx.IntervalMs))
	}
	if tx.Count < 0 {
		result = multierror.Append(result, fmt.Errorf("transmit.count must be >= 0, got %d", tx.Count))
	}
	if tx.LoopCount < 0 {
		result = multierror.Append(result, fmt.Errorf("transmit.loop_count must be >= 0, got %d", tx.LoopCount))
	}
	if tx.EOTLevel != nil && *tx.EOTLevel > 1 {
		result = multierror.Append(result, fmt.Errorf("transmit.eot_level must be 0 or 1, got %d", *tx.EOTLevel))
	}

	// ------------------------------------------------------------
	// OUTPUT
	// ------------------------------------------------------------

	out := cfg.Output
	switch out.Kind {
	case OutputStdout:
	case OutputSerial:
		if out.Port == "" {
			result = multierror.Append(result, fmt.Errorf("output.port is required for serial output"))
		}
		if out.Baud <= 0 {
			result = multierror.Append(result, fmt.Errorf("output.baud must be > 0, got %d", out.Baud))
		}
	case OutputWebSocket:
		if out.URL == "" {
			result = multierror.Append(result, fmt.Errorf("output.url is required for websocket output"))
		} else if u, err := url.Parse(out.URL); err != nil {
			result = multierror.Append(result, fmt.Errorf("output.url: %w", err))
		} else if u.Scheme != "ws" && u.Scheme != "wss" {
			result = multierror.Append(result, fmt.Errorf("output.url: unsupported scheme %q (use ws:// or wss://)", u.Scheme))
		}
	default:
		result = multierror.Append(result, fmt.Errorf(
			"output.kind must be one of %s, %s, %s; got %q",
			OutputStdout, OutputSerial, OutputWebSocket, out.Kind,
		))
	}

	return result.ErrorOrNil()
}

// decodeHex accepts "01 03 0f", "01:03:0F" or "01030f"
func decodeHex(s string) ([]byte, error) {
	clean := strings.NewReplacer(" ", "", ":", "", "\t", "", "\n", "").Replace(s)
	clean = strings.TrimPrefix(strings.TrimPrefix(clean, "0x"), "0X")
	return hex.DecodeString(clean)
}
