// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads the irtx YAML configuration file.
package config

import (
	"github.com/Thermoquad/irtx/pkg/rmt"
	"github.com/Thermoquad/irtx/pkg/uart"
)

// Output kinds
const (
	OutputStdout    = "stdout"
	OutputSerial    = "serial"
	OutputWebSocket = "websocket"
)

// DefaultMessage is the demo payload sent by transmit when none is configured
var DefaultMessage = []byte{0x01, 0x03, 0x07, 0x0F, 0x1F}

type Config struct {
	Encoder  EncoderConfig  `yaml:"encoder"`
	Channel  ChannelConfig  `yaml:"channel"`
	Transmit TransmitConfig `yaml:"transmit"`
	Output   OutputConfig   `yaml:"output"`
}

// ---- ENCODER ----

type EncoderConfig struct {
	ResolutionHz uint32 `yaml:"resolution_hz"`
	BaudRate     uint32 `yaml:"baud_rate"`
	IdleLevel    uint8  `yaml:"idle_level"`
}

// ---- CHANNEL ----

type ChannelConfig struct {
	MemBlockSymbols int `yaml:"mem_block_symbols"`
}

// ---- TRANSMIT ----

type TransmitConfig struct {
	Message    string `yaml:"message"`     // sent as raw bytes
	MessageHex string `yaml:"message_hex"` // takes precedence over message
	IntervalMs int    `yaml:"interval_ms"`
	Count      int    `yaml:"count"` // 0 = until interrupted
	LoopCount  int    `yaml:"loop_count"`
	EOTLevel   *uint8 `yaml:"eot_level"` // defaults to the idle level

	// Payload is filled in by Normalize
	Payload []byte `yaml:"-"`
}

// ---- OUTPUT ----

type OutputConfig struct {
	Kind        string `yaml:"kind"`
	Port        string `yaml:"port"`
	Baud        int    `yaml:"baud"`
	URL         string `yaml:"url"`
	Username    string `yaml:"username"`
	NoSSLVerify bool   `yaml:"no_ssl_verify"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Encoder: EncoderConfig{
			ResolutionHz: rmt.DefaultResolutionHz,
			BaudRate:     uart.DefaultBaud,
			IdleLevel:    uart.DefaultIdle,
		},
		Channel: ChannelConfig{
			MemBlockSymbols: rmt.DefaultMemBlockSymbols,
		},
		Transmit: TransmitConfig{
			IntervalMs: 1000,
		},
		Output: OutputConfig{
			Kind: OutputStdout,
			Baud: 115200,
		},
	}
}

// UART returns the frame encoder configuration
func (c *Config) UART() *uart.Config {
	return &uart.Config{
		Resolution: c.Encoder.ResolutionHz,
		BaudRate:   c.Encoder.BaudRate,
		IdleLevel:  c.Encoder.IdleLevel,
	}
}

// TxChannel returns the simulated channel configuration
func (c *Config) TxChannel() rmt.TxChannelConfig {
	return rmt.TxChannelConfig{
		ResolutionHz:    c.Encoder.ResolutionHz,
		MemBlockSymbols: c.Channel.MemBlockSymbols,
	}
}

// Transmission returns per-transaction options. Call after Normalize.
func (c *Config) Transmission() rmt.TransmitConfig {
	eot := c.Encoder.IdleLevel
	if c.Transmit.EOTLevel != nil {
		eot = *c.Transmit.EOTLevel
	}
	return rmt.TransmitConfig{
		LoopCount: c.Transmit.LoopCount,
		EOTLevel:  eot,
	}
}
