// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Thermoquad/irtx/internal/config"
)

// loadSettings builds the effective configuration: defaults, then the
// --config file, then any flag the user set explicitly. Positional args,
// when given, replace the configured message.
func loadSettings(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, err
		}
	}

	applyFlags(cmd.Flags(), cfg)

	if len(args) > 0 {
		cfg.Transmit.Message = strings.Join(args, " ")
		cfg.Transmit.MessageHex = ""
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}

func applyFlags(flags *pflag.FlagSet, cfg *config.Config) {
	changed := flags.Changed

	if changed("resolution") {
		cfg.Encoder.ResolutionHz = resolutionHz
	}
	if changed("uart-baud") {
		cfg.Encoder.BaudRate = uartBaud
	}
	if changed("idle-level") {
		cfg.Encoder.IdleLevel = idleLevel
	}
	if changed("mem-block") {
		cfg.Channel.MemBlockSymbols = memBlock
	}

	if changed("message") {
		cfg.Transmit.Message = message
		cfg.Transmit.MessageHex = ""
	}
	if changed("hex") {
		cfg.Transmit.MessageHex = messageHex
	}

	// Only defined on transmit
	if changed("interval") {
		cfg.Transmit.IntervalMs = txInterval
	}
	if changed("count") {
		cfg.Transmit.Count = txCount
	}
	if changed("loop-count") {
		cfg.Transmit.LoopCount = txLoopCount
	}
	if changed("eot-level") {
		eot := txEOTLevel
		cfg.Transmit.EOTLevel = &eot
	}

	// --port and --url pick the output kind
	if changed("port") {
		cfg.Output.Kind = config.OutputSerial
		cfg.Output.Port = portName
	}
	if changed("baud") {
		cfg.Output.Baud = baudRate
	}
	if changed("url") {
		cfg.Output.Kind = config.OutputWebSocket
		cfg.Output.URL = wsURL
	}
	if changed("username") {
		cfg.Output.Username = wsUsername
	}
	if changed("no-ssl-verify") {
		cfg.Output.NoSSLVerify = wsNoSSLVerify
	}
}
