// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	configPath string

	// Encoder flags
	resolutionHz uint32
	uartBaud     uint32
	idleLevel    uint8
	memBlock     int

	// Message flags
	message    string
	messageHex string

	// Serial output flags
	portName string
	baudRate int

	// WebSocket output flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool
)

var rootCmd = &cobra.Command{
	Use:   "irtx",
	Short: "Software UART over a pulse-timing transmit channel",
	Long: `irtx - Encode bytes as UART frames for a remote-control style transmit
peripheral, then inspect or forward the resulting symbols.

Every byte becomes one frame of 10 symbols (start bit, 8 data bits LSB first,
stop bit). Symbols are produced window by window, exactly as a hardware memory
block of --mem-block symbols would receive them.

Settings come from --config (YAML) and are overridden by flags.

Output modes (transmit):
  stdout:    default, prints every window
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the IRTX_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")

	// Encoder flags
	rootCmd.PersistentFlags().Uint32Var(&resolutionHz, "resolution", 1000000, "Channel tick rate in Hz")
	rootCmd.PersistentFlags().Uint32Var(&uartBaud, "uart-baud", 2000, "Encoded UART baud rate")
	rootCmd.PersistentFlags().Uint8Var(&idleLevel, "idle-level", 1, "Line level between frames (0 or 1)")
	rootCmd.PersistentFlags().IntVar(&memBlock, "mem-block", 64, "Channel memory block size in symbols")

	// Message flags
	rootCmd.PersistentFlags().StringVarP(&message, "message", "m", "", "Message text to encode")
	rootCmd.PersistentFlags().StringVar(&messageHex, "hex", "", "Message bytes as hex (e.g. \"01 03 07\")")

	// Serial output flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket output flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
