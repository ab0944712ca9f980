// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// irtx - software UART over a pulse-timing transmit channel
//
// A CLI tool for encoding bytes as UART frames, previewing and plotting
// the resulting symbols, and forwarding them to serial or WebSocket outputs.

package main

import (
	"fmt"
	"os"

	"github.com/Thermoquad/irtx/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
