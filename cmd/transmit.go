// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/irtx/internal/config"
	"github.com/Thermoquad/irtx/pkg/rmt"
	"github.com/Thermoquad/irtx/pkg/uart"
)

var (
	txInterval  int
	txCount     int
	txLoopCount int
	txEOTLevel  uint8
	txStats     int
)

var transmitCmd = &cobra.Command{
	Use:   "transmit [message...]",
	Short: "Periodically transmit a message",
	Long: `Encode the message and transmit it every --interval milliseconds until
--count transmissions are done or Ctrl+C is pressed.

Each memory window goes to the configured output: printed to stdout, written
as packed little-endian symbol words to a serial port, or sent as CBOR
batches over a WebSocket.

Statistics are printed every --stats seconds and on exit.`,
	RunE: runTransmit,
}

func init() {
	rootCmd.AddCommand(transmitCmd)
	transmitCmd.Flags().IntVarP(&txInterval, "interval", "i", 1000, "Milliseconds between transmissions")
	transmitCmd.Flags().IntVarP(&txCount, "count", "n", 0, "Number of transmissions (0 = until interrupted)")
	transmitCmd.Flags().IntVar(&txLoopCount, "loop-count", 0, "Extra repetitions within one transmission")
	transmitCmd.Flags().Uint8Var(&txEOTLevel, "eot-level", 0, "Line level held after the last symbol (falls back to transmit.eot_level, then the idle level)")
	transmitCmd.Flags().IntVar(&txStats, "stats", 10, "Statistics interval in seconds (0 = only on exit)")
}

func runTransmit(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd, args)
	if err != nil {
		return err
	}

	sink, connInfo, err := OpenSink(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer sink.Close()

	enc, err := uart.NewEncoder(cfg.UART())
	if err != nil {
		return err
	}
	defer enc.Release()

	ch, err := rmt.NewTxChannel(cfg.TxChannel(), sink)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("irtx - Transmit\n")
	fmt.Printf("Output: %s\n", connInfo)
	chCfg := ch.Config()
	fmt.Printf("Encoder: %d Hz, %d baud, idle %d, eot %d, %d symbol window\n",
		chCfg.ResolutionHz, cfg.Encoder.BaudRate, cfg.Encoder.IdleLevel, cfg.Transmission().EOTLevel, chCfg.MemBlockSymbols)
	fmt.Printf("Message: % X\n", cfg.Transmit.Payload)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	stats := rmt.NewStatistics()
	err = transmitLoop(ctx, cfg, ch, enc, stats, time.Duration(txStats)*time.Second)

	stats.CalculateRates()
	fmt.Print(stats.String())

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// transmitLoop sends the payload until the count is reached or ctx is done.
// Failed transmissions are logged and counted, never fatal, unless the
// output connection itself is gone.
func transmitLoop(ctx context.Context, cfg *config.Config, ch *rmt.TxChannel, enc rmt.Encoder, stats *rmt.Statistics, statsEvery time.Duration) error {
	payload := cfg.Transmit.Payload
	tc := cfg.Transmission()
	interval := time.Duration(cfg.Transmit.IntervalMs) * time.Millisecond

	var statsTick <-chan time.Time
	if statsEvery > 0 {
		ticker := time.NewTicker(statsEvery)
		defer ticker.Stop()
		statsTick = ticker.C
	}

	next := time.NewTimer(0)
	defer next.Stop()

	for sent := 0; cfg.Transmit.Count == 0 || sent < cfg.Transmit.Count; {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-statsTick:
			stats.CalculateRates()
			log.Printf("%d transmissions, %d failed, %.1f symbols/s", stats.Transactions, stats.Failed, stats.SymbolRate)
			continue
		case <-next.C:
		}

		report, err := ch.Transmit(ctx, enc, payload, tc)
		stats.Update(report, len(payload), err)

		switch {
		case err == nil:
			log.Printf("tx %d: %d symbols in %d windows, %v, eot level %d",
				stats.Transactions, report.Symbols, report.Windows, report.Duration(cfg.Encoder.ResolutionHz), report.EOTLevel)
		case errors.Is(err, context.Canceled):
			return err
		case errors.Is(err, ErrConnectionClosed):
			return err
		default:
			log.Printf("tx %d failed: %v", stats.Transactions, err)
		}

		sent++
		next.Reset(interval)
	}
	return nil
}
