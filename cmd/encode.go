// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/irtx/internal/config"
	"github.com/Thermoquad/irtx/pkg/rmt"
	"github.com/Thermoquad/irtx/pkg/uart"
)

// Output formats
const (
	formatText  = "text"
	formatWords = "words"
	formatCBOR  = "cbor"
	formatWave  = "wave"
)

var (
	encodeFormat string
)

var encodeCmd = &cobra.Command{
	Use:   "encode [message...]",
	Short: "Encode a message and print the resulting symbols",
	Long: `Encode a message as UART frames and print the symbols produced for each
memory window.

The message is taken from the arguments, --message, --hex or the config file,
in that order. Without any of them the demo message 01 03 07 0F 1F is used.

Formats:
  text   per-window symbol listing (default)
  words  packed 32-bit symbol words in hex
  cbor   one hex-encoded CBOR batch per window
  wave   line level drawn with one column per half bit`,
	RunE: runEncode,
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().StringVarP(&encodeFormat, "format", "f", formatText, "Output format: text, words, cbor, wave")
}

// encodeResult holds the windows produced by one transmission
type encodeResult struct {
	windows [][]rmt.Symbol
	report  rmt.TxReport
	bit0    rmt.Symbol
	bit1    rmt.Symbol
}

func (r *encodeResult) symbols() []rmt.Symbol {
	var all []rmt.Symbol
	for _, w := range r.windows {
		all = append(all, w...)
	}
	return all
}

// encodeMessage runs the configured payload through a fresh encoder and a
// simulated channel, keeping every window.
func encodeMessage(ctx context.Context, cfg *config.Config) (*encodeResult, error) {
	enc, err := uart.NewEncoder(cfg.UART())
	if err != nil {
		return nil, err
	}
	defer enc.Release()

	res := &encodeResult{}
	res.bit0, res.bit1 = enc.BitTemplates()

	collector := &rmt.Collector{}
	ch, err := rmt.NewTxChannel(cfg.TxChannel(), collector)
	if err != nil {
		return nil, err
	}

	res.report, err = ch.Transmit(ctx, enc, cfg.Transmit.Payload, cfg.Transmission())
	if err != nil {
		return nil, err
	}
	res.windows = collector.Blocks
	return res, nil
}

func runEncode(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd, args)
	if err != nil {
		return err
	}

	res, err := encodeMessage(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := writeEncoded(out, encodeFormat, cfg, res); err != nil {
		return err
	}

	if encodeFormat == formatText {
		fmt.Fprintf(out, "\n%d bytes -> %d symbols in %d windows (%d mem-full yields), %v on the wire, line held at level %d\n",
			len(cfg.Transmit.Payload), res.report.Symbols, res.report.Windows,
			res.report.MemFullYields, res.report.Duration(cfg.Encoder.ResolutionHz), res.report.EOTLevel)
	}
	return nil
}

func writeEncoded(out io.Writer, format string, cfg *config.Config, res *encodeResult) error {
	switch format {
	case formatText:
		fmt.Fprintf(out, "bit0 %v  bit1 %v\n\n", res.bit0, res.bit1)
		for i, w := range res.windows {
			fmt.Fprint(out, rmt.FormatWindow(i, w))
		}

	case formatWords:
		fmt.Fprint(out, rmt.FormatWords(res.symbols()))

	case formatCBOR:
		for i, w := range res.windows {
			data, err := rmt.MarshalBatch(rmt.NewBatch(uint64(i), cfg.Encoder.ResolutionHz, w, false))
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%X\n", data)
		}
		data, err := rmt.MarshalBatch(rmt.NewEndBatch(uint64(len(res.windows)), cfg.Encoder.ResolutionHz, res.report.EOTLevel))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%X\n", data)

	case formatWave:
		// one bit time at the EOT level after the last frame
		half := cfg.UART().HalfBitTicks()
		hold := rmt.NewSymbol(res.report.EOTLevel, uint16(half), res.report.EOTLevel, uint16(half))
		fmt.Fprintln(out, rmt.RenderWaveform(append(res.symbols(), hold), half))

	default:
		return fmt.Errorf("unknown format %q (use %s, %s, %s or %s)", format, formatText, formatWords, formatCBOR, formatWave)
	}
	return nil
}
