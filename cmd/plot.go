// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/Thermoquad/irtx/internal/config"
	"github.com/Thermoquad/irtx/pkg/rmt"
	"github.com/Thermoquad/irtx/pkg/waveplot"
)

var (
	plotOutput  string
	plotSymbols string
	plotWidth   float64
	plotHeight  float64
)

var plotCmd = &cobra.Command{
	Use:   "plot [message...]",
	Short: "Render the encoded waveform to an image",
	Long: `Encode the message and draw the line level over time, ending with the
line held at the end-of-transmission level.

With --symbols, the packed little-endian symbol words in the given file are
plotted instead, e.g. a capture of what transmit wrote to a serial port.

The image format follows the --output extension (png, svg, pdf, jpg, ...).`,
	RunE: runPlot,
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.Flags().StringVarP(&plotOutput, "output", "o", "waveform.png", "Output image path")
	plotCmd.Flags().StringVarP(&plotSymbols, "symbols", "s", "", "Plot packed symbol words from this file")
	plotCmd.Flags().Float64Var(&plotWidth, "width", float64(waveplot.DefaultWidth/vg.Inch), "Image width in inches")
	plotCmd.Flags().Float64Var(&plotHeight, "height", float64(waveplot.DefaultHeight/vg.Inch), "Image height in inches")
}

// plotInput returns the symbols to draw, their end level and a title
func plotInput(cmd *cobra.Command, cfg *config.Config, symbolFile string) ([]rmt.Symbol, uint8, string, error) {
	eot := cfg.Transmission().EOTLevel

	if symbolFile != "" {
		data, err := os.ReadFile(symbolFile)
		if err != nil {
			return nil, 0, "", fmt.Errorf("failed to read symbols: %w", err)
		}
		if len(data)%rmt.SymbolSize != 0 {
			return nil, 0, "", fmt.Errorf("%s: %d bytes is not a whole number of %d-byte symbols", symbolFile, len(data), rmt.SymbolSize)
		}
		return rmt.ParseSymbols(data), eot, symbolFile, nil
	}

	res, err := encodeMessage(cmd.Context(), cfg)
	if err != nil {
		return nil, 0, "", err
	}
	title := fmt.Sprintf("% X @ %d baud", cfg.Transmit.Payload, cfg.Encoder.BaudRate)
	return res.symbols(), res.report.EOTLevel, title, nil
}

func runPlot(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd, args)
	if err != nil {
		return err
	}

	syms, eot, title, err := plotInput(cmd, cfg, plotSymbols)
	if err != nil {
		return err
	}

	p, err := waveplot.New(syms, cfg.Encoder.ResolutionHz, eot, title)
	if err != nil {
		return err
	}

	if err := waveplot.Save(p, vg.Length(plotWidth)*vg.Inch, vg.Length(plotHeight)*vg.Inch, plotOutput); err != nil {
		return fmt.Errorf("failed to write %s: %w", plotOutput, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d symbols to %s\n", len(syms), plotOutput)
	return nil
}
