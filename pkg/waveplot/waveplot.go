// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package waveplot renders pulse-timing symbols as a line-level chart.
package waveplot

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/Thermoquad/irtx/pkg/rmt"
)

// Default image size
var (
	DefaultWidth  = 12 * vg.Inch
	DefaultHeight = 3 * vg.Inch
)

// Points converts symbols into a step trace of (milliseconds, level) pairs.
// Each segment contributes its start and end point so level changes are
// drawn as vertical edges. The trace ends with the line held at eotLevel for
// as long as the last symbol lasted.
func Points(syms []rmt.Symbol, resolutionHz uint32, eotLevel uint8) plotter.XYs {
	if resolutionHz == 0 {
		resolutionHz = rmt.DefaultResolutionHz
	}
	ms := func(ticks uint64) float64 {
		return float64(ticks) * 1000 / float64(resolutionHz)
	}

	pts := make(plotter.XYs, 0, len(syms)*4+2)
	var ticks uint64
	segment := func(level uint8, duration uint16) {
		if duration == 0 {
			return
		}
		start := ms(ticks)
		ticks += uint64(duration)
		end := ms(ticks)
		pts = append(pts,
			plotter.XY{X: start, Y: float64(level)},
			plotter.XY{X: end, Y: float64(level)},
		)
	}
	for _, s := range syms {
		segment(s.Level0, s.Duration0)
		segment(s.Level1, s.Duration1)
	}

	if len(syms) > 0 {
		hold := syms[len(syms)-1].Ticks()
		if hold > rmt.MaxDuration {
			hold = rmt.MaxDuration
		}
		segment(eotLevel, uint16(hold))
	}
	return pts
}

// New builds a plot of the line level over time, ending at eotLevel.
func New(syms []rmt.Symbol, resolutionHz uint32, eotLevel uint8, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (ms)"
	p.Y.Label.Text = "Level"
	p.Y.Min = -0.25
	p.Y.Max = 1.25

	line, err := plotter.NewLine(Points(syms, resolutionHz, eotLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to build trace: %w", err)
	}
	line.Color = color.RGBA{R: 32, G: 96, B: 192, A: 255}
	line.Width = vg.Points(1.5)
	p.Add(line, plotter.NewGrid())

	return p, nil
}

func combineErrors(errors ...error) (err error) {
	for _, e := range errors {
		switch {
		case e == nil:
			// ignore
		case err == nil:
			err = e
		default:
			err = multierror.Append(err, e)
		}
	}
	return err
}

// Write renders p in the given format (png, svg, pdf, ...) to output
func Write(p *plot.Plot, width, height vg.Length, output io.Writer, format string) error {
	w, err := p.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	_, err = w.WriteTo(output)
	return err
}

// Save renders p to path. The format is taken from the file extension.
func Save(p *plot.Plot, width, height vg.Length, path string) (err error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "" {
		return fmt.Errorf("cannot infer image format from %q", path)
	}

	output, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = combineErrors(err, output.Close())
	}()
	return Write(p, width, height, output, format)
}
