// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Thermoquad/irtx/internal/config"
)

func TestParseScopeInput(t *testing.T) {
	tests := []struct {
		in      string
		want    []byte
		wantErr bool
	}{
		{in: "Hi", want: []byte("Hi")},
		{in: "0x01 03 07", want: []byte{1, 3, 7}},
		{in: "  0XFF ", want: []byte{0xFF}},
		{in: "0xZZ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseScopeInput(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got % X, want % X", got, tt.want)
			}
		})
	}
}

func TestRenderScope_Waveform(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) { c.Transmit.Message = "AB" })
	res, err := encodeMessage(context.Background(), cfg)
	if err != nil {
		t.Fatalf("encodeMessage failed: %v", err)
	}

	out := renderScope(scopeWave, cfg, cfg.Transmit.Payload, res)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want one per byte: %q", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "41 'A'") || !strings.HasPrefix(lines[1], "42 'B'") {
		t.Errorf("unexpected labels: %q", lines)
	}
}

func TestScopeModel_Update(t *testing.T) {
	cfg := testConfig(t, nil)
	m := initialScopeModel(context.Background(), cfg)

	if m.result == nil || m.stats.Completed != 1 {
		t.Fatal("initial payload should be encoded")
	}

	// tab cycles the view
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(scopeModel)
	if m.mode != scopeWindows {
		t.Errorf("mode = %d, want windows", m.mode)
	}

	m.input.SetValue("0x55")
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(scopeModel)
	if !bytes.Equal(m.payload, []byte{0x55}) || m.stats.Completed != 2 {
		t.Errorf("payload = % X, completed = %d", m.payload, m.stats.Completed)
	}

	m.input.SetValue("0xG")
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(scopeModel)
	if m.lastLog == nil || !m.lastLog.isError {
		t.Error("bad hex should log an error")
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !next.(scopeModel).quitting || cmd == nil {
		t.Error("esc should quit")
	}
}
