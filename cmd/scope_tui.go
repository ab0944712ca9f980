// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/irtx/internal/config"
	"github.com/Thermoquad/irtx/pkg/rmt"
	"github.com/Thermoquad/irtx/pkg/uart"
)

// View modes
const (
	scopeWave = iota
	scopeWindows
	scopeWords
	scopeModeCount
)

var scopeModeNames = [scopeModeCount]string{"Waveform", "Windows", "Words"}

// Reserved rows above and below the viewport
const scopeChromeHeight = 10

// Event log entry
type scopeLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

//////////////////////////////////////////////////////////////
// Model
//////////////////////////////////////////////////////////////

type scopeModel struct {
	ctx context.Context
	cfg *config.Config

	input    textinput.Model
	viewport viewport.Model
	mode     int

	result  *encodeResult
	payload []byte
	stats   *rmt.Statistics
	lastLog *scopeLogEntry

	width    int
	height   int
	quitting bool
}

func initialScopeModel(ctx context.Context, cfg *config.Config) scopeModel {
	ti := textinput.New()
	ti.Placeholder = "Hello, or 0x01 03 07 0F 1F"
	ti.CharLimit = 256
	ti.Width = 60
	ti.Focus()

	m := scopeModel{
		ctx:      ctx,
		cfg:      cfg,
		input:    ti,
		viewport: viewport.New(76, 14),
		stats:    rmt.NewStatistics(),
		width:    80,
		height:   24,
	}
	m.encode(cfg.Transmit.Payload)
	return m
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m scopeModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m scopeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "tab":
			m.mode = (m.mode + 1) % scopeModeCount
			m.refresh()
			return m, nil

		case "enter":
			payload, err := parseScopeInput(m.input.Value())
			if err != nil {
				m.log(err.Error(), true)
				return m, nil
			}
			if len(payload) > 0 {
				m.encode(payload)
			}
			return m, nil

		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-4, 20)
		m.viewport.Height = max(msg.Height-scopeChromeHeight, 3)
		m.input.Width = max(msg.Width-8, 10)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// encode runs payload through a fresh encoder and updates the view
func (m *scopeModel) encode(payload []byte) {
	cfg := *m.cfg
	cfg.Transmit.Payload = payload

	res, err := encodeMessage(m.ctx, &cfg)
	m.stats.Update(reportOf(res), len(payload), err)
	if err != nil {
		m.log(fmt.Sprintf("encode failed: %v", err), true)
		return
	}

	m.payload = payload
	m.result = res
	m.log(fmt.Sprintf("%d bytes -> %d symbols, %d windows, %v",
		len(payload), res.report.Symbols, res.report.Windows,
		res.report.Duration(cfg.Encoder.ResolutionHz)), false)
	m.refresh()
}

func (m *scopeModel) refresh() {
	if m.result == nil {
		return
	}
	m.viewport.SetContent(renderScope(m.mode, m.cfg, m.payload, m.result))
	m.viewport.GotoTop()
}

func (m *scopeModel) log(message string, isError bool) {
	m.lastLog = &scopeLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
}

func reportOf(res *encodeResult) rmt.TxReport {
	if res == nil {
		return rmt.TxReport{}
	}
	return res.report
}

// parseScopeInput reads 0x-prefixed input as hex, anything else as text
func parseScopeInput(s string) ([]byte, error) {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		cfg := config.Default()
		cfg.Transmit.MessageHex = trimmed
		if err := config.Validate(cfg); err != nil {
			return nil, fmt.Errorf("bad hex input: %v", trimmed)
		}
		config.Normalize(cfg)
		return cfg.Transmit.Payload, nil
	}
	return []byte(s), nil
}

// renderScope builds the viewport content for one view mode
func renderScope(mode int, cfg *config.Config, payload []byte, res *encodeResult) string {
	var s strings.Builder

	switch mode {
	case scopeWave:
		// one frame per line
		syms := res.symbols()
		half := cfg.UART().HalfBitTicks()
		for i := 0; i+uart.FrameSymbols <= len(syms); i += uart.FrameSymbols {
			b := byte(0)
			if len(payload) > 0 {
				b = payload[(i/uart.FrameSymbols)%len(payload)]
			}
			fmt.Fprintf(&s, "%02X %s  %s\n", b, printable(b), rmt.RenderWaveform(syms[i:i+uart.FrameSymbols], half))
		}

	case scopeWindows:
		for i, w := range res.windows {
			s.WriteString(rmt.FormatWindow(i, w))
		}

	case scopeWords:
		s.WriteString(rmt.FormatWords(res.symbols()))
	}

	return s.String()
}

func printable(b byte) string {
	if b >= 0x20 && b < 0x7F {
		return fmt.Sprintf("'%c'", b)
	}
	return "   "
}

func (m scopeModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("IRTX - SCOPE"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%d Hz | %d baud | idle %d | %d symbol window | View: %s (tab) | esc to quit",
		m.cfg.Encoder.ResolutionHz, m.cfg.Encoder.BaudRate, m.cfg.Encoder.IdleLevel,
		m.cfg.Channel.MemBlockSymbols, scopeModeNames[m.mode])))
	s.WriteString("\n\n")

	s.WriteString(m.input.View())
	s.WriteString("\n\n")

	s.WriteString(boxStyle.Render(m.viewport.View()))
	s.WriteString("\n")

	s.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s",
		statsLabelStyle.Render("Encoded:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.Completed)),
		statsLabelStyle.Render("Symbols:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.Symbols)),
		statsLabelStyle.Render("Yields:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.MemFullYields)),
	))
	s.WriteString("\n")

	if m.lastLog != nil {
		timestamp := headerStyle.Render(m.lastLog.timestamp.Format("15:04:05.000"))
		if m.lastLog.isError {
			s.WriteString(fmt.Sprintf("%s %s", timestamp, errorStyle.Render("✗ "+m.lastLog.message)))
		} else {
			s.WriteString(fmt.Sprintf("%s %s", timestamp, warningStyle.Render("ℹ "+m.lastLog.message)))
		}
	}

	return s.String()
}
