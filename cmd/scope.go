// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var scopeCmd = &cobra.Command{
	Use:   "scope",
	Short: "Interactive waveform preview",
	Long: `Type a message and see the UART frames it encodes to.

Text is encoded as-is; input starting with 0x is read as hex bytes.

Keys:
  enter      encode the current input
  tab        cycle view (waveform, windows, words)
  pgup/pgdn  scroll
  esc        quit`,
	RunE: runScope,
}

func init() {
	rootCmd.AddCommand(scopeCmd)
}

func runScope(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd, args)
	if err != nil {
		return err
	}

	m := initialScopeModel(cmd.Context(), cfg)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}
