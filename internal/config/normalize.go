// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

// Normalize applies post-validation normalization.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	tx := &cfg.Transmit

	if tx.EOTLevel == nil {
		idle := cfg.Encoder.IdleLevel
		tx.EOTLevel = &idle
	}

	switch {
	case tx.MessageHex != "":
		// already validated
		tx.Payload, _ = decodeHex(tx.MessageHex)
	case tx.Message != "":
		tx.Payload = []byte(tx.Message)
	default:
		tx.Payload = append([]byte(nil), DefaultMessage...)
	}
}
