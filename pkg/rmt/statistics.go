// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package rmt

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Statistics tracks transmission counters and rates
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	Transactions  uint64
	Completed     uint64
	Failed        uint64
	Aborted       uint64
	Stalls        uint64
	SinkErrors    uint64
	Bytes         uint64
	Symbols       uint64
	Windows       uint64
	MemFullYields uint64
	Ticks         uint64

	// Rates (calculated)
	TransactionRate float64 // transactions/sec
	SymbolRate      float64 // symbols/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update records one Transmit call of n input bytes
func (s *Statistics) Update(report TxReport, n int, err error) {
	s.Transactions++
	s.Bytes += uint64(n)
	s.Symbols += uint64(report.Symbols)
	s.Windows += uint64(report.Windows)
	s.MemFullYields += uint64(report.MemFullYields)
	s.Ticks += report.Ticks

	switch {
	case err == nil:
		s.Completed++
	case errors.Is(err, ErrStalled):
		s.Stalls++
		s.Failed++
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.Aborted++
		s.Failed++
	default:
		s.SinkErrors++
		s.Failed++
	}

	// Update timestamp for rate calculation
	s.LastUpdateTime = time.Now()
}

// CalculateRates calculates transaction and symbol rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.TransactionRate = float64(s.Transactions) / elapsed
		s.SymbolRate = float64(s.Symbols) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var completedPercent, symbolsPerWindow float64
	if s.Transactions > 0 {
		completedPercent = float64(s.Completed) * 100.0 / float64(s.Transactions)
	}
	if s.Windows > 0 {
		symbolsPerWindow = float64(s.Symbols) / float64(s.Windows)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Transactions:    %8d\n", s.Transactions)
	result += fmt.Sprintf("Completed:       %8d (%.1f%%)\n", s.Completed, completedPercent)

	if s.Failed > 0 {
		result += fmt.Sprintf("Failed:          %8d\n", s.Failed)
		if s.Aborted > 0 {
			result += fmt.Sprintf("  Aborted:          %5d\n", s.Aborted)
		}
		if s.Stalls > 0 {
			result += fmt.Sprintf("  Stalled:          %5d\n", s.Stalls)
		}
		if s.SinkErrors > 0 {
			result += fmt.Sprintf("  Sink Errors:      %5d\n", s.SinkErrors)
		}
	}

	result += fmt.Sprintf("Bytes:           %8d\n", s.Bytes)
	result += fmt.Sprintf("Symbols:         %8d (%.1f/window)\n", s.Symbols, symbolsPerWindow)
	result += fmt.Sprintf("Mem Full Yields: %8d\n", s.MemFullYields)
	result += fmt.Sprintf("Tx Rate:         %8.1f tx/sec\n", s.TransactionRate)
	result += fmt.Sprintf("Symbol Rate:     %8.1f sym/sec\n", s.SymbolRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
