// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package uart

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Thermoquad/irtx/pkg/rmt"
)

var (
	demoConfig = Config{Resolution: 1000000, BaudRate: 2000, IdleLevel: 1}

	zeroSym = rmt.Symbol{Level0: 0, Duration0: 250, Level1: 0, Duration1: 250}
	oneSym  = rmt.Symbol{Level0: 1, Duration0: 250, Level1: 1, Duration1: 250}
)

// expectedFrames builds the reference symbol sequence for data directly
func expectedFrames(cfg Config, data []byte) []rmt.Symbol {
	bit0, bit1 := cfg.BitTemplates()
	syms := make([]rmt.Symbol, 0, len(data)*FrameSymbols)
	for _, b := range data {
		syms = append(syms, bit0)
		for i := 0; i < DataBits; i++ {
			if b>>i&1 == 1 {
				syms = append(syms, bit1)
			} else {
				syms = append(syms, bit0)
			}
		}
		syms = append(syms, bit1)
	}
	return syms
}

type encodeRun struct {
	symbols   []rmt.Symbol
	calls     int
	completes int
	counted   int // sum of counts returned by Encode
}

// encodeInWindows feeds data to enc through windows of k symbols until the
// encoder reports completion.
func encodeInWindows(t *testing.T, enc rmt.Encoder, data []byte, k int) encodeRun {
	t.Helper()

	var run encodeRun
	mem := rmt.NewMemBlock(k)
	limit := len(data)*FrameSymbols + 2
	if k > 0 {
		limit = len(data)*FrameSymbols/k + 2
	}

	for {
		mem.Reset()
		n, state := enc.Encode(mem, data)
		run.calls++
		run.counted += n
		run.symbols = append(run.symbols, mem.Symbols()...)

		if n != mem.Len() {
			t.Fatalf("call %d: Encode returned %d but wrote %d symbols", run.calls, n, mem.Len())
		}
		if state.Complete() {
			run.completes++
			return run
		}
		if !state.MemFull() {
			t.Fatalf("call %d: state %s is neither complete nor mem_full", run.calls, state)
		}
		if run.calls > limit {
			t.Fatalf("no completion after %d calls", run.calls)
		}
	}
}

func newTestEncoder(t *testing.T, cfg Config) *Encoder {
	t.Helper()
	enc, err := NewEncoder(&cfg)
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	t.Cleanup(func() {
		if !enc.released {
			if err := enc.Release(); err != nil {
				t.Errorf("Release failed: %v", err)
			}
		}
	})
	return enc
}

func TestConfig_BitTemplates(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantHalf uint32
		wantBit0 rmt.Symbol
		wantBit1 rmt.Symbol
	}{
		{
			name:     "idle high",
			cfg:      demoConfig,
			wantHalf: 250,
			wantBit0: zeroSym,
			wantBit1: oneSym,
		},
		{
			name:     "idle low for carrier modulation",
			cfg:      Config{Resolution: 1000000, BaudRate: 2000, IdleLevel: 0},
			wantHalf: 250,
			wantBit0: rmt.Symbol{Level0: 1, Duration0: 250, Level1: 1, Duration1: 250},
			wantBit1: rmt.Symbol{Level0: 0, Duration0: 250, Level1: 0, Duration1: 250},
		},
		{
			name:     "truncating division",
			cfg:      Config{Resolution: 10000000, BaudRate: 9600, IdleLevel: 1},
			wantHalf: 520,
			wantBit0: rmt.Symbol{Level0: 0, Duration0: 520, Level1: 0, Duration1: 520},
			wantBit1: rmt.Symbol{Level0: 1, Duration0: 520, Level1: 1, Duration1: 520},
		},
		{
			// beyond rmt.MaxDuration; callers must reject this configuration
			name:     "half bit above the duration field is truncated",
			cfg:      Config{Resolution: 80000000, BaudRate: 300, IdleLevel: 1},
			wantHalf: 133333,
			wantBit0: rmt.Symbol{Level0: 0, Duration0: 2261, Level1: 0, Duration1: 2261},
			wantBit1: rmt.Symbol{Level0: 1, Duration0: 2261, Level1: 1, Duration1: 2261},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.HalfBitTicks(); got != tt.wantHalf {
				t.Errorf("HalfBitTicks() = %d, want %d", got, tt.wantHalf)
			}

			enc := newTestEncoder(t, tt.cfg)
			bit0, bit1 := enc.BitTemplates()
			if bit0 != tt.wantBit0 {
				t.Errorf("bit0 = %s, want %s", bit0, tt.wantBit0)
			}
			if bit1 != tt.wantBit1 {
				t.Errorf("bit1 = %s, want %s", bit1, tt.wantBit1)
			}
		})
	}
}

func TestEncode_SingleByteFrame(t *testing.T) {
	enc := newTestEncoder(t, demoConfig)
	mem := rmt.NewMemBlock(0)

	n, state := enc.Encode(mem, []byte{0x01})
	if state != rmt.EncodeComplete {
		t.Fatalf("state = %s, want complete", state)
	}
	if n != FrameSymbols {
		t.Fatalf("n = %d, want %d", n, FrameSymbols)
	}

	// start, 0x01 LSB first, stop
	want := []rmt.Symbol{
		zeroSym,
		oneSym, zeroSym, zeroSym, zeroSym, zeroSym, zeroSym, zeroSym, zeroSym,
		oneSym,
	}
	if !reflect.DeepEqual(mem.Symbols(), want) {
		t.Errorf("symbols = %v\nwant      %v", mem.Symbols(), want)
	}
}

func TestEncode_SymbolCount(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		k    int
	}{
		{name: "empty input", data: []byte{}, k: 0},
		{name: "empty input small window", data: nil, k: 3},
		{name: "demo message unbounded", data: []byte{1, 3, 7, 15, 31}, k: 0},
		{name: "demo message 64 symbol block", data: []byte{1, 3, 7, 15, 31}, k: 64},
		{name: "all ones", data: []byte{0xFF, 0xFF, 0xFF}, k: 7},
		{name: "single symbol windows", data: []byte("hello"), k: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := newTestEncoder(t, demoConfig)
			run := encodeInWindows(t, enc, tt.data, tt.k)

			want := FrameSymbols * len(tt.data)
			if len(run.symbols) != want {
				t.Errorf("symbols = %d, want %d", len(run.symbols), want)
			}
			if run.counted != want {
				t.Errorf("sum of returned counts = %d, want %d", run.counted, want)
			}
			if run.completes != 1 {
				t.Errorf("completes = %d, want 1", run.completes)
			}
			if enc.State() != StateStartBit || enc.Offset() != 0 {
				t.Errorf("after completion state=%s offset=%d, want START_BIT/0", enc.State(), enc.Offset())
			}
		})
	}
}

func TestEncode_StreamingMatchesBatch(t *testing.T) {
	messages := [][]byte{
		{0x00},
		{0x01},
		{0x55, 0xAA},
		{1, 3, 7, 15, 31},
		[]byte("The quick brown fox"),
	}

	for _, data := range messages {
		want := expectedFrames(demoConfig, data)

		batch := encodeInWindows(t, newTestEncoder(t, demoConfig), data, 0)
		if !reflect.DeepEqual(batch.symbols, want) {
			t.Fatalf("unbounded encode of % X does not match reference frames", data)
		}

		for k := 1; k <= 2*FrameSymbols+1; k++ {
			run := encodeInWindows(t, newTestEncoder(t, demoConfig), data, k)
			if !reflect.DeepEqual(run.symbols, want) {
				t.Errorf("k=%d: streaming encode of % X differs from batch", k, data)
			}
		}
	}
}

func TestEncode_ResumesMidFrame(t *testing.T) {
	enc := newTestEncoder(t, demoConfig)
	mem := rmt.NewMemBlock(4)
	data := []byte{0x0F}

	// start + 3 data bits, 4 data bits, last data bit + stop
	steps := []struct {
		wantN      int
		wantState  rmt.EncodeState
		wantFrame  FrameState
		wantOffset int
	}{
		{wantN: 4, wantState: rmt.EncodeMemFull, wantFrame: StateData, wantOffset: 0},
		{wantN: 4, wantState: rmt.EncodeMemFull, wantFrame: StateData, wantOffset: 0},
		{wantN: 2, wantState: rmt.EncodeComplete, wantFrame: StateStartBit, wantOffset: 0},
	}

	var got []rmt.Symbol
	for i, step := range steps {
		mem.Reset()
		n, state := enc.Encode(mem, data)
		got = append(got, mem.Symbols()...)

		if n != step.wantN {
			t.Errorf("step %d: n = %d, want %d", i, n, step.wantN)
		}
		if state != step.wantState {
			t.Errorf("step %d: state = %s, want %s", i, state, step.wantState)
		}
		if enc.State() != step.wantFrame {
			t.Errorf("step %d: frame state = %s, want %s", i, enc.State(), step.wantFrame)
		}
		if enc.Offset() != step.wantOffset {
			t.Errorf("step %d: offset = %d, want %d", i, enc.Offset(), step.wantOffset)
		}
	}

	if !reflect.DeepEqual(got, expectedFrames(demoConfig, data)) {
		t.Errorf("resumed symbols = %v", got)
	}
}

func TestEncode_ExactlyFullWindow(t *testing.T) {
	// The stop bit fills the window exactly: the byte is done but completion
	// is only reported on the next call, which writes nothing.
	enc := newTestEncoder(t, demoConfig)
	mem := rmt.NewMemBlock(FrameSymbols)

	n, state := enc.Encode(mem, []byte{0x42})
	if n != FrameSymbols || state != rmt.EncodeMemFull {
		t.Fatalf("first call: n=%d state=%s, want %d mem_full", n, state, FrameSymbols)
	}
	if enc.Offset() != 1 || enc.State() != StateStartBit {
		t.Fatalf("first call: offset=%d state=%s, want 1 START_BIT", enc.Offset(), enc.State())
	}

	mem.Reset()
	n, state = enc.Encode(mem, []byte{0x42})
	if n != 0 || state != rmt.EncodeComplete {
		t.Fatalf("second call: n=%d state=%s, want 0 complete", n, state)
	}
	if enc.Offset() != 0 {
		t.Errorf("offset after completion = %d, want 0", enc.Offset())
	}
}

func TestEncode_IndependentSessions(t *testing.T) {
	enc := newTestEncoder(t, demoConfig)

	first := encodeInWindows(t, enc, []byte{0xA5, 0x5A}, 3)
	second := encodeInWindows(t, enc, []byte{0xA5, 0x5A}, 3)

	if !reflect.DeepEqual(first.symbols, second.symbols) {
		t.Error("second session produced different symbols")
	}
}

func TestReset_RestartsAtFirstByte(t *testing.T) {
	enc := newTestEncoder(t, demoConfig)
	data := []byte{0xAA, 0x55}

	mem := rmt.NewMemBlock(12)
	if _, state := enc.Encode(mem, data); !state.MemFull() {
		t.Fatalf("state = %s, want mem_full", state)
	}
	if enc.Offset() != 1 || enc.State() != StateData {
		t.Fatalf("offset=%d state=%s, want 1 DATA", enc.Offset(), enc.State())
	}

	enc.Reset()
	if enc.Offset() != 0 || enc.State() != StateStartBit {
		t.Fatalf("after Reset offset=%d state=%s, want 0 START_BIT", enc.Offset(), enc.State())
	}
	enc.Reset() // idempotent

	run := encodeInWindows(t, enc, data, 0)
	if !reflect.DeepEqual(run.symbols, expectedFrames(demoConfig, data)) {
		t.Error("encode after Reset did not restart at byte 0")
	}
}

func TestNewEncoder_NilConfig(t *testing.T) {
	allocs := rmt.DefaultHeap.Allocs()

	enc, err := NewEncoder(nil)
	if enc != nil {
		t.Error("expected nil encoder")
	}
	if !errors.Is(err, rmt.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
	if rmt.DefaultHeap.Allocs() != allocs {
		t.Error("nil config must not allocate")
	}
}

func TestNewEncoder_OutOfMemory(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		prefill  int
		wantLive int
	}{
		{name: "no room for encoder", capacity: 1, prefill: 1, wantLive: 1},
		{name: "no room for bytes encoder", capacity: 1, wantLive: 0},
		{name: "no room for copy encoder", capacity: 2, wantLive: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			heap := rmt.NewHeap(tt.capacity)
			for i := 0; i < tt.prefill; i++ {
				if err := heap.Alloc(); err != nil {
					t.Fatalf("prefill: %v", err)
				}
			}

			cfg := demoConfig
			cfg.Heap = heap
			enc, err := NewEncoder(&cfg)
			if enc != nil {
				t.Error("expected nil encoder")
			}
			if !errors.Is(err, rmt.ErrNoMem) {
				t.Fatalf("err = %v, want ErrNoMem", err)
			}
			if heap.Live() != tt.wantLive {
				t.Errorf("live = %d, want %d", heap.Live(), tt.wantLive)
			}
			if heap.Allocs()-uint64(tt.prefill) != heap.Frees() {
				t.Errorf("allocs=%d frees=%d, partial construction leaked", heap.Allocs(), heap.Frees())
			}
		})
	}
}

func TestRelease(t *testing.T) {
	heap := rmt.NewHeap(3)
	cfg := demoConfig
	cfg.Heap = heap

	enc, err := NewEncoder(&cfg)
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	if heap.Live() != 3 {
		t.Fatalf("live = %d, want 3 (encoder + 2 sub-encoders)", heap.Live())
	}

	encodeInWindows(t, enc, []byte("abc"), 5)

	if err := enc.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if heap.Live() != 0 || heap.Allocs() != 3 || heap.Frees() != 3 {
		t.Errorf("live=%d allocs=%d frees=%d, want 0/3/3", heap.Live(), heap.Allocs(), heap.Frees())
	}

	if err := enc.Release(); !errors.Is(err, rmt.ErrReleased) {
		t.Errorf("second Release err = %v, want ErrReleased", err)
	}
	if heap.Frees() != 3 {
		t.Errorf("second Release freed again: frees = %d", heap.Frees())
	}
}
