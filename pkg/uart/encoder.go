// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package uart

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/Thermoquad/irtx/pkg/rmt"
)

// FrameState is the position of the encoder inside the current frame
type FrameState int

const (
	StateStartBit FrameState = iota
	StateData
	StateStopBit
)

// String returns the state name
func (s FrameState) String() string {
	switch s {
	case StateStartBit:
		return "START_BIT"
	case StateData:
		return "DATA"
	case StateStopBit:
		return "STOP_BIT"
	default:
		return fmt.Sprintf("FrameState(%d)", int(s))
	}
}

// Encoder encodes bytes as UART frames. It implements rmt.Encoder.
//
// Progress through the input is kept entirely in state and offset, so a
// caller can hand the same input back after EncodeMemFull and the encoder
// picks up at the same bit.
type Encoder struct {
	heap     *rmt.Heap
	bytesEnc rmt.Encoder // data bits
	copyEnc  rmt.Encoder // start and stop bits

	state  FrameState
	offset int

	bit0     rmt.Symbol
	bit1     rmt.Symbol
	bit0Word []byte // bit0 as copy encoder input
	bit1Word []byte // bit1 as copy encoder input

	released bool
}

// builder holds sub-encoders while an Encoder is being assembled so that a
// failure part way through can give back everything acquired so far.
type builder struct {
	heap     *rmt.Heap
	reserved bool
	bytesEnc rmt.Encoder
	copyEnc  rmt.Encoder
}

func (b *builder) abort() {
	if b.copyEnc != nil {
		_ = b.copyEnc.Release()
	}
	if b.bytesEnc != nil {
		_ = b.bytesEnc.Release()
	}
	if b.reserved {
		b.heap.Free()
	}
}

// NewEncoder creates a UART frame encoder.
//
// Returns an error wrapping rmt.ErrInvalidArgument when cfg is nil, or
// rmt.ErrNoMem when the heap cannot hold the encoder or one of its
// sub-encoders. Nothing stays allocated when an error is returned.
func NewEncoder(cfg *Config) (*Encoder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("uart encoder: nil config: %w", rmt.ErrInvalidArgument)
	}

	b := &builder{heap: cfg.Heap}
	if b.heap == nil {
		b.heap = rmt.DefaultHeap
	}

	if err := b.heap.Alloc(); err != nil {
		return nil, fmt.Errorf("no mem for uart encoder: %w", err)
	}
	b.reserved = true

	bit0, bit1 := cfg.BitTemplates()

	bytesEnc, err := rmt.NewBytesEncoder(&rmt.BytesEncoderConfig{
		Bit0:     bit0,
		Bit1:     bit1,
		MSBFirst: false,
		Heap:     b.heap,
	})
	if err != nil {
		b.abort()
		return nil, fmt.Errorf("create bytes encoder failed: %w", err)
	}
	b.bytesEnc = bytesEnc

	copyEnc, err := rmt.NewCopyEncoder(&rmt.CopyEncoderConfig{Heap: b.heap})
	if err != nil {
		b.abort()
		return nil, fmt.Errorf("create copy encoder failed: %w", err)
	}
	b.copyEnc = copyEnc

	return b.finish(bit0, bit1), nil
}

func (b *builder) finish(bit0, bit1 rmt.Symbol) *Encoder {
	return &Encoder{
		heap:     b.heap,
		bytesEnc: b.bytesEnc,
		copyEnc:  b.copyEnc,
		state:    StateStartBit,
		bit0:     bit0,
		bit1:     bit1,
		bit0Word: rmt.SymbolBytes(bit0),
		bit1Word: rmt.SymbolBytes(bit1),
	}
}

// Encode writes the frames for data into ch.
//
// It returns the number of symbols written during this call. The state has
// EncodeComplete set once every byte's stop bit has been written, after which
// the encoder is ready for new input. EncodeMemFull means ch ran out of room
// and Encode must be called again with the same data.
func (e *Encoder) Encode(ch rmt.Channel, data []byte) (int, rmt.EncodeState) {
	encoded := 0

	for e.offset < len(data) {
		var n int
		var session rmt.EncodeState

		switch e.state {
		case StateStartBit:
			n, session = e.copyEnc.Encode(ch, e.bit0Word)
			if session.Complete() {
				e.state = StateData
			}

		case StateData:
			// One byte per visit; the stop bit must follow every byte.
			n, session = e.bytesEnc.Encode(ch, data[e.offset:e.offset+1])
			if session.Complete() {
				e.state = StateStopBit
			}

		case StateStopBit:
			n, session = e.copyEnc.Encode(ch, e.bit1Word)
			if session.Complete() {
				e.state = StateStartBit
				e.offset++
			}
		}

		encoded += n
		if session.MemFull() {
			// yield, there is no free space for more symbols
			return encoded, rmt.EncodeMemFull
		}
	}

	// done
	e.offset = 0
	return encoded, rmt.EncodeComplete
}

// Reset resets both sub-encoders and rewinds to the first byte.
func (e *Encoder) Reset() {
	e.bytesEnc.Reset()
	e.copyEnc.Reset()
	e.state = StateStartBit
	e.offset = 0
}

// Release releases the copy encoder, the bytes encoder and finally the
// encoder's own storage.
func (e *Encoder) Release() error {
	if e.released {
		return fmt.Errorf("uart encoder: %w", rmt.ErrReleased)
	}
	e.released = true

	var result error
	if err := e.copyEnc.Release(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := e.bytesEnc.Release(); err != nil {
		result = multierror.Append(result, err)
	}
	e.heap.Free()

	return result
}

// State returns the position inside the current frame
func (e *Encoder) State() FrameState {
	return e.state
}

// Offset returns the index of the byte currently being framed
func (e *Encoder) Offset() int {
	return e.offset
}

// BitTemplates returns the symbols used for 0 and 1 bits
func (e *Encoder) BitTemplates() (bit0, bit1 rmt.Symbol) {
	return e.bit0, e.bit1
}
