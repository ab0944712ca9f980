// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package rmt

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Batch is the CBOR wire form of one memory window:
// {0: seq, 1: resolution-hz, 2: [word...], 3: last, 4: eot-level}
type Batch struct {
	Seq          uint64   `cbor:"0,keyasint"`
	ResolutionHz uint32   `cbor:"1,keyasint"`
	Words        []uint32 `cbor:"2,keyasint"`
	Last         bool     `cbor:"3,keyasint,omitempty"`
	EOT          *uint8   `cbor:"4,keyasint,omitempty"` // only on the last batch
}

// NewBatch packs syms into a batch
func NewBatch(seq uint64, resolutionHz uint32, syms []Symbol, last bool) Batch {
	words := make([]uint32, len(syms))
	for i, s := range syms {
		words[i] = s.Word()
	}
	return Batch{
		Seq:          seq,
		ResolutionHz: resolutionHz,
		Words:        words,
		Last:         last,
	}
}

// NewEndBatch returns the empty batch that closes a transmission and
// carries the level the line is held at afterwards
func NewEndBatch(seq uint64, resolutionHz uint32, eotLevel uint8) Batch {
	b := NewBatch(seq, resolutionHz, nil, true)
	b.EOT = &eotLevel
	return b
}

// Symbols unpacks the batch words
func (b Batch) Symbols() []Symbol {
	syms := make([]Symbol, len(b.Words))
	for i, w := range b.Words {
		syms[i] = SymbolFromWord(w)
	}
	return syms
}

// MarshalBatch encodes a batch to CBOR
func MarshalBatch(b Batch) ([]byte, error) {
	data, err := cbor.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to encode CBOR batch: %w", err)
	}
	return data, nil
}

// UnmarshalBatch decodes a CBOR batch
func UnmarshalBatch(data []byte) (Batch, error) {
	var b Batch
	if len(data) == 0 {
		return b, fmt.Errorf("empty CBOR batch")
	}
	if err := cbor.Unmarshal(data, &b); err != nil {
		return b, fmt.Errorf("failed to decode CBOR batch: %w", err)
	}
	return b, nil
}
