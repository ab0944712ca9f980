// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Thermoquad/irtx/internal/config"
	"github.com/Thermoquad/irtx/pkg/rmt"
)

// batchServer records every batch received over a WebSocket
func batchServer(t *testing.T, auth *string) (*httptest.Server, <-chan rmt.Batch) {
	t.Helper()
	batches := make(chan rmt.Batch, 16)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth != nil {
			*auth = r.Header.Get("Authorization")
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if mt != websocket.BinaryMessage {
				continue
			}
			batch, err := rmt.UnmarshalBatch(data)
			if err != nil {
				t.Errorf("server: %v", err)
				return
			}
			batches <- batch
		}
	}))
	t.Cleanup(srv.Close)

	return srv, batches
}

func wsURLFor(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func nextBatch(t *testing.T, batches <-chan rmt.Batch) rmt.Batch {
	t.Helper()
	select {
	case b := <-batches:
		return b
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for batch")
	}
	return rmt.Batch{}
}

func TestWebSocketSink(t *testing.T) {
	var auth string
	srv, batches := batchServer(t, &auth)

	sink, err := OpenWebSocketSink(wsURLFor(srv), "user", "secret", false, 1000000)
	if err != nil {
		t.Fatalf("OpenWebSocketSink failed: %v", err)
	}
	defer sink.Close()

	syms := []rmt.Symbol{{Level0: 0, Duration0: 250, Level1: 0, Duration1: 250}}
	if err := sink.WriteSymbols(syms); err != nil {
		t.Fatalf("WriteSymbols failed: %v", err)
	}
	if err := sink.EndTransmission(0); err != nil {
		t.Fatalf("EndTransmission failed: %v", err)
	}

	first := nextBatch(t, batches)
	if first.Seq != 0 || first.Last || first.ResolutionHz != 1000000 {
		t.Errorf("first batch header = %+v", first)
	}
	if got := first.Symbols(); len(got) != 1 || got[0] != syms[0] {
		t.Errorf("first batch symbols = %v", got)
	}

	last := nextBatch(t, batches)
	if last.Seq != 1 || !last.Last || len(last.Words) != 0 {
		t.Errorf("end batch = %+v", last)
	}
	if last.EOT == nil || *last.EOT != 0 {
		t.Errorf("end batch EOT = %v, want 0", last.EOT)
	}

	if !strings.HasPrefix(auth, "Basic ") {
		t.Errorf("Authorization = %q, want Basic auth", auth)
	}
}

func TestOpenWebSocketSink_BadScheme(t *testing.T) {
	if _, err := OpenWebSocketSink("http://localhost/ws", "", "", false, 0); err == nil {
		t.Error("expected error for http scheme")
	}
}

func TestTextSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTextSink(&buf)

	sym := rmt.Symbol{Level0: 1, Duration0: 3, Level1: 0, Duration1: 9}
	sink.WriteSymbols([]rmt.Symbol{sym})
	sink.WriteSymbols([]rmt.Symbol{sym})
	sink.EndTransmission(0)
	sink.WriteSymbols([]rmt.Symbol{sym})
	sink.EndTransmission(1)

	out := buf.String()
	if strings.Count(out, "window 0:") != 2 || strings.Count(out, "window 1:") != 1 {
		t.Errorf("unexpected window numbering:\n%s", out)
	}
	if !strings.Contains(out, "eot: line held low (level 0)") || !strings.Contains(out, "eot: line held high (level 1)") {
		t.Errorf("missing eot lines:\n%s", out)
	}
}

func TestWebSocketSink_ThroughChannel(t *testing.T) {
	srv, batches := batchServer(t, nil)

	sink, err := OpenWebSocketSink(wsURLFor(srv), "", "", false, 1000000)
	if err != nil {
		t.Fatalf("OpenWebSocketSink failed: %v", err)
	}
	defer sink.Close()

	cfg := testConfig(t, func(c *config.Config) {
		c.Transmit.MessageHex = "01"
		eot := uint8(0)
		c.Transmit.EOTLevel = &eot
	})
	ch, enc := newTestSession(t, cfg, sink)
	if _, err := ch.Transmit(context.Background(), enc, cfg.Transmit.Payload, cfg.Transmission()); err != nil {
		t.Fatalf("Transmit failed: %v", err)
	}

	if b := nextBatch(t, batches); b.Last || len(b.Words) != 10 {
		t.Errorf("data batch = %+v", b)
	}
	end := nextBatch(t, batches)
	if !end.Last || end.EOT == nil || *end.EOT != 0 {
		t.Errorf("end batch = %+v", end)
	}
}

func TestOpenSink_Stdout(t *testing.T) {
	cfg := config.Default()
	sink, info, err := OpenSink(cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("OpenSink failed: %v", err)
	}
	defer sink.Close()

	if _, ok := sink.(*TextSink); !ok || info != "stdout" {
		t.Errorf("got %T %q, want text sink on stdout", sink, info)
	}
}
