// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.bug.st/serial"
	"golang.org/x/term"

	"github.com/Thermoquad/irtx/internal/config"
	"github.com/Thermoquad/irtx/pkg/rmt"
)

// SymbolSink receives every memory window a transmission produces
type SymbolSink interface {
	rmt.Sink
	io.Closer
}

// TextSink prints every window in human-readable form
type TextSink struct {
	w       io.Writer
	windows int
}

func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

func (t *TextSink) WriteSymbols(syms []rmt.Symbol) error {
	_, err := io.WriteString(t.w, rmt.FormatWindow(t.windows, syms))
	t.windows++
	return err
}

// EndTransmission prints the level the line is held at and restarts the
// window numbering
func (t *TextSink) EndTransmission(level uint8) error {
	t.windows = 0
	_, err := fmt.Fprintf(t.w, "eot: line held %s (level %d)\n", levelName(level), level)
	return err
}

func levelName(level uint8) string {
	if level == rmt.LevelLow {
		return "low"
	}
	return "high"
}

func (t *TextSink) Close() error {
	return nil
}

// SerialSink writes packed little-endian symbol words to a serial port
type SerialSink struct {
	port serial.Port
}

func (s *SerialSink) WriteSymbols(syms []rmt.Symbol) error {
	_, err := s.port.Write(rmt.SymbolBytes(syms...))
	return err
}

func (s *SerialSink) Close() error {
	return s.port.Close()
}

// ErrConnectionClosed is returned when writing to a closed WebSocket connection
var ErrConnectionClosed = fmt.Errorf("websocket connection closed")

// WebSocketSink sends every window as one CBOR batch in a binary message
type WebSocketSink struct {
	conn         *websocket.Conn
	resolutionHz uint32
	seq          uint64
	closed       bool // Track if connection has failed/closed
}

func (w *WebSocketSink) send(batch rmt.Batch) error {
	if w.closed {
		return ErrConnectionClosed
	}

	data, err := rmt.MarshalBatch(batch)
	if err != nil {
		return err
	}
	w.seq++

	if err := w.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		w.closed = true
		return err
	}
	return nil
}

func (w *WebSocketSink) WriteSymbols(syms []rmt.Symbol) error {
	return w.send(rmt.NewBatch(w.seq, w.resolutionHz, syms, false))
}

// EndTransmission sends an empty last batch carrying the EOT level
func (w *WebSocketSink) EndTransmission(level uint8) error {
	return w.send(rmt.NewEndBatch(w.seq, w.resolutionHz, level))
}

func (w *WebSocketSink) Close() error {
	if !w.closed {
		w.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
	}
	return w.conn.Close()
}

// OpenSerialSink opens a serial port for symbol output
func OpenSerialSink(portName string, baudRate int) (*SerialSink, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %v", portName, err)
	}

	return &SerialSink{port: port}, nil
}

// OpenWebSocketSink opens a WebSocket connection with HTTP Basic auth
func OpenWebSocketSink(wsURL, username, password string, skipSSLVerify bool, resolutionHz uint32) (*WebSocketSink, error) {
	// Parse and validate URL
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}

	switch u.Scheme {
	case "ws", "wss":
		// OK
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	// Configure TLS for wss://
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: skipSSLVerify,
		}
	}

	// Build HTTP headers with Basic auth
	headers := http.Header{}
	if username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %v", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %v", err)
	}

	return &WebSocketSink{conn: conn, resolutionHz: resolutionHz}, nil
}

// GetPassword retrieves password from environment or prompts user
func GetPassword() (string, error) {
	if pw := os.Getenv("IRTX_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	// Read password without echo
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %v", err)
		}
		fmt.Fprintln(os.Stderr) // newline after password
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr) // newline after password
	return string(passwordBytes), nil
}

// OpenSink opens the configured output
func OpenSink(cfg *config.Config, stdout io.Writer) (SymbolSink, string, error) {
	out := cfg.Output

	switch out.Kind {
	case config.OutputWebSocket:
		password := ""
		if out.Username != "" {
			var err error
			password, err = GetPassword()
			if err != nil {
				return nil, "", err
			}
		}

		sink, err := OpenWebSocketSink(out.URL, out.Username, password, out.NoSSLVerify, cfg.Encoder.ResolutionHz)
		if err != nil {
			return nil, "", err
		}
		return sink, fmt.Sprintf("WebSocket: %s", out.URL), nil

	case config.OutputSerial:
		sink, err := OpenSerialSink(out.Port, out.Baud)
		if err != nil {
			return nil, "", err
		}
		return sink, fmt.Sprintf("Serial: %s @ %d baud", out.Port, out.Baud), nil

	case config.OutputStdout:
		return NewTextSink(stdout), "stdout", nil
	}

	return nil, "", fmt.Errorf("unknown output kind %q", out.Kind)
}
