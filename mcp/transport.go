// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/tools/gomcp/jsonrpc"
)

// A Transport is the first-class byte-stream carrier a session runs over:
// it reads and writes framed Messages and reports whether the underlying
// connection is still usable. Implementations must serialize concurrent
// Writes themselves (the session's outbound writer mutex delegates to
// this).
type Transport interface {
	Read(ctx context.Context) (jsonrpc.Message, error)
	Write(ctx context.Context, msg jsonrpc.Message) error
	Close() error
	IsConnected() bool
}

// ioTransport implements Transport over an io.ReadWriteCloser using
// Content-Length framing, used by the stdio transport.
type ioTransport struct {
	rwc    io.ReadWriteCloser
	fr     *jsonrpc.FrameReader
	fw     *jsonrpc.FrameWriter
	closed atomic.Bool
}

func newIOTransport(rwc io.ReadWriteCloser) *ioTransport {
	return &ioTransport{
		rwc: rwc,
		fr:  jsonrpc.NewFrameReader(rwc),
		fw:  jsonrpc.NewFrameWriter(rwc),
	}
}

// Read honors ctx's deadline when rwc supports read deadlines, as the
// net.Conn ends of LocalTransports do. Cancellation of a ctx without a
// deadline does not interrupt a read that is already blocked.
func (t *ioTransport) Read(ctx context.Context) (jsonrpc.Message, error) {
	if dc, ok := t.rwc.(interface{ SetReadDeadline(time.Time) error }); ok {
		deadline, _ := ctx.Deadline() // zero time clears any earlier deadline
		_ = dc.SetReadDeadline(deadline)
	}
	for {
		frame, err := t.fr.ReadFrame()
		if err != nil {
			return nil, err
		}
		msg, err := jsonrpc.Decode(frame)
		if err != nil {
			// A malformed frame does not desynchronize the stream: it is
			// consumed and reported as a parse error to the caller, which
			// replies with a null-id ParseError response and keeps reading.
			return nil, &frameDecodeError{err}
		}
		return msg, nil
	}
}

// frameDecodeError marks a decode failure that the caller should convert
// into a ParseError response, as opposed to a transport-fatal error.
type frameDecodeError struct{ err error }

func (e *frameDecodeError) Error() string { return e.err.Error() }
func (e *frameDecodeError) Unwrap() error { return e.err }

func (t *ioTransport) Write(ctx context.Context, msg jsonrpc.Message) error {
	data, err := jsonrpc.Encode(msg)
	if err != nil {
		return err
	}
	return t.fw.WriteFrame(data)
}

func (t *ioTransport) Close() error {
	t.closed.Store(true)
	return t.rwc.Close()
}

func (t *ioTransport) IsConnected() bool { return !t.closed.Load() }

// NewStdIOTransport returns a Transport that frames messages over rwc
// using LSP-style Content-Length framing (§4.2).
func NewStdIOTransport(rwc io.ReadWriteCloser) Transport {
	return newIOTransport(rwc)
}

// LocalTransports returns a pair of connected, in-memory Transports
// suitable for tests and in-process client/server wiring, grounded on the
// net.Pipe loopback pattern: no real I/O, no framing ambiguity, both ends
// of a single logical byte pipe.
func LocalTransports() (client, server Transport) {
	c1, c2 := net.Pipe()
	return newIOTransport(c1), newIOTransport(c2)
}

// recordingTransport wraps a Transport, recording every message it sees in
// order, for tests that assert on exact wire traffic.
type recordingTransport struct {
	Transport
	mu   sync.Mutex
	sent []jsonrpc.Message
	recv []jsonrpc.Message
}

func newRecordingTransport(t Transport) *recordingTransport {
	return &recordingTransport{Transport: t}
}

func (t *recordingTransport) Write(ctx context.Context, msg jsonrpc.Message) error {
	t.mu.Lock()
	t.sent = append(t.sent, msg)
	t.mu.Unlock()
	return t.Transport.Write(ctx, msg)
}

func (t *recordingTransport) Read(ctx context.Context) (jsonrpc.Message, error) {
	msg, err := t.Transport.Read(ctx)
	if err == nil {
		t.mu.Lock()
		t.recv = append(t.recv, msg)
		t.mu.Unlock()
	}
	return msg, err
}

func (t *recordingTransport) Sent() []jsonrpc.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]jsonrpc.Message(nil), t.sent...)
}

var errTransportClosed = fmt.Errorf("mcp: transport closed")
