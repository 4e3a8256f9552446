// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcp

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/tools/gomcp/jsonrpc"
)

// This file implements the legacy two-endpoint SSE transport retained for
// compatibility with older clients: GET /sse opens a stream whose first
// event announces an absolute POST URL; the client posts subsequent
// messages there, and the server pushes replies and notifications back as
// "message" events on the same stream.

// scanSSEEvents parses r as a stream of server-sent events. Per field,
// exactly one leading space after the colon is stripped (not
// bytes.TrimSpace, which would also eat meaningful interior whitespace on
// malformed but otherwise valid payloads).
func scanSSEEvents(r io.Reader) iter.Seq2[sseEvent, error] {
	return func(yield func(sseEvent, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
		var evt sseEvent
		var dataLines []string
		flush := func() (sseEvent, bool) {
			if evt.name == "" && len(dataLines) == 0 {
				return sseEvent{}, false
			}
			evt.data = []byte(strings.Join(dataLines, "\n"))
			out := evt
			evt = sseEvent{}
			dataLines = nil
			return out, true
		}
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				if out, ok := flush(); ok {
					if !yield(out, nil) {
						return
					}
				}
				continue
			}
			field, value, found := strings.Cut(line, ":")
			if !found {
				continue
			}
			value = stripOneLeadingSpace(value)
			switch field {
			case "id":
				evt.id = value
			case "event":
				evt.name = value
			case "data":
				dataLines = append(dataLines, value)
			}
		}
		if err := scanner.Err(); err != nil {
			yield(sseEvent{}, err)
			return
		}
		if out, ok := flush(); ok {
			yield(out, nil)
		}
	}
}

// stripOneLeadingSpace removes at most one leading space, per the SSE spec:
// "If value starts with a single U+0020 SPACE character, remove it."
func stripOneLeadingSpace(s string) string {
	if strings.HasPrefix(s, " ") {
		return s[1:]
	}
	return s
}

// SSEHandler is an http.Handler serving the legacy two-endpoint SSE
// transport.
type SSEHandler struct {
	getServer func(*http.Request) *Server

	mu       sync.Mutex
	sessions map[string]*sseServerTransport
}

// NewSSEHandler returns a handler that creates or looks up a Server via
// getServer for each new GET /sse connection.
func NewSSEHandler(getServer func(*http.Request) *Server) *SSEHandler {
	return &SSEHandler{getServer: getServer, sessions: make(map[string]*sseServerTransport)}
}

// sseServerTransport implements Transport over the legacy two-endpoint
// model: incoming messages arrive via POST to a per-session endpoint,
// outgoing messages are written as "message" events to the hanging GET
// response.
type sseServerTransport struct {
	incoming chan jsonrpc.Message

	mu     sync.Mutex
	w      io.Writer
	isDone bool
	done   chan struct{}
}

func (t *sseServerTransport) Read(ctx context.Context) (jsonrpc.Message, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg, ok := <-t.incoming:
		if !ok {
			return nil, io.EOF
		}
		return msg, nil
	case <-t.done:
		return nil, io.EOF
	}
}

func (t *sseServerTransport) Write(ctx context.Context, msg jsonrpc.Message) error {
	data, err := jsonrpc.Encode(msg)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.isDone {
		return errTransportClosed
	}
	return writeSSEEvent(t.w, sseEvent{name: "message", data: data})
}

func (t *sseServerTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isDone {
		t.isDone = true
		close(t.done)
	}
	return nil
}

func (t *sseServerTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.isDone
}

func (h *SSEHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	sessionID := req.URL.Query().Get("sessionid")

	if req.Method == http.MethodPost {
		if sessionID == "" {
			http.Error(w, "sessionid must be provided", http.StatusBadRequest)
			return
		}
		h.mu.Lock()
		session := h.sessions[sessionID]
		h.mu.Unlock()
		if session == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		data, err := io.ReadAll(req.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		msg, err := jsonrpc.Decode(data)
		if err != nil {
			http.Error(w, "failed to parse body", http.StatusBadRequest)
			return
		}
		select {
		case session.incoming <- msg:
		case <-session.done:
			http.Error(w, "session closed", http.StatusGone)
			return
		}
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if req.Method != http.MethodGet {
		http.Error(w, "invalid method", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sessionID = uuid.New().String()
	session := &sseServerTransport{w: w, incoming: make(chan jsonrpc.Message, 1000), done: make(chan struct{})}
	h.mu.Lock()
	h.sessions[sessionID] = session
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.sessions, sessionID)
		h.mu.Unlock()
	}()

	server := h.getServer(req)
	ss := server.Connect(req.Context(), session)
	defer ss.Close()

	// The endpoint event must carry an absolute URL: scheme and host are
	// not otherwise knowable to the client from a relative announcement.
	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	endpoint := fmt.Sprintf("%s://%s%s?sessionid=%s", scheme, req.Host, req.URL.Path, sessionID)

	session.mu.Lock()
	err := writeSSEEvent(w, sseEvent{name: "endpoint", data: []byte(endpoint)})
	session.mu.Unlock()
	if err != nil {
		return
	}

	select {
	case <-req.Context().Done():
	case <-session.done:
	}
}

// SSEClientTransport is the client side of the legacy two-endpoint SSE
// transport.
type SSEClientTransport struct {
	sseEndpoint *url.URL
	client      *http.Client
}

// NewSSEClientTransport returns a transport that opens rawURL's GET stream
// to learn its POST endpoint.
func NewSSEClientTransport(rawURL string, client *http.Client) (*SSEClientTransport, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &SSEClientTransport{sseEndpoint: u, client: client}, nil
}

func (c *SSEClientTransport) Connect(ctx context.Context) (Transport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sseEndpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	next, stop := iter.Pull2(scanSSEEvents(resp.Body))
	evt, err, _ := next()
	if err != nil {
		stop()
		resp.Body.Close()
		return nil, err
	}
	if evt.name != "endpoint" {
		stop()
		resp.Body.Close()
		return nil, fmt.Errorf("mcp: first SSE event is %q, want %q", evt.name, "endpoint")
	}
	msgEndpoint, err := c.sseEndpoint.Parse(string(evt.data))
	if err != nil {
		stop()
		resp.Body.Close()
		return nil, fmt.Errorf("mcp: malformed endpoint event: %w", err)
	}

	s := &sseClientStream{
		client:      c.client,
		msgEndpoint: msgEndpoint,
		incoming:    make(chan []byte, 100),
		body:        resp.Body,
		done:        make(chan struct{}),
	}
	go s.pump(next, stop)
	return s, nil
}

type sseClientStream struct {
	client      *http.Client
	msgEndpoint *url.URL

	incoming chan []byte

	mu       sync.Mutex
	body     io.ReadCloser
	isDone   bool
	done     chan struct{}
	closeErr error
}

func (s *sseClientStream) pump(next func() (sseEvent, error, bool), stop func()) {
	defer stop()
	for {
		evt, err, ok := next()
		if !ok || err != nil {
			close(s.incoming)
			return
		}
		if evt.name == "message" {
			select {
			case s.incoming <- evt.data:
			case <-s.done:
				return
			}
		}
	}
}

func (s *sseClientStream) Read(ctx context.Context) (jsonrpc.Message, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case data, ok := <-s.incoming:
		if !ok {
			return nil, io.EOF
		}
		return jsonrpc.Decode(data)
	case <-s.done:
		if s.closeErr != nil {
			return nil, s.closeErr
		}
		return nil, io.EOF
	}
}

func (s *sseClientStream) Write(ctx context.Context, msg jsonrpc.Message) error {
	data, err := jsonrpc.Encode(msg)
	if err != nil {
		return err
	}
	s.mu.Lock()
	done := s.isDone
	s.mu.Unlock()
	if done {
		return io.EOF
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.msgEndpoint.String(), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mcp: sse POST failed: %s", resp.Status)
	}
	return nil
}

func (s *sseClientStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isDone {
		s.isDone = true
		s.closeErr = s.body.Close()
		close(s.done)
	}
	return s.closeErr
}

func (s *sseClientStream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.isDone
}
