// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/tools/gomcp/jsonrpc"
)

// This file implements the Streamable HTTP transport: a single endpoint
// serving POST (send a message, await its response), GET (open a
// server-to-client event stream), and DELETE (terminate a session).

// sseEvent is one server-sent event.
type sseEvent struct {
	id   string
	name string
	data []byte
}

// writeSSEEvent writes evt to w in SSE wire format and flushes, if w
// supports it.
func writeSSEEvent(w io.Writer, evt sseEvent) error {
	var b bytes.Buffer
	if evt.id != "" {
		fmt.Fprintf(&b, "id: %s\n", evt.id)
	}
	if evt.name != "" {
		fmt.Fprintf(&b, "event: %s\n", evt.name)
	}
	for _, line := range bytes.Split(evt.data, []byte{'\n'}) {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteByte('\n')
	_, err := w.Write(b.Bytes())
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return err
}

// formatEventID encodes a stream id and sequence number as a Last-Event-ID
// value, colon-separated.
func formatEventID(streamID string, seq int64) string {
	return streamID + ":" + strconv.FormatInt(seq, 10)
}

// parseEventID reverses formatEventID.
func parseEventID(eventID string) (streamID string, seq int64, ok bool) {
	i := strings.LastIndex(eventID, ":")
	if i < 0 {
		return "", 0, false
	}
	seq, err := strconv.ParseInt(eventID[i+1:], 10, 64)
	if err != nil || seq < 0 {
		return "", 0, false
	}
	streamID = eventID[:i]
	if streamID == "" {
		return "", 0, false
	}
	return streamID, seq, true
}

// StreamableHTTPOptions configures a StreamableHTTPHandler.
type StreamableHTTPOptions struct {
	// Endpoint is the path this handler is mounted at. Requests for any
	// other path are answered with 404. Empty means don't check the path
	// (the caller has already routed to this handler).
	Endpoint string

	// AllowedOrigins lists Origin header values accepted from browsers. An
	// empty list rejects every request that carries an Origin header, per
	// the anti-DNS-rebinding default.
	AllowedOrigins []string

	// ProtocolVersions lists acceptable MCP-Protocol-Version values.
	// Defaults to every version this package supports.
	ProtocolVersions []string

	// RequireSession rejects GET/DELETE requests lacking Mcp-Session-Id.
	RequireSession bool

	// AllowSessionDelete enables DELETE-based session termination.
	AllowSessionDelete bool

	// ReplayBufferSize bounds the per-stream SSE replay ring. Defaults to
	// 200.
	ReplayBufferSize int

	// Auth, if set, gates every request behind bearer-token validation.
	Auth *AuthOptions
}

const defaultReplayBufferSize = 200

// A StreamableHTTPHandler is an http.Handler serving one or more streamable
// MCP sessions, keyed by the Mcp-Session-Id header.
type StreamableHTTPHandler struct {
	getServer func(*http.Request) *Server
	opts      StreamableHTTPOptions

	sessionsMu sync.Mutex
	sessions   map[string]*StreamableServerTransport
}

// NewStreamableHTTPHandler returns a handler that creates or looks up a
// Server via getServer for each new session.
func NewStreamableHTTPHandler(getServer func(*http.Request) *Server, opts *StreamableHTTPOptions) *StreamableHTTPHandler {
	h := &StreamableHTTPHandler{getServer: getServer, sessions: make(map[string]*StreamableServerTransport)}
	if opts != nil {
		h.opts = *opts
	}
	if len(h.opts.ProtocolVersions) == 0 {
		h.opts.ProtocolVersions = supportedProtocolVersions
	}
	if h.opts.ReplayBufferSize <= 0 {
		h.opts.ReplayBufferSize = defaultReplayBufferSize
	}
	return h
}

// CloseAll closes every open session.
func (h *StreamableHTTPHandler) CloseAll() {
	h.sessionsMu.Lock()
	defer h.sessionsMu.Unlock()
	for _, s := range h.sessions {
		s.Close()
	}
	h.sessions = nil
}

func acceptsEventStream(req *http.Request) bool {
	for _, v := range req.Header.Values("Accept") {
		for _, c := range strings.Split(v, ",") {
			if strings.TrimSpace(c) == "text/event-stream" {
				return true
			}
		}
	}
	return false
}

func acceptsJSON(req *http.Request) bool {
	for _, v := range req.Header.Values("Accept") {
		for _, c := range strings.Split(v, ",") {
			if strings.TrimSpace(c) == "application/json" {
				return true
			}
		}
	}
	return false
}

func originAllowed(allowed []string, origin string) bool {
	for _, a := range allowed {
		if a == origin {
			return true
		}
	}
	return false
}

// isInitializeRequest reports whether body decodes as a JSON-RPC request
// for the initialize method, the only method permitted to bootstrap a new
// session without an Mcp-Session-Id header.
func isInitializeRequest(body []byte) bool {
	msg, err := jsonrpc.Decode(body)
	if err != nil {
		return false
	}
	r, ok := msg.(*jsonrpc.Request)
	return ok && r.Method == "initialize"
}

func hasRequiredScopes(have, required []string) bool {
	for _, r := range required {
		found := false
		for _, h := range have {
			if h == r {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ServeHTTP implements the six-step request validation order and dispatches
// to the per-session transport.
func (h *StreamableHTTPHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if h.opts.Endpoint != "" && req.URL.Path != h.opts.Endpoint {
		http.NotFound(w, req)
		return
	}
	if origin := req.Header.Get("Origin"); origin != "" {
		if !originAllowed(h.opts.AllowedOrigins, origin) {
			http.Error(w, "origin not allowed", http.StatusForbidden)
			return
		}
	}
	version := req.Header.Get("MCP-Protocol-Version")
	if version == "" {
		version = DefaultProtocolVersion
	}
	versionOK := false
	for _, v := range h.opts.ProtocolVersions {
		if v == version {
			versionOK = true
			break
		}
	}
	if !versionOK {
		http.Error(w, "unsupported protocol version", http.StatusBadRequest)
		return
	}

	var session *StreamableServerTransport
	sessionID := req.Header.Get("Mcp-Session-Id")
	if sessionID != "" {
		h.sessionsMu.Lock()
		session = h.sessions[sessionID]
		h.sessionsMu.Unlock()
		if session == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
	} else if req.Method == http.MethodPost {
		// A session-less POST is only valid as the initialize bootstrap
		// call; any other method without a session id is rejected, rather
		// than silently starting a new session.
		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		if !isInitializeRequest(bodyBytes) {
			http.Error(w, "Mcp-Session-Id header required", http.StatusBadRequest)
			return
		}
	} else if h.opts.RequireSession {
		http.Error(w, "Mcp-Session-Id header required", http.StatusBadRequest)
		return
	}

	switch req.Method {
	case http.MethodGet:
		if !acceptsEventStream(req) {
			http.Error(w, "Accept must contain text/event-stream", http.StatusNotAcceptable)
			return
		}
	case http.MethodPost:
		if !acceptsJSON(req) || !acceptsEventStream(req) {
			http.Error(w, "Accept must contain application/json and text/event-stream", http.StatusNotAcceptable)
			return
		}
		if ct := req.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
			return
		}
	}

	if h.opts.Auth != nil && h.opts.Auth.Validator != nil {
		result := h.opts.Auth.Validator(req.Header.Get("Authorization"))
		if !result.Valid {
			w.Header().Set("WWW-Authenticate", h.opts.Auth.wwwAuthenticate(""))
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !hasRequiredScopes(result.Scopes, h.opts.Auth.RequiredScopes) {
			w.Header().Set("WWW-Authenticate", h.opts.Auth.wwwAuthenticate(`error="insufficient_scope"`))
			http.Error(w, "insufficient scope", http.StatusForbidden)
			return
		}
	}

	if req.Method == http.MethodDelete {
		if session == nil {
			http.Error(w, "Mcp-Session-Id header required", http.StatusBadRequest)
			return
		}
		if !h.opts.AllowSessionDelete {
			http.Error(w, "session deletion disabled", http.StatusMethodNotAllowed)
			return
		}
		h.sessionsMu.Lock()
		delete(h.sessions, session.id)
		h.sessionsMu.Unlock()
		session.Close()
		w.WriteHeader(http.StatusNoContent)
		return
	}

	switch req.Method {
	case http.MethodPost, http.MethodGet:
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		http.Error(w, "unsupported method", http.StatusMethodNotAllowed)
		return
	}

	if session == nil {
		s := NewStreamableServerTransport(uuid.New().String(), h.opts.ReplayBufferSize)
		server := h.getServer(req)
		// The session outlives this request, so its run loop must not stop
		// when the request's context ends; Close ends it instead.
		server.Connect(context.Background(), s)
		h.sessionsMu.Lock()
		h.sessions[s.id] = s
		h.sessionsMu.Unlock()
		session = s
	}
	session.ServeHTTP(w, req)
}

// outboundStream is one logical SSE stream: a bounded replay ring plus a
// signal channel waking whichever HTTP handler currently owns it.
type outboundStream struct {
	mu     sync.Mutex
	seq    int64
	buf    []sseEvent // ring, capped at replaySize
	cap    int
	signal chan struct{}
	isGET  bool
	live   bool // currently attached to an open HTTP response
	// requests outstanding on this stream (POST streams only); once empty
	// and every reply is flushed, the handler may close the response.
	requests map[string]bool
}

func (s *outboundStream) setLive(live bool) {
	s.mu.Lock()
	s.live = live
	s.mu.Unlock()
}

func (s *outboundStream) isLive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

func newOutboundStream(isGET bool, replaySize int) *outboundStream {
	return &outboundStream{cap: replaySize, signal: make(chan struct{}, 1), isGET: isGET, requests: make(map[string]bool)}
}

func (s *outboundStream) publish(streamID string, data []byte) {
	s.mu.Lock()
	s.seq++
	evt := sseEvent{id: formatEventID(streamID, s.seq), name: "message", data: data}
	s.buf = append(s.buf, evt)
	if len(s.buf) > s.cap {
		s.buf = s.buf[len(s.buf)-s.cap:]
	}
	s.mu.Unlock()
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// since returns events with sequence strictly greater than after, and
// whether the replay is still satisfiable given ring eviction.
func (s *outboundStream) since(after int64) ([]sseEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.buf) == 0 {
		return nil, after == s.seq
	}
	oldestSeq, _, _ := parseEventID(s.buf[0].id)
	if after > 0 && after < oldestSeq-1 {
		return nil, false
	}
	var out []sseEvent
	for _, e := range s.buf {
		_, seq, _ := parseEventID(e.id)
		if seq > after {
			out = append(out, e)
		}
	}
	return out, true
}

// StreamableServerTransport implements Transport for a single streamable
// HTTP session. One session fans traffic out across possibly many
// concurrently open GET streams plus any hanging POST requests.
type StreamableServerTransport struct {
	id         string
	replaySize int

	incoming chan jsonrpc.Message
	done     chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	isDone  bool
	streams map[string]*outboundStream
	getOrder []string // insertion order of currently open GET stream ids
	nextRR   int

	requestStream  map[string]string // jsonrpc request id -> owning stream id
}

// NewStreamableServerTransport returns a server-side transport for one
// streamable HTTP session, identified by sessionID.
func NewStreamableServerTransport(sessionID string, replaySize int) *StreamableServerTransport {
	if replaySize <= 0 {
		replaySize = defaultReplayBufferSize
	}
	return &StreamableServerTransport{
		id:            sessionID,
		replaySize:    replaySize,
		incoming:      make(chan jsonrpc.Message, 10),
		done:          make(chan struct{}),
		streams:       make(map[string]*outboundStream),
		requestStream: make(map[string]string),
	}
}

func (t *StreamableServerTransport) Read(ctx context.Context) (jsonrpc.Message, error) {
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

// roundRobinTargetLocked picks the next live GET stream for an unsolicited
// push. Callers must hold t.mu.
func (t *StreamableServerTransport) roundRobinTargetLocked() string {
	for i := 0; i < len(t.getOrder); i++ {
		idx := (t.nextRR + i) % len(t.getOrder)
		id := t.getOrder[idx]
		if st, ok := t.streams[id]; ok && st.isLive() {
			t.nextRR = idx + 1
			return id
		}
	}
	return ""
}

func (t *StreamableServerTransport) Write(ctx context.Context, msg jsonrpc.Message) error {
	var replyToID string
	if resp, ok := msg.(*jsonrpc.Response); ok {
		replyToID = resp.ID.String()
	}

	data, err := jsonrpc.Encode(msg)
	if err != nil {
		return err
	}

	t.mu.Lock()
	if t.isDone {
		t.mu.Unlock()
		return errTransportClosed
	}
	targetID := ""
	if replyToID != "" {
		targetID = t.requestStream[replyToID]
	} else if id, ok := inFlightIDFromContext(ctx); ok {
		targetID = t.requestStream[id.String()]
	}
	if targetID == "" {
		// Unsolicited server-initiated traffic: steer round-robin across
		// currently open GET streams; drop if none are listening.
		targetID = t.roundRobinTargetLocked()
	}
	st, ok := t.streams[targetID]
	if !ok {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	st.publish(targetID, data)

	if replyToID != "" {
		t.mu.Lock()
		delete(st.requests, replyToID)
		delete(t.requestStream, replyToID)
		t.mu.Unlock()
	}
	return nil
}

func (t *StreamableServerTransport) Close() error {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.isDone = true
		t.mu.Unlock()
		close(t.done)
	})
	return nil
}

func (t *StreamableServerTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.isDone
}

// ServeHTTP handles a single HTTP request against this session.
func (t *StreamableServerTransport) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		t.serveGET(w, req)
	case http.MethodPost:
		t.servePOST(w, req)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		http.Error(w, "unsupported method", http.StatusMethodNotAllowed)
	}
}

func (t *StreamableServerTransport) serveGET(w http.ResponseWriter, req *http.Request) {
	streamID := uuid.New().String()
	var resumeAfter int64
	resuming := false
	if leid := req.Header.Get("Last-Event-ID"); leid != "" {
		sid, seq, ok := parseEventID(leid)
		if !ok {
			http.Error(w, fmt.Sprintf("malformed Last-Event-ID %q", leid), http.StatusBadRequest)
			return
		}
		streamID, resumeAfter, resuming = sid, seq, true
	}

	t.mu.Lock()
	if t.isDone {
		t.mu.Unlock()
		http.Error(w, "session terminated", http.StatusGone)
		return
	}
	st, existing := t.streams[streamID]
	if resuming && !existing {
		// The stream this client remembers is gone entirely: nothing left
		// to replay, so it must reinitialize rather than silently miss data.
		t.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if !existing {
		st = newOutboundStream(true, t.replaySize)
		t.streams[streamID] = st
	}
	if _, already := indexOf(t.getOrder, streamID); !already {
		t.getOrder = append(t.getOrder, streamID)
	}
	t.mu.Unlock()
	st.setLive(true)
	defer st.setLive(false)

	events, ok := st.since(resumeAfter)
	if !ok {
		// The requested event has already fallen out of the replay ring.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Mcp-Session-Id", t.id)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-transform")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for _, e := range events {
		if err := writeSSEEvent(w, e); err != nil {
			return
		}
	}
	nextAfter := resumeAfter
	if len(events) > 0 {
		_, nextAfter, _ = parseEventID(events[len(events)-1].id)
	}
	for {
		select {
		case <-st.signal:
			events, _ := st.since(nextAfter)
			for _, e := range events {
				if err := writeSSEEvent(w, e); err != nil {
					return
				}
				_, nextAfter, _ = parseEventID(e.id)
			}
		case <-t.done:
			return
		case <-req.Context().Done():
			return
		}
	}
}

func indexOf(ss []string, v string) (int, bool) {
	for i, s := range ss {
		if s == v {
			return i, true
		}
	}
	return 0, false
}

func (t *StreamableServerTransport) servePOST(w http.ResponseWriter, req *http.Request) {
	if req.Header.Get("Last-Event-ID") != "" {
		http.Error(w, "Last-Event-ID is not valid on POST", http.StatusBadRequest)
		return
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	msg, err := jsonrpc.Decode(body)
	if err != nil {
		http.Error(w, fmt.Sprintf("malformed payload: %v", err), http.StatusBadRequest)
		return
	}

	streamID := uuid.New().String()
	st := newOutboundStream(false, t.replaySize)
	isRequest := false
	if r, ok := msg.(*jsonrpc.Request); ok {
		isRequest = true
		t.mu.Lock()
		st.requests[r.ID.String()] = true
		t.requestStream[r.ID.String()] = streamID
		t.mu.Unlock()
	}
	t.mu.Lock()
	if t.isDone {
		t.mu.Unlock()
		http.Error(w, "session terminated", http.StatusGone)
		return
	}
	t.streams[streamID] = st
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		delete(t.streams, streamID)
		t.mu.Unlock()
	}()

	select {
	case t.incoming <- msg:
	case <-t.done:
		http.Error(w, "session terminated", http.StatusGone)
		return
	}

	if !isRequest {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	w.Header().Set("Mcp-Session-Id", t.id)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-transform")
	w.Header().Set("Connection", "keep-alive")

	var nextAfter int64
	wrote := false
	for {
		events, _ := st.since(nextAfter)
		for _, e := range events {
			if !wrote {
				w.WriteHeader(http.StatusOK)
			}
			wrote = true
			if err := writeSSEEvent(w, e); err != nil {
				return
			}
			_, nextAfter, _ = parseEventID(e.id)
		}
		t.mu.Lock()
		done := len(st.requests) == 0
		t.mu.Unlock()
		if done {
			if !wrote {
				w.WriteHeader(http.StatusAccepted)
			}
			return
		}
		select {
		case <-st.signal:
		case <-t.done:
			if !wrote {
				http.Error(w, "session terminated", http.StatusGone)
			}
			return
		case <-req.Context().Done():
			return
		}
	}
}

// StreamableClientTransportOptions configures a StreamableClientTransport.
type StreamableClientTransportOptions struct {
	HTTPClient *http.Client
	// ReconnectDelay is used for the background GET reconnect loop absent
	// an SSE retry: field from the server.
	ReconnectDelay time.Duration
}

// StreamableClientTransport is the client side of the streamable HTTP
// transport: it posts outbound messages and maintains a background GET
// stream for server-initiated traffic, reconnecting with Last-Event-ID on
// disconnect.
type StreamableClientTransport struct {
	url  string
	opts StreamableClientTransportOptions
}

// NewStreamableClientTransport returns a transport that talks to url.
func NewStreamableClientTransport(url string, opts *StreamableClientTransportOptions) *StreamableClientTransport {
	t := &StreamableClientTransport{url: url, opts: StreamableClientTransportOptions{ReconnectDelay: time.Second}}
	if opts != nil {
		t.opts = *opts
		if t.opts.ReconnectDelay <= 0 {
			t.opts.ReconnectDelay = time.Second
		}
	}
	return t
}

func (t *StreamableClientTransport) client() *http.Client {
	if t.opts.HTTPClient != nil {
		return t.opts.HTTPClient
	}
	return http.DefaultClient
}

func (t *StreamableClientTransport) connect(ctx context.Context) *streamableClientConn {
	c := &streamableClientConn{
		url:      t.url,
		client:   t.client(),
		reconnectDelay: t.opts.ReconnectDelay,
		incoming: make(chan []byte, 100),
		done:     make(chan struct{}),
	}
	go c.runGETLoop(ctx)
	return c
}

// NewClientTransport returns a Transport connected to url.
func (t *StreamableClientTransport) NewClientTransport(ctx context.Context) Transport {
	return t.connect(ctx)
}

type streamableClientConn struct {
	url            string
	client         *http.Client
	reconnectDelay time.Duration

	incoming chan []byte
	done     chan struct{}

	closeOnce sync.Once
	closeErr  error

	mu            sync.Mutex
	sessionID     string
	lastEventID   string
}

func (c *streamableClientConn) Read(ctx context.Context) (jsonrpc.Message, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, io.EOF
	case data := <-c.incoming:
		return jsonrpc.Decode(data)
	}
}

func (c *streamableClientConn) Write(ctx context.Context, msg jsonrpc.Message) error {
	data, err := jsonrpc.Encode(msg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	sessionID := c.sessionID
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	if sessionID != "" {
		req.Header.Set("Mcp-Session-Id", sessionID)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mcp: streamable POST failed: %s", resp.Status)
	}
	if sid := resp.Header.Get("Mcp-Session-Id"); sid != "" {
		c.mu.Lock()
		c.sessionID = sid
		c.mu.Unlock()
	}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		return c.drainSSE(resp.Body)
	}
	return nil
}

func (c *streamableClientConn) drainSSE(body io.Reader) error {
	for evt, err := range scanSSEEvents(body) {
		if err != nil {
			return err
		}
		if evt.id != "" {
			c.mu.Lock()
			c.lastEventID = evt.id
			c.mu.Unlock()
		}
		select {
		case c.incoming <- evt.data:
		case <-c.done:
			return nil
		}
	}
	return nil
}

// runGETLoop maintains a background server-push stream, reconnecting with
// Last-Event-ID on disconnect. A 404 means the session was lost and the
// caller must reinitialize; the loop exits in that case.
func (c *streamableClientConn) runGETLoop(ctx context.Context) {
	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		default:
		}
		c.mu.Lock()
		sessionID, lastEventID := c.sessionID, c.lastEventID
		c.mu.Unlock()
		if sessionID == "" {
			time.Sleep(c.reconnectDelay)
			continue
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
		if err != nil {
			return
		}
		req.Header.Set("Accept", "text/event-stream")
		req.Header.Set("Mcp-Session-Id", sessionID)
		if lastEventID != "" {
			req.Header.Set("Last-Event-ID", lastEventID)
		}
		resp, err := c.client.Do(req)
		if err != nil {
			time.Sleep(c.reconnectDelay)
			continue
		}
		if resp.StatusCode == http.StatusNotFound {
			resp.Body.Close()
			return
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			time.Sleep(c.reconnectDelay)
			continue
		}
		c.drainSSE(resp.Body)
		resp.Body.Close()
		time.Sleep(c.reconnectDelay)
	}
}

func (c *streamableClientConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		req, err := http.NewRequest(http.MethodDelete, c.url, nil)
		if err != nil {
			c.closeErr = err
			return
		}
		c.mu.Lock()
		req.Header.Set("Mcp-Session-Id", c.sessionID)
		c.mu.Unlock()
		if _, err := c.client.Do(req); err != nil {
			c.closeErr = err
		}
	})
	return c.closeErr
}

func (c *streamableClientConn) IsConnected() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}
