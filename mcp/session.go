// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
	"golang.org/x/tools/gomcp/jsonrpc"
)

// DefaultOutboundTimeout is how long an outbound request waits for a
// response before it times out and issues a cancellation notification.
const DefaultOutboundTimeout = 30 * time.Second

// A Handler answers inbound requests and notifications for a session. The
// server and client sessions each implement Handler over their own method
// tables; the session core never inspects method names itself except for
// the cancellation notification, which it must intercept to manage the
// in-flight map.
type Handler interface {
	HandleRequest(ctx context.Context, method string, params json.RawMessage) (any, error)
	HandleNotification(ctx context.Context, method string, params json.RawMessage)
}

// pendingCall is the single-shot settlement handle for one outbound
// request: a response with the matching id fulfills it exactly once.
type pendingCall struct {
	ch chan *jsonrpc.Response
}

// inFlightEntry tracks whether an inbound request currently being handled
// has been cancelled by the peer.
type inFlightEntry struct {
	cancelled bool
}

// session is the shared dispatch/correlation core that ServerSession and
// ClientSession each hold in their session field. It owns two of the
// mutex-protected maps described by the concurrency model, pending outbound
// requests and in-flight inbound requests; its holder adds the rest (task
// registry, subscriptions) under its own locks.
type session struct {
	transport Transport
	handler   Handler

	nextID atomic.Int64

	outMu      sync.Mutex
	outPending map[string]*pendingCall

	inMu     sync.Mutex
	inFlight map[string]*inFlightEntry

	outboundTimeout time.Duration
	limiter         *rate.Limiter // optional outbound request rate limit

	initMu           sync.Mutex
	initialized      bool
	protocolVersion  string
	peerCapabilities json.RawMessage
	peerInfo         *Implementation
	instructions     string

	extensions *extensionRegistry

	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error
}

func newSession(t Transport) *session {
	return &session{
		transport:       t,
		outPending:      make(map[string]*pendingCall),
		inFlight:        make(map[string]*inFlightEntry),
		outboundTimeout: DefaultOutboundTimeout,
		extensions:      newExtensionRegistry(),
		closed:          make(chan struct{}),
	}
}

// run is the session's one logical inbound loop. It returns when the
// transport is exhausted or permanently broken.
func (s *session) run(ctx context.Context) error {
	for {
		msg, err := s.transport.Read(ctx)
		if err != nil {
			if de, ok := err.(*frameDecodeError); ok {
				_ = s.transport.Write(ctx, jsonrpc.NewErrorResponse(jsonrpc.ID{}, jsonrpc.NewError(jsonrpc.CodeParseError, "parse error")))
				_ = de
				continue
			}
			s.finish(err)
			return err
		}
		switch m := msg.(type) {
		case *jsonrpc.Request:
			go s.handleRequest(ctx, m)
		case *jsonrpc.Notification:
			go s.handleNotification(ctx, m)
		case *jsonrpc.Response:
			s.settleOutbound(m)
		}
	}
}

func (s *session) finish(err error) {
	s.closeOnce.Do(func() {
		s.closeErr = err
		close(s.closed)
	})
}

// Wait blocks until the session's inbound loop has ended.
func (s *session) Wait() error {
	<-s.closed
	return s.closeErr
}

func (s *session) handleRequest(ctx context.Context, req *jsonrpc.Request) {
	idStr := req.ID.String()
	s.inMu.Lock()
	s.inFlight[idStr] = &inFlightEntry{}
	s.inMu.Unlock()

	ctx = withInFlightID(ctx, req.ID)
	ctx = withProgressToken(ctx, extractProgressToken(req.Params))

	result, err := s.handler.HandleRequest(ctx, req.Method, req.Params)

	s.inMu.Lock()
	e, ok := s.inFlight[idStr]
	delete(s.inFlight, idStr)
	s.inMu.Unlock()
	if ok && e.cancelled {
		// Cancellation suppression: the peer observed this id as cancelled
		// before we finished, so no response is ever sent for it.
		return
	}

	var resp *jsonrpc.Response
	if err != nil {
		resp = wireError(req.ID, err)
	} else {
		r, merr := jsonrpc.NewResultResponse(req.ID, result)
		if merr != nil {
			resp = wireError(req.ID, merr)
		} else {
			resp = r
		}
	}
	_ = s.transport.Write(context.Background(), resp)
}

type cancelledParams struct {
	RequestID any    `json:"requestId"`
	Reason    string `json:"reason,omitempty"`
}

func (s *session) handleNotification(ctx context.Context, note *jsonrpc.Notification) {
	if note.Method == "notifications/cancelled" || note.Method == "cancelled" {
		var p cancelledParams
		_ = json.Unmarshal(note.Params, &p)
		id := rawToID(p.RequestID)
		s.inMu.Lock()
		if e, ok := s.inFlight[id.String()]; ok {
			e.cancelled = true
		}
		// Unknown/completed id is silently ignored, per spec.
		s.inMu.Unlock()
		return
	}
	s.handler.HandleNotification(ctx, note.Method, note.Params)
}

func rawToID(v any) jsonrpc.ID {
	switch v := v.(type) {
	case nil:
		return jsonrpc.ID{}
	case string:
		return jsonrpc.MakeID(v)
	case float64:
		return jsonrpc.MakeID(int64(v))
	case int:
		return jsonrpc.MakeID(int64(v))
	case int64:
		return jsonrpc.MakeID(v)
	default:
		return jsonrpc.ID{}
	}
}

func (s *session) settleOutbound(resp *jsonrpc.Response) {
	idStr := resp.ID.String()
	s.outMu.Lock()
	pc, ok := s.outPending[idStr]
	if ok {
		delete(s.outPending, idStr)
	}
	s.outMu.Unlock()
	if !ok {
		// Unmatched responses are silently dropped, per spec.
		return
	}
	pc.ch <- resp
}

// TimeoutError is returned by call when an outbound request is not
// answered within its timeout.
type TimeoutError struct {
	Method string
	ID     jsonrpc.ID
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("mcp: request %s (id %s) timed out", e.Method, e.ID)
}

// call sends a Request and blocks for its Response, honoring ctx
// cancellation and the session's outbound timeout. On timeout it sends a
// cancellation notification and returns a *TimeoutError.
func (s *session) call(ctx context.Context, method string, params any, result any) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	id := jsonrpc.MakeID(s.nextID.Add(1))
	req, err := jsonrpc.NewRequest(id, method, params)
	if err != nil {
		return err
	}
	pc := &pendingCall{ch: make(chan *jsonrpc.Response, 1)}
	s.outMu.Lock()
	s.outPending[id.String()] = pc
	s.outMu.Unlock()

	cleanup := func() {
		s.outMu.Lock()
		delete(s.outPending, id.String())
		s.outMu.Unlock()
	}

	if err := s.transport.Write(ctx, req); err != nil {
		cleanup()
		return fmt.Errorf("writing request: %w", err)
	}

	timeout := s.outboundTimeout
	if timeout <= 0 {
		timeout = DefaultOutboundTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp := <-pc.ch:
		if resp.Error != nil {
			return resp.Error
		}
		if result != nil && resp.Result != nil {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("unmarshaling result: %w", err)
			}
		}
		return nil
	case <-timer.C:
		cleanup()
		note, _ := jsonrpc.NewNotification("notifications/cancelled", cancelledParams{RequestID: id.Raw(), Reason: "timeout"})
		_ = s.transport.Write(context.Background(), note)
		return &TimeoutError{Method: method, ID: id}
	case <-ctx.Done():
		cleanup()
		return ctx.Err()
	case <-s.closed:
		cleanup()
		return errTransportClosed
	}
}

// notify sends a fire-and-forget Notification.
func (s *session) notify(ctx context.Context, method string, params any) error {
	note, err := jsonrpc.NewNotification(method, params)
	if err != nil {
		return err
	}
	return s.transport.Write(ctx, note)
}

// isCancelled reports whether the inbound request identified by ctx (via
// withInFlightID) has been flagged cancelled by the peer. Handlers that
// want to abort early must poll this.
func (s *session) isCancelled(ctx context.Context) bool {
	id, ok := inFlightIDFromContext(ctx)
	if !ok {
		return false
	}
	s.inMu.Lock()
	defer s.inMu.Unlock()
	e, ok := s.inFlight[id.String()]
	return ok && e.cancelled
}

type contextKey int

const (
	inFlightIDKey contextKey = iota
	progressTokenKey
)

func withInFlightID(ctx context.Context, id jsonrpc.ID) context.Context {
	return context.WithValue(ctx, inFlightIDKey, id)
}

func inFlightIDFromContext(ctx context.Context) (jsonrpc.ID, bool) {
	id, ok := ctx.Value(inFlightIDKey).(jsonrpc.ID)
	return id, ok
}

func withProgressToken(ctx context.Context, token any) context.Context {
	if token == nil {
		return ctx
	}
	return context.WithValue(ctx, progressTokenKey, token)
}

func progressTokenFromContext(ctx context.Context) (any, bool) {
	t := ctx.Value(progressTokenKey)
	return t, t != nil
}

// extractProgressToken reads params._meta.progressToken without requiring
// callers to know the concrete params type.
func extractProgressToken(params json.RawMessage) any {
	if len(params) == 0 {
		return nil
	}
	var p struct {
		Meta struct {
			ProgressToken any `json:"progressToken"`
		} `json:"_meta"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil
	}
	return p.Meta.ProgressToken
}
