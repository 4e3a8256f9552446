// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"testing"
	"time"
)

// connectedClientServer is like newConnectedPair but also returns the
// ServerSession, needed to issue server-to-client requests (roots/list,
// sampling/createMessage, elicitation/create).
func connectedClientServer(t *testing.T, server *Server, copts *ClientOptions) (*ClientSession, *ServerSession) {
	t.Helper()
	ct, st := LocalTransports()
	ss := server.Connect(context.Background(), st)
	t.Cleanup(func() { ss.Close() })

	client := NewClient(Implementation{Name: "test-client", Version: "0.0.1"}, copts)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	cs, err := client.Connect(ctx, ct)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { cs.Close() })
	return cs, ss
}

func TestClientRootsListRoundTrip(t *testing.T) {
	client := NewClient(Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	client.AddRoots(&Root{URI: "file:///a", Name: "a"}, &Root{URI: "file:///b", Name: "b"})

	ct, st := LocalTransports()
	server := NewServer(Implementation{Name: "s", Version: "1"}, nil)
	ss := server.Connect(context.Background(), st)
	defer ss.Close()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	cs, err := client.Connect(ctx, ct)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer cs.Close()

	var result listRootsResult
	if err := ss.session.call(ctx, "roots/list", struct{}{}, &result); err != nil {
		t.Fatalf("roots/list: %v", err)
	}
	if len(result.Roots) != 2 || result.Roots[0].URI != "file:///a" || result.Roots[1].URI != "file:///b" {
		t.Errorf("roots = %+v, want [file:///a file:///b]", result.Roots)
	}

	client.RemoveRoots("file:///a")
	var result2 listRootsResult
	if err := ss.session.call(ctx, "roots/list", struct{}{}, &result2); err != nil {
		t.Fatalf("roots/list after remove: %v", err)
	}
	if len(result2.Roots) != 1 || result2.Roots[0].URI != "file:///b" {
		t.Errorf("roots after remove = %+v, want [file:///b]", result2.Roots)
	}
}

func TestClientSamplingHandlerRoundTrip(t *testing.T) {
	opts := &ClientOptions{
		SamplingHandler: func(ctx context.Context, cs *ClientSession, params *CreateMessageParams) (*CreateMessageResult, error) {
			return &CreateMessageResult{Role: "assistant", Content: NewTextContent("reply to: " + params.SystemPrompt)}, nil
		},
	}
	server := NewServer(Implementation{Name: "s", Version: "1"}, nil)
	_, ss := connectedClientServer(t, server, opts)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	var result CreateMessageResult
	params := CreateMessageParams{SystemPrompt: "hello"}
	if err := ss.session.call(ctx, "sampling/createMessage", params, &result); err != nil {
		t.Fatalf("sampling/createMessage: %v", err)
	}
	if result.Content.Text != "reply to: hello" {
		t.Errorf("result.Content.Text = %q, want %q", result.Content.Text, "reply to: hello")
	}
}

func TestClientSamplingHandlerMissingReturnsMethodNotFound(t *testing.T) {
	server := NewServer(Implementation{Name: "s", Version: "1"}, nil)
	_, ss := connectedClientServer(t, server, nil)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	var result CreateMessageResult
	err := ss.session.call(ctx, "sampling/createMessage", CreateMessageParams{}, &result)
	if err == nil {
		t.Fatal("expected an error when no SamplingHandler is configured")
	}
}

func TestClientElicitationHandlerRoundTrip(t *testing.T) {
	opts := &ClientOptions{
		ElicitationHandler: func(ctx context.Context, cs *ClientSession, params *ElicitParams) (*ElicitationResponse, error) {
			return &ElicitationResponse{Action: "accept", Content: map[string]any{"ok": true}}, nil
		},
	}
	server := NewServer(Implementation{Name: "s", Version: "1"}, nil)
	_, ss := connectedClientServer(t, server, opts)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	var result ElicitationResponse
	params := ElicitParams{Message: "confirm?"}
	if err := ss.session.call(ctx, "elicitation/create", params, &result); err != nil {
		t.Fatalf("elicitation/create: %v", err)
	}
	if result.Action != "accept" {
		t.Errorf("result.Action = %q, want accept", result.Action)
	}
}

func TestClientSubscribeBroadcastsNotifications(t *testing.T) {
	server := NewServer(Implementation{Name: "s", Version: "1"}, nil)
	server.AddResources(&ServerResource{Resource: &Resource{URI: "demo://x", Name: "x", MIMEType: "text/plain"}, Handler: func(ctx context.Context, ss *ServerSession, uri string, bindings map[string]string) (*ReadResourceResult, error) {
		return &ReadResourceResult{Contents: []*ResourceContents{NewTextResourceContents(uri, "text/plain", "hi")}}, nil
	}})
	cs, ss := connectedClientServer(t, server, nil)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	if err := cs.SubscribeResource(ctx, "demo://x"); err != nil {
		t.Fatalf("SubscribeResource: %v", err)
	}

	ch := cs.Subscribe()
	if err := ss.NotifyResourceUpdated(ctx, "demo://x"); err != nil {
		t.Fatalf("NotifyResourceUpdated: %v", err)
	}

	select {
	case n := <-ch:
		if n.Method != "notifications/resources/updated" {
			t.Errorf("notification method = %q, want notifications/resources/updated", n.Method)
		}
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for broadcast notification")
	}
}

func TestClientSubscribeDropsOnFullChannel(t *testing.T) {
	server := NewServer(Implementation{Name: "s", Version: "1"}, nil)
	cs, _ := connectedClientServer(t, server, nil)

	ch := cs.Subscribe()
	// Flood past the channel's buffer without ever reading; broadcast must
	// not block the dispatch loop (select/default drop-on-full).
	for i := 0; i < 64; i++ {
		cs.broadcast(Notification{Method: "notifications/message"})
	}
	if len(ch) == 0 {
		t.Fatal("expected some buffered notifications to have landed")
	}
}
