// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"golang.org/x/tools/gomcp/jsonrpc"
)

// TestCancellationSuppressesResponse exercises the scenario where a
// notifications/cancelled arrives for a request still being handled: the
// handler observes isCancelled and the session must never write a response
// for that id afterward.
func TestCancellationSuppressesResponse(t *testing.T) {
	runCancellationRace(t)
}

// runCancellationRace holds the body shared with the synctest-gated variant
// of this test, which runs the same race inside a synctest bubble so the
// handler's polling loop advances on a fake clock.
func runCancellationRace(t *testing.T) {
	client, serverT := LocalTransports()

	handlerStarted := make(chan struct{})
	handlerSawCancel := make(chan bool, 1)

	s := &session{transport: serverT, outPending: map[string]*pendingCall{}, inFlight: map[string]*inFlightEntry{}, extensions: newExtensionRegistry(), closed: make(chan struct{}), outboundTimeout: DefaultOutboundTimeout}
	s.handler = testHandler{
		onRequest: func(ctx context.Context) (any, error) {
			close(handlerStarted)
			deadline := time.After(2 * time.Second)
			for {
				if s.isCancelled(ctx) {
					handlerSawCancel <- true
					return nil, nil
				}
				select {
				case <-deadline:
					handlerSawCancel <- false
					return nil, nil
				case <-time.After(5 * time.Millisecond):
				}
			}
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.run(ctx)

	id := jsonrpc.MakeID(int64(1))
	req, err := jsonrpc.NewRequest(id, "slow", struct{}{})
	if err != nil {
		t.Fatal(err)
	}
	if err := writeTo(client, req); err != nil {
		t.Fatal(err)
	}
	<-handlerStarted

	note, err := jsonrpc.NewNotification("notifications/cancelled", cancelledParams{RequestID: id.Raw()})
	if err != nil {
		t.Fatal(err)
	}
	if err := writeTo(client, note); err != nil {
		t.Fatal(err)
	}

	select {
	case saw := <-handlerSawCancel:
		if !saw {
			t.Fatal("handler never observed cancellation")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for handler")
	}

	// No response should ever arrive for the cancelled id: read with a
	// short deadline and expect nothing but context deadline exceeded.
	readCtx, readCancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer readCancel()
	_, err = client.Read(readCtx)
	if err == nil {
		t.Fatal("unexpected response delivered for a cancelled request")
	}
}

type testHandler struct {
	onRequest func(ctx context.Context) (any, error)
}

func (h testHandler) HandleRequest(ctx context.Context, method string, params json.RawMessage) (any, error) {
	return h.onRequest(ctx)
}

func (h testHandler) HandleNotification(ctx context.Context, method string, params json.RawMessage) {}

func writeTo(t Transport, msg jsonrpc.Message) error {
	return t.Write(context.Background(), msg)
}
