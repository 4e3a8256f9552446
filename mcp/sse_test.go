// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestScanSSEEvents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []sseEvent
		wantErr bool
	}{
		{
			name:  "simple event",
			input: "event: message\nid: 1\ndata: hello\n\n",
			want:  []sseEvent{{name: "message", id: "1", data: []byte("hello")}},
		},
		{
			name:  "multiple data lines",
			input: "data: line 1\ndata: line 2\n\n",
			want:  []sseEvent{{data: []byte("line 1\nline 2")}},
		},
		{
			name:  "multiple events",
			input: "data: first\n\nevent: second\ndata: second\n\n",
			want: []sseEvent{
				{data: []byte("first")},
				{name: "second", data: []byte("second")},
			},
		},
		{
			name:  "no trailing newline",
			input: "data: hello",
			want:  []sseEvent{{data: []byte("hello")}},
		},
		{
			name:  "one leading space only is stripped",
			input: "data:  two leading spaces\n\n",
			want:  []sseEvent{{data: []byte(" two leading spaces")}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []sseEvent
			for e, err := range scanSSEEvents(strings.NewReader(tt.input)) {
				if err != nil {
					t.Fatalf("scanSSEEvents: %v", err)
				}
				got = append(got, e)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d events, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].name != tt.want[i].name || got[i].id != tt.want[i].id || string(got[i].data) != string(tt.want[i].data) {
					t.Errorf("event %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestStripOneLeadingSpace(t *testing.T) {
	if got := stripOneLeadingSpace("  two"); got != " two" {
		t.Errorf("stripOneLeadingSpace = %q, want %q", got, " two")
	}
	if got := stripOneLeadingSpace("none"); got != "none" {
		t.Errorf("stripOneLeadingSpace = %q, want %q", got, "none")
	}
}

func TestSSETransportEndToEnd(t *testing.T) {
	server := NewServer(Implementation{Name: "s", Version: "1"}, nil)
	server.AddTools(echoTool(t))
	handler := NewSSEHandler(func(*http.Request) *Server { return server })
	httpServer := httptest.NewServer(handler)
	defer httpServer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	clientTransport, err := NewSSEClientTransport(httpServer.URL, nil)
	if err != nil {
		t.Fatalf("NewSSEClientTransport: %v", err)
	}
	t0, err := clientTransport.Connect(ctx)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	client := NewClient(Implementation{Name: "c", Version: "1"}, nil)
	cs, err := client.Connect(ctx, t0)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}
	defer cs.Close()

	result, err := cs.CallTool(ctx, "echo", map[string]any{"text": "via sse"})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if len(result.Content) != 1 || result.Content[0].Text != "via sse" {
		t.Fatalf("result = %+v", result)
	}
}
