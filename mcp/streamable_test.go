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

	"github.com/google/go-cmp/cmp"
)

func TestFormatParseEventID(t *testing.T) {
	id := formatEventID("stream-abc", 42)
	streamID, seq, ok := parseEventID(id)
	if !ok {
		t.Fatalf("parseEventID(%q): ok = false", id)
	}
	if streamID != "stream-abc" || seq != 42 {
		t.Errorf("parseEventID(%q) = (%q, %d), want (%q, %d)", id, streamID, seq, "stream-abc", 42)
	}
}

func TestParseEventIDRejectsMalformed(t *testing.T) {
	cases := []string{"", "noColon", "stream:-1", "stream:abc", ":5"}
	for _, c := range cases {
		if _, _, ok := parseEventID(c); ok {
			t.Errorf("parseEventID(%q) = ok, want rejected", c)
		}
	}
}

func TestOutboundStreamReplayAfterDisconnect(t *testing.T) {
	st := newOutboundStream(true, 200)
	st.publish("s1", []byte(`1`))
	st.publish("s1", []byte(`2`))
	st.publish("s1", []byte(`3`))

	st.setLive(true)
	st.setLive(false) // simulate GET stream disconnecting

	events, ok := st.since(1)
	if !ok {
		t.Fatal("since() reported eviction for a still-buffered range")
	}
	want := []sseEvent{
		{id: formatEventID("s1", 2), name: "message", data: []byte(`2`)},
		{id: formatEventID("s1", 3), name: "message", data: []byte(`3`)},
	}
	if diff := cmp.Diff(want, events, cmp.AllowUnexported(sseEvent{})); diff != "" {
		t.Errorf("since(1) mismatch (-want +got):\n%s", diff)
	}
}

func TestOutboundStreamEvictionDetected(t *testing.T) {
	st := newOutboundStream(true, 2)
	st.publish("s1", []byte(`1`))
	st.publish("s1", []byte(`2`))
	st.publish("s1", []byte(`3`))
	st.publish("s1", []byte(`4`)) // ring now holds only seq 3,4; seq 2 is gone

	if _, ok := st.since(1); ok {
		t.Fatal("since() did not detect that seq 2 was evicted")
	}
}

func TestStreamableHTTPEndToEnd(t *testing.T) {
	server := NewServer(Implementation{Name: "s", Version: "1"}, nil)
	server.AddTools(echoTool(t))
	handler := NewStreamableHTTPHandler(func(*http.Request) *Server { return server }, &StreamableHTTPOptions{
		RequireSession:     true,
		AllowSessionDelete: true,
	})
	httpServer := httptest.NewServer(handler)
	defer httpServer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	clientTransport := NewStreamableClientTransport(httpServer.URL, nil)
	t0 := clientTransport.NewClientTransport(ctx)

	client := NewClient(Implementation{Name: "c", Version: "1"}, nil)
	cs, err := client.Connect(ctx, t0)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}
	defer cs.Close()

	result, err := cs.CallTool(ctx, "echo", map[string]any{"text": "via streamable"})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if len(result.Content) != 1 || result.Content[0].Text != "via streamable" {
		t.Fatalf("result = %+v", result)
	}
}

func TestStreamableHTTPSessionLifecycle(t *testing.T) {
	server := NewServer(Implementation{Name: "s", Version: "1"}, nil)
	handler := NewStreamableHTTPHandler(func(*http.Request) *Server { return server }, &StreamableHTTPOptions{
		RequireSession:     true,
		AllowSessionDelete: true,
	})
	httpServer := httptest.NewServer(handler)
	defer httpServer.Close()

	post := func(sessionID, body string) *http.Response {
		req, err := http.NewRequest(http.MethodPost, httpServer.URL, strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Accept", "application/json, text/event-stream")
		req.Header.Set("Content-Type", "application/json")
		if sessionID != "" {
			req.Header.Set("Mcp-Session-Id", sessionID)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		return resp
	}

	initBody := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-11-25","capabilities":{},"clientInfo":{"name":"t","version":"0"}}}`
	resp := post("", initBody)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("initialize status = %d, want 200", resp.StatusCode)
	}
	sid := resp.Header.Get("Mcp-Session-Id")
	if sid == "" {
		t.Fatal("initialize response carried no Mcp-Session-Id header")
	}

	// A GET with an unknown session id is rejected before it ever opens a
	// stream.
	getReq, err := http.NewRequest(http.MethodGet, httpServer.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	getReq.Header.Set("Accept", "text/event-stream")
	getReq.Header.Set("Mcp-Session-Id", "not-a-real-session")
	getResp, err := http.DefaultClient.Do(getReq)
	if err != nil {
		t.Fatal(err)
	}
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusNotFound {
		t.Errorf("GET with unknown session = %d, want 404", getResp.StatusCode)
	}

	// A non-initialize POST lacking a session id is rejected with 400
	// rather than silently bootstrapping a second, unrelated session.
	toolsListBody := `{"jsonrpc":"2.0","id":2,"method":"tools/list","params":{}}`
	bareToolsResp := post("", toolsListBody)
	bareToolsResp.Body.Close()
	if bareToolsResp.StatusCode != http.StatusBadRequest {
		t.Errorf("session-less non-initialize POST = %d, want 400", bareToolsResp.StatusCode)
	}

	// A GET lacking any session id at all is rejected when sessions are
	// required.
	bareReq, err := http.NewRequest(http.MethodGet, httpServer.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	bareReq.Header.Set("Accept", "text/event-stream")
	bareResp, err := http.DefaultClient.Do(bareReq)
	if err != nil {
		t.Fatal(err)
	}
	bareResp.Body.Close()
	if bareResp.StatusCode != http.StatusBadRequest {
		t.Errorf("GET with no session = %d, want 400", bareResp.StatusCode)
	}

	delReq, err := http.NewRequest(http.MethodDelete, httpServer.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	delReq.Header.Set("Mcp-Session-Id", sid)
	delResp, err := http.DefaultClient.Do(delReq)
	if err != nil {
		t.Fatal(err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE status = %d, want 204", delResp.StatusCode)
	}

	resp2 := post(sid, initBody)
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("POST after session deletion = %d, want 404", resp2.StatusCode)
	}
}

func TestStreamableHTTPRejectsBadOrigin(t *testing.T) {
	server := NewServer(Implementation{Name: "s", Version: "1"}, nil)
	handler := NewStreamableHTTPHandler(func(*http.Request) *Server { return server }, &StreamableHTTPOptions{
		AllowedOrigins: []string{"https://allowed.example"},
	})
	httpServer := httptest.NewServer(handler)
	defer httpServer.Close()

	req, err := http.NewRequest(http.MethodPost, httpServer.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Accept", "application/json, text/event-stream")
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}
}
