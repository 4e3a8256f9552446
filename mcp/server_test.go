// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"testing"
	"time"

	"golang.org/x/tools/gomcp/jsonschema"
)

const testTimeout = 5 * time.Second

func newConnectedPair(t *testing.T, server *Server) (*ClientSession, *Server) {
	t.Helper()
	ct, st := LocalTransports()
	ss := server.Connect(context.Background(), st)
	t.Cleanup(func() { ss.Close() })

	client := NewClient(Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cs, err := client.Connect(ctx, ct)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { cs.Close() })
	return cs, server
}

func echoTool(t *testing.T) *ServerTool {
	st, err := NewServerTool("echo", "echoes its input", &jsonschema.Schema{
		Type:       "object",
		Properties: map[string]*jsonschema.Schema{"text": {Type: "string"}},
		Required:   []string{"text"},
	}, nil, func(ctx context.Context, ss *ServerSession, params *CallToolParams) (any, error) {
		text, _ := params.Arguments["text"].(string)
		return NewTextContent(text), nil
	})
	if err != nil {
		t.Fatalf("NewServerTool: %v", err)
	}
	return st
}

func TestInitializeHandshake(t *testing.T) {
	server := NewServer(Implementation{Name: "test-server", Version: "1.0.0"}, &ServerOptions{Instructions: "hi"})
	cs, _ := newConnectedPair(t, server)

	if got := cs.ServerInfo().Name; got != "test-server" {
		t.Errorf("ServerInfo().Name = %q, want test-server", got)
	}
	if got := cs.Instructions(); got != "hi" {
		t.Errorf("Instructions() = %q, want hi", got)
	}
}

func TestToolCallRoundTrip(t *testing.T) {
	server := NewServer(Implementation{Name: "s", Version: "1"}, nil)
	server.AddTools(echoTool(t))
	cs, _ := newConnectedPair(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := cs.CallTool(ctx, "echo", map[string]any{"text": "hello"})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if len(result.Content) != 1 || result.Content[0].Text != "hello" {
		t.Fatalf("result = %+v, want text content %q", result, "hello")
	}
	if result.IsError {
		t.Error("IsError = true, want false")
	}
}

func TestToolCallUnknownTool(t *testing.T) {
	server := NewServer(Implementation{Name: "s", Version: "1"}, nil)
	cs, _ := newConnectedPair(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := cs.CallTool(ctx, "nonexistent", nil); err == nil {
		t.Fatal("CallTool on unregistered tool succeeded, want error")
	}
}

func TestListToolsPagination(t *testing.T) {
	server := NewServer(Implementation{Name: "s", Version: "1"}, nil)
	for i := 0; i < 5; i++ {
		name := string(rune('a' + i))
		st, err := NewServerTool(name, "", nil, nil, func(ctx context.Context, ss *ServerSession, params *CallToolParams) (any, error) {
			return NewTextContent("ok"), nil
		})
		if err != nil {
			t.Fatal(err)
		}
		server.AddTools(st)
	}
	cs, _ := newConnectedPair(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var total int
	cursor := ""
	for {
		result, err := cs.ListTools(ctx, cursor)
		if err != nil {
			t.Fatalf("ListTools: %v", err)
		}
		total += len(result.Tools)
		if result.NextCursor == "" {
			break
		}
		cursor = result.NextCursor
	}
	if total != 5 {
		t.Errorf("total tools = %d, want 5", total)
	}
}

func TestResourceReadNotFound(t *testing.T) {
	server := NewServer(Implementation{Name: "s", Version: "1"}, nil)
	cs, _ := newConnectedPair(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := cs.ReadResource(ctx, "does://not-exist"); err == nil {
		t.Fatal("ReadResource on missing resource succeeded, want error")
	}
}

func TestPromptGetRoundTrip(t *testing.T) {
	server := NewServer(Implementation{Name: "s", Version: "1"}, nil)
	server.AddPrompts(&ServerPrompt{
		Prompt: &Prompt{Name: "greet", Arguments: []*PromptArgument{{Name: "name", Required: true}}},
		Handler: func(ctx context.Context, ss *ServerSession, params *GetPromptParams) (*GetPromptResult, error) {
			return &GetPromptResult{Messages: []*PromptMessage{
				{Role: "user", Content: NewTextContent("hi " + params.Arguments["name"])},
			}}, nil
		},
	})
	cs, _ := newConnectedPair(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := cs.GetPrompt(ctx, "greet", map[string]string{"name": "Ada"})
	if err != nil {
		t.Fatalf("GetPrompt: %v", err)
	}
	if len(result.Messages) != 1 || result.Messages[0].Content.Text != "hi Ada" {
		t.Fatalf("result = %+v", result)
	}
}

func TestPingRoundTrip(t *testing.T) {
	server := NewServer(Implementation{Name: "s", Version: "1"}, nil)
	cs, _ := newConnectedPair(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cs.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
