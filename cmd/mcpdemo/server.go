// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/tools/gomcp/jsonschema"
	"golang.org/x/tools/gomcp/mcp"
)

// newDemoServer returns a Server wired with a small set of tools,
// resources, and prompts, enough to exercise every feature area over
// whichever transport the caller connects.
func newDemoServer(version string) (*mcp.Server, error) {
	s := mcp.NewServer(mcp.Implementation{Name: "mcpdemo", Version: version}, &mcp.ServerOptions{
		Instructions: "Example tools, resources, and prompts for exercising the MCP transports.",
	})

	echoTool, err := mcp.NewServerTool("echo", "Echoes back its message argument.",
		&jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"message": {Type: "string"}},
			Required:   []string{"message"},
		},
		nil,
		echoHandler,
	)
	if err != nil {
		return nil, fmt.Errorf("registering echo tool: %w", err)
	}

	timeTool, err := mcp.NewServerTool("current_time", "Returns the current UTC time in RFC 3339 form.",
		nil, nil, currentTimeHandler)
	if err != nil {
		return nil, fmt.Errorf("registering current_time tool: %w", err)
	}

	sleepTool, err := mcp.NewServerTool("slow_count", "Counts to n, one step every 200ms; slow enough to be worth running as a task.",
		&jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"n": {Type: "integer", Minimum: jsonschema.Ptr(1.0)}},
			Required:   []string{"n"},
		},
		nil,
		slowCountHandler,
	)
	if err != nil {
		return nil, fmt.Errorf("registering slow_count tool: %w", err)
	}

	s.AddTools(echoTool, timeTool, sleepTool)

	s.AddResources(&mcp.ServerResource{
		Resource: &mcp.Resource{
			URI:         "demo://readme",
			Name:        "readme",
			MIMEType:    "text/plain",
			Description: "A short description of this demo server.",
		},
		Handler: readmeHandler,
	})

	s.AddResourceTemplates(&mcp.ServerResourceTemplate{
		ResourceTemplate: &mcp.ResourceTemplate{
			URITemplate: "demo://greeting/{name}",
			Name:        "greeting",
			MIMEType:    "text/plain",
			Description: "A personalized greeting, one per name.",
		},
		Handler: greetingResourceHandler,
	})

	s.AddPrompts(&mcp.ServerPrompt{
		Prompt: &mcp.Prompt{
			Name:        "greet",
			Description: "Produces a greeting prompt for the named person.",
			Arguments: []*mcp.PromptArgument{
				{Name: "name", Description: "Who to greet", Required: true},
			},
		},
		Handler: greetPromptHandler,
	})

	s.AddCompleter("prompt:greet", nameCompleter)

	return s, nil
}

func echoHandler(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParams) (any, error) {
	msg, _ := params.Arguments["message"].(string)
	return mcp.NewTextContent(msg), nil
}

func currentTimeHandler(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParams) (any, error) {
	return mcp.NewTextContent(time.Now().UTC().Format(time.RFC3339)), nil
}

// slowCountHandler is intentionally slow, so it is worth running as a task
// when a client requests asynchronous execution.
func slowCountHandler(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParams) (any, error) {
	n, _ := params.Arguments["n"].(float64)
	for i := 1; i <= int(n); i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	return mcp.NewTextContent(fmt.Sprintf("counted to %d", int(n))), nil
}

func readmeHandler(ctx context.Context, ss *mcp.ServerSession, uri string, bindings map[string]string) (*mcp.ReadResourceResult, error) {
	text := "mcpdemo exposes a handful of toy tools, resources, and prompts " +
		"for exercising every transport this module implements."
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		mcp.NewTextResourceContents(uri, "text/plain", text),
	}}, nil
}

func greetingResourceHandler(ctx context.Context, ss *mcp.ServerSession, uri string, bindings map[string]string) (*mcp.ReadResourceResult, error) {
	name := bindings["name"]
	if name == "" {
		name = "stranger"
	}
	text := fmt.Sprintf("Hello, %s!", name)
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		mcp.NewTextResourceContents(uri, "text/plain", text),
	}}, nil
}

func greetPromptHandler(ctx context.Context, ss *mcp.ServerSession, params *mcp.GetPromptParams) (*mcp.GetPromptResult, error) {
	name := params.Arguments["name"]
	if name == "" {
		name = "there"
	}
	return &mcp.GetPromptResult{
		Description: "A friendly greeting prompt.",
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: mcp.NewTextContent(fmt.Sprintf("Say hello to %s.", name))},
		},
	}, nil
}

var knownNames = []string{"Ada", "Alan", "Grace", "Linus", "Margaret"}

func nameCompleter(ctx context.Context, argName, partialValue string, cctx *mcp.CompleteContext) ([]string, error) {
	var out []string
	for _, n := range knownNames {
		if len(out) >= 10 {
			break
		}
		if len(partialValue) == 0 || (len(n) >= len(partialValue) && n[:len(partialValue)] == partialValue) {
			out = append(out, n)
		}
	}
	return out, nil
}
