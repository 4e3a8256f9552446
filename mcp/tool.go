// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"golang.org/x/tools/gomcp/jsonschema"
)

var toolNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidToolName reports whether name satisfies the registration-time name
// constraint.
func ValidToolName(name string) bool {
	return toolNamePattern.MatchString(name)
}

// CallToolParams is the params object of a tools/call request.
type CallToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Task      *TaskOptions   `json:"task,omitempty"`
	Meta      *RequestMeta   `json:"_meta,omitempty"`
}

// TaskOptions requests asynchronous execution of a tools/call.
type TaskOptions struct {
	TTL int64 `json:"ttl"`
}

// RequestMeta carries out-of-band request metadata, currently just the
// progress token.
type RequestMeta struct {
	ProgressToken any `json:"progressToken,omitempty"`
}

// CallToolResult is the normalized result of a tool invocation.
type CallToolResult struct {
	Content           []*Content `json:"content"`
	StructuredContent any        `json:"structuredContent,omitempty"`
	IsError           bool       `json:"isError,omitempty"`
}

// CreateTaskResult is returned by tools/call when task execution was
// requested.
type CreateTaskResult struct {
	Task *Task `json:"task"`
}

// ToolHandler implements a tool's behavior. It returns any value;
// normalizeToolResult converts it to a CallToolResult. A returned *Error is
// raised deliberately and keeps its own code and message. Any other
// returned error is treated as an unexpected exception: the dispatcher
// catches it and emits a sanitized InternalError response, never
// propagating the raw error text or a successful isError result.
type ToolHandler func(ctx context.Context, ss *ServerSession, params *CallToolParams) (any, error)

// ServerTool associates a Tool definition with its handler.
type ServerTool struct {
	Tool    *Tool
	Handler ToolHandler

	resolvedInput  *jsonschema.Resolved
	resolvedOutput *jsonschema.Resolved
}

// NewServerTool validates name and wires schema, returning a ServerTool
// ready to register. inputSchema/outputSchema may be nil.
func NewServerTool(name, description string, inputSchema, outputSchema *jsonschema.Schema, handler ToolHandler) (*ServerTool, error) {
	if !ValidToolName(name) {
		return nil, fmt.Errorf("mcp: invalid tool name %q: must match %s", name, toolNamePattern)
	}
	t := &Tool{Name: name, Description: description}
	st := &ServerTool{Tool: t, Handler: handler}
	if inputSchema != nil {
		raw, err := json.Marshal(inputSchema)
		if err != nil {
			return nil, err
		}
		rm := json.RawMessage(raw)
		t.InputSchema = &rm
		resolved, err := jsonschema.Resolve(inputSchema)
		if err != nil {
			return nil, fmt.Errorf("resolving input schema for %q: %w", name, err)
		}
		st.resolvedInput = resolved
	}
	if outputSchema != nil {
		raw, err := json.Marshal(outputSchema)
		if err != nil {
			return nil, err
		}
		rm := json.RawMessage(raw)
		t.OutputSchema = &rm
		resolved, err := jsonschema.Resolve(outputSchema)
		if err != nil {
			return nil, fmt.Errorf("resolving output schema for %q: %w", name, err)
		}
		st.resolvedOutput = resolved
	}
	return st, nil
}

func (st *ServerTool) validateArguments(args map[string]any) error {
	if st.resolvedInput == nil {
		return nil
	}
	if err := st.resolvedInput.Validate(map[string]any(args)); err != nil {
		return invalidParamsf("invalid arguments for tool %q: %s", st.Tool.Name, err)
	}
	return nil
}

// normalizeToolResult implements the six-case normalization algorithm,
// first match wins.
func normalizeToolResult(v any, hasOutputSchema bool) (*CallToolResult, error) {
	switch val := v.(type) {
	case *CallToolResult:
		return val, nil
	case *Content:
		return &CallToolResult{Content: []*Content{val}}, nil
	case map[string]any:
		if hasOutputSchema {
			text, err := json.Marshal(val)
			if err != nil {
				return nil, fmt.Errorf("rendering structured content: %w", err)
			}
			return &CallToolResult{StructuredContent: val, Content: []*Content{NewTextContent(string(text))}}, nil
		}
		return &CallToolResult{Content: []*Content{NewTextContent(fmt.Sprintf("%v", val))}}, nil
	case string:
		return &CallToolResult{Content: []*Content{NewTextContent(val)}}, nil
	case []*Content:
		return &CallToolResult{Content: val}, nil
	case []any:
		out := make([]*Content, 0, len(val))
		for _, item := range val {
			if c, ok := item.(*Content); ok {
				out = append(out, c)
			} else {
				out = append(out, NewTextContent(fmt.Sprintf("%v", item)))
			}
		}
		return &CallToolResult{Content: out}, nil
	case nil:
		return &CallToolResult{Content: []*Content{NewTextContent("")}}, nil
	default:
		return &CallToolResult{Content: []*Content{NewTextContent(fmt.Sprintf("%v", val))}}, nil
	}
}
