// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// CreateMessageParams is the params object of a sampling/createMessage
// request sent by a server to a client.
type CreateMessageParams struct {
	Messages    []*PromptMessage `json:"messages"`
	SystemPrompt string          `json:"systemPrompt,omitempty"`
	MaxTokens   int              `json:"maxTokens,omitempty"`
}

// CreateMessageResult is the client's answer to a sampling request: the
// model's response, transported but never computed by this package.
type CreateMessageResult struct {
	Role    string   `json:"role"`
	Content *Content `json:"content"`
	Model   string   `json:"model,omitempty"`
}

// SamplingHandler answers a server's sampling/createMessage request.
type SamplingHandler func(ctx context.Context, cs *ClientSession, params *CreateMessageParams) (*CreateMessageResult, error)

// ElicitParams is the params object of an elicitation/create request.
type ElicitParams struct {
	Message string         `json:"message"`
	Schema  map[string]any `json:"requestedSchema,omitempty"`
}

// ElicitationHandler answers a server's elicitation/create request.
type ElicitationHandler func(ctx context.Context, cs *ClientSession, params *ElicitParams) (*ElicitationResponse, error)

// ClientOptions configures a Client.
type ClientOptions struct {
	Logger             *slog.Logger
	SamplingHandler    SamplingHandler
	ElicitationHandler ElicitationHandler
}

// Client is a peer that consumes tools, resources, and prompts exposed by
// a Server.
type Client struct {
	impl   Implementation
	logger *slog.Logger

	samplingHandler    SamplingHandler
	elicitationHandler ElicitationHandler

	rootsMu sync.Mutex
	roots   *orderedRegistry[*Root]
}

// NewClient returns a Client identifying itself to peers as impl.
func NewClient(impl Implementation, opts *ClientOptions) *Client {
	c := &Client{impl: impl, roots: newOrderedRegistry[*Root](), logger: slog.Default()}
	if opts != nil {
		if opts.Logger != nil {
			c.logger = opts.Logger
		}
		c.samplingHandler = opts.SamplingHandler
		c.elicitationHandler = opts.ElicitationHandler
	}
	return c
}

// AddRoots registers filesystem (or other URI-addressed) roots offered to
// servers via roots/list.
func (c *Client) AddRoots(roots ...*Root) {
	for _, r := range roots {
		c.roots.add(r.URI, r)
	}
}

// RemoveRoots unregisters roots by uri.
func (c *Client) RemoveRoots(uris ...string) {
	for _, u := range uris {
		c.roots.remove(u)
	}
}

func (c *Client) capabilities() ClientCapabilities {
	caps := ClientCapabilities{Roots: &RootsCapability{ListChanged: true}}
	if c.samplingHandler != nil {
		caps.Sampling = &SamplingCapability{}
	}
	if c.elicitationHandler != nil {
		caps.Elicitation = &ElicitationCapability{}
	}
	return caps
}

// Notification is one inbound notification delivered to a ClientSession's
// broadcast stream.
type Notification struct {
	Method string
	Params json.RawMessage
}

// ClientSession is one connection to a Server: the dispatch core plus the
// negotiated server identity and a broadcast stream of inbound
// notifications for reactive consumers.
type ClientSession struct {
	session *session
	client  *Client

	serverInfo   Implementation
	serverCaps   ServerCapabilities
	instructions string

	subMu       sync.Mutex
	subscribers []chan Notification
}

var _ Handler = (*ClientSession)(nil)

// Connect performs the full client-side handshake over t: send initialize,
// await the result, then send notifications/initialized. Feature requests
// must not be issued before Connect returns.
func (c *Client) Connect(ctx context.Context, t Transport) (*ClientSession, error) {
	cs := &ClientSession{session: newSession(t), client: c}
	cs.session.handler = cs
	go cs.session.run(ctx)

	var result initializeResult
	params := initializeParams{ProtocolVersion: DefaultProtocolVersion, Capabilities: c.capabilities(), ClientInfo: c.impl}
	if err := cs.session.call(ctx, "initialize", params, &result); err != nil {
		return nil, err
	}
	cs.session.initMu.Lock()
	cs.session.initialized = true
	cs.session.protocolVersion = result.ProtocolVersion
	cs.session.initMu.Unlock()
	cs.serverInfo = result.ServerInfo
	cs.serverCaps = result.Capabilities
	cs.instructions = result.Instructions

	if err := cs.session.notify(ctx, "notifications/initialized", struct{}{}); err != nil {
		return nil, err
	}
	return cs, nil
}

// ServerInfo returns the peer's identity, valid after Connect returns.
func (cs *ClientSession) ServerInfo() Implementation { return cs.serverInfo }

// ServerCapabilities returns the peer's negotiated capabilities.
func (cs *ClientSession) ServerCapabilities() ServerCapabilities { return cs.serverCaps }

// Instructions returns the peer-supplied usage instructions, if any.
func (cs *ClientSession) Instructions() string { return cs.instructions }

// Wait blocks until the session's transport loop ends.
func (cs *ClientSession) Wait() error { return cs.session.Wait() }

// Close closes the session's transport.
func (cs *ClientSession) Close() error { return cs.session.transport.Close() }

// Subscribe returns a channel delivering every inbound notification this
// session receives from its peer. The channel buffers 32 notifications;
// while it is full, further notifications are dropped for that subscriber
// rather than blocking dispatch.
func (cs *ClientSession) Subscribe() <-chan Notification {
	ch := make(chan Notification, 32)
	cs.subMu.Lock()
	cs.subscribers = append(cs.subscribers, ch)
	cs.subMu.Unlock()
	return ch
}

func (cs *ClientSession) broadcast(n Notification) {
	cs.subMu.Lock()
	defer cs.subMu.Unlock()
	for _, ch := range cs.subscribers {
		select {
		case ch <- n:
		default:
		}
	}
}

// HandleRequest implements Handler for requests the server sends to the
// client: ping, roots/list, sampling/createMessage, elicitation/create.
func (cs *ClientSession) HandleRequest(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "ping":
		return struct{}{}, nil
	case "roots/list":
		return cs.listRoots(params)
	case "sampling/createMessage":
		if cs.client.samplingHandler == nil {
			return nil, methodNotFoundf(method)
		}
		var p CreateMessageParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, invalidParamsf("invalid params: %s", err)
		}
		return cs.client.samplingHandler(ctx, cs, &p)
	case "elicitation/create":
		if cs.client.elicitationHandler == nil {
			return nil, methodNotFoundf(method)
		}
		var p ElicitParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, invalidParamsf("invalid params: %s", err)
		}
		return cs.client.elicitationHandler(ctx, cs, &p)
	default:
		return nil, methodNotFoundf(method)
	}
}

type listRootsResult struct {
	Roots []*Root `json:"roots"`
}

func (cs *ClientSession) listRoots(json.RawMessage) (any, error) {
	return &listRootsResult{Roots: cs.client.roots.all()}, nil
}

// HandleNotification implements Handler for notifications the server
// sends: logging messages and list-changed/resource-updated events are
// rebroadcast to Subscribe consumers.
func (cs *ClientSession) HandleNotification(ctx context.Context, method string, params json.RawMessage) {
	cs.broadcast(Notification{Method: method, Params: params})
}

// Ping sends a ping request and waits for the server's reply.
func (cs *ClientSession) Ping(ctx context.Context) error {
	return cs.session.call(ctx, "ping", struct{}{}, nil)
}

// ListTools lists tools, following cursor if non-empty.
func (cs *ClientSession) ListTools(ctx context.Context, cursor string) (*listToolsResult, error) {
	var result listToolsResult
	if err := cs.session.call(ctx, "tools/list", listParams{Cursor: cursor}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CallTool invokes a tool by name with the given arguments.
func (cs *ClientSession) CallTool(ctx context.Context, name string, arguments map[string]any) (*CallToolResult, error) {
	var result CallToolResult
	params := CallToolParams{Name: name, Arguments: arguments}
	if err := cs.session.call(ctx, "tools/call", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListResources lists resources, following cursor if non-empty.
func (cs *ClientSession) ListResources(ctx context.Context, cursor string) (*listResourcesResult, error) {
	var result listResourcesResult
	if err := cs.session.call(ctx, "resources/list", listParams{Cursor: cursor}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ReadResource reads a resource by uri.
func (cs *ClientSession) ReadResource(ctx context.Context, uri string) (*ReadResourceResult, error) {
	var result ReadResourceResult
	if err := cs.session.call(ctx, "resources/read", ReadResourceParams{URI: uri}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListPrompts lists prompts, following cursor if non-empty.
func (cs *ClientSession) ListPrompts(ctx context.Context, cursor string) (*listPromptsResult, error) {
	var result listPromptsResult
	if err := cs.session.call(ctx, "prompts/list", listParams{Cursor: cursor}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPrompt renders a prompt by name.
func (cs *ClientSession) GetPrompt(ctx context.Context, name string, arguments map[string]string) (*GetPromptResult, error) {
	var result GetPromptResult
	params := GetPromptParams{Name: name, Arguments: arguments}
	if err := cs.session.call(ctx, "prompts/get", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Complete requests completions for a prompt or resource argument.
func (cs *ClientSession) Complete(ctx context.Context, params *CompleteParams) (*CompleteResult, error) {
	var result CompleteResult
	if err := cs.session.call(ctx, "completion/complete", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetLoggingLevel requests the server change its logging threshold.
func (cs *ClientSession) SetLoggingLevel(ctx context.Context, level LogLevel) error {
	return cs.session.call(ctx, "logging/setLevel", setLevelParams{Level: level}, nil)
}

// SubscribeResource requests notifications/resources/updated for uri.
func (cs *ClientSession) SubscribeResource(ctx context.Context, uri string) error {
	return cs.session.call(ctx, "resources/subscribe", subscribeParams{URI: uri}, nil)
}

// UnsubscribeResource cancels a prior SubscribeResource.
func (cs *ClientSession) UnsubscribeResource(ctx context.Context, uri string) error {
	return cs.session.call(ctx, "resources/unsubscribe", subscribeParams{URI: uri}, nil)
}

// GetTask polls a task's current snapshot without blocking.
func (cs *ClientSession) GetTask(ctx context.Context, taskID string) (*Task, error) {
	var result Task
	if err := cs.session.call(ctx, "tasks/get", taskIDParams{TaskID: taskID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TaskResult blocks (server-side) until taskID reaches a terminal state,
// then returns its final snapshot and normalized tool result.
func (cs *ClientSession) TaskResult(ctx context.Context, taskID string) (*taskResultResult, error) {
	var result taskResultResult
	if err := cs.session.call(ctx, "tasks/result", taskIDParams{TaskID: taskID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelTask requests cancellation of a non-terminal task.
func (cs *ClientSession) CancelTask(ctx context.Context, taskID string) (*Task, error) {
	var result Task
	if err := cs.session.call(ctx, "tasks/cancel", taskIDParams{TaskID: taskID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
