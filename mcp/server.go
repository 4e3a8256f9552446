// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// ServerOptions configures a Server.
type ServerOptions struct {
	Instructions    string
	Logger          *slog.Logger
	MetricsRegistry *prometheus.Registry
}

// Server hosts registered tools, resources, prompts, and completers, and
// accepts sessions over any Transport. A single Server can host many
// concurrently connected sessions (one per transport connection).
type Server struct {
	impl         Implementation
	instructions string
	logger       *slog.Logger

	tools             *orderedRegistry[*ServerTool]
	resources         *orderedRegistry[*ServerResource]
	resourceTemplates *orderedRegistry[*ServerResourceTemplate]
	prompts           *orderedRegistry[*ServerPrompt]

	completersMu sync.Mutex
	completers   map[string]Completer

	extensions *extensionRegistry

	sessionsMu sync.Mutex
	sessions   map[*ServerSession]bool

	metrics *serverMetrics
}

type serverMetrics struct {
	sessionsActive prometheus.Gauge
	toolCalls      prometheus.Counter
	tasksActive    prometheus.Gauge
	sseStreams     prometheus.Gauge
}

func newServerMetrics(reg *prometheus.Registry) *serverMetrics {
	m := &serverMetrics{
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{Name: "mcp_server_sessions_active", Help: "Currently connected MCP sessions."}),
		toolCalls:      prometheus.NewCounter(prometheus.CounterOpts{Name: "mcp_server_tool_calls_total", Help: "Total tools/call invocations."}),
		tasksActive:    prometheus.NewGauge(prometheus.GaugeOpts{Name: "mcp_server_tasks_active", Help: "Currently non-terminal tasks."}),
		sseStreams:     prometheus.NewGauge(prometheus.GaugeOpts{Name: "mcp_server_sse_streams_open", Help: "Currently open SSE streams."}),
	}
	if reg != nil {
		reg.MustRegister(m.sessionsActive, m.toolCalls, m.tasksActive, m.sseStreams)
	}
	return m
}

// NewServer returns a Server identifying itself to peers as impl.
func NewServer(impl Implementation, opts *ServerOptions) *Server {
	s := &Server{
		impl:              impl,
		tools:             newOrderedRegistry[*ServerTool](),
		resources:         newOrderedRegistry[*ServerResource](),
		resourceTemplates: newOrderedRegistry[*ServerResourceTemplate](),
		prompts:           newOrderedRegistry[*ServerPrompt](),
		completers:        make(map[string]Completer),
		extensions:        newExtensionRegistry(),
		sessions:          make(map[*ServerSession]bool),
		logger:            slog.Default(),
	}
	var reg *prometheus.Registry
	if opts != nil {
		s.instructions = opts.Instructions
		if opts.Logger != nil {
			s.logger = opts.Logger
		}
		reg = opts.MetricsRegistry
	}
	s.metrics = newServerMetrics(reg)
	return s
}

// AddTools registers one or more tools, replacing any existing tool with
// the same name, and notifies connected, initialized sessions of the
// change.
func (s *Server) AddTools(tools ...*ServerTool) {
	for _, t := range tools {
		s.tools.add(t.Tool.Name, t)
	}
	s.notifySessions(context.Background(), "notifications/tools/list_changed", nil)
}

// RemoveTools unregisters tools by name.
func (s *Server) RemoveTools(names ...string) {
	for _, n := range names {
		s.tools.remove(n)
	}
	s.notifySessions(context.Background(), "notifications/tools/list_changed", nil)
}

// AddResources registers resources.
func (s *Server) AddResources(resources ...*ServerResource) {
	for _, r := range resources {
		s.resources.add(r.Resource.URI, r)
	}
	s.notifySessions(context.Background(), "notifications/resources/list_changed", nil)
}

// RemoveResources unregisters resources by uri.
func (s *Server) RemoveResources(uris ...string) {
	for _, u := range uris {
		s.resources.remove(u)
	}
	s.notifySessions(context.Background(), "notifications/resources/list_changed", nil)
}

// AddResourceTemplates registers resource templates, tried in insertion
// order for first-match-wins during resources/read.
func (s *Server) AddResourceTemplates(templates ...*ServerResourceTemplate) {
	for _, t := range templates {
		s.resourceTemplates.add(t.ResourceTemplate.URITemplate, t)
	}
	s.notifySessions(context.Background(), "notifications/resources/list_changed", nil)
}

// AddPrompts registers prompts.
func (s *Server) AddPrompts(prompts ...*ServerPrompt) {
	for _, p := range prompts {
		s.prompts.add(p.Prompt.Name, p)
	}
	s.notifySessions(context.Background(), "notifications/prompts/list_changed", nil)
}

// RemovePrompts unregisters prompts by name.
func (s *Server) RemovePrompts(names ...string) {
	for _, n := range names {
		s.prompts.remove(n)
	}
	s.notifySessions(context.Background(), "notifications/prompts/list_changed", nil)
}

// AddCompleter registers a completer under "prompt:<name>" or
// "resource:<uri>".
func (s *Server) AddCompleter(key string, c Completer) {
	s.completersMu.Lock()
	defer s.completersMu.Unlock()
	s.completers[key] = c
}

// RegisterExtension registers a namespaced extension, surfaced in every
// subsequently-negotiated session's capabilities.experimental.
func (s *Server) RegisterExtension(name, version string, settings any, methods map[string]ExtensionMethodHandler, notifications map[string]ExtensionNotificationHandler) error {
	return s.extensions.register(name, version, settings, methods, notifications)
}

// notifySessions sends a notification to every connected, initialized
// session. Errors from individual sends are logged, not propagated: one
// misbehaving peer must not prevent the others from being notified.
func (s *Server) notifySessions(ctx context.Context, method string, params any) {
	s.sessionsMu.Lock()
	sessions := make([]*ServerSession, 0, len(s.sessions))
	for ss := range s.sessions {
		sessions = append(sessions, ss)
	}
	s.sessionsMu.Unlock()
	for _, ss := range sessions {
		if !ss.clientReady {
			continue
		}
		if err := ss.session.notify(ctx, method, params); err != nil {
			s.logger.Warn("notify session failed", "method", method, "err", err)
		}
	}
}

// Sessions returns a snapshot of currently connected sessions.
func (s *Server) Sessions() []*ServerSession {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	out := make([]*ServerSession, 0, len(s.sessions))
	for ss := range s.sessions {
		out = append(out, ss)
	}
	return out
}

// ServerSession is one connected peer's server-side session state:
// dispatch core, subscriptions, task registry, and logging threshold.
type ServerSession struct {
	session *session
	server  *Server

	subsMu        sync.Mutex
	subscriptions map[string]bool

	tasks *taskRegistry

	logMu    sync.Mutex
	logLevel LogLevel

	clientInfo  *Implementation
	clientCaps  *ClientCapabilities
	clientReady bool // notifications/initialized observed

	// sessionID is set by HTTP-based transports after a successful
	// initialize response; stdio sessions leave it empty.
	sessionID string
}

var _ Handler = (*ServerSession)(nil)

// Connect starts a server session over t and begins its inbound dispatch
// loop in the background. The returned session is usable immediately;
// feature requests before initialize completes are rejected per the MCP
// lifecycle.
func (s *Server) Connect(ctx context.Context, t Transport) *ServerSession {
	ss := &ServerSession{
		session:       newSession(t),
		server:        s,
		subscriptions: make(map[string]bool),
		tasks:         newTaskRegistry(),
		logLevel:      LogDebug,
	}
	ss.session.handler = ss
	s.sessionsMu.Lock()
	s.sessions[ss] = true
	s.sessionsMu.Unlock()
	if s.metrics != nil {
		s.metrics.sessionsActive.Inc()
	}
	go func() {
		_ = ss.session.run(ctx)
		s.sessionsMu.Lock()
		delete(s.sessions, ss)
		s.sessionsMu.Unlock()
		ss.tasks.close()
		if s.metrics != nil {
			s.metrics.sessionsActive.Dec()
		}
	}()
	return ss
}

// Wait blocks until the session's transport loop ends.
func (ss *ServerSession) Wait() error { return ss.session.Wait() }

// Close closes the session's transport.
func (ss *ServerSession) Close() error { return ss.session.transport.Close() }

// HandleRequest implements Handler.
func (ss *ServerSession) HandleRequest(ctx context.Context, method string, params json.RawMessage) (any, error) {
	if method != "initialize" {
		ss.session.initMu.Lock()
		initialized := ss.session.initialized
		ss.session.initMu.Unlock()
		if !initialized {
			return nil, invalidRequestf("session is not initialized: %s called before initialize", method)
		}
	}
	switch method {
	case "initialize":
		return ss.initialize(ctx, params)
	case "ping":
		return struct{}{}, nil
	case "tools/list":
		return ss.listTools(params)
	case "tools/call":
		return ss.callTool(ctx, params)
	case "resources/list":
		return ss.listResources(params)
	case "resources/templates/list":
		return ss.listResourceTemplates(params)
	case "resources/read":
		return ss.readResource(ctx, params)
	case "resources/subscribe":
		return ss.subscribe(params)
	case "resources/unsubscribe":
		return ss.unsubscribe(params)
	case "prompts/list":
		return ss.listPrompts(params)
	case "prompts/get":
		return ss.getPrompt(ctx, params)
	case "completion/complete":
		return ss.complete(ctx, params)
	case "tasks/get":
		return ss.taskGet(params)
	case "tasks/result":
		return ss.taskResult(ctx, params)
	case "tasks/cancel":
		return ss.taskCancel(ctx, params)
	case "tasks/list":
		return ss.taskList(params)
	case "logging/setLevel":
		return ss.setLevel(params)
	default:
		if h, ok := ss.server.extensions.method(method); ok {
			return h(ctx, params)
		}
		return nil, methodNotFoundf(method)
	}
}

// HandleNotification implements Handler.
func (ss *ServerSession) HandleNotification(ctx context.Context, method string, params json.RawMessage) {
	switch method {
	case "notifications/initialized":
		ss.clientReady = true
	default:
		if h, ok := ss.server.extensions.notification(method); ok {
			h(ctx, params)
		}
		// All other unhandled notifications are silently ignored.
	}
}

type initializeParams struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ClientCapabilities `json:"capabilities"`
	ClientInfo      Implementation     `json:"clientInfo"`
}

type initializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      Implementation     `json:"serverInfo"`
	Instructions    string             `json:"instructions,omitempty"`
}

func (ss *ServerSession) initialize(ctx context.Context, params json.RawMessage) (any, error) {
	ss.session.initMu.Lock()
	if ss.session.initialized {
		ss.session.initMu.Unlock()
		return nil, invalidRequestf("session already initialized")
	}
	ss.session.initMu.Unlock()

	var p initializeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParamsf("invalid initialize params: %s", err)
	}
	negotiated := negotiateVersion(p.ProtocolVersion)

	ss.session.initMu.Lock()
	ss.session.initialized = true
	ss.session.protocolVersion = negotiated
	ss.session.peerCapabilities = params
	ss.session.initMu.Unlock()
	ss.clientInfo = &p.ClientInfo
	ss.clientCaps = &p.Capabilities

	caps := ServerCapabilities{
		Tools:       &ToolsCapability{ListChanged: true},
		Resources:   &ResourcesCapability{Subscribe: true, ListChanged: true},
		Prompts:     &PromptsCapability{ListChanged: true},
		Logging:     &LoggingCapability{},
		Completions: &CompletionsCapability{},
		Tasks:       &TasksCapability{},
	}
	if exp := ss.server.extensions.experimentalCapabilities(); exp != nil {
		caps.Experimental = exp
	}
	return &initializeResult{
		ProtocolVersion: negotiated,
		Capabilities:    caps,
		ServerInfo:      ss.server.impl,
		Instructions:    ss.server.instructions,
	}, nil
}

type listParams struct {
	Cursor string `json:"cursor,omitempty"`
}

type listToolsResult struct {
	Tools      []*Tool `json:"tools"`
	NextCursor string  `json:"nextCursor,omitempty"`
}

func (ss *ServerSession) listTools(rawParams json.RawMessage) (any, error) {
	var p listParams
	if len(rawParams) > 0 {
		if err := json.Unmarshal(rawParams, &p); err != nil {
			return nil, invalidParamsf("invalid params: %s", err)
		}
	}
	all := ss.server.tools.all()
	tools := make([]*Tool, len(all))
	for i, t := range all {
		tools[i] = t.Tool
	}
	page, next, err := paginate(tools, p.Cursor, defaultPageSize)
	if err != nil {
		return nil, err
	}
	return &listToolsResult{Tools: page, NextCursor: next}, nil
}

func (ss *ServerSession) callTool(ctx context.Context, rawParams json.RawMessage) (any, error) {
	var p CallToolParams
	if err := json.Unmarshal(rawParams, &p); err != nil {
		return nil, invalidParamsf("invalid params: %s", err)
	}
	if p.Name == "" {
		return nil, invalidParamsf("missing tool name")
	}
	st, ok := ss.server.tools.get(p.Name)
	if !ok {
		return nil, invalidParamsf("unknown tool %q", p.Name)
	}
	if err := st.validateArguments(p.Arguments); err != nil {
		return nil, err
	}
	if ss.server.metrics != nil {
		ss.server.metrics.toolCalls.Inc()
	}

	hasOutputSchema := st.Tool.OutputSchema != nil
	invoke := func(ctx context.Context) (*CallToolResult, error) {
		v, err := st.Handler(ctx, ss, &p)
		if err != nil {
			return nil, err
		}
		return normalizeToolResult(v, hasOutputSchema)
	}

	if p.Task != nil && p.Task.TTL > 0 {
		entry := ss.tasks.create(p.Task.TTL)
		if ss.server.metrics != nil {
			ss.server.metrics.tasksActive.Inc()
		}
		runTask(context.WithoutCancel(ctx), entry, invoke, func(snap Task) {
			if snap.Status.IsTerminal() && ss.server.metrics != nil {
				ss.server.metrics.tasksActive.Dec()
			}
			_ = ss.session.notify(context.Background(), "notifications/tasks/status", snap)
		})
		return &CreateTaskResult{Task: ptrTask(entry.snapshot())}, nil
	}

	result, err := invoke(ctx)
	if err != nil {
		// Handler exceptions are caught and converted into a sanitized
		// InternalError response, never a successful isError result.
		if _, ok := err.(*Error); ok {
			return nil, err
		}
		return nil, newError(KindInternal, "Internal error")
	}
	return result, nil
}

func ptrTask(t Task) *Task { return &t }

type listResourcesResult struct {
	Resources  []*Resource `json:"resources"`
	NextCursor string      `json:"nextCursor,omitempty"`
}

func (ss *ServerSession) listResources(rawParams json.RawMessage) (any, error) {
	var p listParams
	if len(rawParams) > 0 {
		json.Unmarshal(rawParams, &p)
	}
	all := ss.server.resources.all()
	resources := make([]*Resource, len(all))
	for i, r := range all {
		resources[i] = r.Resource
	}
	page, next, err := paginate(resources, p.Cursor, defaultPageSize)
	if err != nil {
		return nil, err
	}
	return &listResourcesResult{Resources: page, NextCursor: next}, nil
}

type listResourceTemplatesResult struct {
	ResourceTemplates []*ResourceTemplate `json:"resourceTemplates"`
	NextCursor        string              `json:"nextCursor,omitempty"`
}

func (ss *ServerSession) listResourceTemplates(rawParams json.RawMessage) (any, error) {
	var p listParams
	if len(rawParams) > 0 {
		json.Unmarshal(rawParams, &p)
	}
	all := ss.server.resourceTemplates.all()
	templates := make([]*ResourceTemplate, len(all))
	for i, t := range all {
		templates[i] = t.ResourceTemplate
	}
	page, next, err := paginate(templates, p.Cursor, defaultPageSize)
	if err != nil {
		return nil, err
	}
	return &listResourceTemplatesResult{ResourceTemplates: page, NextCursor: next}, nil
}

func (ss *ServerSession) readResource(ctx context.Context, rawParams json.RawMessage) (any, error) {
	var p ReadResourceParams
	if err := json.Unmarshal(rawParams, &p); err != nil {
		return nil, invalidParamsf("invalid params: %s", err)
	}
	if r, ok := ss.server.resources.get(p.URI); ok {
		return r.Handler(ctx, ss, p.URI, nil)
	}
	for _, t := range ss.server.resourceTemplates.all() {
		if bindings, ok := t.Matches(p.URI); ok {
			return t.Handler(ctx, ss, p.URI, bindings)
		}
	}
	return nil, invalidParamsf("no resource or template matches uri %q", p.URI)
}

func (ss *ServerSession) resourceExists(uri string) bool {
	if _, ok := ss.server.resources.get(uri); ok {
		return true
	}
	for _, t := range ss.server.resourceTemplates.all() {
		if _, ok := t.Matches(uri); ok {
			return true
		}
	}
	return false
}

type subscribeParams struct {
	URI string `json:"uri"`
}

func (ss *ServerSession) subscribe(rawParams json.RawMessage) (any, error) {
	var p subscribeParams
	if err := json.Unmarshal(rawParams, &p); err != nil {
		return nil, invalidParamsf("invalid params: %s", err)
	}
	if !ss.resourceExists(p.URI) {
		return nil, invalidParamsf("unknown resource %q", p.URI)
	}
	ss.subsMu.Lock()
	ss.subscriptions[p.URI] = true
	ss.subsMu.Unlock()
	return struct{}{}, nil
}

func (ss *ServerSession) unsubscribe(rawParams json.RawMessage) (any, error) {
	var p subscribeParams
	if err := json.Unmarshal(rawParams, &p); err != nil {
		return nil, invalidParamsf("invalid params: %s", err)
	}
	ss.subsMu.Lock()
	delete(ss.subscriptions, p.URI)
	ss.subsMu.Unlock()
	return struct{}{}, nil
}

// NotifyResourceUpdated emits notifications/resources/updated for uri, but
// only if the peer is currently subscribed to it.
func (ss *ServerSession) NotifyResourceUpdated(ctx context.Context, uri string) error {
	ss.subsMu.Lock()
	subscribed := ss.subscriptions[uri]
	ss.subsMu.Unlock()
	if !subscribed {
		return nil
	}
	return ss.session.notify(ctx, "notifications/resources/updated", map[string]string{"uri": uri})
}

type listPromptsResult struct {
	Prompts    []*Prompt `json:"prompts"`
	NextCursor string    `json:"nextCursor,omitempty"`
}

func (ss *ServerSession) listPrompts(rawParams json.RawMessage) (any, error) {
	var p listParams
	if len(rawParams) > 0 {
		json.Unmarshal(rawParams, &p)
	}
	all := ss.server.prompts.all()
	prompts := make([]*Prompt, len(all))
	for i, pr := range all {
		prompts[i] = pr.Prompt
	}
	page, next, err := paginate(prompts, p.Cursor, defaultPageSize)
	if err != nil {
		return nil, err
	}
	return &listPromptsResult{Prompts: page, NextCursor: next}, nil
}

func (ss *ServerSession) getPrompt(ctx context.Context, rawParams json.RawMessage) (any, error) {
	var p GetPromptParams
	if err := json.Unmarshal(rawParams, &p); err != nil {
		return nil, invalidParamsf("invalid params: %s", err)
	}
	sp, ok := ss.server.prompts.get(p.Name)
	if !ok {
		return nil, invalidParamsf("unknown prompt %q", p.Name)
	}
	return sp.Handler(ctx, ss, &p)
}

func (ss *ServerSession) complete(ctx context.Context, rawParams json.RawMessage) (any, error) {
	var p CompleteParams
	if err := json.Unmarshal(rawParams, &p); err != nil {
		return nil, invalidParamsf("invalid params: %s", err)
	}
	var key string
	switch p.Ref.Type {
	case "ref/prompt":
		key = "prompt:" + p.Ref.Name
	case "ref/resource":
		key = "resource:" + p.Ref.URI
	default:
		return nil, invalidParamsf("unknown completion ref type %q", p.Ref.Type)
	}
	ss.server.completersMu.Lock()
	completer, ok := ss.server.completers[key]
	ss.server.completersMu.Unlock()
	if !ok {
		return &CompleteResult{Completion: CompletionValues{Values: nil}}, nil
	}
	values, err := completer(ctx, p.Argument.Name, p.Argument.Value, p.Context)
	if err != nil {
		return nil, err
	}
	return &CompleteResult{Completion: truncateCompletions(values)}, nil
}

type taskIDParams struct {
	TaskID string `json:"taskId"`
}

func (ss *ServerSession) taskGet(rawParams json.RawMessage) (any, error) {
	var p taskIDParams
	if err := json.Unmarshal(rawParams, &p); err != nil {
		return nil, invalidParamsf("invalid params: %s", err)
	}
	e, ok := ss.tasks.get(p.TaskID)
	if !ok {
		return nil, invalidParamsf("unknown task %q", p.TaskID)
	}
	return e.snapshot(), nil
}

type taskResultResult struct {
	Task   Task             `json:"task"`
	Result *CallToolResult  `json:"result,omitempty"`
}

func (ss *ServerSession) taskResult(ctx context.Context, rawParams json.RawMessage) (any, error) {
	var p taskIDParams
	if err := json.Unmarshal(rawParams, &p); err != nil {
		return nil, invalidParamsf("invalid params: %s", err)
	}
	e, ok := ss.tasks.get(p.TaskID)
	if !ok {
		return nil, invalidParamsf("unknown task %q", p.TaskID)
	}
	snap := e.snapshot()
	if snap.Status.IsTerminal() {
		return &taskResultResult{Task: snap, Result: e.result}, nil
	}
	select {
	case <-e.done:
		return &taskResultResult{Task: e.snapshot(), Result: e.result}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (ss *ServerSession) taskCancel(ctx context.Context, rawParams json.RawMessage) (any, error) {
	var p taskIDParams
	if err := json.Unmarshal(rawParams, &p); err != nil {
		return nil, invalidParamsf("invalid params: %s", err)
	}
	e, ok := ss.tasks.get(p.TaskID)
	if !ok {
		return nil, invalidParamsf("unknown task %q", p.TaskID)
	}
	if !e.snapshot().Status.IsTerminal() {
		e.settle(TaskCancelled, "", nil)
		_ = ss.session.notify(ctx, "notifications/tasks/status", e.snapshot())
	}
	return e.snapshot(), nil
}

type listTasksResult struct {
	Tasks      []Task `json:"tasks"`
	NextCursor string `json:"nextCursor,omitempty"`
}

func (ss *ServerSession) taskList(rawParams json.RawMessage) (any, error) {
	var p listParams
	if len(rawParams) > 0 {
		json.Unmarshal(rawParams, &p)
	}
	page, next, err := paginate(ss.tasks.all(), p.Cursor, defaultPageSize)
	if err != nil {
		return nil, err
	}
	return &listTasksResult{Tasks: page, NextCursor: next}, nil
}

type setLevelParams struct {
	Level LogLevel `json:"level"`
}

func (ss *ServerSession) setLevel(rawParams json.RawMessage) (any, error) {
	var p setLevelParams
	if err := json.Unmarshal(rawParams, &p); err != nil {
		return nil, invalidParamsf("invalid params: %s", err)
	}
	if !ValidLogLevel(p.Level) {
		return nil, invalidParamsf("unknown log level %q", p.Level)
	}
	ss.logMu.Lock()
	ss.logLevel = p.Level
	ss.logMu.Unlock()
	return struct{}{}, nil
}

type logMessageParams struct {
	Level  LogLevel `json:"level"`
	Logger string   `json:"logger,omitempty"`
	Data   any      `json:"data"`
}

// LoggingMessage emits notifications/message if level is at or above the
// session's configured threshold.
func (ss *ServerSession) LoggingMessage(ctx context.Context, level LogLevel, logger string, data any) error {
	ss.logMu.Lock()
	threshold := ss.logLevel
	ss.logMu.Unlock()
	if level.below(threshold) {
		return nil
	}
	return ss.session.notify(ctx, "notifications/message", logMessageParams{Level: level, Logger: logger, Data: data})
}

// Ping sends a ping request to the peer and waits for its reply.
func (ss *ServerSession) Ping(ctx context.Context) error {
	return ss.session.call(ctx, "ping", struct{}{}, nil)
}
