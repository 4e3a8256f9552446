// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LogLevel is one of the eight RFC-5424-derived MCP logging levels, in
// increasing order of severity.
type LogLevel string

const (
	LogDebug     LogLevel = "debug"
	LogInfo      LogLevel = "info"
	LogNotice    LogLevel = "notice"
	LogWarning   LogLevel = "warning"
	LogError     LogLevel = "error"
	LogCritical  LogLevel = "critical"
	LogAlert     LogLevel = "alert"
	LogEmergency LogLevel = "emergency"
)

var levelOrder = map[LogLevel]int{
	LogDebug: 0, LogInfo: 1, LogNotice: 2, LogWarning: 3,
	LogError: 4, LogCritical: 5, LogAlert: 6, LogEmergency: 7,
}

// ValidLogLevel reports whether l is one of the eight defined levels.
func ValidLogLevel(l LogLevel) bool {
	_, ok := levelOrder[l]
	return ok
}

// below reports whether a is strictly less severe than b.
func (a LogLevel) below(b LogLevel) bool {
	return levelOrder[a] < levelOrder[b]
}

// slogToMCP maps a slog.Level to the nearest MCP LogLevel, used when the
// library's own ambient diagnostics are bridged into
// notifications/message.
func slogToMCP(l slog.Level) LogLevel {
	switch {
	case l < slog.LevelInfo:
		return LogDebug
	case l < slog.LevelWarn:
		return LogInfo
	case l < slog.LevelError:
		return LogWarning
	default:
		return LogError
	}
}

// loggingNotifier is implemented by *ServerSession; kept as an interface
// so the slog.Handler below doesn't need to import server.go's types.
type loggingNotifier interface {
	LoggingMessage(ctx context.Context, level LogLevel, logger string, data any) error
}

// NotificationLogHandler is a slog.Handler that bridges the library's own
// structured logging into MCP notifications/message, honoring the
// session's logging threshold and rate-limiting bursts so a chatty
// handler cannot flood the peer with log notifications.
type NotificationLogHandler struct {
	session loggingNotifier
	logger  string
	limiter *rate.Limiter

	mu    sync.Mutex
	attrs []slog.Attr
}

// NewNotificationLogHandler returns a handler that forwards records to
// session.LoggingMessage, rate-limited to at most one notification every
// minInterval (0 disables rate limiting).
func NewNotificationLogHandler(session loggingNotifier, logger string, minInterval time.Duration) *NotificationLogHandler {
	h := &NotificationLogHandler{session: session, logger: logger}
	if minInterval > 0 {
		h.limiter = rate.NewLimiter(rate.Every(minInterval), 1)
	}
	return h
}

func (h *NotificationLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true // the session itself filters on the configured threshold
}

func (h *NotificationLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.limiter != nil && !h.limiter.Allow() {
		return nil
	}
	data := map[string]any{"message": r.Message}
	h.mu.Lock()
	for _, a := range h.attrs {
		data[a.Key] = a.Value.Any()
	}
	h.mu.Unlock()
	r.Attrs(func(a slog.Attr) bool {
		data[a.Key] = a.Value.Any()
		return true
	})
	return h.session.LoggingMessage(ctx, slogToMCP(r.Level), h.logger, data)
}

func (h *NotificationLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := &NotificationLogHandler{session: h.session, logger: h.logger, limiter: h.limiter}
	n.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return n
}

func (h *NotificationLogHandler) WithGroup(name string) slog.Handler {
	// Grouping is not meaningful for the flat notifications/message data
	// payload; attributes are still recorded under their own keys.
	return h
}

var _ slog.Handler = (*NotificationLogHandler)(nil)
var _ fmt.Stringer = LogLevel("")

func (l LogLevel) String() string { return string(l) }
