// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command mcpdemo runs an example MCP server over stdio, Streamable HTTP,
// or the legacy two-endpoint SSE transport, wiring a handful of toy
// tools, resources, and prompts so the transports have something to
// carry.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Version is the application version, set at build time via ldflags.
var Version = "dev"

var cli struct {
	LogFile  string `default:"" help:"rotate logs to this file instead of stderr"`
	LogLevel string `default:"info" enum:"debug,info,warn,error" help:"minimum log level"`

	Stdio StdioCmd `cmd:"" default:"1" help:"run the server over stdin/stdout"`
	HTTP  HTTPCmd  `cmd:"" help:"run the server over Streamable HTTP"`
	SSE   SSECmd   `cmd:"" help:"run the server over the legacy two-endpoint SSE transport"`
}

// appContext is passed to every subcommand's Run method, mirroring a
// pattern that keeps subcommands free of global state.
type appContext struct {
	logger *slog.Logger
}

func main() {
	kctx := kong.Parse(&cli, kong.Name("mcpdemo"), kong.Description("Example MCP server."))

	var out io.Writer = os.Stderr
	if cli.LogFile != "" {
		out = &lumberjack.Logger{
			Filename:   cli.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		}
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: parseLevel(cli.LogLevel)}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &appContext{logger: logger}
	err := kctx.Run(ctx, app)
	kctx.FatalIfErrorf(err)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
