// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/gomcp/mcp"
)

// SSECmd runs the demo server behind the legacy two-endpoint SSE
// transport, kept for clients that predate Streamable HTTP.
type SSECmd struct {
	Addr string `default:":8081" help:"listen address"`
	Path string `default:"/sse" help:"path the GET stream is mounted at"`
}

func (c *SSECmd) Run(ctx context.Context, app *appContext) error {
	handler := mcp.NewSSEHandler(func(*http.Request) *mcp.Server {
		server, err := newDemoServer(Version)
		if err != nil {
			app.logger.Error("building demo server", "error", err)
			return mcp.NewServer(mcp.Implementation{Name: "mcpdemo", Version: Version}, nil)
		}
		return server
	})

	mux := http.NewServeMux()
	mux.Handle(c.Path, handler)

	srv := &http.Server{Addr: c.Addr, Handler: mux}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.logger.Info("legacy SSE server listening", "addr", c.Addr, "path", c.Path)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return srv.Close()
	})
	return g.Wait()
}
