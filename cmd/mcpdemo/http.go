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

// HTTPCmd runs the demo server behind the Streamable HTTP transport.
type HTTPCmd struct {
	Addr     string `default:":8080" help:"listen address"`
	Endpoint string `default:"/mcp" help:"path the handler is mounted at"`
}

func (c *HTTPCmd) Run(ctx context.Context, app *appContext) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		server, err := newDemoServer(Version)
		if err != nil {
			app.logger.Error("building demo server", "error", err)
			return mcp.NewServer(mcp.Implementation{Name: "mcpdemo", Version: Version}, nil)
		}
		return server
	}, &mcp.StreamableHTTPOptions{
		Endpoint:           c.Endpoint,
		RequireSession:     true,
		AllowSessionDelete: true,
	})

	mux := http.NewServeMux()
	mux.Handle(c.Endpoint, handler)

	srv := &http.Server{Addr: c.Addr, Handler: mux}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.logger.Info("streamable HTTP server listening", "addr", c.Addr, "endpoint", c.Endpoint)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		handler.CloseAll()
		return srv.Close()
	})
	return g.Wait()
}
