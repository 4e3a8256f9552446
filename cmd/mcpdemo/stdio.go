// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"

	"golang.org/x/tools/gomcp/mcp"
)

// StdioCmd runs the demo server over stdin/stdout, the transport local AI
// clients (editors, CLIs) launch as a subprocess.
type StdioCmd struct{}

func (c *StdioCmd) Run(ctx context.Context, app *appContext) error {
	server, err := newDemoServer(Version)
	if err != nil {
		return err
	}
	ss := server.Connect(ctx, mcp.NewStdIOTransport(stdioRWC{}))
	return ss.Wait()
}

// stdioRWC adapts os.Stdin/os.Stdout to io.ReadWriteCloser: closing closes
// stdout only, since stdin is typically closed by the parent process
// ending the pipe.
type stdioRWC struct{}

func (stdioRWC) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioRWC) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdioRWC) Close() error                { return os.Stdout.Close() }
