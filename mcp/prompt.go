// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcp

import "context"

// GetPromptParams is the params object of a prompts/get request.
type GetPromptParams struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

// GetPromptResult is the result of a prompts/get request.
type GetPromptResult struct {
	Description string           `json:"description,omitempty"`
	Messages    []*PromptMessage `json:"messages"`
}

// PromptHandler renders a prompt given its arguments.
type PromptHandler func(ctx context.Context, ss *ServerSession, params *GetPromptParams) (*GetPromptResult, error)

// ServerPrompt associates a Prompt definition with its handler.
type ServerPrompt struct {
	Prompt  *Prompt
	Handler PromptHandler
}
