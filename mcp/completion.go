// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcp

import "context"

// maxCompletionValues is the cap on completion/complete's returned values;
// results beyond it are truncated and hasMore is set.
const maxCompletionValues = 100

// CompletionReference identifies what is being completed: a prompt or a
// resource, by name or uri respectively.
type CompletionReference struct {
	Type string `json:"type"` // "ref/prompt" or "ref/resource"
	Name string `json:"name,omitempty"`
	URI  string `json:"uri,omitempty"`
}

// CompleteParams is the params object of a completion/complete request.
type CompleteParams struct {
	Ref      CompletionReference `json:"ref"`
	Argument CompleteArgument    `json:"argument"`
	Context  *CompleteContext    `json:"context,omitempty"`
}

// CompleteArgument names the argument being completed and its partial value.
type CompleteArgument struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CompleteContext carries already-resolved argument values for context.
type CompleteContext struct {
	Arguments map[string]string `json:"arguments,omitempty"`
}

// CompletionValues is the completion object returned by completion/complete.
type CompletionValues struct {
	Values  []string `json:"values"`
	Total   *int     `json:"total,omitempty"`
	HasMore bool     `json:"hasMore,omitempty"`
}

// CompleteResult wraps a CompletionValues as the method result.
type CompleteResult struct {
	Completion CompletionValues `json:"completion"`
}

// Completer suggests argument values for a prompt or resource.
type Completer func(ctx context.Context, argName, partialValue string, context *CompleteContext) ([]string, error)

func truncateCompletions(values []string) CompletionValues {
	total := len(values)
	if len(values) <= maxCompletionValues {
		return CompletionValues{Values: values}
	}
	return CompletionValues{Values: values[:maxCompletionValues], Total: &total, HasMore: true}
}
