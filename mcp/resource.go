// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"fmt"
	"strings"
)

// ReadResourceParams is the params object of a resources/read request.
type ReadResourceParams struct {
	URI string `json:"uri"`
}

// ReadResourceResult is the result of a resources/read request.
type ReadResourceResult struct {
	Contents []*ResourceContents `json:"contents"`
}

// ResourceHandler reads a resource, given any URI-template bindings
// extracted from the request's uri (empty for an exact-match Resource).
type ResourceHandler func(ctx context.Context, ss *ServerSession, uri string, bindings map[string]string) (*ReadResourceResult, error)

// ServerResource associates an exact-match Resource with its handler.
type ServerResource struct {
	Resource *Resource
	Handler  ResourceHandler
}

// ServerResourceTemplate associates a ResourceTemplate with its handler.
type ServerResourceTemplate struct {
	ResourceTemplate *ResourceTemplate
	Handler          ResourceHandler
}

// templateSegment is one piece of a parsed URI template: either a literal
// run of characters or a named variable.
type templateSegment struct {
	literal  string
	variable string // "" if this is a literal segment
}

func parseTemplateSegments(template string) ([]templateSegment, error) {
	var segs []templateSegment
	rest := template
	for len(rest) > 0 {
		lit, tail, ok := strings.Cut(rest, "{")
		if lit != "" {
			segs = append(segs, templateSegment{literal: lit})
		}
		if !ok {
			break
		}
		name, tail2, ok := strings.Cut(tail, "}")
		if !ok {
			return nil, fmt.Errorf("mcp: URI template %q: missing '}'", template)
		}
		if name == "" {
			return nil, fmt.Errorf("mcp: URI template %q: empty variable name", template)
		}
		segs = append(segs, templateSegment{variable: name})
		rest = tail2
	}
	return segs, nil
}

// matchURITemplate implements the binding algorithm: anchor to the first
// literal (must be a prefix), then for each variable locate the next
// literal as a separator (an empty match there is rejected); the final
// variable, if any, consumes the remainder of the input (must be
// non-empty). On success it returns the named bindings; ok is false on any
// mismatch.
func matchURITemplate(template, uri string) (bindings map[string]string, ok bool) {
	segs, err := parseTemplateSegments(template)
	if err != nil {
		return nil, false
	}
	bindings = make(map[string]string)
	rest := uri
	for i, seg := range segs {
		if seg.variable == "" {
			if !strings.HasPrefix(rest, seg.literal) {
				return nil, false
			}
			rest = rest[len(seg.literal):]
			continue
		}
		isLast := i == len(segs)-1
		if isLast {
			if rest == "" {
				return nil, false
			}
			bindings[seg.variable] = rest
			rest = ""
			continue
		}
		next := segs[i+1]
		if next.variable != "" {
			// Two variables with no literal separator between them: the
			// template is ambiguous, reject it rather than guess.
			return nil, false
		}
		idx := strings.Index(rest, next.literal)
		if idx <= 0 {
			// idx == 0 would bind an empty variable value, which is rejected.
			return nil, false
		}
		bindings[seg.variable] = rest[:idx]
		rest = rest[idx:]
	}
	if rest != "" {
		return nil, false
	}
	return bindings, true
}

// Matches reports whether uri matches sr's template and, if so, returns
// the extracted variable bindings.
func (sr *ServerResourceTemplate) Matches(uri string) (map[string]string, bool) {
	return matchURITemplate(sr.ResourceTemplate.URITemplate, uri)
}
