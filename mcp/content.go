// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcp

import (
	"encoding/json"
	"fmt"
)

// Content is the sum type carried in tool results, prompt messages, and
// sampling messages: text, image, audio, resource, resource_link, tool_use,
// or tool_result.
type Content struct {
	Type string

	// text
	Text string

	// image, audio
	MIMEType string
	Data     string // base64

	// resource
	Resource *ResourceContents

	// resource_link
	ResourceURI string

	// tool_use
	ToolUseID string
	ToolName  string
	ToolInput json.RawMessage

	// tool_result
	ToolResultID string
	ToolResult   []*Content
	IsError      bool

	Annotations *ResourceAnnotations `json:"-"`
}

// NewTextContent returns a text Content value.
func NewTextContent(text string) *Content {
	return &Content{Type: "text", Text: text}
}

// NewImageContent returns an image Content value.
func NewImageContent(data, mimeType string) *Content {
	return &Content{Type: "image", Data: data, MIMEType: mimeType}
}

// NewAudioContent returns an audio Content value.
func NewAudioContent(data, mimeType string) *Content {
	return &Content{Type: "audio", Data: data, MIMEType: mimeType}
}

// NewResourceContent returns a resource Content value embedding r.
func NewResourceContent(r *ResourceContents) *Content {
	return &Content{Type: "resource", Resource: r}
}

// NewResourceLinkContent returns a resource_link Content value referencing
// a resource by uri without embedding its contents.
func NewResourceLinkContent(uri string) *Content {
	return &Content{Type: "resource_link", ResourceURI: uri}
}

// NewToolUseContent returns a tool_use Content value, as emitted by a model
// requesting a tool invocation during sampling.
func NewToolUseContent(id, name string, input json.RawMessage) *Content {
	return &Content{Type: "tool_use", ToolUseID: id, ToolName: name, ToolInput: input}
}

// NewToolResultContent returns a tool_result Content value reporting the
// outcome of a tool_use back to the model.
func NewToolResultContent(toolUseID string, result []*Content, isError bool) *Content {
	return &Content{Type: "tool_result", ToolResultID: toolUseID, ToolResult: result, IsError: isError}
}

type wireContent struct {
	Type        string               `json:"type"`
	Text        string               `json:"text,omitempty"`
	MIMEType    string               `json:"mimeType,omitempty"`
	Data        string               `json:"data,omitempty"`
	Resource    *ResourceContents    `json:"resource,omitempty"`
	URI         string               `json:"uri,omitempty"`
	ToolUseID   string               `json:"id,omitempty"`
	Name        string               `json:"name,omitempty"`
	Input       json.RawMessage      `json:"input,omitempty"`
	Content     []*Content           `json:"content,omitempty"`
	IsError     bool                 `json:"isError,omitempty"`
	Annotations *ResourceAnnotations `json:"annotations,omitempty"`
}

func (c *Content) MarshalJSON() ([]byte, error) {
	w := wireContent{Type: c.Type, Annotations: c.Annotations}
	switch c.Type {
	case "text":
		w.Text = c.Text
	case "image", "audio":
		w.Data = c.Data
		w.MIMEType = c.MIMEType
	case "resource":
		w.Resource = c.Resource
	case "resource_link":
		w.URI = c.ResourceURI
	case "tool_use":
		w.ToolUseID = c.ToolUseID
		w.Name = c.ToolName
		w.Input = c.ToolInput
	case "tool_result":
		w.ToolUseID = c.ToolResultID
		w.Content = c.ToolResult
		w.IsError = c.IsError
	default:
		return nil, fmt.Errorf("mcp: unknown Content type %q", c.Type)
	}
	return json.Marshal(w)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	var w wireContent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case "text":
		*c = Content{Type: w.Type, Text: w.Text, Annotations: w.Annotations}
	case "image", "audio":
		*c = Content{Type: w.Type, Data: w.Data, MIMEType: w.MIMEType, Annotations: w.Annotations}
	case "resource":
		*c = Content{Type: w.Type, Resource: w.Resource, Annotations: w.Annotations}
	case "resource_link":
		*c = Content{Type: w.Type, ResourceURI: w.URI, Annotations: w.Annotations}
	case "tool_use":
		*c = Content{Type: w.Type, ToolUseID: w.ToolUseID, ToolName: w.Name, ToolInput: w.Input, Annotations: w.Annotations}
	case "tool_result":
		*c = Content{Type: w.Type, ToolResultID: w.ToolUseID, ToolResult: w.Content, IsError: w.IsError, Annotations: w.Annotations}
	default:
		return fmt.Errorf("mcp: unknown content type %q", w.Type)
	}
	return nil
}

// ResourceContents is the embedded body of a "resource" Content value: the
// contents are either Text or a base64 Blob, never both; an unexported flag
// set by NewTextResourceContents or by unmarshaling records which one.
type ResourceContents struct {
	URI      string
	MIMEType string
	Text     string
	Blob     string
	hasText  bool
}

// NewTextResourceContents returns text-bearing ResourceContents.
func NewTextResourceContents(uri, mimeType, text string) *ResourceContents {
	return &ResourceContents{URI: uri, MIMEType: mimeType, Text: text, hasText: true}
}

// NewBlobResourceContents returns binary (base64) ResourceContents.
func NewBlobResourceContents(uri, mimeType, blob string) *ResourceContents {
	return &ResourceContents{URI: uri, MIMEType: mimeType, Blob: blob}
}

type wireResourceContents struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"`
}

func (r *ResourceContents) MarshalJSON() ([]byte, error) {
	w := wireResourceContents{URI: r.URI, MIMEType: r.MIMEType}
	if r.hasText {
		w.Text = r.Text
	} else {
		w.Blob = r.Blob
	}
	return json.Marshal(w)
}

func (r *ResourceContents) UnmarshalJSON(data []byte) error {
	var w wireResourceContents
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = ResourceContents{URI: w.URI, MIMEType: w.MIMEType}
	if w.Blob == "" {
		r.Text = w.Text
		r.hasText = true
	} else {
		r.Blob = w.Blob
	}
	return nil
}
