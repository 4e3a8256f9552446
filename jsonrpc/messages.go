// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package jsonrpc implements the wire-level JSON-RPC 2.0 message types
// shared by every transport: encoding, decoding, and the id type used to
// correlate requests with responses.
package jsonrpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Standard and MCP-specific error codes.
const (
	CodeParseError           = -32700
	CodeInvalidRequest       = -32600
	CodeMethodNotFound       = -32601
	CodeInvalidParams        = -32602
	CodeInternalError        = -32603
	CodeURLElicitationRequired = -32042
)

// An ID is a JSON-RPC request identifier: either a string or an int64.
// The zero ID (an ID with neither Raw set) is not a valid wire id and is
// used internally to mean "no id".
type ID struct {
	value any // nil, string, or int64
}

// MakeID constructs an ID from a string or an integer type.
func MakeID(v any) ID {
	switch v := v.(type) {
	case nil:
		return ID{}
	case string:
		return ID{value: v}
	case int:
		return ID{value: int64(v)}
	case int32:
		return ID{value: int64(v)}
	case int64:
		return ID{value: v}
	case float64:
		// Accept float64 so JSON-sourced numbers round-trip without a
		// separate path; every protocol-legal JSON-RPC id is an integer
		// value even if json.Unmarshal produced a float64 for it.
		return ID{value: int64(v)}
	default:
		panic(fmt.Sprintf("invalid ID type %T", v))
	}
}

// IsValid reports whether id is a usable wire identifier (not the zero ID).
func (id ID) IsValid() bool { return id.value != nil }

// Raw returns the underlying string or int64 value, or nil.
func (id ID) Raw() any { return id.value }

func (id ID) String() string {
	switch v := id.value.(type) {
	case string:
		return v
	case int64:
		return fmt.Sprintf("%d", v)
	default:
		return "<nil>"
	}
}

func (id ID) MarshalJSON() ([]byte, error) {
	switch v := id.value.(type) {
	case nil:
		return []byte("null"), nil
	case string:
		return json.Marshal(v)
	case int64:
		return json.Marshal(v)
	default:
		return nil, fmt.Errorf("invalid ID type %T", v)
	}
}

func (id *ID) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case nil:
		*id = ID{}
	case string:
		*id = ID{value: v}
	case float64:
		*id = ID{value: int64(v)}
	default:
		return fmt.Errorf("invalid ID in JSON: %q", data)
	}
	return nil
}

// An Error is a JSON-RPC error object.
type Error struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

// NewError constructs an *Error with no data.
func NewError(code int64, message string) *Error {
	return &Error{Code: code, Message: message}
}

// A Message is one of *Request, *Response, or *Notification.
type Message interface {
	isMessage()
}

// A Request is a JSON-RPC call expecting a Response.
type Request struct {
	ID     ID
	Method string
	Params json.RawMessage
}

func (*Request) isMessage() {}

// A Notification is a JSON-RPC call with no id, expecting no Response.
type Notification struct {
	Method string
	Params json.RawMessage
}

func (*Notification) isMessage() {}

// A Response carries exactly one of Result or Error, matching a Request's ID.
type Response struct {
	ID     ID
	Result json.RawMessage
	Error  *Error
}

func (*Response) isMessage() {}

// NewRequest constructs a *Request, marshaling params.
func NewRequest(id ID, method string, params any) (*Request, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, err
	}
	return &Request{ID: id, Method: method, Params: raw}, nil
}

// NewNotification constructs a *Notification, marshaling params.
func NewNotification(method string, params any) (*Notification, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, err
	}
	return &Notification{Method: method, Params: raw}, nil
}

// NewResultResponse constructs a success *Response.
func NewResultResponse(id ID, result any) (*Response, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &Response{ID: id, Result: raw}, nil
}

// NewErrorResponse constructs a failure *Response.
func NewErrorResponse(id ID, err *Error) *Response {
	return &Response{ID: id, Error: err}
}

func marshalParams(params any) (json.RawMessage, error) {
	if params == nil {
		return nil, nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshaling params: %w", err)
	}
	return raw, nil
}

// wireCombined is the union of every field any of the three message kinds
// might carry; a value is classified by which fields are present.
type wireCombined struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *ID             `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

const wireVersion = "2.0"

// ErrParse is returned when raw bytes cannot be parsed as any JSON-RPC message.
var ErrParse = errors.New("jsonrpc: parse error")

// ErrInvalidRequest is returned when the decoded value is not a well-formed
// Request, Response, or Notification.
var ErrInvalidRequest = errors.New("jsonrpc: invalid request")

// Encode marshals a Message to its wire JSON form.
func Encode(msg Message) ([]byte, error) {
	var w wireCombined
	w.JSONRPC = wireVersion
	switch msg := msg.(type) {
	case *Request:
		id := msg.ID
		w.ID = &id
		w.Method = msg.Method
		w.Params = msg.Params
	case *Notification:
		w.Method = msg.Method
		w.Params = msg.Params
	case *Response:
		id := msg.ID
		w.ID = &id
		if msg.Error != nil {
			w.Error = msg.Error
		} else if msg.Result != nil {
			w.Result = msg.Result
		} else {
			w.Result = json.RawMessage("null")
		}
	default:
		return nil, fmt.Errorf("jsonrpc: unknown message type %T", msg)
	}
	return json.Marshal(w)
}

// Decode parses raw wire bytes into a Message. It rejects a missing or
// mismatched "jsonrpc" field, a value with neither a method nor a
// result/error, and a Response carrying both result and error.
func Decode(data []byte) (Message, error) {
	var w wireCombined
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if w.JSONRPC != wireVersion {
		return nil, fmt.Errorf("%w: missing or bad jsonrpc version", ErrInvalidRequest)
	}
	switch {
	case w.Method != "" && w.ID == nil:
		return &Notification{Method: w.Method, Params: w.Params}, nil
	case w.Method != "" && w.ID != nil:
		return &Request{ID: *w.ID, Method: w.Method, Params: w.Params}, nil
	case w.ID != nil && (w.Result != nil || w.Error != nil):
		if w.Result != nil && w.Error != nil {
			return nil, fmt.Errorf("%w: response has both result and error", ErrInvalidRequest)
		}
		return &Response{ID: *w.ID, Result: w.Result, Error: w.Error}, nil
	default:
		return nil, fmt.Errorf("%w: neither method nor result/error present", ErrInvalidRequest)
	}
}
