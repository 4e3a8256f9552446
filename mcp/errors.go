// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcp

import (
	"encoding/json"
	"fmt"

	"golang.org/x/tools/gomcp/jsonrpc"
)

// Error codes, standard and MCP-specific.
const (
	CodeParseError             = jsonrpc.CodeParseError
	CodeInvalidRequest         = jsonrpc.CodeInvalidRequest
	CodeMethodNotFound         = jsonrpc.CodeMethodNotFound
	CodeInvalidParams          = jsonrpc.CodeInvalidParams
	CodeInternalError          = jsonrpc.CodeInternalError
	CodeURLElicitationRequired = jsonrpc.CodeURLElicitationRequired

	CodeResourceNotFound = -31002
)

// ErrorKind tags a propagation-worthy library error with the JSON-RPC code
// it should surface as, so that dispatch has one place to translate an
// error into a wire Error rather than matching on ad hoc sentinel values.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalidParams
	KindInvalidRequest
	KindMethodNotFound
	KindResourceNotFound
	KindElicitationRequired
)

// Error is the single propagation type for MCP-level failures raised by
// feature handlers. Dispatch converts it into a jsonrpc.Error at the wire
// boundary; any other error returned by a handler is treated as an
// unexpected exception and sanitized into a generic InternalError.
type Error struct {
	Kind    ErrorKind
	Message string
	Data    any
}

func (e *Error) Error() string { return e.Message }

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func invalidParamsf(format string, args ...any) *Error {
	return newError(KindInvalidParams, format, args...)
}

func invalidRequestf(format string, args ...any) *Error {
	return newError(KindInvalidRequest, format, args...)
}

func methodNotFoundf(method string) *Error {
	return newError(KindMethodNotFound, "method not found: %s", method)
}

// ResourceNotFoundError returns an error indicating that a resource being
// read could not be found.
func ResourceNotFoundError(uri string) error {
	return &Error{Kind: KindResourceNotFound, Message: "Resource not found", Data: map[string]string{"uri": uri}}
}

// sanitizeHandlerError returns the message that should be recorded for a
// failed handler invocation: a *Error's message is propagated verbatim,
// since it was raised deliberately with an intended message; any other
// error is treated as an unexpected exception and sanitized into a generic
// string, matching wireError's policy for the same distinction.
func sanitizeHandlerError(err error) string {
	if me, ok := err.(*Error); ok {
		return me.Message
	}
	return "Internal error"
}

// wireError converts an error returned by dispatch into a jsonrpc.Error,
// following the propagation policy: a *Error carries its intended code and
// message verbatim; any other error is sanitized into a generic
// InternalError with no leaked detail.
func wireError(id jsonrpc.ID, err error) *jsonrpc.Response {
	var code int64
	msg := "Internal error"
	var data json.RawMessage
	if me, ok := err.(*Error); ok {
		msg = me.Message
		switch me.Kind {
		case KindInvalidParams:
			code = CodeInvalidParams
		case KindInvalidRequest:
			code = CodeInvalidRequest
		case KindMethodNotFound:
			code = CodeMethodNotFound
		case KindResourceNotFound:
			code = CodeResourceNotFound
		case KindElicitationRequired:
			code = CodeURLElicitationRequired
		default:
			code = CodeInternalError
		}
		if me.Data != nil {
			if b, jerr := json.Marshal(me.Data); jerr == nil {
				data = b
			}
		}
	} else {
		code = CodeInternalError
	}
	return jsonrpc.NewErrorResponse(id, &jsonrpc.Error{Code: code, Message: msg, Data: data})
}
