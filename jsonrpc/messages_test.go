// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsonrpc

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeDecodeRequest(t *testing.T) {
	req, err := NewRequest(MakeID(int64(1)), "initialize", map[string]any{"protocolVersion": "2025-11-25"})
	if err != nil {
		t.Fatal(err)
	}
	data, err := Encode(req)
	if err != nil {
		t.Fatal(err)
	}
	msg, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := msg.(*Request)
	if !ok {
		t.Fatalf("Decode returned %T, want *Request", msg)
	}
	if got.Method != "initialize" {
		t.Errorf("Method = %q, want %q", got.Method, "initialize")
	}
	if got.ID.Raw() != int64(1) {
		t.Errorf("ID = %v, want 1", got.ID.Raw())
	}
}

func TestEncodeDecodeNotification(t *testing.T) {
	note, err := NewNotification("notifications/initialized", nil)
	if err != nil {
		t.Fatal(err)
	}
	data, err := Encode(note)
	if err != nil {
		t.Fatal(err)
	}
	msg, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := msg.(*Notification); !ok {
		t.Fatalf("Decode returned %T, want *Notification", msg)
	}
	if strings.Contains(string(data), `"id"`) {
		t.Errorf("notification wire form must not carry an id field: %s", data)
	}
}

func TestEncodeDecodeResponse(t *testing.T) {
	resp, err := NewResultResponse(MakeID("abc"), map[string]any{"ok": true})
	if err != nil {
		t.Fatal(err)
	}
	data, err := Encode(resp)
	if err != nil {
		t.Fatal(err)
	}
	msg, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := msg.(*Response)
	if !ok {
		t.Fatalf("Decode returned %T, want *Response", msg)
	}
	if got.Error != nil {
		t.Errorf("Error = %v, want nil", got.Error)
	}
	var m map[string]any
	if err := json.Unmarshal(got.Result, &m); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]any{"ok": true}, m); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsBadVersion(t *testing.T) {
	if _, err := Decode([]byte(`{"jsonrpc":"1.0","method":"x"}`)); err == nil {
		t.Error("Decode accepted jsonrpc != 2.0")
	}
}

func TestDecodeRejectsNeitherMethodNorResult(t *testing.T) {
	if _, err := Decode([]byte(`{"jsonrpc":"2.0","id":1}`)); err == nil {
		t.Error("Decode accepted a message with neither method nor result/error")
	}
}

func TestDecodeRejectsResponseWithBothResultAndError(t *testing.T) {
	data := `{"jsonrpc":"2.0","id":1,"result":{},"error":{"code":-32600,"message":"x"}}`
	if _, err := Decode([]byte(data)); err == nil {
		t.Error("Decode accepted a response with both result and error")
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Error("Decode accepted non-JSON input")
	}
}
