// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsonschema

import (
	"encoding/json"
	"testing"
)

func mustSchema(t *testing.T, doc string) *Schema {
	t.Helper()
	var s Schema
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		t.Fatalf("unmarshaling schema: %v", err)
	}
	return &s
}

func mustInstance(t *testing.T, doc string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		t.Fatalf("unmarshaling instance: %v", err)
	}
	return v
}

func TestValidateObjectRequired(t *testing.T) {
	s := mustSchema(t, `{
		"type": "object",
		"properties": {"name": {"type": "string"}, "count": {"type": "integer"}},
		"required": ["name"]
	}`)
	r, err := Resolve(s)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Validate(mustInstance(t, `{"name":"x"}`)); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
	if err := r.Validate(mustInstance(t, `{"count":1}`)); err == nil {
		t.Error("expected missing required property to fail")
	}
	if err := r.Validate(mustInstance(t, `{"name":"x","count":"nope"}`)); err == nil {
		t.Error("expected wrong property type to fail")
	}
}

func TestValidateEnumAndConst(t *testing.T) {
	s := mustSchema(t, `{"enum": ["a", "b", "c"]}`)
	r, _ := Resolve(s)
	if err := r.Validate("b"); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
	if err := r.Validate("z"); err == nil {
		t.Error("expected value outside enum to fail")
	}

	c := mustSchema(t, `{"const": 3}`)
	rc, _ := Resolve(c)
	if err := rc.Validate(mustInstance(t, `3`)); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
	if err := rc.Validate(mustInstance(t, `4`)); err == nil {
		t.Error("expected value other than const to fail")
	}
}

func TestValidateArrayBounds(t *testing.T) {
	s := mustSchema(t, `{"type":"array", "items": {"type":"number"}, "minItems": 1, "maxItems": 3}`)
	r, _ := Resolve(s)
	if err := r.Validate(mustInstance(t, `[1,2]`)); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
	if err := r.Validate(mustInstance(t, `[]`)); err == nil {
		t.Error("expected empty array below minItems to fail")
	}
	if err := r.Validate(mustInstance(t, `[1,2,3,4]`)); err == nil {
		t.Error("expected array above maxItems to fail")
	}
}

func TestValidateAdditionalPropertiesFalse(t *testing.T) {
	s := mustSchema(t, `{"type":"object","properties":{"a":{"type":"string"}},"additionalProperties":false}`)
	r, _ := Resolve(s)
	if err := r.Validate(mustInstance(t, `{"a":"x"}`)); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
	if err := r.Validate(mustInstance(t, `{"a":"x","b":1}`)); err == nil {
		t.Error("expected unexpected additional property to fail")
	}
}

func TestApplyDefaults(t *testing.T) {
	s := mustSchema(t, `{"type":"object","properties":{"count":{"type":"integer","default":3}}}`)
	r, _ := Resolve(s)
	got := r.ApplyDefaults(mustInstance(t, `{}`))
	m := got.(map[string]any)
	if m["count"] != float64(3) {
		t.Errorf("count = %v, want 3", m["count"])
	}
}

func TestBooleanSchema(t *testing.T) {
	r, _ := Resolve(trueSchema)
	if err := r.Validate("anything"); err != nil {
		t.Errorf("true schema rejected a value: %v", err)
	}
	r2, _ := Resolve(falseSchema)
	if err := r2.Validate("anything"); err == nil {
		t.Error("false schema accepted a value")
	}
}
