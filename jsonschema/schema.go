// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package jsonschema implements a practical subset of JSON Schema
// (draft 2020-12) sufficient to validate MCP tool input/output schemas:
// type/enum/const, numeric and string bounds, array and object
// constraints, the boolean-logic combinators, and local (same-document)
// $ref resolution. It deliberately omits dynamicRef/anchor resolution and
// unevaluatedItems/unevaluatedProperties annotation tracking.
package jsonschema

import (
	"encoding/json"
	"fmt"
)

// Schema is a JSON Schema document (or subschema).
type Schema struct {
	// Metadata
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`

	// Identity/reference
	ID  string `json:"$id,omitempty"`
	Ref string `json:"$ref,omitempty"`

	// Type and enumerations
	Type  string   `json:"-"` // normalized single type, or "" if Types is set
	Types []string `json:"-"`
	Enum  []any    `json:"enum,omitempty"`
	Const any      `json:"const,omitempty"`
	HasConst bool  `json:"-"`

	// Numeric
	MultipleOf       *float64 `json:"multipleOf,omitempty"`
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum,omitempty"`

	// String
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`

	// Array
	Items       *Schema   `json:"items,omitempty"`
	PrefixItems []*Schema `json:"prefixItems,omitempty"`
	MinItems    *int      `json:"minItems,omitempty"`
	MaxItems    *int      `json:"maxItems,omitempty"`
	UniqueItems bool      `json:"uniqueItems,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	PatternProperties    map[string]*Schema `json:"patternProperties,omitempty"`
	AdditionalProperties *Schema            `json:"additionalProperties,omitempty"`
	AdditionalPropertiesBool *bool          `json:"-"`
	Required             []string           `json:"required,omitempty"`
	MinProperties        *int               `json:"minProperties,omitempty"`
	MaxProperties        *int               `json:"maxProperties,omitempty"`

	// Logic
	AllOf []*Schema `json:"allOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty"`
	Not   *Schema   `json:"not,omitempty"`

	// defs, keyed by name, for local $ref resolution ("#/$defs/name").
	Defs map[string]*Schema `json:"$defs,omitempty"`

	boolValue *bool // non-nil if this schema was written as `true`/`false`
}

// Ptr returns a pointer to v, a convenience for building Schema literals.
func Ptr[T any](v T) *T { return &v }

var trueSchema = &Schema{boolValue: Ptr(true)}
var falseSchema = &Schema{boolValue: Ptr(false)}

func (s *Schema) MarshalJSON() ([]byte, error) {
	if s.boolValue != nil {
		return json.Marshal(*s.boolValue)
	}
	type alias Schema
	aux := struct {
		Type                 any `json:"type,omitempty"`
		AdditionalProperties any `json:"additionalProperties,omitempty"`
		*alias
	}{alias: (*alias)(s)}
	if s.HasConst {
		aux.Const = s.Const
	}
	if len(s.Types) > 1 {
		aux.Type = s.Types
	} else if s.Type != "" {
		aux.Type = s.Type
	}
	if s.AdditionalPropertiesBool != nil {
		aux.AdditionalProperties = *s.AdditionalPropertiesBool
	} else if s.AdditionalProperties != nil {
		aux.AdditionalProperties = s.AdditionalProperties
	}
	return json.Marshal(aux)
}

func (s *Schema) UnmarshalJSON(data []byte) error {
	// A schema may legally be the literal `true` or `false`.
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*s = Schema{boolValue: &b}
		return nil
	}

	type alias Schema
	aux := struct {
		Type                 json.RawMessage `json:"type,omitempty"`
		Const                json.RawMessage `json:"const,omitempty"`
		AdditionalProperties json.RawMessage `json:"additionalProperties,omitempty"`
		*alias
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("jsonschema: %w", err)
	}

	if len(aux.Type) > 0 {
		var single string
		if err := json.Unmarshal(aux.Type, &single); err == nil {
			s.Type = single
		} else {
			var many []string
			if err := json.Unmarshal(aux.Type, &many); err != nil {
				return fmt.Errorf("jsonschema: invalid type: %w", err)
			}
			s.Types = many
		}
	}
	if len(aux.Const) > 0 {
		var v any
		if err := json.Unmarshal(aux.Const, &v); err != nil {
			return err
		}
		s.Const = v
		s.HasConst = true
	}
	if len(aux.AdditionalProperties) > 0 {
		var bv bool
		if err := json.Unmarshal(aux.AdditionalProperties, &bv); err == nil {
			s.AdditionalPropertiesBool = &bv
		} else {
			var sub Schema
			if err := json.Unmarshal(aux.AdditionalProperties, &sub); err != nil {
				return err
			}
			s.AdditionalProperties = &sub
		}
	}
	return nil
}

// types returns the normalized set of acceptable JSON types, or nil if
// unconstrained.
func (s *Schema) types() []string {
	if s.Type != "" {
		return []string{s.Type}
	}
	return s.Types
}

// every calls f on s and, recursively, on every child subschema.
func (s *Schema) every(f func(*Schema)) {
	f(s)
	s.everyChild(func(c *Schema) { c.every(f) })
}

func (s *Schema) everyChild(f func(*Schema)) {
	if s.Items != nil {
		f(s.Items)
	}
	for _, c := range s.PrefixItems {
		f(c)
	}
	for _, c := range s.Properties {
		f(c)
	}
	for _, c := range s.PatternProperties {
		f(c)
	}
	if s.AdditionalProperties != nil {
		f(s.AdditionalProperties)
	}
	for _, c := range s.AllOf {
		f(c)
	}
	for _, c := range s.AnyOf {
		f(c)
	}
	for _, c := range s.OneOf {
		f(c)
	}
	if s.Not != nil {
		f(s.Not)
	}
	for _, c := range s.Defs {
		f(c)
	}
}
