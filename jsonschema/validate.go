// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsonschema

import (
	"fmt"
	"math"
	"regexp"
)

// Resolved is a Schema with its local $ref pointers pre-indexed for
// validation.
type Resolved struct {
	root *Schema
	defs map[string]*Schema // "#/$defs/name" -> schema
}

// Resolve indexes root's $defs for local $ref lookups and returns a
// Resolved ready to Validate instances against.
func Resolve(root *Schema) (*Resolved, error) {
	r := &Resolved{root: root, defs: make(map[string]*Schema)}
	if root != nil {
		for name, s := range root.Defs {
			r.defs["#/$defs/"+name] = s
		}
	}
	return r, nil
}

func (r *Resolved) resolveRef(ref string) (*Schema, error) {
	if s, ok := r.defs[ref]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("jsonschema: cannot resolve $ref %q (only local #/$defs/* refs are supported)", ref)
}

// Validate reports whether instance (already unmarshaled into Go's
// natural JSON representation: nil, bool, float64, string, []any,
// map[string]any) satisfies the schema.
func (r *Resolved) Validate(instance any) error {
	return r.validate(r.root, instance, "")
}

func (r *Resolved) validate(s *Schema, inst any, path string) error {
	if s == nil {
		return nil
	}
	if s.boolValue != nil {
		if !*s.boolValue {
			return fmt.Errorf("%s: schema is `false`: rejects everything", path)
		}
		return nil
	}
	if s.Ref != "" {
		target, err := r.resolveRef(s.Ref)
		if err != nil {
			return err
		}
		return r.validate(target, inst, path)
	}

	if types := s.types(); len(types) > 0 {
		if !matchesAnyType(types, inst) {
			return fmt.Errorf("%s: value does not match type %v", path, types)
		}
	}

	if s.HasConst {
		if !deepEqualJSON(s.Const, inst) {
			return fmt.Errorf("%s: value does not equal const", path)
		}
	}
	if len(s.Enum) > 0 {
		ok := false
		for _, e := range s.Enum {
			if deepEqualJSON(e, inst) {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("%s: value is not one of the enum values", path)
		}
	}

	switch v := inst.(type) {
	case float64:
		if err := r.validateNumber(s, v, path); err != nil {
			return err
		}
	case string:
		if err := r.validateString(s, v, path); err != nil {
			return err
		}
	case []any:
		if err := r.validateArray(s, v, path); err != nil {
			return err
		}
	case map[string]any:
		if err := r.validateObject(s, v, path); err != nil {
			return err
		}
	}

	for i, sub := range s.AllOf {
		if err := r.validate(sub, inst, fmt.Sprintf("%s/allOf[%d]", path, i)); err != nil {
			return err
		}
	}
	if len(s.AnyOf) > 0 {
		ok := false
		for _, sub := range s.AnyOf {
			if r.validate(sub, inst, path) == nil {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("%s: value matches none of anyOf", path)
		}
	}
	if len(s.OneOf) > 0 {
		count := 0
		for _, sub := range s.OneOf {
			if r.validate(sub, inst, path) == nil {
				count++
			}
		}
		if count != 1 {
			return fmt.Errorf("%s: value matches %d of oneOf, want exactly 1", path, count)
		}
	}
	if s.Not != nil {
		if r.validate(s.Not, inst, path) == nil {
			return fmt.Errorf("%s: value matches 'not' schema", path)
		}
	}
	return nil
}

func matchesAnyType(types []string, inst any) bool {
	for _, t := range types {
		if matchesType(t, inst) {
			return true
		}
	}
	return false
}

func matchesType(t string, inst any) bool {
	switch t {
	case "null":
		return inst == nil
	case "boolean":
		_, ok := inst.(bool)
		return ok
	case "object":
		_, ok := inst.(map[string]any)
		return ok
	case "array":
		_, ok := inst.([]any)
		return ok
	case "string":
		_, ok := inst.(string)
		return ok
	case "integer":
		f, ok := inst.(float64)
		return ok && f == math.Trunc(f)
	case "number":
		_, ok := inst.(float64)
		return ok
	default:
		return true
	}
}

func (r *Resolved) validateNumber(s *Schema, v float64, path string) error {
	if s.MultipleOf != nil && *s.MultipleOf != 0 {
		q := v / *s.MultipleOf
		if q != math.Trunc(q) {
			return fmt.Errorf("%s: %v is not a multiple of %v", path, v, *s.MultipleOf)
		}
	}
	if s.Minimum != nil && v < *s.Minimum {
		return fmt.Errorf("%s: %v < minimum %v", path, v, *s.Minimum)
	}
	if s.Maximum != nil && v > *s.Maximum {
		return fmt.Errorf("%s: %v > maximum %v", path, v, *s.Maximum)
	}
	if s.ExclusiveMinimum != nil && v <= *s.ExclusiveMinimum {
		return fmt.Errorf("%s: %v <= exclusiveMinimum %v", path, v, *s.ExclusiveMinimum)
	}
	if s.ExclusiveMaximum != nil && v >= *s.ExclusiveMaximum {
		return fmt.Errorf("%s: %v >= exclusiveMaximum %v", path, v, *s.ExclusiveMaximum)
	}
	return nil
}

func (r *Resolved) validateString(s *Schema, v string, path string) error {
	n := len([]rune(v))
	if s.MinLength != nil && n < *s.MinLength {
		return fmt.Errorf("%s: length %d < minLength %d", path, n, *s.MinLength)
	}
	if s.MaxLength != nil && n > *s.MaxLength {
		return fmt.Errorf("%s: length %d > maxLength %d", path, n, *s.MaxLength)
	}
	if s.Pattern != "" {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return fmt.Errorf("%s: invalid pattern %q: %w", path, s.Pattern, err)
		}
		if !re.MatchString(v) {
			return fmt.Errorf("%s: value does not match pattern %q", path, s.Pattern)
		}
	}
	return nil
}

func (r *Resolved) validateArray(s *Schema, v []any, path string) error {
	if s.MinItems != nil && len(v) < *s.MinItems {
		return fmt.Errorf("%s: %d items < minItems %d", path, len(v), *s.MinItems)
	}
	if s.MaxItems != nil && len(v) > *s.MaxItems {
		return fmt.Errorf("%s: %d items > maxItems %d", path, len(v), *s.MaxItems)
	}
	if s.UniqueItems {
		for i := 0; i < len(v); i++ {
			for j := i + 1; j < len(v); j++ {
				if deepEqualJSON(v[i], v[j]) {
					return fmt.Errorf("%s: items %d and %d are not unique", path, i, j)
				}
			}
		}
	}
	for i, item := range v {
		sub := s.Items
		if i < len(s.PrefixItems) {
			sub = s.PrefixItems[i]
		}
		if sub == nil {
			continue
		}
		if err := r.validate(sub, item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolved) validateObject(s *Schema, v map[string]any, path string) error {
	if s.MinProperties != nil && len(v) < *s.MinProperties {
		return fmt.Errorf("%s: %d properties < minProperties %d", path, len(v), *s.MinProperties)
	}
	if s.MaxProperties != nil && len(v) > *s.MaxProperties {
		return fmt.Errorf("%s: %d properties > maxProperties %d", path, len(v), *s.MaxProperties)
	}
	for _, req := range s.Required {
		if _, ok := v[req]; !ok {
			return fmt.Errorf("%s: missing required property %q", path, req)
		}
	}
	for key, val := range v {
		childPath := path + "/" + key
		if sub, ok := s.Properties[key]; ok {
			if err := r.validate(sub, val, childPath); err != nil {
				return err
			}
			continue
		}
		matchedPattern := false
		for pat, sub := range s.PatternProperties {
			re, err := regexp.Compile(pat)
			if err != nil {
				return fmt.Errorf("%s: invalid patternProperties key %q: %w", path, pat, err)
			}
			if re.MatchString(key) {
				matchedPattern = true
				if err := r.validate(sub, val, childPath); err != nil {
					return err
				}
			}
		}
		if matchedPattern {
			continue
		}
		if s.AdditionalPropertiesBool != nil && !*s.AdditionalPropertiesBool {
			return fmt.Errorf("%s: additional property %q not allowed", path, key)
		}
		if s.AdditionalProperties != nil {
			if err := r.validate(s.AdditionalProperties, val, childPath); err != nil {
				return err
			}
		}
	}
	return nil
}

// ApplyDefaults fills in missing object properties from each subschema's
// "default" value, recursively. inst must be the natural JSON
// representation (map[string]any for objects).
func (r *Resolved) ApplyDefaults(inst any) any {
	return r.applyDefaults(r.root, inst)
}

func (r *Resolved) applyDefaults(s *Schema, inst any) any {
	if s == nil || s.boolValue != nil {
		return inst
	}
	if s.Ref != "" {
		if target, err := r.resolveRef(s.Ref); err == nil {
			return r.applyDefaults(target, inst)
		}
	}
	m, ok := inst.(map[string]any)
	if !ok {
		if inst == nil && s.Default != nil {
			return s.Default
		}
		return inst
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	for name, sub := range s.Properties {
		if _, present := out[name]; !present {
			if sub.Default != nil {
				out[name] = sub.Default
			}
			continue
		}
		out[name] = r.applyDefaults(sub, out[name])
	}
	return out
}

func deepEqualJSON(a, b any) bool {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !deepEqualJSON(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !deepEqualJSON(v, bvv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
