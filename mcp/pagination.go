// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcp

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
)

// orderedRegistry is a mutex-protected name/key → value map that preserves
// insertion order for listing and pagination, unlike a plain Go map. Entries
// removed and re-added move to the end, matching normal registration
// semantics (there is no reason to special-case re-registration order).
type orderedRegistry[T any] struct {
	mu    sync.Mutex
	order []string
	items map[string]T
}

func newOrderedRegistry[T any]() *orderedRegistry[T] {
	return &orderedRegistry[T]{items: make(map[string]T)}
}

func (r *orderedRegistry[T]) add(key string, v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[key]; !ok {
		r.order = append(r.order, key)
	}
	r.items[key] = v
}

func (r *orderedRegistry[T]) remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[key]; !ok {
		return
	}
	delete(r.items, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *orderedRegistry[T]) get(key string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.items[key]
	return v, ok
}

// all returns every value in insertion order.
func (r *orderedRegistry[T]) all() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.items[k])
	}
	return out
}

func (r *orderedRegistry[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// cursor encodes/decodes the opaque pagination token: base64url(JSON
// {"offset":int}).
type cursor struct {
	Offset int `json:"offset"`
}

func encodeCursor(offset int) string {
	data, _ := json.Marshal(cursor{Offset: offset})
	return base64.RawURLEncoding.EncodeToString(data)
}

func decodeCursor(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid cursor: %w", err)
	}
	var c cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return 0, fmt.Errorf("invalid cursor: %w", err)
	}
	if c.Offset < 0 {
		return 0, fmt.Errorf("invalid cursor: negative offset")
	}
	return c.Offset, nil
}

// defaultPageSize bounds how many items a single list call returns absent
// an explicit page size.
const defaultPageSize = 50

// paginate slices items[O, min(O+pageSize, N)) per the offset cursor
// decoded from rawCursor, and returns the nextCursor (empty if exhausted).
func paginate[T any](items []T, rawCursor string, pageSize int) ([]T, string, error) {
	offset, err := decodeCursor(rawCursor)
	if err != nil {
		return nil, "", invalidParamsf("%s", err)
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	n := len(items)
	if offset > n {
		offset = n
	}
	end := offset + pageSize
	if end > n {
		end = n
	}
	page := items[offset:end]
	next := ""
	if end < n {
		next = encodeCursor(end)
	}
	return page, next, nil
}
