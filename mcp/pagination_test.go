// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcp

import "testing"

func TestPaginateConcatenationIsFullSet(t *testing.T) {
	items := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	var got []string
	cur := ""
	for {
		page, next, err := paginate(items, cur, 2)
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, page...)
		if next == "" {
			break
		}
		cur = next
	}
	if len(got) != len(items) {
		t.Fatalf("got %d items, want %d", len(got), len(items))
	}
	for i := range items {
		if got[i] != items[i] {
			t.Errorf("item %d = %q, want %q", i, got[i], items[i])
		}
	}
}

func TestPaginateFirstPage(t *testing.T) {
	items := []string{"tool-alpha", "tool-beta", "tool-gamma", "tool-delta", "tool-epsilon"}
	page, next, err := paginate(items, "", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 {
		t.Fatalf("page len = %d, want 2", len(page))
	}
	if want := encodeCursor(2); next != want {
		t.Errorf("next = %q, want %q", next, want)
	}
}

func TestDecodeCursorInvalid(t *testing.T) {
	if _, err := decodeCursor("not-base64url-json!!"); err == nil {
		t.Error("decodeCursor accepted garbage")
	}
}

func TestOrderedRegistryInsertionOrder(t *testing.T) {
	r := newOrderedRegistry[int]()
	r.add("c", 3)
	r.add("a", 1)
	r.add("b", 2)
	all := r.all()
	want := []int{3, 1, 2}
	if len(all) != len(want) {
		t.Fatalf("len = %d, want %d", len(all), len(want))
	}
	for i := range want {
		if all[i] != want[i] {
			t.Errorf("all[%d] = %d, want %d", i, all[i], want[i])
		}
	}
	r.remove("c")
	r.add("c", 30)
	all = r.all()
	want = []int{1, 2, 30}
	for i := range want {
		if all[i] != want[i] {
			t.Errorf("after re-add: all[%d] = %d, want %d", i, all[i], want[i])
		}
	}
}
