package jsonx

import (
	"errors"
	"testing"

	"github.com/desertthunder/spotbox/internal/shared"
)

func mustParse(t *testing.T, s string) Node {
	t.Helper()
	n, err := Parse([]byte(s))
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return n
}

func TestParse(t *testing.T) {
	tc := []struct {
		name string
		in   string
		ok   bool
	}{
		{name: "object", in: `{"a":1}`, ok: true},
		{name: "array", in: `[1,2]`, ok: true},
		{name: "surrounding whitespace", in: "  {}\n", ok: true},
		{name: "empty", in: "", ok: false},
		{name: "blank", in: "   ", ok: false},
		{name: "truncated", in: `{"a":`, ok: false},
		{name: "trailing data", in: `{} {}`, ok: false},
		{name: "garbage", in: `<html>`, ok: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, shared.ErrInvalidJSON) {
				t.Errorf("expected ErrInvalidJSON, got %v", err)
			}
		})
	}
}

func TestNode(t *testing.T) {
	doc := mustParse(t, `{
		"name": "Song",
		"count": 42,
		"whole": 3.0,
		"frac": 2.5,
		"big": 1e3,
		"flag": true,
		"off": false,
		"nothing": null,
		"list": [{"v": 1}, {"v": 2}],
		"nested": {"inner": {"leaf": "x"}}
	}`)

	t.Run("Get and Exists", func(t *testing.T) {
		if !doc.Get("name").Exists() {
			t.Error("name should exist")
		}
		if doc.Get("missing").Exists() {
			t.Error("missing should not exist")
		}
		if !doc.Get("nothing").Exists() || !doc.Get("nothing").IsNull() {
			t.Error("null should exist and be null")
		}
		if doc.Get("name").Get("x").Exists() {
			t.Error("Get on a string should not exist")
		}
	})

	t.Run("String", func(t *testing.T) {
		if s, ok := doc.Get("name").String(); !ok || s != "Song" {
			t.Errorf("got %q, %v", s, ok)
		}
		if _, ok := doc.Get("count").String(); ok {
			t.Error("number is not a string")
		}
	})

	t.Run("Int", func(t *testing.T) {
		tc := []struct {
			key  string
			want int64
			ok   bool
		}{
			{"count", 42, true},
			{"whole", 3, true},
			{"big", 1000, true},
			{"frac", 0, false},
			{"name", 0, false},
			{"missing", 0, false},
		}
		for _, tt := range tc {
			got, ok := doc.Get(tt.key).Int()
			if ok != tt.ok || got != tt.want {
				t.Errorf("Int(%s) = %d, %v; want %d, %v", tt.key, got, ok, tt.want, tt.ok)
			}
		}
	})

	t.Run("IsTrue and Bool", func(t *testing.T) {
		if !doc.Get("flag").IsTrue() || doc.Get("off").IsTrue() || doc.Get("missing").IsTrue() || doc.Get("name").IsTrue() {
			t.Error("IsTrue mismatch")
		}
		if v, ok := doc.Get("off").Bool(); !ok || v {
			t.Errorf("Bool(off) = %v, %v", v, ok)
		}
		if _, ok := doc.Get("nothing").Bool(); ok {
			t.Error("null is not a bool")
		}
	})

	t.Run("arrays", func(t *testing.T) {
		list := doc.Get("list")
		if !list.IsArray() || list.ArraySize() != 2 {
			t.Fatalf("expected 2-element array")
		}
		if v, _ := list.ArrayItem(1).Get("v").Int(); v != 2 {
			t.Errorf("expected 2, got %d", v)
		}
		if list.ArrayItem(2).Exists() || list.ArrayItem(-1).Exists() {
			t.Error("out of range item should not exist")
		}
		if doc.Get("name").ArraySize() != 0 {
			t.Error("non-array size should be 0")
		}
	})

	t.Run("Path", func(t *testing.T) {
		if s, ok := doc.Path("nested", "inner", "leaf").String(); !ok || s != "x" {
			t.Errorf("got %q, %v", s, ok)
		}
		if doc.Path("nested", "nope", "leaf").Exists() {
			t.Error("broken path should not exist")
		}
		if !doc.Get("nested").IsObject() {
			t.Error("nested should be an object")
		}
	})
}
