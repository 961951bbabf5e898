// Package jsonx is a small read-only JSON tree used by the response mapper.
//
// Lookups never panic: a missing key or an out-of-range index yields a [Node] whose
// Exists reports false, and the typed accessors report ok=false on a type mismatch.
package jsonx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/desertthunder/spotbox/internal/shared"
)

// Node is a position in a parsed document.
type Node struct {
	value  any
	exists bool
}

// Parse decodes data into a tree. Empty input and trailing data are rejected with [shared.ErrInvalidJSON].
func Parse(data []byte) (Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Node{}, fmt.Errorf("%w: empty document", shared.ErrInvalidJSON)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return Node{}, fmt.Errorf("%w: %v", shared.ErrInvalidJSON, err)
	}
	if err := dec.Decode(new(any)); !errors.Is(err, io.EOF) {
		return Node{}, fmt.Errorf("%w: trailing data after document", shared.ErrInvalidJSON)
	}
	return Node{value: v, exists: true}, nil
}

// Exists reports whether the node was present in the document (a JSON null counts as present).
func (n Node) Exists() bool { return n.exists }

// IsNull reports a present JSON null.
func (n Node) IsNull() bool { return n.exists && n.value == nil }

// IsObject reports a JSON object.
func (n Node) IsObject() bool {
	_, ok := n.value.(map[string]any)
	return ok
}

// IsArray reports a JSON array.
func (n Node) IsArray() bool {
	_, ok := n.value.([]any)
	return ok
}

// Get returns the member key of an object node.
func (n Node) Get(key string) Node {
	obj, ok := n.value.(map[string]any)
	if !ok {
		return Node{}
	}
	v, ok := obj[key]
	if !ok {
		return Node{}
	}
	return Node{value: v, exists: true}
}

// Path follows keys through nested objects.
func (n Node) Path(keys ...string) Node {
	for _, k := range keys {
		n = n.Get(k)
	}
	return n
}

// IsTrue reports a JSON true. Anything else, including a missing node, is false.
func (n Node) IsTrue() bool {
	b, ok := n.value.(bool)
	return ok && b
}

// Bool returns the boolean value and whether the node is a boolean.
func (n Node) Bool() (bool, bool) {
	b, ok := n.value.(bool)
	return b, ok
}

// ArraySize returns the array length, zero for non-arrays.
func (n Node) ArraySize() int {
	arr, ok := n.value.([]any)
	if !ok {
		return 0
	}
	return len(arr)
}

// ArrayItem returns element i of an array node.
func (n Node) ArrayItem(i int) Node {
	arr, ok := n.value.([]any)
	if !ok || i < 0 || i >= len(arr) {
		return Node{}
	}
	return Node{value: arr[i], exists: true}
}

// String returns the string value and whether the node is a string.
func (n Node) String() (string, bool) {
	s, ok := n.value.(string)
	return s, ok
}

// Int returns the integer value and whether the node is an integral number.
//
// Numbers written with a fraction or exponent are accepted when they are whole, so 3.0 and 3e2 decode.
func (n Node) Int() (int64, bool) {
	num, ok := n.value.(json.Number)
	if !ok {
		return 0, false
	}
	if i, err := num.Int64(); err == nil {
		return i, true
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}
