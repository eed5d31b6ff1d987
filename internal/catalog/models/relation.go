package models

import (
	"bytes"
	"encoding/json"
)

// Relation is an embedded related row as returned by a relation-expanding
// backend. The wire value may be null, [], [x, ...] or a bare object x; all
// four decode into the same shape.
type Relation[T any] struct {
	items []T
}

// One builds a relation holding a single row.
func One[T any](v T) Relation[T] {
	return Relation[T]{items: []T{v}}
}

// Many builds a relation from rows, preserving order.
func Many[T any](v ...T) Relation[T] {
	return Relation[T]{items: append([]T(nil), v...)}
}

// First returns the first related row, if any.
func (r Relation[T]) First() (T, bool) {
	if len(r.items) == 0 {
		var zero T
		return zero, false
	}
	return r.items[0], true
}

// All returns a copy of the related rows.
func (r Relation[T]) All() []T {
	return append([]T(nil), r.items...)
}

func (r Relation[T]) Len() int {
	return len(r.items)
}

func (r *Relation[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		r.items = nil
		return nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		r.items = items
		return nil
	}
	var item T
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return err
	}
	r.items = []T{item}
	return nil
}

func (r Relation[T]) MarshalJSON() ([]byte, error) {
	if r.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.items)
}
