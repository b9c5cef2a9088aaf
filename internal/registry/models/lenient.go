package models

import (
	"bytes"
	"encoding/json"
)

// The registry reply is sparse and loosely typed: any key may be missing,
// null, or carry a value of an unexpected JSON type. The types in this file
// decode such values without ever failing, so a single odd field cannot
// invalidate the rest of the document.

// Text is a scalar rendered as text. JSON strings decode verbatim and JSON
// numbers keep their literal form ("10000", "1.2"). Null, booleans, objects
// and arrays leave it unset.
type Text struct {
	value string
	set   bool
}

// NewText returns a set Text.
func NewText(v string) Text {
	return Text{value: v, set: true}
}

// UnmarshalJSON implements json.Unmarshaler and never returns an error.
func (t *Text) UnmarshalJSON(b []byte) error {
	*t = Text{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch {
	case b[0] == '"':
		var s string
		if json.Unmarshal(b, &s) == nil {
			*t = NewText(s)
		}
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		var n json.Number
		if json.Unmarshal(b, &n) == nil {
			*t = NewText(n.String())
		}
	}
	return nil
}

// MarshalJSON emits the value as a string, or null when unset.
func (t Text) MarshalJSON() ([]byte, error) {
	if !t.set {
		return []byte("null"), nil
	}
	return json.Marshal(t.value)
}

// Get returns the value and whether it was present.
func (t Text) Get() (string, bool) {
	return t.value, t.set
}

// Or returns the value, or def when unset.
func (t Text) Or(def string) string {
	if !t.set {
		return def
	}
	return t.value
}

// Flag is a boolean that is only true for a literal JSON true.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler and never returns an error.
func (f *Flag) UnmarshalJSON(b []byte) error {
	*f = Flag(bytes.Equal(bytes.TrimSpace(b), []byte("true")))
	return nil
}

// Optional is a nested object that may be absent. Null or a non-object value
// leaves it unset.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a set Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// UnmarshalJSON implements json.Unmarshaler and never returns an error.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	*o = Optional[T]{}
	if !isObject(b) {
		return nil
	}
	var v T
	if json.Unmarshal(b, &v) != nil {
		return nil
	}
	*o = Some(v)
	return nil
}

// MarshalJSON emits the object, or null when unset.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// Get returns the object and whether it was present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// List is an array of objects that keeps positions. Null or non-object
// entries stay in place as unset elements; a non-array value decodes as an
// empty list.
type List[T any] []Optional[T]

// ListOf returns a List with every element set.
func ListOf[T any](items ...T) List[T] {
	l := make(List[T], len(items))
	for i, item := range items {
		l[i] = Some(item)
	}
	return l
}

// UnmarshalJSON implements json.Unmarshaler and never returns an error.
func (l *List[T]) UnmarshalJSON(b []byte) error {
	*l = nil
	var raw []json.RawMessage
	if json.Unmarshal(b, &raw) != nil {
		return nil
	}
	out := make(List[T], len(raw))
	for i, item := range raw {
		// Optional.UnmarshalJSON never fails.
		_ = out[i].UnmarshalJSON(item)
	}
	*l = out
	return nil
}

// Present returns the set elements in their original order.
func (l List[T]) Present() []T {
	out := make([]T, 0, len(l))
	for _, item := range l {
		if v, ok := item.Get(); ok {
			out = append(out, v)
		}
	}
	return out
}

func isObject(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}
