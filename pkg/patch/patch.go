package patch

import (
	"bytes"
	"encoding/json"
)

// Field carries a three-valued update intent for one mutable attribute:
// untouched (the zero Field), set to a concrete value, or explicitly cleared.
// Untouched fields never reach the wire; cleared fields are sent as null.
type Field[T any] struct {
	set     bool
	cleared bool
	value   T
}

// Set returns a Field carrying a concrete replacement value.
func Set[T any](value T) Field[T] {
	return Field[T]{set: true, value: value}
}

// Clear returns a Field carrying an explicit "remove this value" intent.
func Clear[T any]() Field[T] {
	return Field[T]{cleared: true}
}

// Touched reports whether the field carries any intent at all.
func (f Field[T]) Touched() bool {
	return f.set || f.cleared
}

// Cleared reports whether the field was explicitly nulled.
func (f Field[T]) Cleared() bool {
	return f.cleared
}

// Value returns the replacement value and whether one was set.
func (f Field[T]) Value() (T, bool) {
	return f.value, f.set
}

var nullLiteral = []byte("null")

// UnmarshalJSON maps a JSON null to a clear intent and any other value to a
// set intent. Absent keys never invoke UnmarshalJSON, which is exactly the
// untouched case.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), nullLiteral) {
		*f = Clear[T]()
		return nil
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*f = Set(value)
	return nil
}

// Payload is an outgoing partial-update body. A key present with a nil value
// means "clear"; an absent key means "untouched". Payloads marshal directly
// to the wire format.
type Payload map[string]any

// NewPayload returns an empty diff body.
func NewPayload() Payload {
	return Payload{}
}

// Empty reports whether the diff carries no changes at all.
func (p Payload) Empty() bool {
	return len(p) == 0
}

// Keys returns the touched keys in no particular order.
func (p Payload) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	return keys
}

// DiffScalar folds a required attribute into the payload when the edited
// value differs from the last-known one. Clear intents are ignored: required
// attributes cannot be removed, only replaced.
func DiffScalar[T comparable](p Payload, key string, original T, edited Field[T]) {
	value, ok := edited.Value()
	if !ok {
		return
	}
	if value == original {
		return
	}
	p[key] = value
}

// DiffOptional folds an optional attribute into the payload. A nil original
// stands for "no value". Setting an identical value or clearing an already
// absent value leaves the payload untouched, so a no-change edit session
// yields an empty diff.
func DiffOptional[T comparable](p Payload, key string, original *T, edited Field[T]) {
	if !edited.Touched() {
		return
	}
	if edited.Cleared() {
		if original != nil {
			p[key] = nil
		}
		return
	}
	value, _ := edited.Value()
	if original != nil && *original == value {
		return
	}
	p[key] = value
}
