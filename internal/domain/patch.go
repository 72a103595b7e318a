package domain

import "encoding/json"

// Field is one entry of a partial update. Set is true only when the key was
// present in the decoded payload, so an explicit zero is distinguishable from
// an omitted field.
type Field[T any] struct {
	Set   bool
	Value T
}

// Some builds a present field.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	return json.Unmarshal(data, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Apply writes the value into dst when present.
func (f Field[T]) Apply(dst *T) {
	if f.Set {
		*dst = f.Value
	}
}
