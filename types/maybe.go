package types

import "encoding/json"

// Maybe carries a value that may not exist at all. An absent value is
// encoded as JSON null, which is different from a present zero value.
type Maybe[T any] struct {
	value T
	valid bool
}

func Some[T any](v T) Maybe[T] {
	return Maybe[T]{value: v, valid: true}
}

func None[T any]() Maybe[T] {
	return Maybe[T]{}
}

// FromPtr turns a nullable column into a Maybe.
func FromPtr[T any](p *T) Maybe[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

func (m Maybe[T]) Get() (T, bool) {
	return m.value, m.valid
}

func (m Maybe[T]) Valid() bool {
	return m.valid
}

// OrElse returns fallback when the value is absent.
func (m Maybe[T]) OrElse(fallback T) T {
	if !m.valid {
		return fallback
	}
	return m.value
}

func (m Maybe[T]) MarshalJSON() ([]byte, error) {
	if !m.valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.value)
}

func (m *Maybe[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = None[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Some(v)
	return nil
}
