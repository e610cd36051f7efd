package caster

import "encoding/json"

// Caster converts values of T to and from websocket message payloads.
type Caster[T any] interface {
	Decode([]byte) (T, error)
	Encode(T) ([]byte, error)
}

type JSONCaster[T any] struct{}

func (jc JSONCaster[T]) Decode(data []byte) (T, error) {
	var v T
	err := json.Unmarshal(data, &v)
	return v, err
}

func (jc JSONCaster[T]) Encode(v T) ([]byte, error) {
	return json.Marshal(v)
}
