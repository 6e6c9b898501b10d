package protocol

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// BinaryEnvelope is the msgpack framing used for binary websocket messages.
// Payload structs are encoded by their json tags so both formats share field
// names.
type BinaryEnvelope struct {
	T string             `msgpack:"t"`
	P msgpack.RawMessage `msgpack:"p"`
}

func marshalBinary(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unmarshalBinary(b []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

// EncodeBinary is the msgpack counterpart of Encode.
func EncodeBinary(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("trying to encode envelope type nil")
	}
	if payload == nil {
		return nil, fmt.Errorf("trying to encode nil payload")
	}
	pb, err := marshalBinary(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", t, err)
	}
	return marshalBinary(BinaryEnvelope{T: t, P: pb})
}

func DecodeBinaryEnvelope(b []byte) (BinaryEnvelope, error) {
	if len(b) == 0 {
		return BinaryEnvelope{}, fmt.Errorf("decode binary envelope: empty message")
	}
	var e BinaryEnvelope
	if err := unmarshalBinary(b, &e); err != nil {
		return BinaryEnvelope{}, fmt.Errorf("decode binary envelope: %w", err)
	}
	return e, nil
}

func DecodeBinaryPayload[T any](env BinaryEnvelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("empty payload for type %q", env.T)
	}
	err := unmarshalBinary(env.P, &out)
	return out, err
}
