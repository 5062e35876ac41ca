package protocol

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

var (
	// ErrWireType is returned when a known field arrives with a wire type that
	// does not match the message being decoded.
	ErrWireType = errors.New("field has an unexpected wire type")

	// ErrMissingField is returned when a required field is absent.
	ErrMissingField = errors.New("required field is missing")
)

// encoder appends protobuf fields to a buffer.
type encoder struct {
	b []byte
}

func (e *encoder) int32(num protowire.Number, v int32) {
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, uint64(int64(v)))
}

func (e *encoder) uint32(num protowire.Number, v uint32) {
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, uint64(v))
}

func (e *encoder) bool(num protowire.Number, v bool) {
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, protowire.EncodeBool(v))
}

func (e *encoder) fixed32(num protowire.Number, v uint32) {
	e.b = protowire.AppendTag(e.b, num, protowire.Fixed32Type)
	e.b = protowire.AppendFixed32(e.b, v)
}

func (e *encoder) string(num protowire.Number, v string) {
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendString(e.b, v)
}

func (e *encoder) bytes(num protowire.Number, v []byte) {
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, v)
}

func (e *encoder) message(num protowire.Number, m Marshaler) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}

	e.bytes(num, data)
	return nil
}

// field is a single decoded protobuf field.
type field struct {
	num     protowire.Number
	typ     protowire.Type
	varint  uint64
	fixed32 uint32
	bytes   []byte
}

func (f field) wrongType(want protowire.Type) error {
	return fmt.Errorf("field %d is wire type %d, want %d: %w", f.num, f.typ, want, ErrWireType)
}

func (f field) asInt32() (int32, error) {
	if f.typ != protowire.VarintType {
		return 0, f.wrongType(protowire.VarintType)
	}

	return int32(f.varint), nil
}

func (f field) asUint32() (uint32, error) {
	if f.typ != protowire.VarintType {
		return 0, f.wrongType(protowire.VarintType)
	}

	return uint32(f.varint), nil
}

func (f field) asBool() (bool, error) {
	if f.typ != protowire.VarintType {
		return false, f.wrongType(protowire.VarintType)
	}

	return protowire.DecodeBool(f.varint), nil
}

func (f field) asFixed32() (uint32, error) {
	if f.typ != protowire.Fixed32Type {
		return 0, f.wrongType(protowire.Fixed32Type)
	}

	return f.fixed32, nil
}

func (f field) asBytes() ([]byte, error) {
	if f.typ != protowire.BytesType {
		return nil, f.wrongType(protowire.BytesType)
	}

	return append([]byte(nil), f.bytes...), nil
}

func (f field) asString() (string, error) {
	if f.typ != protowire.BytesType {
		return "", f.wrongType(protowire.BytesType)
	}

	return string(f.bytes), nil
}

func (f field) asMessage(m Unmarshaler) error {
	if f.typ != protowire.BytesType {
		return f.wrongType(protowire.BytesType)
	}

	return m.Unmarshal(f.bytes)
}

// decodeFields walks every field in data. Unknown fields should simply be
// ignored by fn.
func decodeFields(data []byte, fn func(f field) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		f := field{num: num, typ: typ}

		switch typ {
		case protowire.VarintType:
			f.varint, n = protowire.ConsumeVarint(data)
		case protowire.Fixed32Type:
			f.fixed32, n = protowire.ConsumeFixed32(data)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(data)
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
		}

		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		if err := fn(f); err != nil {
			return err
		}
	}

	return nil
}

// requireFields returns ErrMissingField naming the first field that was not seen.
func requireFields(msg string, seen map[protowire.Number]bool, nums ...protowire.Number) error {
	for _, num := range nums {
		if !seen[num] {
			return fmt.Errorf("%s field %d: %w", msg, num, ErrMissingField)
		}
	}

	return nil
}
