package value

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
)

// maxDepth bounds nesting when parsing untrusted rule text.
const maxDepth = 512

// api is the jsoniter configuration used for every encode and decode.
// Map keys are sorted so that snapshots of map arguments are stable.
var api = jsoniter.Config{
	EscapeHTML:  false,
	SortMapKeys: true,
	UseNumber:   true,
}.Froze()

var numberLiteral = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// Parse decodes a single JSON document into a Value. Trailing data after the
// document is an error.
func Parse(text string) (Value, error) {
	if !utf8.ValidString(text) {
		return Value{}, errors.New("invalid JSON: text is not valid UTF-8")
	}
	iter := jsoniter.ParseString(api, text)
	v := readValue(iter, 0)
	// A top-level number is terminated by end of input, which the iterator
	// reports as io.EOF.
	if iter.Error != nil && iter.Error != io.EOF {
		return Value{}, fmt.Errorf("invalid JSON: %w", iter.Error)
	}

	// The only acceptable state after the document is end of input.
	if next := iter.WhatIsNext(); next != jsoniter.InvalidValue || iter.Error != io.EOF {
		return Value{}, fmt.Errorf("invalid JSON: unexpected data after top-level value")
	}
	return v, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level fixtures.
func MustParse(text string) Value {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}

func readValue(iter *jsoniter.Iterator, depth int) Value {
	if depth > maxDepth {
		iter.ReportError("readValue", "maximum nesting depth exceeded")
		return Value{}
	}

	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		iter.ReadNil()
		return Null()
	case jsoniter.BoolValue:
		return Bool(iter.ReadBool())
	case jsoniter.NumberValue:
		lit := string(iter.ReadNumber())
		if !numberLiteral.MatchString(lit) {
			iter.ReportError("readValue", "malformed number "+lit)
			return Value{}
		}
		return Number(lit)
	case jsoniter.StringValue:
		return String(iter.ReadString())
	case jsoniter.ArrayValue:
		arr := Value{kind: KindArray, items: []Value{}}
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			arr.items = append(arr.items, readValue(it, depth+1))
			return it.Error == nil
		})
		return arr
	case jsoniter.ObjectValue:
		obj := Value{kind: KindObject, fields: []Field{}}
		iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
			obj.fields = setField(obj.fields, Field{Key: key, Value: readValue(it, depth+1)})
			return it.Error == nil
		})
		return obj
	default:
		iter.ReportError("readValue", "unexpected token")
		return Value{}
	}
}

// FromGo converts an arbitrary Go value to a Value by serializing it with
// encoding/json semantics (struct tags, json.Marshaler) and parsing the
// result. A Value or *Value is returned as is. Values that reference
// themselves fail with ErrCycle.
func FromGo(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case *Value:
		if t == nil {
			return Null(), nil
		}
		return *t, nil
	}

	if err := checkEncodable(v); err != nil {
		return Value{}, fmt.Errorf("serialize %T: %w", v, err)
	}
	data, err := api.Marshal(v)
	if err != nil {
		return Value{}, fmt.Errorf("serialize %T: %w", v, err)
	}
	return Parse(string(data))
}

// String returns the canonical compact JSON text of v.
// A zero Value renders as an empty string.
func (v Value) String() string {
	if !v.kind.Valid() {
		return ""
	}
	stream := api.BorrowStream(nil)
	defer api.ReturnStream(stream)
	writeValue(stream, v)
	return string(stream.Buffer())
}

// MarshalJSON implements json.Marshaler using the canonical text.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.kind.Valid() {
		return nil, fmt.Errorf("marshal value: invalid kind")
	}
	return []byte(v.String()), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func writeValue(stream *jsoniter.Stream, v Value) {
	switch v.kind {
	case KindNull:
		stream.WriteNil()
	case KindBool:
		stream.WriteBool(v.flag)
	case KindNumber:
		stream.WriteRaw(v.text)
	case KindString:
		stream.WriteString(v.text)
	case KindArray:
		stream.WriteArrayStart()
		for i, item := range v.items {
			if i > 0 {
				stream.WriteMore()
			}
			writeValue(stream, item)
		}
		stream.WriteArrayEnd()
	case KindObject:
		stream.WriteObjectStart()
		for i, f := range v.fields {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(f.Key)
			writeValue(stream, f.Value)
		}
		stream.WriteObjectEnd()
	}
}
