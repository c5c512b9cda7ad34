// Package value provides the JSON-like tagged value used for rules, call
// arguments and return values.
//
// A Value is immutable once built. Objects keep their keys in insertion order so
// that serialized argument snapshots follow parameter declaration order.
// Numbers keep their exact textual representation: 1 and 1.0 are different
// values, and no numeric coercion ever happens.
package value

// Kind identifies the shape of a Value.
type Kind int

const (
	// KindInvalid is the zero Kind. It only appears in a zero Value and is
	// rejected by the matcher.
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the lower-case JSON name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Valid reports whether k is one of the recognized JSON kinds.
func (k Kind) Valid() bool {
	return k >= KindNull && k <= KindObject
}

// IsScalar reports whether k is null, bool, number or string.
func (k Kind) IsScalar() bool {
	return k >= KindNull && k <= KindString
}

// Field is one key/value pair of an object.
type Field struct {
	Key   string
	Value Value
}

// Value is a JSON-like tagged union.
type Value struct {
	kind   Kind
	flag   bool
	text   string // number literal or string content
	items  []Value
	fields []Field
}

// Null returns the JSON null value.
func Null() Value {
	return Value{kind: KindNull}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, flag: b}
}

// Number returns a number value holding the literal text as given.
// The literal is not validated; use Parse for untrusted input.
func Number(literal string) Value {
	return Value{kind: KindNumber, text: literal}
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, text: s}
}

// Array returns an array value of the given items.
func Array(items ...Value) Value {
	return Value{kind: KindArray, items: append([]Value{}, items...)}
}

// Object returns an object value. A repeated key replaces the earlier value
// but keeps the earlier position.
func Object(fields ...Field) Value {
	v := Value{kind: KindObject, fields: make([]Field, 0, len(fields))}
	for _, f := range fields {
		v.fields = setField(v.fields, f)
	}
	return v
}

func setField(fields []Field, f Field) []Field {
	for i := range fields {
		if fields[i].Key == f.Key {
			fields[i].Value = f.Value
			return fields
		}
	}
	return append(fields, f)
}

// Kind returns the kind of v.
func (v Value) Kind() Kind {
	return v.kind
}

// BoolValue returns the boolean held by v. It is false for non-bool values.
func (v Value) BoolValue() bool {
	return v.flag
}

// Text returns the number literal or string content of v.
func (v Value) Text() string {
	return v.text
}

// Len returns the number of array items or object fields.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.fields)
	default:
		return 0
	}
}

// Items returns the array items of v. The slice must not be modified.
func (v Value) Items() []Value {
	return v.items
}

// Fields returns the object fields of v in insertion order. The slice must
// not be modified.
func (v Value) Fields() []Field {
	return v.fields
}

// Get returns the value stored under key in an object.
func (v Value) Get(key string) (Value, bool) {
	for _, f := range v.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Equal reports structural equality. Object key order is not significant.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.flag == other.flag
	case KindNumber, KindString:
		return v.text == other.text
	case KindArray:
		if len(v.items) != len(other.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.fields) != len(other.fields) {
			return false
		}
		for _, f := range v.fields {
			o, ok := other.Get(f.Key)
			if !ok || !f.Value.Equal(o) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
