package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObject_KeepsInsertionOrder(t *testing.T) {
	v := Object(
		Field{Key: "b", Value: Number("1")},
		Field{Key: "a", Value: Number("2")},
	)

	assert.Equal(t, KindObject, v.Kind())
	assert.Equal(t, 2, v.Len())
	assert.Equal(t, "b", v.Fields()[0].Key)
	assert.Equal(t, "a", v.Fields()[1].Key)
}

func TestObject_RepeatedKeyReplacesInPlace(t *testing.T) {
	v := Object(
		Field{Key: "a", Value: Number("1")},
		Field{Key: "b", Value: Number("2")},
		Field{Key: "a", Value: Number("3")},
	)

	assert.Equal(t, `{"a":3,"b":2}`, v.String())
}

func TestGet(t *testing.T) {
	v := Object(Field{Key: "a", Value: Bool(true)})

	got, ok := v.Get("a")
	assert.True(t, ok)
	assert.True(t, got.BoolValue())

	_, ok = v.Get("missing")
	assert.False(t, ok)

	_, ok = Number("1").Get("a")
	assert.False(t, ok)
}

func TestKind(t *testing.T) {
	assert.False(t, Value{}.Kind().Valid())
	assert.Equal(t, "invalid", Value{}.Kind().String())
	assert.True(t, KindNull.IsScalar())
	assert.True(t, KindString.IsScalar())
	assert.False(t, KindArray.IsScalar())
	assert.False(t, KindInvalid.IsScalar())
	assert.Equal(t, "object", KindObject.String())
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"null", Null(), Null(), true},
		{"bools", Bool(true), Bool(false), false},
		{"number text", Number("1"), Number("1.0"), false},
		{"number vs string", Number("1"), String("1"), false},
		{"arrays ordered", Array(Number("1"), Number("2")), Array(Number("2"), Number("1")), false},
		{"arrays", Array(Number("1")), Array(Number("1")), true},
		{
			"object key order ignored",
			Object(Field{"a", Null()}, Field{"b", Null()}),
			Object(Field{"b", Null()}, Field{"a", Null()}),
			true,
		},
		{
			"object extra key",
			Object(Field{"a", Null()}),
			Object(Field{"a", Null()}, Field{"b", Null()}),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestArray_CopiesItems(t *testing.T) {
	items := []Value{Number("1")}
	v := Array(items...)
	items[0] = Number("2")

	assert.Equal(t, "[1]", v.String())
}
