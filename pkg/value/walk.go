package value

import (
	"encoding"
	"errors"
	"reflect"
)

// ErrCycle is returned by FromGo for values that reference themselves.
var ErrCycle = errors.New("value contains a reference cycle")

// errTooDeep is returned by FromGo for values nested beyond maxDepth.
var errTooDeep = errors.New("value exceeds the maximum nesting depth")

type jsonMarshaler interface {
	MarshalJSON() ([]byte, error)
}

var (
	jsonMarshalerType = reflect.TypeFor[jsonMarshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// ref identifies a pointer, map or slice on the current walk path. Slices
// sharing a backing array but differing in length are distinct.
type ref struct {
	ptr uintptr
	len int
	typ reflect.Type
}

// checkEncodable walks v the way the JSON encoder will and reports a
// reference cycle or excessive nesting before encoding starts. Types that
// marshal themselves are not entered.
func checkEncodable(v any) error {
	w := walker{path: make(map[ref]struct{})}
	return w.walk(reflect.ValueOf(v), 0)
}

type walker struct {
	path map[ref]struct{}
}

func (w *walker) walk(v reflect.Value, depth int) error {
	if !v.IsValid() {
		return nil
	}
	if depth > maxDepth {
		return errTooDeep
	}
	t := v.Type()
	if t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType) {
		return nil
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return w.enter(ref{ptr: v.Pointer(), typ: t}, func() error {
			return w.walk(v.Elem(), depth+1)
		})
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return w.walk(v.Elem(), depth+1)
	case reflect.Map:
		if v.IsNil() || v.Len() == 0 || !mayContainRefs(t.Elem()) {
			return nil
		}
		return w.enter(ref{ptr: v.Pointer(), typ: t}, func() error {
			iter := v.MapRange()
			for iter.Next() {
				if err := w.walk(iter.Value(), depth+1); err != nil {
					return err
				}
			}
			return nil
		})
	case reflect.Slice:
		if v.IsNil() || v.Len() == 0 || !mayContainRefs(t.Elem()) {
			return nil
		}
		return w.enter(ref{ptr: v.Pointer(), len: v.Len(), typ: t}, func() error {
			return w.walkItems(v, depth)
		})
	case reflect.Array:
		if !mayContainRefs(t.Elem()) {
			return nil
		}
		return w.walkItems(v, depth)
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if (!f.IsExported() && !f.Anonymous) || f.Tag.Get("json") == "-" {
				continue
			}
			if err := w.walk(v.Field(i), depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walker) walkItems(v reflect.Value, depth int) error {
	for i := 0; i < v.Len(); i++ {
		if err := w.walk(v.Index(i), depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) enter(r ref, fn func() error) error {
	if _, seen := w.path[r]; seen {
		return ErrCycle
	}
	w.path[r] = struct{}{}
	defer delete(w.path, r)
	return fn()
}

// mayContainRefs reports whether values of t can hold pointers, maps,
// slices or interfaces that the encoder would follow.
func mayContainRefs(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Struct:
		return true
	case reflect.Array:
		return mayContainRefs(t.Elem())
	default:
		return false
	}
}
