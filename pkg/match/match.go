// Package match decides whether a candidate value satisfies a rule using
// structural subset matching.
//
// Subset matching is not equality. A rule only describes the parts of the
// candidate it cares about:
//
//   - object vs object: every rule key must exist in the candidate and its value
//     must match recursively; keys only present in the candidate are ignored.
//   - array vs array: every rule element must match at least one candidate
//     element. Order is ignored and one candidate element may satisfy several
//     rule elements.
//   - scalar vs scalar: same kind and identical textual representation. There
//     is no numeric coercion, so 1 does not match 1.0.
//   - anything else is a plain non-match.
//
// A null rule matches a null candidate.
package match

import (
	"fmt"
	"strconv"

	ierrors "github.com/Aman-CERP/interlog/internal/errors"
	"github.com/Aman-CERP/interlog/pkg/value"
)

// EngineError reports a value of unrecognized kind reaching the matcher.
// It is an internal invariant violation, never an ordinary non-match.
type EngineError struct {
	// Side is "rule" or "candidate".
	Side string
	// Kind is the offending kind.
	Kind value.Kind
	// Path locates the value inside the compared documents, e.g. "$.a[0]".
	Path string

	err *ierrors.InterlogError
}

// finish fixes the path of an error raised during matching and attaches the
// structured error. Paths are collected only while the error unwinds, so a
// successful match never builds one.
func (e *EngineError) finish() *EngineError {
	e.Path = "$" + e.Path
	e.err = ierrors.New(ierrors.ErrCodeMatchEngine, e.Error(), nil).
		WithDetail("side", e.Side).
		WithDetail("path", e.Path)
	return e
}

func prefixPath(err error, segment string) error {
	if e, ok := err.(*EngineError); ok {
		e.Path = segment + e.Path
	}
	return err
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("match engine: unrecognized %s value kind %d at %s", e.Side, int(e.Kind), e.Path)
}

// Unwrap exposes the structured error so callers can log it with its code.
func (e *EngineError) Unwrap() error {
	return e.err
}

// Matches reports whether candidate satisfies rule.
func Matches(rule, candidate value.Value) (bool, error) {
	ok, err := matchAt(rule, candidate)
	if e, isEngine := err.(*EngineError); isEngine {
		return false, e.finish()
	}
	return ok, err
}

// MatchesAny reports whether candidate satisfies at least one of rules.
// An empty rule set is vacuously satisfied.
func MatchesAny(rules []value.Value, candidate value.Value) (bool, error) {
	if len(rules) == 0 {
		return true, nil
	}
	for _, rule := range rules {
		ok, err := Matches(rule, candidate)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func matchAt(rule, candidate value.Value) (bool, error) {
	if !rule.Kind().Valid() {
		return false, &EngineError{Side: "rule", Kind: rule.Kind()}
	}
	if !candidate.Kind().Valid() {
		return false, &EngineError{Side: "candidate", Kind: candidate.Kind()}
	}

	switch {
	case rule.Kind() == value.KindObject && candidate.Kind() == value.KindObject:
		return matchObject(rule, candidate)
	case rule.Kind() == value.KindArray && candidate.Kind() == value.KindArray:
		return matchArray(rule, candidate)
	case rule.Kind().IsScalar() && candidate.Kind().IsScalar():
		return matchScalar(rule, candidate), nil
	default:
		return false, nil
	}
}

func matchObject(rule, candidate value.Value) (bool, error) {
	for _, f := range rule.Fields() {
		actual, ok := candidate.Get(f.Key)
		if !ok {
			return false, nil
		}
		matched, err := matchAt(f.Value, actual)
		if err != nil {
			return false, prefixPath(err, "."+f.Key)
		}
		if !matched {
			return false, nil
		}
	}
	return true, nil
}

// matchArray is O(len(rule) * len(candidate)) per level.
func matchArray(rule, candidate value.Value) (bool, error) {
	for i, want := range rule.Items() {
		found := false
		for _, have := range candidate.Items() {
			matched, err := matchAt(want, have)
			if err != nil {
				return false, prefixPath(err, "["+strconv.Itoa(i)+"]")
			}
			if matched {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}
	return true, nil
}

func matchScalar(rule, candidate value.Value) bool {
	if rule.Kind() != candidate.Kind() {
		return false
	}
	switch rule.Kind() {
	case value.KindNull:
		return true
	case value.KindBool:
		return rule.BoolValue() == candidate.BoolValue()
	default:
		return rule.Text() == candidate.Text()
	}
}
