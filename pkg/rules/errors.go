package rules

import (
	"fmt"

	ierrors "github.com/Aman-CERP/interlog/internal/errors"
)

// ParseError reports a rule fragment that could not be used. Readers drop
// the fragment and keep the remaining rules.
type ParseError struct {
	// Key is the full configuration key of the fragment, e.g. "Log:Svc.Run:1".
	Key string
	// Fragment is the raw text, empty when the entry was not a string.
	Fragment string
	Err      error

	ierr *ierrors.InterlogError
}

func newParseError(key, fragment string, err error) *ParseError {
	e := &ParseError{Key: key, Fragment: fragment, Err: err}
	e.ierr = ierrors.New(ierrors.ErrCodeRuleInvalid, e.Error(), err).WithDetail("key", key)
	return e
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("rule %s: invalid fragment %q: %v", e.Key, e.Fragment, e.Err)
}

// Unwrap returns the structured error, whose cause is Err.
func (e *ParseError) Unwrap() error {
	return e.ierr
}
