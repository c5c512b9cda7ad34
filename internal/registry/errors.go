package registry

import (
	"fmt"

	ierrors "github.com/Aman-CERP/interlog/internal/errors"
)

// GenerationError reports a declaration that cannot be wrapped.
type GenerationError struct {
	File   string
	Line   int
	Owner  string
	Method string
	Reason string
	Code   string

	ierr *ierrors.InterlogError
}

func newGenerationError(code, file string, line int, owner, method, reason string) *GenerationError {
	e := &GenerationError{File: file, Line: line, Owner: owner, Method: method, Reason: reason, Code: code}
	e.ierr = ierrors.New(code, e.Error(), nil).WithDetail("file", file)
	if owner != "" {
		e.ierr.WithDetail("owner", owner)
	}
	if method != "" {
		e.ierr.WithDetail("method", method)
	}
	return e
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	subject := e.Owner
	if e.Method != "" {
		subject += "." + e.Method
	}
	if subject == "" {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, subject, e.Reason)
}

// Unwrap returns the structured error.
func (e *GenerationError) Unwrap() error {
	return e.ierr
}
