// Package demo is a small service whose observable methods are wrapped by
// generated interceptors. Worker drives it the same way with or without
// the wrapper.
package demo

//go:generate go run ../../cmd/interlog generate

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned by Fetch for unknown ids.
var ErrNotFound = errors.New("not found")

// Dependency is injected into MyService.
type Dependency interface {
	Name() string
}

// StaticDependency is a Dependency with a fixed name.
type StaticDependency string

// Name returns d.
func (d StaticDependency) Name() string { return string(d) }

// MyService counts how often each of its methods ran.
type MyService struct {
	dep Dependency

	mu    sync.Mutex
	calls map[string]int
}

// NewMyService creates a MyService.
func NewMyService(dep Dependency) *MyService {
	return &MyService{dep: dep, calls: make(map[string]int)}
}

//interlog:observe
func (s *MyService) DoSomething() {
	s.count("DoSomething")
}

//interlog:observe severity=Warning
func (s *MyService) DoSomethingElse(a bool, b int, c []int) int {
	s.count("DoSomethingElse")
	return 4
}

//interlog:observe disabled
func (s *MyService) DisableLogging() {
	s.count("DisableLogging")
}

// ConditionalLogging is logged only for the arguments its rules select.
//
//interlog:observe severity=Critical
func (s *MyService) ConditionalLogging(a int) {
	s.count("ConditionalLogging")
}

//interlog:observe severity=Critical
func (s *MyService) ListReturnType(a []int) []int {
	s.count("ListReturnType")
	return a
}

// Fetch returns the value stored under id.
//
//interlog:observe severity=Information
func (s *MyService) Fetch(ctx context.Context, id string) (string, error) {
	s.count("Fetch")
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if id != "greeting" {
		return "", fmt.Errorf("fetch %q: %w", id, ErrNotFound)
	}
	return "hello from " + s.dep.Name(), nil
}

// Calls reports how many times method ran.
func (s *MyService) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *MyService) count(method string) {
	s.mu.Lock()
	s.calls[method]++
	s.mu.Unlock()
}
