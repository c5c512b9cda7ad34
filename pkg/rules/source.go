package rules

import (
	"strings"
)

// Source resolves a hierarchical key to a configuration section.
type Source interface {
	// Lookup returns the section at path, or nil when absent. The returned
	// node must not be modified.
	Lookup(path string) *Node
}

// Layered merges sources in order. Later sources override values of earlier
// ones, and sections are merged child by child.
type Layered []Source

// Lookup implements Source.
func (l Layered) Lookup(path string) *Node {
	var merged *Node
	for _, s := range l {
		if s == nil {
			continue
		}
		n := s.Lookup(path)
		if n == nil {
			continue
		}
		if merged == nil {
			merged = &Node{key: n.key}
		}
		merged.merge(n)
	}
	return merged
}

// DefaultEnvPrefix selects the environment variables read by EnvSource.
const DefaultEnvPrefix = "INTERLOG_"

// EnvSource exposes environment variables as a tree. A double underscore in
// the variable name separates sections, so INTERLOG_Log__Svc.Run__0 becomes
// Log:Svc.Run:0.
type EnvSource struct {
	tree *Node
}

// NewEnvSource builds a source from environ entries ("KEY=value") whose key
// starts with prefix, compared case-insensitively.
func NewEnvSource(prefix string, environ []string) *EnvSource {
	tree := NewTree()
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || len(k) <= len(prefix) || !strings.EqualFold(k[:len(prefix)], prefix) {
			continue
		}
		tree.Set(strings.ReplaceAll(k[len(prefix):], "__", Separator), v)
	}
	return &EnvSource{tree: tree}
}

// Lookup implements Source.
func (e *EnvSource) Lookup(path string) *Node {
	return e.tree.Lookup(path)
}
