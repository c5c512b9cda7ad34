// Package rules resolves the logging rules configured for a method.
//
// Rules live in a hierarchical key-value store under the "Log" section. For
// method Svc.Run the key is "Log:Svc.Run" and the value is either a list of
// JSON strings or a single JSON string. Each fragment is parsed on its own;
// fragments that fail to parse are dropped with a warning.
package rules

import (
	"context"
	"errors"
	"log/slog"

	ierrors "github.com/Aman-CERP/interlog/internal/errors"
	"github.com/Aman-CERP/interlog/pkg/value"
)

// DefaultPrefix is the section holding method rules.
const DefaultPrefix = "Log"

// Reader returns the rules configured for a qualified method key such as
// "Svc.Run". Implementations must be safe for concurrent use.
type Reader interface {
	Read(method string) []value.Value
}

// ConfigReader reads rules from a Source.
type ConfigReader struct {
	source Source
	prefix string
	logger *slog.Logger
}

// Option configures a ConfigReader.
type Option func(*ConfigReader)

// WithPrefix changes the section holding the rules.
func WithPrefix(prefix string) Option {
	return func(r *ConfigReader) { r.prefix = prefix }
}

// WithLogger sets the logger used for dropped-fragment warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(r *ConfigReader) { r.logger = logger }
}

// NewReader creates a reader over source.
func NewReader(source Source, opts ...Option) *ConfigReader {
	r := &ConfigReader{
		source: source,
		prefix: DefaultPrefix,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Key returns the configuration key for method.
func (r *ConfigReader) Key(method string) string {
	return joinPath(r.prefix, method)
}

// Read returns the valid rules for method. Invalid fragments are logged and
// skipped.
func (r *ConfigReader) Read(method string) []value.Value {
	rules, errs := r.ReadAll(method)
	for _, err := range errs {
		attrs := append([]slog.Attr{slog.String("method", method)}, ierrors.LogAttrs(err)...)
		r.logger.LogAttrs(context.Background(), slog.LevelWarn, "dropping invalid log rule", attrs...)
	}
	return rules
}

// ReadAll returns the valid rules for method together with one ParseError
// per dropped fragment. A list takes priority over a single string.
func (r *ConfigReader) ReadAll(method string) ([]value.Value, []error) {
	if r.source == nil {
		return nil, nil
	}
	key := r.Key(method)
	node := r.source.Lookup(key)
	if node == nil {
		return nil, nil
	}

	if items, ok := node.listItems(); ok {
		var rules []value.Value
		var errs []error
		for _, item := range items {
			itemKey := joinPath(key, item.Key())
			text, ok := item.Value()
			if !ok {
				errs = append(errs, newParseError(itemKey, "", errors.New("list entry is not a string")))
				continue
			}
			v, err := value.Parse(text)
			if err != nil {
				errs = append(errs, newParseError(itemKey, text, err))
				continue
			}
			rules = append(rules, v)
		}
		return rules, errs
	}

	if text, ok := node.Value(); ok {
		v, err := value.Parse(text)
		if err != nil {
			return nil, []error{newParseError(key, text, err)}
		}
		return []value.Value{v}, nil
	}

	if len(node.Children()) > 0 {
		return nil, []error{newParseError(key, "", errors.New("expected a string or a list of strings"))}
	}
	return nil, nil
}

// Methods lists the method keys that have a section under the prefix, in
// source order.
func (r *ConfigReader) Methods() []string {
	if r.source == nil {
		return nil
	}
	node := r.source.Lookup(r.prefix)
	if node == nil {
		return nil
	}
	out := make([]string, 0, len(node.Children()))
	for _, c := range node.Children() {
		out = append(out, c.Key())
	}
	return out
}
