// Package intercept is the runtime half of the generated interceptors.
//
// A generated override calls Begin with the argument snapshot, invokes the
// wrapped method, and then calls Returned or Done. Begin decides once per
// call whether the configured rules match; the wrapped method runs no matter
// what that decision is.
package intercept

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	ierrors "github.com/Aman-CERP/interlog/internal/errors"
	"github.com/Aman-CERP/interlog/pkg/calllog"
	"github.com/Aman-CERP/interlog/pkg/match"
	"github.com/Aman-CERP/interlog/pkg/rules"
	"github.com/Aman-CERP/interlog/pkg/value"
)

// Method identifies an observable method.
type Method struct {
	Owner    string
	Name     string
	Key      string
	Severity calllog.Severity
}

// Arg is one named argument of a call.
type Arg struct {
	Name  string
	Value any
}

// Args holds the arguments of a call in declaration order.
type Args []Arg

// Snapshot serializes the arguments into an object keyed by parameter name.
// Arguments that cannot be serialized are recorded as their type name.
func (a Args) Snapshot() value.Value {
	fields := make([]value.Field, len(a))
	for i, arg := range a {
		fields[i] = value.Field{Key: arg.Name, Value: toValue(arg.Value)}
	}
	return value.Object(fields...)
}

func toValue(v any) value.Value {
	if _, ok := v.(context.Context); ok {
		return value.String(fmt.Sprintf("%T", v))
	}
	out, err := value.FromGo(v)
	if err != nil {
		return value.String(fmt.Sprintf("%T", v))
	}
	return out
}

// Interceptor holds the collaborators shared by every generated wrapper.
// It keeps no per-call state and is safe for concurrent use.
type Interceptor struct {
	logger *calllog.Logger
	reader rules.Reader
	now    func() time.Time
	diag   *slog.Logger
}

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(i *Interceptor) { i.now = now }
}

// WithDiagnostics sets the logger used for internal errors.
func WithDiagnostics(logger *slog.Logger) Option {
	return func(i *Interceptor) { i.diag = logger }
}

// New creates an Interceptor. A nil reader means no rules, so every call is
// logged.
func New(logger *calllog.Logger, reader rules.Reader, opts ...Option) *Interceptor {
	i := &Interceptor{
		logger: logger,
		reader: reader,
		now:    time.Now,
		diag:   slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Call is one in-flight invocation.
type Call struct {
	ctx     context.Context
	i       *Interceptor
	method  Method
	matched bool
}

// Begin evaluates the rules for m and emits the call record when they match.
func (i *Interceptor) Begin(ctx context.Context, m Method, args Args) *Call {
	c := &Call{ctx: ctx, i: i, method: m}
	if i == nil {
		return c
	}

	snapshot := args.Snapshot()
	c.matched = i.evaluate(ctx, m, snapshot)
	if c.matched {
		i.logger.LogCall(ctx, m.Severity, m.Key, snapshot, i.now())
	}
	return c
}

func (i *Interceptor) evaluate(ctx context.Context, m Method, snapshot value.Value) bool {
	if i.reader == nil {
		return true
	}
	ok, err := Evaluate(i.reader.Read(m.Key), snapshot)
	if err != nil {
		attrs := append([]slog.Attr{slog.String("method", m.Key)}, ierrors.LogAttrs(err)...)
		i.diag.LogAttrs(ctx, slog.LevelError, "rule evaluation failed", attrs...)
		return false
	}
	return ok
}

// Evaluate ORs ruleSet against an argument snapshot. An empty rule set
// matches everything. A non-object rule on a single-argument snapshot is
// compared with that argument directly.
func Evaluate(ruleSet []value.Value, snapshot value.Value) (bool, error) {
	if len(ruleSet) == 0 {
		return true, nil
	}
	for _, rule := range ruleSet {
		candidate := snapshot
		if rule.Kind() != value.KindObject && snapshot.Kind() == value.KindObject && snapshot.Len() == 1 {
			candidate = snapshot.Fields()[0].Value
		}
		ok, err := match.Matches(rule, candidate)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Matched reports whether the call record was emitted.
func (c *Call) Matched() bool {
	return c.matched
}

// Returned emits the return record with v.
func (c *Call) Returned(v any) {
	if !c.matched {
		return
	}
	ret := toValue(v)
	c.i.logger.LogReturn(c.ctx, c.method.Severity, c.method.Key, &ret, c.i.now())
}

// Done emits the return record of a method without a logged result.
func (c *Call) Done() {
	if !c.matched {
		return
	}
	c.i.logger.LogReturn(c.ctx, c.method.Severity, c.method.Key, nil, c.i.now())
}

// Key builds the qualified configuration key of a method. Generic owners
// carry their type parameter count so that keys stay distinct per arity.
func Key(owner string, typeParams int, method string) string {
	if typeParams > 0 {
		return fmt.Sprintf("%s[%d].%s", owner, typeParams, method)
	}
	return owner + "." + method
}
