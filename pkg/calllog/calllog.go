// Package calllog shapes call and return records and hands them to a sink.
package calllog

import (
	"context"
	"time"

	"github.com/Aman-CERP/interlog/pkg/value"
)

// Event distinguishes the two records written around one call.
type Event string

const (
	EventCall   Event = "call"
	EventReturn Event = "return"
)

// Record is one produced log entry. Parameters and Value hold canonical JSON
// text.
type Record struct {
	Event      Event
	Method     string
	Timestamp  time.Time
	Severity   Severity
	Parameters string
	Value      string
	// HasValue is false for return records of methods without a logged
	// result.
	HasValue bool
}

// Message renders the human readable line for r.
func (r Record) Message() string {
	ts := r.Timestamp.Format(time.RFC3339Nano)
	switch {
	case r.Event == EventCall:
		return "Method " + r.Method + " was called at " + ts + " with " + r.Parameters
	case r.HasValue:
		return "Method " + r.Method + " returned at " + ts + " with " + r.Value
	default:
		return "Method " + r.Method + " returned at " + ts
	}
}

// Sink receives shaped records. Delivery failures are the sink's concern.
type Sink interface {
	Log(ctx context.Context, r Record)
}

// Logger shapes payloads into records.
type Logger struct {
	sink Sink
}

// New creates a Logger writing to sink.
func New(sink Sink) *Logger {
	return &Logger{sink: sink}
}

// LogCall emits a call record with the argument snapshot.
func (l *Logger) LogCall(ctx context.Context, sev Severity, method string, params value.Value, ts time.Time) {
	if l == nil || l.sink == nil {
		return
	}
	l.sink.Log(ctx, Record{
		Event:      EventCall,
		Method:     method,
		Timestamp:  ts,
		Severity:   sev,
		Parameters: params.String(),
	})
}

// LogReturn emits a return record. A nil ret omits the value.
func (l *Logger) LogReturn(ctx context.Context, sev Severity, method string, ret *value.Value, ts time.Time) {
	if l == nil || l.sink == nil {
		return
	}
	r := Record{
		Event:     EventReturn,
		Method:    method,
		Timestamp: ts,
		Severity:  sev,
	}
	if ret != nil {
		r.Value = ret.String()
		r.HasValue = true
	}
	l.sink.Log(ctx, r)
}
