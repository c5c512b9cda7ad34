package calllog

import (
	"context"
	"log/slog"
)

// SlogSink writes records through a slog.Logger.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink returns a sink over logger, or slog.Default() when nil.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

// Log implements Sink.
func (s *SlogSink) Log(ctx context.Context, r Record) {
	level := r.Severity.Level()
	if !s.logger.Enabled(ctx, level) {
		return
	}

	attrs := []slog.Attr{
		slog.String("event", string(r.Event)),
		slog.String("method", r.Method),
		slog.Time("timestamp", r.Timestamp),
	}
	switch {
	case r.Event == EventCall:
		attrs = append(attrs, slog.String("parameters", r.Parameters))
	case r.HasValue:
		attrs = append(attrs, slog.String("value", r.Value))
	}
	s.logger.LogAttrs(ctx, level, r.Message(), attrs...)
}
