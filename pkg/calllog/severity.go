package calllog

import (
	"fmt"
	"log/slog"
	"strings"
)

// Severity is the level attached to an observable method.
type Severity int

const (
	Trace Severity = iota
	Debug
	Information
	Warning
	Error
	Critical
)

var severityNames = [...]string{"Trace", "Debug", "Information", "Warning", "Error", "Critical"}

// String returns the canonical name of s.
func (s Severity) String() string {
	if s < Trace || s > Critical {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return severityNames[s]
}

// Level maps s onto a slog level. Trace and Critical sit outside the
// built-in slog levels.
func (s Severity) Level() slog.Level {
	switch s {
	case Trace:
		return slog.LevelDebug - 4
	case Debug:
		return slog.LevelDebug
	case Information:
		return slog.LevelInfo
	case Warning:
		return slog.LevelWarn
	case Error:
		return slog.LevelError
	default:
		return slog.LevelError + 4
	}
}

// ParseSeverity parses a severity name case-insensitively.
// "Info" and "Warn" are accepted as aliases.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return Trace, nil
	case "debug":
		return Debug, nil
	case "information", "info":
		return Information, nil
	case "warning", "warn":
		return Warning, nil
	case "error":
		return Error, nil
	case "critical":
		return Critical, nil
	default:
		return Debug, fmt.Errorf("unknown severity %q", name)
	}
}
