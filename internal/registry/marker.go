package registry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Aman-CERP/interlog/pkg/calllog"
)

type marker struct {
	severity calllog.Severity
	disabled bool
}

// isDirective reports whether a comment line is an observe directive.
func isDirective(line string) bool {
	rest, ok := strings.CutPrefix(line, Directive)
	return ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t')
}

// parseMarker parses the options of a directive line.
func parseMarker(line string) (marker, error) {
	m := marker{severity: calllog.Debug}
	rest := strings.TrimPrefix(line, Directive)

	seen := make(map[string]bool)
	for _, opt := range strings.Fields(rest) {
		key, val, hasVal := strings.Cut(opt, "=")
		key = strings.ToLower(key)
		if seen[key] {
			return m, fmt.Errorf("option %q given twice", key)
		}
		seen[key] = true

		switch key {
		case "severity":
			sev, err := calllog.ParseSeverity(val)
			if err != nil || !hasVal {
				return m, fmt.Errorf("invalid severity %q", val)
			}
			m.severity = sev
		case "disabled":
			if !hasVal {
				m.disabled = true
				continue
			}
			b, err := strconv.ParseBool(val)
			if err != nil {
				return m, fmt.Errorf("invalid disabled value %q", val)
			}
			m.disabled = b
		default:
			return m, fmt.Errorf("unknown option %q", key)
		}
	}
	return m, nil
}
