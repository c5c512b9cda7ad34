package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatForCLI(t *testing.T) {
	err := New(ErrCodeConstructorMissing, "Service has no constructor", nil).
		WithDetail("owner", "Service").
		WithSuggestion("declare func NewService() *Service")

	out := FormatForCLI(err)

	assert.Contains(t, out, "Error: [ERR_402_CONSTRUCTOR_MISSING] Service has no constructor")
	assert.Contains(t, out, "owner: Service")
	assert.Contains(t, out, "Hint: declare func NewService() *Service")
	assert.Contains(t, out, "Code: ERR_402_CONSTRUCTOR_MISSING")
}

func TestFormatForCLI_PlainError(t *testing.T) {
	out := FormatForCLI(errors.New("boom"))

	assert.Contains(t, out, "Error: boom")
	assert.Contains(t, out, "Code: ERR_501_INTERNAL")
	assert.Equal(t, "", FormatForCLI(nil))
}

func TestFormatJSON(t *testing.T) {
	err := New(ErrCodeRuleInvalid, "fragment is not JSON", errors.New("unexpected token")).
		WithDetail("key", "Log:Service.Run:0")

	data, ferr := FormatJSON(err)
	require.NoError(t, ferr)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "ERR_103_RULE_INVALID", got["code"])
	assert.Equal(t, "CONFIG", got["category"])
	assert.Equal(t, "WARNING", got["severity"])
	assert.Equal(t, "unexpected token", got["cause"])
	assert.Equal(t, map[string]any{"key": "Log:Service.Run:0"}, got["details"])
}

func TestLogAttrs(t *testing.T) {
	assert.Nil(t, LogAttrs(nil))

	plain := LogAttrs(errors.New("plain"))
	require.Len(t, plain, 1)
	assert.Equal(t, "error", plain[0].Key)

	wrapped := fmt.Errorf("load: %w", New(ErrCodeConfigInvalid, "bad", nil).WithDetail("path", "a.yaml"))
	attrs := LogAttrs(wrapped)

	keys := make(map[string]string, len(attrs))
	for _, a := range attrs {
		keys[a.Key] = a.Value.String()
	}
	assert.Equal(t, "ERR_102_CONFIG_INVALID", keys["error_code"])
	assert.Equal(t, "a.yaml", keys["detail_path"])
	assert.Equal(t, "load: [ERR_102_CONFIG_INVALID] bad", keys["error"])
}
