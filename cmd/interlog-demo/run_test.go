package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierrors "github.com/Aman-CERP/interlog/internal/errors"
)

func runDemo(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stderr)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stderr.String(), err
}

func callLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, `"event":"call"`) {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestRun_BuiltInRules(t *testing.T) {
	// Given: a directory without appsettings.yaml
	t.Chdir(t.TempDir())

	// When: the demo runs once
	out, err := runDemo(t)

	// Then: the example rules select calls
	require.NoError(t, err)
	assert.Contains(t, out, `Method MyService.DoSomething was called`)
	assert.Contains(t, out, `Method MyService.DoSomethingElse was called`)
	assert.Contains(t, out, `{\"a\":1}`)
	assert.Contains(t, out, `{\"a\":2}`)
	assert.NotContains(t, out, `{\"a\":3}`)
	assert.NotContains(t, out, "MyService.DisableLogging")
}

func TestRun_RuleFileAndEnvOverride(t *testing.T) {
	// Given: a rule file that silences DoSomething and an env rule for ConditionalLogging
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Log": {"MyService.DoSomething": "{\"x\": 1}"}}`), 0o644))
	t.Setenv("INTERLOG_Log__MyService.ConditionalLogging", "3")

	// When: the demo runs with that file
	out, err := runDemo(t, "--rules", path)

	// Then: both layers apply
	require.NoError(t, err)
	assert.NotContains(t, out, "Method MyService.DoSomething was called")
	assert.Contains(t, out, `{\"a\":3}`)
	assert.NotContains(t, out, `{\"a\":1}`)
}

func TestRun_LevelFiltersSeverity(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := runDemo(t, "--level", "critical")

	require.NoError(t, err)
	for _, line := range callLines(out) {
		assert.Contains(t, line, "MyService.", "only Critical methods remain")
		assert.NotContains(t, line, "DoSomethingElse")
	}
	assert.Contains(t, out, "MyService.ListReturnType")
}

func TestRun_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{name: "unknown level", args: []string{"--level", "loud"}, code: ierrors.ErrCodeConfigInvalid},
		{name: "bad cache size", args: []string{"--cache-size", "0"}, code: ierrors.ErrCodeConfigInvalid},
		{name: "bad interval", args: []string{"--watch", "--interval", "0s"}, code: ierrors.ErrCodeConfigInvalid},
		{name: "missing rule file", args: []string{"--rules", "nope.yaml"}, code: ierrors.ErrCodeFileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())

			_, err := runDemo(t, tt.args...)

			require.Error(t, err)
			assert.Equal(t, tt.code, ierrors.GetCode(err))
		})
	}
}

func TestRun_WatchStopsWithContext(t *testing.T) {
	// Given: a rule file and a short-lived context
	dir := t.TempDir()
	path := filepath.Join(dir, "appsettings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Log:\n  MyService.Fetch: '{\"id\": \"other\"}'\n"), 0o644))
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	// When: the demo watches until the context ends
	err := run(ctx, &out, options{rulesPath: path, level: "trace", watch: true, interval: 50 * time.Millisecond, cacheSize: 4})

	// Then: it returns cleanly after at least one run
	require.NoError(t, err)
	assert.Contains(t, out.String(), "MyService.DoSomething")
	assert.NotContains(t, out.String(), "Method MyService.Fetch was called")
}
