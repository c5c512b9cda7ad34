package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

// isolate keeps user config and environment overrides out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, name := range []string{"SUFFIX", "TYPE_SUFFIX", "WORKERS", "INCLUDE_TESTS", "LOG_LEVEL", "RULES_FILES"} {
		t.Setenv("INTERLOG_"+name, "")
	}
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

const serviceSrc = `package svc

type Service struct{}

func NewService() *Service { return &Service{} }

//interlog:observe severity=Warning
func (s *Service) Run(job string) error { return nil }

//interlog:observe disabled
func (s *Service) Stop() {}
`
