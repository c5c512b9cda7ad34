package generate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierrors "github.com/Aman-CERP/interlog/internal/errors"
)

func TestExpandDirs(t *testing.T) {
	// Given: a tree with packages and directories the go tool ignores
	root := t.TempDir()
	for _, f := range []string{
		"a.go",
		"svc/svc.go",
		"svc/inner/inner.go",
		"only_tests/x_test.go",
		"testdata/fixture.go",
		"vendor/dep/dep.go",
		".hidden/h.go",
		"_skip/s.go",
		"nested/go.mod",
		"nested/n.go",
		"empty/README.md",
	} {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("package x\n"), 0o644))
	}

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{
			name:     "recursive",
			patterns: []string{root + "/..."},
			want:     []string{root, filepath.Join(root, "svc"), filepath.Join(root, "svc", "inner")},
		},
		{
			name:     "plain directory kept as given",
			patterns: []string{filepath.Join(root, "empty")},
			want:     []string{filepath.Join(root, "empty")},
		},
		{
			name:     "duplicates removed",
			patterns: []string{filepath.Join(root, "svc"), filepath.Join(root, "svc") + "/..."},
			want:     []string{filepath.Join(root, "svc"), filepath.Join(root, "svc", "inner")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// When: the patterns are expanded
			got, err := ExpandDirs(context.Background(), tt.patterns)

			// Then: only Go package directories remain
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandDirs_DotPattern(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg", "p.go"), []byte("package pkg\n"), 0o644))
	t.Chdir(root)

	got, err := ExpandDirs(context.Background(), []string{"./..."})

	require.NoError(t, err)
	assert.Equal(t, []string{"pkg"}, got)
}

func TestExpandDirs_MissingRoot(t *testing.T) {
	_, err := ExpandDirs(context.Background(), []string{filepath.Join(t.TempDir(), "nope") + "/..."})

	require.Error(t, err)
	assert.Equal(t, ierrors.ErrCodeFileNotFound, ierrors.GetCode(err))
}
