package generate

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ierrors "github.com/Aman-CERP/interlog/internal/errors"
)

// recursiveSuffix marks a pattern that also covers every package below it.
const recursiveSuffix = "/..."

// ExpandDirs resolves directory patterns into package directories. A plain
// directory is kept as given. A pattern ending in "/..." expands to every
// directory below it that holds Go source files, skipping testdata, vendor,
// hidden and underscore directories and nested modules the way the go tool
// does. The result is sorted and free of duplicates.
func ExpandDirs(ctx context.Context, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		dir = filepath.Clean(dir)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, p := range patterns {
		root, recursive := strings.CutSuffix(filepath.ToSlash(p), recursiveSuffix)
		if p == "..." {
			root, recursive = ".", true
		}
		if !recursive {
			add(p)
			continue
		}
		if root == "" {
			root = "/"
		}
		root = filepath.FromSlash(root)

		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			return nil, ierrors.New(ierrors.ErrCodeFileNotFound, "pattern root is not a directory", err).
				WithDetail("pattern", p)
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil || !d.IsDir() {
				return nil
			}
			if path != root && skipDir(path, d.Name()) {
				return filepath.SkipDir
			}
			if hasGoFiles(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(dirs)
	return dirs, nil
}

func skipDir(path, name string) bool {
	switch {
	case name == "testdata", name == "vendor":
		return true
	case strings.HasPrefix(name, "."), strings.HasPrefix(name, "_"):
		return true
	}
	_, err := os.Stat(filepath.Join(path, "go.mod"))
	return err == nil
}

func hasGoFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go") {
			return true
		}
	}
	return false
}
