// Package generate writes interceptor wrappers for scanned packages.
package generate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	ierrors "github.com/Aman-CERP/interlog/internal/errors"
	"github.com/Aman-CERP/interlog/internal/registry"
)

// Options configures a Generator.
type Options struct {
	// Suffix is appended to generated file names.
	Suffix string
	// TypeSuffix is appended to the owner name to form the wrapper type.
	TypeSuffix string
	// Workers bounds how many packages are processed at once.
	Workers int
	// IncludeTests scans _test.go files as well.
	IncludeTests bool
	// DryRun renders without touching the file system.
	DryRun bool
}

// File is one generated file.
type File struct {
	Path    string
	Owner   string
	Content []byte
	// Changed is false when the file already had this content.
	Changed bool
}

// Result reports what happened in one package directory.
type Result struct {
	Dir     string
	Package *registry.Package
	Files   []File
	Removed []string
}

// Generator runs the scan and emit pipeline.
type Generator struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Generator. Zero option fields take their defaults.
func New(opts Options, logger *slog.Logger) *Generator {
	if opts.Suffix == "" {
		opts.Suffix = registry.DefaultGeneratedSuffix
	}
	if opts.TypeSuffix == "" {
		opts.TypeSuffix = "Interceptor"
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{opts: opts, logger: logger}
}

// Generate processes every directory. All directories are attempted; the
// returned error joins the failures.
func (g *Generator) Generate(ctx context.Context, dirs []string) ([]Result, error) {
	results := make([]Result, len(dirs))
	var mu sync.Mutex
	var errs []error

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.Workers)
	for i, dir := range dirs {
		eg.Go(func() error {
			res, err := g.generateDir(ctx, dir)
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", dir, err))
				mu.Unlock()
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = eg.Wait()

	if len(errs) > 0 {
		sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
		return results, errors.Join(errs...)
	}
	return results, nil
}

func (g *Generator) generateDir(ctx context.Context, dir string) (Result, error) {
	res := Result{Dir: dir}

	lock, err := newDirLock(dir)
	if err != nil {
		return res, err
	}
	if !g.opts.DryRun {
		if err := lock.Lock(ctx); err != nil {
			return res, err
		}
		defer func() { _ = lock.Unlock() }()
	}

	pkg, err := registry.Scan(ctx, dir, registry.Options{
		IncludeTests:    g.opts.IncludeTests,
		GeneratedSuffix: g.opts.Suffix,
	})
	res.Package = pkg
	if err != nil {
		return res, err
	}

	owners := pkg.Observable()
	files := make([]File, len(owners))
	eg, _ := errgroup.WithContext(ctx)
	for i, owner := range owners {
		eg.Go(func() error {
			src, err := Render(pkg, owner, g.opts.TypeSuffix)
			if err != nil {
				return fmt.Errorf("render %s: %w", owner.Name, err)
			}
			files[i] = File{
				Path:    filepath.Join(dir, FileName(owner.Name, g.opts.Suffix)),
				Owner:   owner.Name,
				Content: src,
				Changed: true,
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return res, err
	}
	res.Files = files

	if g.opts.DryRun {
		return res, nil
	}

	keep := make(map[string]bool, len(files))
	for i := range res.Files {
		f := &res.Files[i]
		keep[f.Path] = true
		if old, err := os.ReadFile(f.Path); err == nil && bytes.Equal(old, f.Content) {
			f.Changed = false
			continue
		}
		if err := os.WriteFile(f.Path, f.Content, 0o644); err != nil {
			return res, ierrors.New(ierrors.ErrCodeWriteFailed, "write generated file", err).
				WithDetail("file", f.Path)
		}
		g.logger.Debug("wrote interceptor", slog.String("file", f.Path), slog.String("owner", f.Owner))
	}

	removed, err := g.prune(dir, keep)
	res.Removed = removed
	return res, err
}

// prune deletes generated files whose owner no longer has enabled methods.
func (g *Generator) prune(dir string, keep map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var removed []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), g.opts.Suffix) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if keep[path] {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil || !bytes.HasPrefix(data, []byte(Header)) {
			continue
		}
		if err := os.Remove(path); err != nil {
			return removed, ierrors.New(ierrors.ErrCodeWriteFailed, "remove stale generated file", err).
				WithDetail("file", path)
		}
		g.logger.Debug("removed stale interceptor", slog.String("file", path))
		removed = append(removed, path)
	}
	return removed, nil
}
