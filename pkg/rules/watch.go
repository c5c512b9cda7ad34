package rules

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a FileSource when its file changes.
type Watcher struct {
	src  *FileSource
	base string
	fsw  *fsnotify.Watcher
}

// NewWatcher starts watching the directory of src. Editors often replace
// files by rename, so the directory is watched rather than the file.
func NewWatcher(src *FileSource) (*Watcher, error) {
	abs, err := filepath.Abs(src.Path())
	if err != nil {
		return nil, fmt.Errorf("resolve absolute path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{src: src, base: filepath.Base(abs), fsw: fsw}, nil
}

// Run reloads on every write, create or rename of the file until ctx is done.
// onReload, if set, receives the result of each reload. Run closes the
// watcher before returning.
func (w *Watcher) Run(ctx context.Context, onReload func(error)) error {
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != w.base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			err := w.src.Load()
			if onReload != nil {
				onReload(err)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if onReload != nil {
				onReload(fmt.Errorf("watch rule file: %w", err))
			}
		}
	}
}

// Watch is NewWatcher followed by Run.
func Watch(ctx context.Context, src *FileSource, onReload func(error)) error {
	w, err := NewWatcher(src)
	if err != nil {
		return err
	}
	return w.Run(ctx, onReload)
}
