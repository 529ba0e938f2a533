package index

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a watcher-driven rebuild.
const DefaultDebounce = 200 * time.Millisecond

// EventCallback is called for every Markdown file change seen by Watch.
// kind is one of "created", "updated", "deleted"; path is slash separated
// and relative to the content root.
type EventCallback func(kind string, path string)

// RebuildFunc rebuilds the collection and index from the content root.
type RebuildFunc func(ctx context.Context) error

type watcher struct {
	fsw     *fsnotify.Watcher
	root    string
	logger  *slog.Logger
	rebuild RebuildFunc
	notify  EventCallback

	debounce time.Duration
	timer    *time.Timer
}

// Watch reports Markdown changes under root to cb (if non-nil) and calls
// rebuild once the tree has been quiet for debounce, so a burst of edits
// costs one rebuild. It blocks until ctx is cancelled.
//
// Directories created while watching are added on the fly and the Markdown
// files already inside them are reported as created. Hidden files and
// directories are ignored.
func Watch(ctx context.Context, root string, debounce time.Duration, logger *slog.Logger, rebuild RebuildFunc, cb EventCallback) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	defer fsw.Close()

	w := &watcher{
		fsw:      fsw,
		root:     root,
		logger:   logger,
		rebuild:  rebuild,
		notify:   cb,
		debounce: debounce,
	}
	if err := w.addTree(root); err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	logger.Info("watcher: started", slog.String("root", root))
	return w.loop(ctx)
}

func (w *watcher) loop(ctx context.Context) error {
	defer func() {
		if w.timer != nil {
			w.timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher: stopped")
			return nil

		case <-w.fired():
			w.timer = nil
			if w.rebuild == nil {
				continue
			}
			if err := w.rebuild(ctx); err != nil {
				w.logger.Warn("watcher: rebuild failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher: error", slog.String("error", err.Error()))
		}
	}
}

// fired returns the pending rebuild timer channel, or nil when no rebuild
// is scheduled.
func (w *watcher) fired() <-chan time.Time {
	if w.timer == nil {
		return nil
	}
	return w.timer.C
}

func (w *watcher) schedule() {
	if w.timer == nil {
		w.timer = time.NewTimer(w.debounce)
		return
	}
	w.timer.Reset(w.debounce)
}

func (w *watcher) handle(ev fsnotify.Event) {
	if strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			w.newDir(ev.Name)
			return
		}
	}
	if !strings.HasSuffix(ev.Name, ".md") {
		// A directory moved or deleted takes its posts with it.
		if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
			_ = w.fsw.Remove(ev.Name)
			w.logger.Debug("watcher: path gone", slog.String("path", ev.Name))
			w.schedule()
		}
		return
	}

	switch {
	case ev.Has(fsnotify.Create):
		w.changed("created", ev.Name)
	case ev.Has(fsnotify.Write):
		w.changed("updated", ev.Name)
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		// Rename fires on the old path; the new one arrives as Create.
		w.changed("deleted", ev.Name)
	}
}

func (w *watcher) newDir(dir string) {
	if err := w.addTree(dir); err != nil {
		w.logger.Warn("watcher: add new dir failed",
			slog.String("path", dir),
			slog.String("error", err.Error()))
	}
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() && strings.HasSuffix(p, ".md") {
			w.changed("created", p)
		}
		return nil
	})
}

func (w *watcher) changed(kind, abs string) {
	rel, err := filepath.Rel(w.root, abs)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	w.logger.Debug("watcher: change", slog.String("path", rel), slog.String("op", kind))
	if w.notify != nil {
		w.notify(kind, rel)
	}
	w.schedule()
}

// addTree watches dir and every non-hidden directory below it.
func (w *watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case !d.IsDir():
			return nil
		case p != dir && strings.HasPrefix(d.Name(), "."):
			return filepath.SkipDir
		}
		return w.fsw.Add(p)
	})
}
