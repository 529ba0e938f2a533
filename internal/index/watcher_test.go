package index

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 5 * time.Second
	tick    = 20 * time.Millisecond
)

type recorder struct {
	mu       sync.Mutex
	events   []string
	rebuilds atomic.Int32
	fail     bool
}

func (r *recorder) callback(kind, path string) {
	r.mu.Lock()
	r.events = append(r.events, kind+":"+path)
	r.mu.Unlock()
}

func (r *recorder) rebuild(context.Context) error {
	r.rebuilds.Add(1)
	if r.fail {
		return errors.New("boom")
	}
	return nil
}

func (r *recorder) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.events, event)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func startWatcher(t *testing.T, root string, rec *recorder) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, root, 50*time.Millisecond, quietLogger(), rec.rebuild, rec.callback) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
	time.Sleep(100 * time.Millisecond)
}

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestWatcher_NewFileTriggersRebuild(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	startWatcher(t, root, rec)

	write(t, filepath.Join(root, "new.md"), "# New")

	require.Eventually(t, func() bool { return rec.has("created:new.md") }, waitFor, tick)
	require.Eventually(t, func() bool { return rec.rebuilds.Load() > 0 }, waitFor, tick)
}

func TestWatcher_BurstCoalesces(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	startWatcher(t, root, rec)

	for _, name := range []string{"a.md", "b.md", "c.md"} {
		write(t, filepath.Join(root, name), "# "+name)
	}

	require.Eventually(t, func() bool { return rec.has("created:c.md") && rec.rebuilds.Load() > 0 }, waitFor, tick)
	time.Sleep(200 * time.Millisecond)
	assert.Less(t, int(rec.rebuilds.Load()), len(rec.snapshot()))
}

func TestWatcher_IgnoresNonMarkdownAndHidden(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	startWatcher(t, root, rec)

	write(t, filepath.Join(root, "image.png"), "x")
	write(t, filepath.Join(root, ".draft.md"), "# Draft")
	time.Sleep(300 * time.Millisecond)

	assert.Empty(t, rec.snapshot())
	assert.Zero(t, rec.rebuilds.Load())
}

func TestWatcher_NewDirWatched(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	startWatcher(t, root, rec)

	sub := filepath.Join(root, "subdir")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	time.Sleep(100 * time.Millisecond)
	write(t, filepath.Join(sub, "deep.md"), "# Deep")

	require.Eventually(t, func() bool { return rec.has("created:subdir/deep.md") }, waitFor, tick)
}

func TestWatcher_DeleteReported(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "del.md"), "# Delete Me")
	rec := &recorder{}
	startWatcher(t, root, rec)

	require.NoError(t, os.Remove(filepath.Join(root, "del.md")))

	require.Eventually(t, func() bool { return rec.has("deleted:del.md") }, waitFor, tick)
}

func TestWatcher_RenameReportsBothPaths(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "old.md"), "# Rename")
	rec := &recorder{}
	startWatcher(t, root, rec)

	require.NoError(t, os.Rename(filepath.Join(root, "old.md"), filepath.Join(root, "renamed.md")))

	require.Eventually(t, func() bool {
		return rec.has("deleted:old.md") && rec.has("created:renamed.md")
	}, waitFor, tick)
}

func TestWatcher_DirectoryMovedOutRebuilds(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	write(t, filepath.Join(root, "tech", "go.md"), "# Go")
	rec := &recorder{}
	startWatcher(t, root, rec)

	require.NoError(t, os.Rename(filepath.Join(root, "tech"), filepath.Join(outside, "tech")))

	require.Eventually(t, func() bool { return rec.rebuilds.Load() > 0 }, waitFor, tick)
}

func TestWatcher_RebuildErrorKeepsWatching(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{fail: true}
	startWatcher(t, root, rec)

	write(t, filepath.Join(root, "one.md"), "# One")
	require.Eventually(t, func() bool { return rec.rebuilds.Load() == 1 }, waitFor, tick)

	write(t, filepath.Join(root, "two.md"), "# Two")
	require.Eventually(t, func() bool { return rec.rebuilds.Load() == 2 }, waitFor, tick)
}

func TestWatcher_MissingRoot(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "absent"), 0, quietLogger(), nil, nil)
	assert.Error(t, err)
}
