package watch

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"resumebuilder/internal/errors"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *errors.Logger {
	return errors.NewLoggerTo(io.Discard, slog.LevelError)
}

func waitCall(t *testing.T, calls <-chan struct{}) {
	t.Helper()
	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("onChange was not called")
	}
}

func TestFileWatcher_RerunsAfterSave(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "draft.yaml")
	require.NoError(t, os.WriteFile(file, []byte("name: Jane\n"), 0o644))

	calls := make(chan struct{}, 8)
	fw := NewFileWatcher(file, 20*time.Millisecond, func(ctx context.Context) error {
		calls <- struct{}{}
		// Failures are logged and watching continues
		return stderrors.New("render failed")
	}, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fw.Run(ctx) }()

	waitCall(t, calls)

	require.NoError(t, os.WriteFile(file, []byte("name: Janet\n"), 0o644))
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(file, later, later))

	waitCall(t, calls)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestFileWatcher_MissingDirectory(t *testing.T) {
	fw := NewFileWatcher(filepath.Join(t.TempDir(), "nope", "draft.yaml"), 0, func(ctx context.Context) error {
		return nil
	}, quietLogger())

	err := fw.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch")
}

func TestFileWatcher_ShouldProcessEvent(t *testing.T) {
	fw := NewFileWatcher("/tmp/drafts/draft.yaml", 0, nil, quietLogger())
	assert.Equal(t, DefaultDebounce, fw.debounce)

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: "/tmp/drafts/draft.yaml", Op: fsnotify.Write}, true},
		{"create by rename save", fsnotify.Event{Name: "/tmp/drafts/draft.yaml", Op: fsnotify.Create}, true},
		{"rename", fsnotify.Event{Name: "/tmp/drafts/draft.yaml", Op: fsnotify.Rename}, true},
		{"chmod only", fsnotify.Event{Name: "/tmp/drafts/draft.yaml", Op: fsnotify.Chmod}, false},
		{"other file", fsnotify.Event{Name: "/tmp/drafts/other.yaml", Op: fsnotify.Write}, false},
		{"editor swap file", fsnotify.Event{Name: "/tmp/drafts/.draft.yaml.swp", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fw.shouldProcessEvent(tt.event))
		})
	}
}
