package dev

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFileWatcher_DetectsMarkdownWrite(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "page.md")
	require.NoError(t, os.WriteFile(path, []byte("# Hello"), 0o644))

	fw, err := NewFileWatcher(20 * time.Millisecond)
	require.NoError(t, err)
	defer fw.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := fw.Watch(ctx, root)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond) // let the watcher settle before writing
	require.NoError(t, os.WriteFile(path, []byte("# Hello again"), 0o644))

	select {
	case evt := <-events:
		require.Equal(t, "page.md", evt.Path)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a debounced change event")
	}
}

func TestFileWatcher_IgnoresNonMarkdown(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o644))

	fw, err := NewFileWatcher(20 * time.Millisecond)
	require.NoError(t, err)
	defer fw.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := fw.Watch(ctx, root)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("hi again"), 0o644))

	select {
	case evt := <-events:
		t.Fatalf("unexpected event for non-markdown file: %+v", evt)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestFileWatcher_ShouldIgnoreDir(t *testing.T) {
	fw := &FileWatcher{}
	root := "/book"

	require.True(t, fw.shouldIgnoreDir("/book/node_modules", root))
	require.True(t, fw.shouldIgnoreDir("/book/.git", root))
	require.False(t, fw.shouldIgnoreDir("/book/guide", root))
}

func TestFileWatcher_StopIsIdempotent(t *testing.T) {
	fw, err := NewFileWatcher(time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, fw.Stop())
	require.NoError(t, fw.Stop())
}
