package search

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tmoreland/bookweave/internal/core/entities"
)

func fakeBinary(t *testing.T, name, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake binary scripts are POSIX shell only")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return dir
}

func TestIndex_ToolNotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	err := NewIndexer().Index(context.Background(), t.TempDir(), time.Second)
	require.Error(t, err)
	var searchErr *entities.SearchError
	require.ErrorAs(t, err, &searchErr)
	require.Equal(t, entities.SearchToolNotFound, searchErr.Kind)
}

func TestIndex_Success(t *testing.T) {
	fakeBinary(t, "pagefind", "exit 0\n")
	err := NewIndexer().Index(context.Background(), t.TempDir(), time.Second)
	require.NoError(t, err)
}

func TestIndex_NonZeroExit(t *testing.T) {
	fakeBinary(t, "pagefind", "echo boom 1>&2\nexit 1\n")
	err := NewIndexer().Index(context.Background(), t.TempDir(), time.Second)
	require.Error(t, err)
	var searchErr *entities.SearchError
	require.ErrorAs(t, err, &searchErr)
	require.Equal(t, entities.SearchIndexingFailed, searchErr.Kind)
	require.Equal(t, 1, searchErr.ExitCode)
	require.Contains(t, searchErr.Stderr, "boom")
}

func TestIndex_Timeout(t *testing.T) {
	fakeBinary(t, "pagefind", "sleep 5\n")
	err := NewIndexer().Index(context.Background(), t.TempDir(), 50*time.Millisecond)
	require.Error(t, err)
	var searchErr *entities.SearchError
	require.ErrorAs(t, err, &searchErr)
	require.Equal(t, entities.SearchTimeout, searchErr.Kind)
}
