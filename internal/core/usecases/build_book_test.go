package usecases

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tmoreland/bookweave/internal/core/entities"
)

type fakeWalker struct {
	pages []*entities.SourcePage
	err   error
}

func (f *fakeWalker) Walk(string) ([]*entities.SourcePage, error) { return f.pages, f.err }

type fakeNavBuilder struct{}

func (fakeNavBuilder) Build(pages []*entities.SourcePage, _ string) *entities.NavModel {
	return &entities.NavModel{Linear: pages}
}

type fakeAssetCopier struct{ err error }

func (f fakeAssetCopier) CopyStatic(string, string, []string, []string) error { return f.err }

type fakeComposer struct {
	failFor map[string]error
}

func (f fakeComposer) RenderPage(page *entities.SourcePage, _ *entities.NavModel, _ *entities.BookConfig) ([]byte, []Diagnostic, error) {
	if err, ok := f.failFor[page.OutputPath]; ok {
		return nil, nil, err
	}
	return []byte("<html>" + page.Title + "</html>"), nil, nil
}

type fakeIndexComposer struct{}

func (fakeIndexComposer) RenderIndex(*entities.NavModel, *entities.BookConfig, string) ([]byte, error) {
	return []byte("<html>index</html>"), nil
}

type fakeSearchIndexer struct{ called bool }

func (f *fakeSearchIndexer) Index(context.Context, string, time.Duration) error {
	f.called = true
	return nil
}

func newTestConfig(t *testing.T) *entities.BookConfig {
	t.Helper()
	cfg := entities.DefaultBookConfig()
	cfg.Paths.InputRoot = t.TempDir()
	cfg.Paths.OutputRoot = t.TempDir()
	return &cfg
}

func TestBuildBook_Execute_WritesPagesAndIndex(t *testing.T) {
	cfg := newTestConfig(t)
	pages := []*entities.SourcePage{
		{OutputPath: "a.html", Title: "A"},
		{OutputPath: "guide/b.html", Title: "B"},
	}
	search := &fakeSearchIndexer{}

	bb := &BuildBook{
		Walker:   &fakeWalker{pages: pages},
		Nav:      fakeNavBuilder{},
		Assets:   fakeAssetCopier{},
		Composer: fakeComposer{},
		Index:    fakeIndexComposer{},
		Search:   search,
	}

	result, err := bb.Execute(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, 3, result.PagesWritten) // 2 pages + index
	require.Empty(t, result.PageErrors)
	require.True(t, search.called)

	require.FileExists(t, filepath.Join(cfg.Paths.OutputRoot, "a.html"))
	require.FileExists(t, filepath.Join(cfg.Paths.OutputRoot, "guide", "b.html"))
	require.FileExists(t, filepath.Join(cfg.Paths.OutputRoot, "index.html"))
}

func TestBuildBook_Execute_PageFailureDoesNotAbortBuild(t *testing.T) {
	cfg := newTestConfig(t)
	pages := []*entities.SourcePage{
		{OutputPath: "a.html", Title: "A"},
		{OutputPath: "b.html", Title: "B"},
	}

	bb := &BuildBook{
		Walker:   &fakeWalker{pages: pages},
		Nav:      fakeNavBuilder{},
		Assets:   fakeAssetCopier{},
		Composer: fakeComposer{failFor: map[string]error{"a.html": &entities.TemplateError{Kind: entities.TemplateMissingPartial, Name: "sidebar"}}},
		Index:    fakeIndexComposer{},
	}

	result, err := bb.Execute(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, result.PageErrors, 1)
	require.Equal(t, 2, result.PagesWritten) // b.html + index, a.html skipped

	require.NoFileExists(t, filepath.Join(cfg.Paths.OutputRoot, "a.html"))
	require.FileExists(t, filepath.Join(cfg.Paths.OutputRoot, "b.html"))
}

func TestBuildBook_Execute_WalkFailureIsFatal(t *testing.T) {
	cfg := newTestConfig(t)
	bb := &BuildBook{
		Walker: &fakeWalker{err: &entities.IoError{Op: "read", Path: cfg.Paths.InputRoot, Err: os.ErrNotExist}},
		Nav:    fakeNavBuilder{},
	}

	_, err := bb.Execute(context.Background(), cfg)
	require.Error(t, err)
}

func TestBuildBook_Execute_ZeroPages(t *testing.T) {
	cfg := newTestConfig(t)
	bb := &BuildBook{
		Walker:   &fakeWalker{},
		Nav:      fakeNavBuilder{},
		Assets:   fakeAssetCopier{},
		Composer: fakeComposer{},
		Index:    fakeIndexComposer{},
	}

	result, err := bb.Execute(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, 1, result.PagesWritten) // just the index
}
