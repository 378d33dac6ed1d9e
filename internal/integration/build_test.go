// Package integration exercises BuildBook end-to-end against a real
// filesystem tree, wiring every adapter exactly as cmd.BuildCommand does.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tmoreland/bookweave/internal/adapters/assets"
	"github.com/tmoreland/bookweave/internal/adapters/compose"
	"github.com/tmoreland/bookweave/internal/adapters/markdown"
	"github.com/tmoreland/bookweave/internal/adapters/nav"
	"github.com/tmoreland/bookweave/internal/adapters/template"
	"github.com/tmoreland/bookweave/internal/adapters/walker"
	"github.com/tmoreland/bookweave/internal/core/entities"
	"github.com/tmoreland/bookweave/internal/core/usecases"
)

func newBuild(t *testing.T) *usecases.BuildBook {
	t.Helper()
	registry, err := template.NewRegistry("")
	require.NoError(t, err)
	md := markdown.NewRenderer()
	return &usecases.BuildBook{
		Walker:   walker.NewWalker(),
		Nav:      nav.NewBuilder(),
		Assets:   assets.NewCopier(),
		Composer: compose.NewPageComposer(registry, md),
		Index:    compose.NewIndexComposer(registry, md),
		Workers:  4,
	}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readOutput(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, rel))
	require.NoError(t, err)
	return string(data)
}

func baseConfig(input, output string) *entities.BookConfig {
	cfg := entities.DefaultBookConfig()
	cfg.Paths.InputRoot = input
	cfg.Paths.OutputRoot = output
	cfg.Search.Enabled = false
	return &cfg
}

func TestScenario_SimpleTree(t *testing.T) {
	input, output := t.TempDir(), t.TempDir()
	writeFile(t, input, "index.md", "# Hello")
	writeFile(t, input, "guide/intro.md", "# Intro\n[next](../index.md)")

	build := newBuild(t)
	cfg := baseConfig(input, output)

	result, err := build.Execute(context.Background(), cfg)
	require.NoError(t, err)
	require.Empty(t, result.PageErrors)

	require.Contains(t, readOutput(t, output, "index.html"), "<h1>Hello</h1>")
	introHTML := readOutput(t, output, "guide/intro.html")
	require.Contains(t, introHTML, `href="../index.html"`)
}

func TestScenario_FlavorSwitch(t *testing.T) {
	table := "| a | b |\n|---|---|\n| 1 | 2 |\n"

	for _, tc := range []struct {
		flavor      entities.MarkdownFlavor
		wantTable   bool
		description string
	}{
		{entities.FlavorPlain, false, "plain has no GFM tables"},
		{entities.FlavorGFM, true, "gfm renders a table"},
	} {
		t.Run(tc.description, func(t *testing.T) {
			input, output := t.TempDir(), t.TempDir()
			writeFile(t, input, "note.md", table)

			build := newBuild(t)
			cfg := baseConfig(input, output)
			cfg.Markdown = tc.flavor

			_, err := build.Execute(context.Background(), cfg)
			require.NoError(t, err)

			html := readOutput(t, output, "note.html")
			if tc.wantTable {
				require.Contains(t, html, "<table>")
			} else {
				require.NotContains(t, html, "<table>")
			}
		})
	}
}

func TestScenario_HighlightFallback(t *testing.T) {
	input, output := t.TempDir(), t.TempDir()
	writeFile(t, input, "code.md", "```zzz\nfoo\n```\n")

	build := newBuild(t)
	cfg := baseConfig(input, output)

	result, err := build.Execute(context.Background(), cfg)
	require.NoError(t, err)
	require.Empty(t, result.PageErrors)

	html := readOutput(t, output, "code.html")
	require.Contains(t, html, "<pre><code")
	require.Contains(t, html, "foo")
	require.NotContains(t, html, "<span")
}

func TestScenario_RawHTMLGate(t *testing.T) {
	input, output := t.TempDir(), t.TempDir()
	writeFile(t, input, "page.md", "<script>alert(1)</script>")

	build := newBuild(t)

	cfg := baseConfig(input, output)
	cfg.HTML.AllowRawHTML = false
	_, err := build.Execute(context.Background(), cfg)
	require.NoError(t, err)
	require.Contains(t, readOutput(t, output, "page.html"), "&lt;script&gt;alert(1)&lt;/script&gt;")

	output2 := t.TempDir()
	cfg2 := baseConfig(input, output2)
	cfg2.HTML.AllowRawHTML = true
	_, err = build.Execute(context.Background(), cfg2)
	require.NoError(t, err)
	require.Contains(t, readOutput(t, output2, "page.html"), "<script>alert(1)</script>")
}

func TestScenario_SearchToolMissing(t *testing.T) {
	input, output := t.TempDir(), t.TempDir()
	writeFile(t, input, "index.md", "# Hello")

	registry, err := template.NewRegistry("")
	require.NoError(t, err)
	md := markdown.NewRenderer()

	build := &usecases.BuildBook{
		Walker:   walker.NewWalker(),
		Nav:      nav.NewBuilder(),
		Assets:   assets.NewCopier(),
		Composer: compose.NewPageComposer(registry, md),
		Index:    compose.NewIndexComposer(registry, md),
		Search:   missingSearchIndexer{},
		Workers:  4,
	}

	cfg := baseConfig(input, output)
	cfg.Search.Enabled = true

	_, err = build.Execute(context.Background(), cfg)
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(output, "pagefind"))
	require.True(t, os.IsNotExist(statErr))
}

type missingSearchIndexer struct{}

func (missingSearchIndexer) Index(context.Context, string, time.Duration) error {
	return &entities.SearchError{Kind: entities.SearchToolNotFound}
}
