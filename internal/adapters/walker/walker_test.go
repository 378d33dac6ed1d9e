package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalk_DiscoversMarkdownAndDerivesOutputPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.md", "# Home\n")
	writeFile(t, root, "guide/getting-started.md", "# Getting Started\n")

	pages, err := NewWalker().Walk(root)
	require.NoError(t, err)
	require.Len(t, pages, 2)

	byOutput := map[string]string{}
	for _, p := range pages {
		byOutput[p.OutputPath] = p.Title
	}
	require.Equal(t, "Home", byOutput["index.html"])
	require.Equal(t, "Getting Started", byOutput["guide/getting-started.html"])
}

func TestWalk_SectionKeyIsTopLevelDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.md", "# Home\n")
	writeFile(t, root, "guide/intro.md", "# Intro\n")

	pages, err := NewWalker().Walk(root)
	require.NoError(t, err)

	sections := map[string]string{}
	for _, p := range pages {
		sections[p.OutputPath] = p.SectionKey
	}
	require.Equal(t, "", sections["index.html"])
	require.Equal(t, "guide", sections["guide/intro.html"])
}

func TestWalk_SkipsHiddenFilesAndDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "visible.md", "# Visible\n")
	writeFile(t, root, ".hidden.md", "# Hidden\n")
	writeFile(t, root, ".git/config.md", "# Ignored\n")

	pages, err := NewWalker().Walk(root)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	require.Equal(t, "visible.html", pages[0].OutputPath)
}

func TestWalk_TitleFallsBackToPrettifiedStemWithoutH1(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "getting-started.md", "no heading here\n")

	pages, err := NewWalker().Walk(root)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	require.Equal(t, "Getting Started", pages[0].Title)
}

func TestWalk_IgnoresH1InsideFencedCodeBlock(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "snippet.md", "```\n# not a title\n```\n# Real Title\n")

	pages, err := NewWalker().Walk(root)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	require.Equal(t, "Real Title", pages[0].Title)
}

func TestWalk_SummaryMdIsOrdinaryContent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "SUMMARY.md", "# Summary\n")

	pages, err := NewWalker().Walk(root)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	require.Equal(t, "SUMMARY.html", pages[0].OutputPath)
}
