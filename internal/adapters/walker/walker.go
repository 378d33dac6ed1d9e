// Package walker implements the Source Walker: recursive discovery of
// Markdown files under an input root, deriving each page's output path,
// section key, and title.
package walker

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmoreland/bookweave/internal/core/entities"
	"github.com/tmoreland/bookweave/internal/core/usecases"
)

// Walker implements usecases.SourceWalker.
type Walker struct{}

// NewWalker creates a Walker.
func NewWalker() *Walker { return &Walker{} }

var _ usecases.SourceWalker = (*Walker)(nil)

// Walk enumerates every .md file under inputRoot, skipping hidden files and
// directories (any path component starting with "."). SUMMARY.md is treated
// as ordinary content, not a special navigation source.
func (w *Walker) Walk(inputRoot string) ([]*entities.SourcePage, error) {
	var pages []*entities.SourcePage

	err := filepath.WalkDir(inputRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &entities.IoError{Op: "walk", Path: path, Err: err}
		}
		if path != inputRoot && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		rel, err := filepath.Rel(inputRoot, path)
		if err != nil {
			return &entities.IoError{Op: "walk", Path: path, Err: err}
		}
		rel = filepath.ToSlash(rel)

		title, err := extractTitle(path)
		if err != nil {
			return &entities.IoError{Op: "read", Path: path, Err: err}
		}

		pages = append(pages, &entities.SourcePage{
			InputPath:  path,
			OutputPath: strings.TrimSuffix(rel, ".md") + ".html",
			Title:      title,
			SectionKey: sectionKey(rel),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// sectionKey returns the top-level input directory for a root-relative,
// slash-separated path, or "" when the page sits directly under the input root.
func sectionKey(rel string) string {
	if idx := strings.IndexByte(rel, '/'); idx >= 0 {
		return rel[:idx]
	}
	return ""
}

// extractTitle reads the first H1 ("# Title") in the file; absent one, it
// falls back to the prettified filename stem.
func extractTitle(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	inFence := false
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "#")), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return entities.PrettifyKey(stem), nil
}
