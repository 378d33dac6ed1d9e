// Package assets implements the Asset Copier: mirroring the
// css/js/img/components subtrees from the template directory (or the
// embedded defaults) into the output root, plus additional-css/js glob matches.
package assets

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tmoreland/bookweave/internal/adapters/fsio"
	"github.com/tmoreland/bookweave/internal/adapters/template"
	"github.com/tmoreland/bookweave/internal/core/entities"
	"github.com/tmoreland/bookweave/internal/core/usecases"
)

// subtrees are the only directories mirrored into the output root; anything
// else in the template directory (partials, markdown fixtures) is ignored.
var subtrees = []string{"css", "js", "img", "components"}

// Copier implements usecases.AssetCopier.
type Copier struct{}

// NewCopier creates a Copier.
func NewCopier() *Copier { return &Copier{} }

var _ usecases.AssetCopier = (*Copier)(nil)

// CopyStatic mirrors each of css/js/img/components, resolved per subtree
// (a template directory missing "img" still gets the embedded img set, the
// same per-name fallback the Template Registry applies to page/header/etc.),
// then copies any AdditionalCSS/AdditionalJS glob matches found under the
// template directory.
func (c *Copier) CopyStatic(templateDir, outputRoot string, additionalCSS, additionalJS []string) error {
	embedded := template.EmbeddedAssets()

	for _, subtree := range subtrees {
		src, err := resolveSubtreeFS(templateDir, embedded, subtree)
		if err != nil {
			return err
		}
		if src == nil {
			continue
		}
		if err := copyFSTree(src, filepath.Join(outputRoot, subtree)); err != nil {
			return err
		}
	}

	if err := copyGlobMatches(templateDir, outputRoot, additionalCSS); err != nil {
		return err
	}
	return copyGlobMatches(templateDir, outputRoot, additionalJS)
}

// resolveSubtreeFS returns nil, nil when neither the template directory nor
// the embedded set has the subtree; that subtree is simply skipped.
func resolveSubtreeFS(templateDir string, embedded fs.FS, subtree string) (fs.FS, error) {
	if templateDir != "" {
		dir := filepath.Join(templateDir, subtree)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return os.DirFS(dir), nil
		}
	}
	if info, err := fs.Stat(embedded, subtree); err == nil && info.IsDir() {
		sub, err := fs.Sub(embedded, subtree)
		if err != nil {
			return nil, &entities.IoError{Op: "read", Path: subtree, Err: err}
		}
		return sub, nil
	}
	return nil, nil
}

// copyFSTree mirrors every regular file in src into destRoot, preserving
// relative paths. Overwriting an existing file is the expected idempotent
// behavior of a repeated build.
func copyFSTree(src fs.FS, destRoot string) error {
	return fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &entities.IoError{Op: "walk", Path: path, Err: err}
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(src, path)
		if err != nil {
			return &entities.IoError{Op: "read", Path: path, Err: err}
		}
		dest := filepath.Join(destRoot, filepath.FromSlash(path))
		return fsio.WriteFile(dest, data, 0o644)
	})
}

// copyGlobMatches walks templateDir and copies every file whose
// slash-separated relative path matches one of patterns, preserving
// relative structure under outputRoot. A nil or empty templateDir with
// patterns configured yields no matches rather than an error.
func copyGlobMatches(templateDir, outputRoot string, patterns []string) error {
	if templateDir == "" || len(patterns) == 0 {
		return nil
	}
	return filepath.WalkDir(templateDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return &entities.IoError{Op: "walk", Path: path, Err: err}
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(templateDir, path)
		if err != nil {
			return &entities.IoError{Op: "walk", Path: path, Err: err}
		}
		rel = filepath.ToSlash(rel)
		if !entities.MatchAny(rel, patterns) {
			return nil
		}
		return fsio.CopyFile(path, filepath.Join(outputRoot, rel))
	})
}
