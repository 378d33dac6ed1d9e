// Package template implements the Template Registry: named templates
// resolved per-name from a user template directory, falling back to
// go:embed-backed defaults for any name the user hasn't overridden.
package template

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tmoreland/bookweave/internal/core/entities"
	"github.com/tmoreland/bookweave/internal/core/usecases"
)

//go:embed embedded/*.html embedded/css embedded/js
var embeddedFS embed.FS

// EmbeddedAssets returns the built-in template set (the default *.html
// templates plus the css/js subtrees). The Asset Copier mirrors its css/js
// subtrees into the output root when a build has no template directory, or
// when the template directory doesn't override a given subtree.
func EmbeddedAssets() fs.FS {
	sub, err := fs.Sub(embeddedFS, "embedded")
	if err != nil {
		// embedded is a compile-time constant directory; Sub only fails on a
		// malformed path, which can't happen here.
		panic(err)
	}
	return sub
}

// requiredNames are the templates every build must be able to resolve.
var requiredNames = []string{"page.html", "index.html", "sidebar.html", "header.html", "footer.html"}

// Registry implements usecases.TemplateRegistry.
type Registry struct {
	tmpl *template.Template
}

var _ usecases.TemplateRegistry = (*Registry)(nil)

// NewRegistry builds a Registry for the given user template directory
// (empty means "no overrides, use every embedded default"). Resolution is
// per name, never per directory: a user directory missing footer.html still
// gets the embedded footer, even though page.html and index.html are overridden.
func NewRegistry(templateDir string) (*Registry, error) {
	root := template.New("root")
	for _, name := range requiredNames {
		content, err := loadTemplate(templateDir, name)
		if err != nil {
			return nil, err
		}
		if _, err := root.New(name).Parse(content); err != nil {
			return nil, &entities.TemplateError{Kind: entities.TemplateParseFailed, Name: name, Err: err}
		}
	}
	return &Registry{tmpl: root}, nil
}

// Render executes the named template against ctx.
func (r *Registry) Render(name string, ctx any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, ctx); err != nil {
		// A {{template "x" .}} include naming a template that is not in the
		// set surfaces as html/template's ErrNoSuchTemplate.
		kind := entities.TemplateParseFailed
		var tmplErr *template.Error
		if errors.As(err, &tmplErr) && tmplErr.ErrorCode == template.ErrNoSuchTemplate {
			kind = entities.TemplateMissingPartial
		}
		return "", &entities.TemplateError{Kind: kind, Name: name, Err: err}
	}
	return buf.String(), nil
}

// loadTemplate resolves one named template: a user override, if present,
// otherwise the embedded default. A name absent from both is a fatal
// TemplateError::MissingPartial.
func loadTemplate(templateDir, name string) (string, error) {
	if templateDir != "" {
		userPath := filepath.Join(templateDir, name)
		if data, err := os.ReadFile(userPath); err == nil {
			return wrapDefine(name, data), nil
		}
	}

	data, err := embeddedFS.ReadFile("embedded/" + name)
	if err != nil {
		return "", &entities.TemplateError{Kind: entities.TemplateMissingPartial, Name: name, Err: err}
	}
	return string(data), nil
}

// wrapDefine ensures a user-supplied override defines the same named
// template the embedded default does, so {{template "header.html" .}}
// references inside page.html/index.html resolve to the override.
func wrapDefine(name string, data []byte) string {
	body := string(data)
	marker := "{{define \"" + name + "\"}}"
	if bytes.Contains(data, []byte(marker)) {
		return body
	}
	return marker + body + "{{end}}"
}
