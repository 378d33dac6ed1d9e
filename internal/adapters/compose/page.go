// Package compose assembles a page's render context from the walker/nav
// output and drives it through the Markdown Renderer and Template Registry.
package compose

import (
	"os"

	"github.com/tmoreland/bookweave/internal/core/entities"
	"github.com/tmoreland/bookweave/internal/core/usecases"
)

// highlightEnabled is always true: BookConfig has no separate toggle for
// syntax highlighting, only AllowRawHTML governs trust of raw markup.
const highlightEnabled = true

// PageComposer implements usecases.PageComposer.
type PageComposer struct {
	Registry usecases.TemplateRegistry
	Markdown usecases.MarkdownRenderer
}

// NewPageComposer creates a PageComposer.
func NewPageComposer(registry usecases.TemplateRegistry, md usecases.MarkdownRenderer) *PageComposer {
	return &PageComposer{Registry: registry, Markdown: md}
}

var _ usecases.PageComposer = (*PageComposer)(nil)

// RenderPage reads page.InputPath, renders it through the Markdown Renderer,
// and assembles a RenderContext for the "page.html" template, with prev/next
// looked up from nav.
func (c *PageComposer) RenderPage(page *entities.SourcePage, nav *entities.NavModel, cfg *entities.BookConfig) ([]byte, []usecases.Diagnostic, error) {
	source, err := os.ReadFile(page.InputPath)
	if err != nil {
		return nil, nil, &entities.IoError{Op: "read", Path: page.InputPath, Err: err}
	}

	content, diags := c.Markdown.Render(source, cfg.Markdown, highlightEnabled, cfg.HTML.AllowRawHTML)
	for i := range diags {
		diags[i].Path = page.OutputPath
	}

	prev, next := nav.PrevNext(page)
	ctx := entities.RenderContext{
		Title:       page.Title,
		Content:     content,
		OutputPath:  page.OutputPath,
		Prev:        prev,
		Next:        next,
		Nav:         nav,
		Book:        *cfg,
		HasIndex:    false,
		CurrentPath: page.OutputPath,
		RootPrefix:  entities.RootPrefixFor(page.OutputPath),
	}

	out, err := c.Registry.Render("page.html", ctx)
	if err != nil {
		return nil, diags, err
	}
	return []byte(out), diags, nil
}
