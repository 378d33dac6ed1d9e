package compose

import (
	"html/template"
	"os"
	"path/filepath"

	"github.com/tmoreland/bookweave/internal/core/entities"
	"github.com/tmoreland/bookweave/internal/core/usecases"
)

// IndexComposer implements usecases.IndexComposer.
type IndexComposer struct {
	Registry usecases.TemplateRegistry
	Markdown usecases.MarkdownRenderer
}

// NewIndexComposer creates an IndexComposer.
func NewIndexComposer(registry usecases.TemplateRegistry, md usecases.MarkdownRenderer) *IndexComposer {
	return &IndexComposer{Registry: registry, Markdown: md}
}

var _ usecases.IndexComposer = (*IndexComposer)(nil)

// indexContext is the value passed to the "index.html" template: either
// Content from a rendered index.md, or a synthesized card grid grouped by
// section, never both.
type indexContext struct {
	Book        entities.BookConfig
	Nav         *entities.NavModel
	Content     template.HTML
	Groups      []cardGroup
	HasIndex    bool // true when Content comes from an explicit index.md
	CurrentPath string
	// RootPrefix is always "" for the index page: index.html always sits at
	// the output root, so it never needs a relative climb.
	RootPrefix string
}

// cardGroup is one Section's worth of cards on the synthesized home page,
// per §4.8's "one group per Section" rule.
type cardGroup struct {
	Title string
	Cards []indexCard
}

type indexCard struct {
	Title       string
	Href        string
	Description string
}

// RenderIndex renders an explicit index.md at the input root if present,
// otherwise synthesizes a card-grid home page with one group per Section.
func (c *IndexComposer) RenderIndex(nav *entities.NavModel, cfg *entities.BookConfig, inputRoot string) ([]byte, error) {
	indexPath := filepath.Join(inputRoot, "index.md")
	data, err := os.ReadFile(indexPath)
	switch {
	case err == nil:
		content, _ := c.Markdown.Render(data, cfg.Markdown, highlightEnabled, cfg.HTML.AllowRawHTML)
		return c.render(indexContext{Book: *cfg, Nav: nav, Content: content, HasIndex: true, CurrentPath: "index.html"})
	case os.IsNotExist(err):
		return c.render(indexContext{Book: *cfg, Nav: nav, Groups: groupsFrom(nav), CurrentPath: "index.html"})
	default:
		return nil, &entities.IoError{Op: "read", Path: indexPath, Err: err}
	}
}

func (c *IndexComposer) render(ctx indexContext) ([]byte, error) {
	out, err := c.Registry.Render("index.html", ctx)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

func groupsFrom(nav *entities.NavModel) []cardGroup {
	var groups []cardGroup
	for _, section := range nav.Sections {
		var cards []indexCard
		for _, page := range section.Pages {
			cards = append(cards, indexCard{Title: page.Title, Href: page.OutputPath})
		}
		groups = append(groups, cardGroup{Title: section.Title, Cards: cards})
	}
	return groups
}
