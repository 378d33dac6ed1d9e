package entities

import "fmt"

// MarkdownFlavor selects the goldmark extension set the Markdown Renderer uses.
type MarkdownFlavor string

const (
	FlavorPlain MarkdownFlavor = "plain"
	FlavorGFM   MarkdownFlavor = "gfm"
	FlavorMDX   MarkdownFlavor = "mdx"
)

// Valid reports whether f is one of the three supported flavors.
func (f MarkdownFlavor) Valid() bool {
	switch f {
	case FlavorPlain, FlavorGFM, FlavorMDX:
		return true
	default:
		return false
	}
}

// BookMeta holds the book's identifying metadata, surfaced to every template.
type BookMeta struct {
	Title         string
	Description   string
	Authors       []string
	Language      string
	Logo          string
	RepositoryURL string
}

// HTMLOptions controls Markdown-to-HTML rendering behavior.
type HTMLOptions struct {
	AllowRawHTML  bool
	AdditionalCSS []string
	AdditionalJS  []string
	MathJax       bool
}

// SearchOptions controls the pagefind search-index driver.
type SearchOptions struct {
	Enabled           bool
	LimitResults      int
	BoostTitle        float64
	BoostHierarchy    float64
	BoostParagraph    float64
	HeadingSplitLevel int
}

// BookPaths holds the three expanded filesystem roots a build operates over.
type BookPaths struct {
	TemplateDir string
	InputRoot   string
	OutputRoot  string
}

// DevOptions holds the knobs the dev supervisor and server expose.
type DevOptions struct {
	DebounceMillis int
	Port           int
}

// BookConfig is the fully resolved, immutable configuration for a single
// build. It is produced once by the Config Resolver and read by every
// other component; nothing downstream of Resolve mutates it.
type BookConfig struct {
	Book     BookMeta
	Markdown MarkdownFlavor
	HTML     HTMLOptions
	Search   SearchOptions
	Paths    BookPaths
	Dev      DevOptions
}

// DefaultBookConfig returns the built-in defaults, the lowest layer in the
// Config Resolver's precedence rule.
func DefaultBookConfig() BookConfig {
	return BookConfig{
		Book: BookMeta{
			Title:    "My Book",
			Language: "en",
		},
		Markdown: FlavorGFM,
		HTML: HTMLOptions{
			AllowRawHTML: false,
			MathJax:      false,
		},
		Search: SearchOptions{
			Enabled:           true,
			LimitResults:      20,
			BoostTitle:        2.0,
			BoostHierarchy:    1.5,
			BoostParagraph:    1.0,
			HeadingSplitLevel: 2,
		},
		Paths: BookPaths{
			OutputRoot: "./dist",
		},
		Dev: DevOptions{
			DebounceMillis: 300,
			Port:           3000,
		},
	}
}

// Validate checks the invariants Resolve must enforce before returning a
// BookConfig: InputRoot is required and Markdown must be one of the three
// known flavors. OutputRoot is created on demand by C3/C7/C8, not checked here.
func (c BookConfig) Validate() error {
	if c.Paths.InputRoot == "" {
		return &ConfigError{Kind: ConfigMissingInput, Field: "paths.input", Err: fmt.Errorf("input root is required")}
	}
	if !c.Markdown.Valid() {
		return &ConfigError{Kind: ConfigInvalidValue, Field: "markdown.flavor", Err: fmt.Errorf("unknown flavor %q", c.Markdown)}
	}
	return nil
}
