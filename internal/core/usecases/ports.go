// Package usecases defines the ports every adapter implements and the
// BuildBook use case that wires them together for a single build.
package usecases

import (
	"context"
	"html/template"
	"time"

	"github.com/tmoreland/bookweave/internal/core/entities"
)

// CLIFlags carries the flags bound directly from the command line; these
// take precedence over every other configuration layer.
type CLIFlags struct {
	Input   string
	Output  string
	Config  string
	Watch   bool
	Serve   bool
	Port    int
	Verbose bool
}

// Diagnostic is a non-fatal, page-scoped problem surfaced during rendering,
// most commonly a HighlightError for one fenced code block.
type Diagnostic struct {
	Path string
	Err  error
}

// ConfigResolver merges CLI flags, environment variables, and on-disk config
// files into one validated BookConfig.
type ConfigResolver interface {
	Resolve(flags CLIFlags) (*entities.BookConfig, error)
}

// TemplateRegistry loads named templates from a user directory, falling back
// per-name to embedded defaults, and renders a context into a named template.
type TemplateRegistry interface {
	Render(name string, ctx any) (string, error)
}

// AssetCopier mirrors static assets from a template directory into the
// output root.
type AssetCopier interface {
	CopyStatic(templateDir, outputRoot string, additionalCSS, additionalJS []string) error
}

// SourceWalker enumerates Markdown files under an input root.
type SourceWalker interface {
	Walk(inputRoot string) ([]*entities.SourcePage, error)
}

// NavBuilder groups pages into sections and computes linear prev/next order.
type NavBuilder interface {
	Build(pages []*entities.SourcePage, rootSectionLabel string) *entities.NavModel
}

// MarkdownRenderer parses Markdown into HTML with syntax-highlighted fenced
// code and rewritten intra-doc links.
type MarkdownRenderer interface {
	Render(source []byte, flavor entities.MarkdownFlavor, highlight, allowRawHTML bool) (template.HTML, []Diagnostic)
}

// PageComposer builds a single page's render context and template output.
type PageComposer interface {
	RenderPage(page *entities.SourcePage, nav *entities.NavModel, cfg *entities.BookConfig) ([]byte, []Diagnostic, error)
}

// IndexComposer renders the book's home page: an explicit index.md, or a
// synthesized card grid.
type IndexComposer interface {
	RenderIndex(nav *entities.NavModel, cfg *entities.BookConfig, inputRoot string) ([]byte, error)
}

// SearchIndexer runs the external search indexer over a finished output tree.
type SearchIndexer interface {
	Index(ctx context.Context, outputRoot string, timeout time.Duration) error
}

// FileChangeEvent describes one debounced filesystem change.
type FileChangeEvent struct {
	Path string
	Op   string
}

// FileWatcher monitors an input root for Markdown changes, debounced.
type FileWatcher interface {
	Watch(ctx context.Context, rootPath string) (<-chan FileChangeEvent, error)
	Stop() error
}

// Broadcaster fans reload signals out to every subscribed server connection.
// Publish never blocks on a slow subscriber; subscribers with a full buffer
// simply miss that signal.
type Broadcaster interface {
	Publish()
	Subscribe() (ch <-chan struct{}, unsubscribe func())
}

// Logger is the structured logging port implemented by the JSON-to-stderr adapter.
type Logger interface {
	WithContext(ctx context.Context) Logger
	WithFields(keysAndValues ...any) Logger
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, err error, keysAndValues ...any)
}

// ProgressReporter surfaces build progress to the terminal.
type ProgressReporter interface {
	ReportProgress(step string, current, total int, message string)
	ReportError(err error)
	ReportSuccess(message string)
	ReportInfo(message string)
}
