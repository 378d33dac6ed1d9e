package usecases

import (
	"context"
	"path/filepath"
	"time"

	"github.com/tmoreland/bookweave/internal/adapters/fsio"
	"github.com/tmoreland/bookweave/internal/core/entities"
)

// BuildBook orchestrates a single build: walk, nav, assets, per-page render
// (parallel), index, search. It is the use case both the one-shot build
// command and the dev supervisor's rebuilder invoke.
type BuildBook struct {
	Walker   SourceWalker
	Nav      NavBuilder
	Assets   AssetCopier
	Composer PageComposer
	Index    IndexComposer
	Search   SearchIndexer
	Logger   Logger
	Progress ProgressReporter

	// Workers caps page-render concurrency; the effective pool size is
	// min(8, Workers, number of pages).
	Workers int

	// SearchTimeout bounds the search-indexer subprocess; zero or a negative
	// value means a 60s default.
	SearchTimeout time.Duration
}

// BuildResult summarizes one build: how many pages were written, the
// per-block highlight diagnostics collected across all pages in submission
// order, and any page-level errors that were skipped rather than aborting
// the whole build (each is a TemplateError or IoError for that one page).
type BuildResult struct {
	PagesWritten int
	Diagnostics  []Diagnostic
	PageErrors   []error
}

type pageJob struct {
	index int
	page  *entities.SourcePage
}

type pageResult struct {
	index int
	data  []byte
	diags []Diagnostic
	err   error
}

// Execute runs the full pipeline: walk, nav, assets, per-page render, index,
// search. It assumes cfg has already been resolved by the caller. A non-nil
// error here means a fatal, whole-build failure (walk or asset copy);
// per-page failures are reported in BuildResult.PageErrors instead.
func (b *BuildBook) Execute(ctx context.Context, cfg *entities.BookConfig) (*BuildResult, error) {
	pages, err := b.Walker.Walk(cfg.Paths.InputRoot)
	if err != nil {
		return nil, err
	}

	nav := b.Nav.Build(pages, "Introduction")

	if err := b.Assets.CopyStatic(cfg.Paths.TemplateDir, cfg.Paths.OutputRoot, cfg.HTML.AdditionalCSS, cfg.HTML.AdditionalJS); err != nil {
		return nil, err
	}

	result := b.renderPages(ctx, pages, nav, cfg)

	indexData, err := b.Index.RenderIndex(nav, cfg, cfg.Paths.InputRoot)
	if err != nil {
		result.PageErrors = append(result.PageErrors, err)
	} else {
		path := filepath.Join(cfg.Paths.OutputRoot, "index.html")
		if err := fsio.WriteFile(path, indexData, 0o644); err != nil {
			result.PageErrors = append(result.PageErrors, err)
		} else {
			result.PagesWritten++
		}
	}

	if cfg.Search.Enabled && b.Search != nil {
		timeout := b.SearchTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		if err := b.Search.Index(ctx, cfg.Paths.OutputRoot, timeout); err != nil {
			// Non-fatal: logged at warn, never returned as a build failure.
			if b.Logger != nil {
				b.Logger.Warn("search indexing failed", "error", err.Error())
			}
		}
	}

	return result, nil
}

func (b *BuildBook) renderPages(ctx context.Context, pages []*entities.SourcePage, nav *entities.NavModel, cfg *entities.BookConfig) *BuildResult {
	result := &BuildResult{}
	if len(pages) == 0 {
		return result
	}

	numWorkers := b.Workers
	if numWorkers <= 0 || numWorkers > 8 {
		numWorkers = 8
	}
	if numWorkers > len(pages) {
		numWorkers = len(pages)
	}

	jobCh := make(chan pageJob, len(pages))
	resultCh := make(chan pageResult, len(pages))

	for w := 0; w < numWorkers; w++ {
		go func() {
			for job := range jobCh {
				data, diags, err := b.Composer.RenderPage(job.page, nav, cfg)
				resultCh <- pageResult{index: job.index, data: data, diags: diags, err: err}
			}
		}()
	}

	for i, page := range pages {
		jobCh <- pageJob{index: i, page: page}
	}
	close(jobCh)

	// Indexed by submission order so diagnostics and writes are deterministic
	// regardless of which worker finishes first.
	results := make([]pageResult, len(pages))
	for range pages {
		r := <-resultCh
		results[r.index] = r
	}

	for i, r := range results {
		result.Diagnostics = append(result.Diagnostics, r.diags...)
		if r.err != nil {
			result.PageErrors = append(result.PageErrors, r.err)
			if b.Progress != nil {
				b.Progress.ReportError(r.err)
			}
			continue
		}
		path := filepath.Join(cfg.Paths.OutputRoot, pages[i].OutputPath)
		if err := fsio.WriteFile(path, r.data, 0o644); err != nil {
			result.PageErrors = append(result.PageErrors, err)
			if b.Progress != nil {
				b.Progress.ReportError(err)
			}
			continue
		}
		result.PagesWritten++
		if b.Progress != nil {
			b.Progress.ReportProgress("render", i+1, len(pages), pages[i].OutputPath)
		}
	}

	return result
}
