// Package search shells out to the pagefind binary over a finished output
// tree to build the client-side search index.
package search

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/tmoreland/bookweave/internal/core/entities"
	"github.com/tmoreland/bookweave/internal/core/usecases"
)

// Indexer implements usecases.SearchIndexer by invoking pagefind.
type Indexer struct {
	pagefindPath string // resolved once at construction; empty means not found
}

// NewIndexer resolves the pagefind binary on PATH once. A missing binary is
// not an error here; Index reports SearchError{Kind: ToolNotFound} lazily,
// matching the non-fatal treatment BuildBook gives every SearchError.
func NewIndexer() *Indexer {
	path, _ := exec.LookPath("pagefind")
	return &Indexer{pagefindPath: path}
}

var _ usecases.SearchIndexer = (*Indexer)(nil)

// Index runs `pagefind --site <outputRoot>` with a derived timeout context.
func (ix *Indexer) Index(ctx context.Context, outputRoot string, timeout time.Duration) error {
	if ix.pagefindPath == "" {
		return &entities.SearchError{Kind: entities.SearchToolNotFound}
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, ix.pagefindPath, "--site", outputRoot)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return &entities.SearchError{Kind: entities.SearchTimeout, Err: ctx.Err()}
	}
	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return &entities.SearchError{
			Kind:     entities.SearchIndexingFailed,
			ExitCode: exitCode,
			Stderr:   stderr.String(),
			Err:      err,
		}
	}
	return nil
}
