package cmd

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/tmoreland/bookweave/internal/adapters/assets"
	"github.com/tmoreland/bookweave/internal/adapters/cli"
	"github.com/tmoreland/bookweave/internal/adapters/compose"
	"github.com/tmoreland/bookweave/internal/adapters/config"
	"github.com/tmoreland/bookweave/internal/adapters/dev"
	"github.com/tmoreland/bookweave/internal/adapters/logging"
	"github.com/tmoreland/bookweave/internal/adapters/markdown"
	"github.com/tmoreland/bookweave/internal/adapters/nav"
	"github.com/tmoreland/bookweave/internal/adapters/search"
	"github.com/tmoreland/bookweave/internal/adapters/server"
	"github.com/tmoreland/bookweave/internal/adapters/template"
	"github.com/tmoreland/bookweave/internal/adapters/walker"
	"github.com/tmoreland/bookweave/internal/core/entities"
	"github.com/tmoreland/bookweave/internal/core/usecases"
	"github.com/tmoreland/bookweave/internal/ui"
)

// BuildCommand is the domain orchestration behind the single root command:
// it always runs one build, then optionally keeps watching and/or serving.
type BuildCommand struct {
	Flags usecases.CLIFlags
}

// NewBuildCommand creates a BuildCommand for the given resolved flags.
func NewBuildCommand(flags usecases.CLIFlags) *BuildCommand {
	return &BuildCommand{Flags: flags}
}

// Execute resolves configuration, wires every adapter, runs the build once,
// and if requested keeps the process alive watching and/or serving until
// ctx is cancelled.
func (c *BuildCommand) Execute(ctx context.Context) error {
	level := logging.LevelInfo
	if c.Flags.Verbose {
		level = logging.LevelDebug
	}
	logger := logging.New(level)
	out := ui.NewOutput().WithVerbose(c.Flags.Verbose)

	cfg, err := config.NewResolver().Resolve(c.Flags)
	if err != nil {
		return err
	}

	registry, err := template.NewRegistry(cfg.Paths.TemplateDir)
	if err != nil {
		return err
	}

	mdRenderer := markdown.NewRenderer()
	build := &usecases.BuildBook{
		Walker:   walker.NewWalker(),
		Nav:      nav.NewBuilder(),
		Assets:   assets.NewCopier(),
		Composer: compose.NewPageComposer(registry, mdRenderer),
		Index:    compose.NewIndexComposer(registry, mdRenderer),
		Search:   search.NewIndexer(),
		Logger:   logger,
		Progress: cli.NewProgressReporter(c.Flags.Verbose),
		Workers:  8,
	}

	if !cfg.Search.Enabled {
		build.Search = nil
	}

	if c.Flags.Watch {
		return c.runWatching(ctx, build, cfg, logger, out)
	}

	start := time.Now()
	result, err := build.Execute(ctx, cfg)
	if err != nil {
		return err
	}
	c.reportDiagnostics(out, result)
	out.Success(fmt.Sprintf("built %d pages in %s", result.PagesWritten, time.Since(start).Round(time.Millisecond)))

	if !c.Flags.Serve {
		return nil
	}

	broadcaster := dev.NewBroadcaster()
	srv := server.NewServer(cfg.Paths.OutputRoot, broadcaster, logger)
	addr := net.JoinHostPort("", strconv.Itoa(cfg.Dev.Port))
	out.Info("serving " + cfg.Paths.OutputRoot + " on http://localhost:" + strconv.Itoa(cfg.Dev.Port))
	return srv.ListenAndServe(ctx, addr)
}

// runWatching starts the dev supervisor (which performs the initial build
// itself) and, if --serve was also requested, the HTTP/WebSocket server
// wired to the same broadcaster.
func (c *BuildCommand) runWatching(ctx context.Context, build *usecases.BuildBook, cfg *entities.BookConfig, logger usecases.Logger, out *ui.Output) error {
	broadcaster := dev.NewBroadcaster()

	debounce := time.Duration(cfg.Dev.DebounceMillis) * time.Millisecond
	watcher, err := dev.NewFileWatcher(debounce)
	if err != nil {
		return &entities.WatchError{Err: err}
	}

	supervisor := dev.NewSupervisor(watcher, build, broadcaster, logger)

	if c.Flags.Serve {
		addr := net.JoinHostPort("", strconv.Itoa(cfg.Dev.Port))
		srv := server.NewServer(cfg.Paths.OutputRoot, broadcaster, logger)
		out.Info("serving " + cfg.Paths.OutputRoot + " on http://localhost:" + strconv.Itoa(cfg.Dev.Port))
		go func() {
			if err := srv.ListenAndServe(ctx, addr); err != nil {
				logger.Error("server stopped", err)
			}
		}()
	}

	out.Info("watching " + cfg.Paths.InputRoot + " for changes")
	return supervisor.Run(ctx, cfg)
}

func (c *BuildCommand) reportDiagnostics(out *ui.Output, result *usecases.BuildResult) {
	for _, d := range result.Diagnostics {
		out.Warning(d.Path + ": " + d.Err.Error())
	}
	for _, pageErr := range result.PageErrors {
		out.Error(pageErr.Error())
	}
}
