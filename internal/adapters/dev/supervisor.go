package dev

import (
	"context"

	"github.com/tmoreland/bookweave/internal/core/entities"
	"github.com/tmoreland/bookweave/internal/core/usecases"
)

// Supervisor ties a FileWatcher to a BuildBook rebuilder and a Broadcaster:
// every debounced change triggers at most one rebuild at a time, with extra
// signals that arrive mid-build coalesced into a single follow-up rebuild.
type Supervisor struct {
	Watcher     usecases.FileWatcher
	Build       *usecases.BuildBook
	Broadcaster *Broadcaster
	Logger      usecases.Logger
}

// NewSupervisor creates a Supervisor.
func NewSupervisor(watcher usecases.FileWatcher, build *usecases.BuildBook, broadcaster *Broadcaster, logger usecases.Logger) *Supervisor {
	return &Supervisor{Watcher: watcher, Build: build, Broadcaster: broadcaster, Logger: logger}
}

// Run performs one build of cfg, then watches cfg.Paths.InputRoot and
// rebuilds on every debounced change until ctx is cancelled. A Watch
// failure is retried once; a second failure is returned as a fatal
// WatchError.
func (s *Supervisor) Run(ctx context.Context, cfg *entities.BookConfig) error {
	if _, err := s.Build.Execute(ctx, cfg); err != nil {
		return err
	}
	s.Broadcaster.Publish()

	events, err := s.Watcher.Watch(ctx, cfg.Paths.InputRoot)
	if err != nil {
		s.Logger.Warn("watcher start failed, retrying once", "error", err)
		events, err = s.Watcher.Watch(ctx, cfg.Paths.InputRoot)
		if err != nil {
			return &entities.WatchError{Restarted: true, Err: err}
		}
	}

	pending := make(chan struct{}, 1)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				s.Logger.Debug("change detected", "path", evt.Path, "op", evt.Op)
				select {
				case pending <- struct{}{}:
				default:
				}
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = s.Watcher.Stop()
			return nil
		case _, ok := <-pending:
			if !ok {
				return nil
			}
			s.rebuild(ctx, cfg)
		}
	}
}

func (s *Supervisor) rebuild(ctx context.Context, cfg *entities.BookConfig) {
	result, err := s.Build.Execute(ctx, cfg)
	if err != nil {
		s.Logger.Error("rebuild failed", err)
		return
	}
	for _, pageErr := range result.PageErrors {
		s.Logger.Warn("page render skipped", "error", pageErr)
	}
	s.Logger.Info("rebuild complete", "pages", result.PagesWritten)
	s.Broadcaster.Publish()
}
