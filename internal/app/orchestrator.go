package app

import (
	"context"

	"rgccr-notice-check/internal/config"
	"rgccr-notice-check/internal/fetcher"
	"rgccr-notice-check/internal/notice"
	"rgccr-notice-check/internal/observability"
	"rgccr-notice-check/internal/storage"
)

// Collaborator boundaries, consumer side. Concrete implementations live in
// fetcher, scraper, notifier and report; tests substitute fakes.

type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*fetcher.FetchResponse, error)
}

type NoticeParser interface {
	ParseNotices(html string) (notice.FetchedList, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, notices []notice.Notice) error
}

type ErrorReporter interface {
	Report(ctx context.Context, stage string, err error)
}

type Orchestrator struct {
	cfg        *config.Config
	logger     *observability.Logger
	fetcher    PageFetcher
	parser     NoticeParser
	store      storage.Repository
	dispatcher Dispatcher
	reporter   ErrorReporter
}

func NewOrchestrator(
	cfg *config.Config,
	logger *observability.Logger,
	f PageFetcher,
	p NoticeParser,
	store storage.Repository,
	d Dispatcher,
	r ErrorReporter,
) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		logger:     logger,
		fetcher:    f,
		parser:     p,
		store:      store,
		dispatcher: d,
		reporter:   r,
	}
}

type RunStats struct {
	FetchedCount   int
	NewCount       int
	Dispatched     bool
	DispatchFailed bool
	StoppedReason  string
}

// Run executes one check: fetch the page, parse the notices, compare against
// the stored keys, dispatch anything new, then persist the current fetch as
// the next baseline. Stages are strictly sequential; in particular the save
// happens only after dispatch has been attempted, so a notice is never
// marked seen before we tried to deliver it. A dispatch failure is reported
// but does not stop persistence: the accepted trade-off is a possible
// duplicate notification over a missed one.
func (o *Orchestrator) Run(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{}

	o.logger.Info("starting notice check",
		"url", o.cfg.Source.URL,
		"test_mode", o.cfg.Notify.TestMode,
	)

	resp, err := o.fetcher.Fetch(ctx, o.cfg.Source.URL)
	if err != nil {
		return stats, o.fail(ctx, stats, "fetch", err)
	}

	fetched, err := o.parser.ParseNotices(string(resp.Body))
	if err != nil {
		return stats, o.fail(ctx, stats, "parse", err)
	}
	stats.FetchedCount = fetched.Len()

	if fetched.Len() == 0 {
		// The table parsed but held no rows. Touching the store here would
		// wipe the baseline and re-notify everything once the page recovers,
		// so leave state alone and end the run.
		o.logger.Warn("notice page returned no notices, keeping previous state")
		stats.StoppedReason = "empty page"
		return stats, nil
	}

	storedKeys, err := o.store.LoadKeys(ctx)
	if err != nil {
		return stats, o.fail(ctx, stats, "state-load", err)
	}

	fresh, err := notice.DetectNew(fetched, storedKeys)
	if err != nil {
		return stats, o.fail(ctx, stats, "detect", err)
	}
	stats.NewCount = len(fresh)

	var dispatchErr error
	if len(fresh) > 0 {
		o.logger.Info("new notices detected",
			"new", len(fresh),
			"fetched", fetched.Len(),
			"stored", len(storedKeys),
		)
		stats.Dispatched = true
		if dispatchErr = o.dispatcher.Dispatch(ctx, fresh); dispatchErr != nil {
			stats.DispatchFailed = true
			o.logger.Error("dispatch failed", "error", dispatchErr.Error())
			o.reporter.Report(ctx, "dispatch", dispatchErr)
		}
	} else {
		o.logger.Info("no new notices", "fetched", fetched.Len())
	}

	if err := o.store.SaveKeys(ctx, fetched.Keys()); err != nil {
		return stats, o.fail(ctx, stats, "state-save", err)
	}

	o.logger.Info("notice check complete",
		"fetched", stats.FetchedCount,
		"new", stats.NewCount,
		"dispatched", stats.Dispatched,
		"dispatch_failed", stats.DispatchFailed,
	)

	// Surfaces as a non-zero exit even though state was saved.
	return stats, dispatchErr
}

func (o *Orchestrator) fail(ctx context.Context, stats *RunStats, stage string, err error) error {
	stats.StoppedReason = stage
	o.logger.Error("run aborted",
		"stage", stage,
		"error", err.Error(),
	)
	o.reporter.Report(ctx, stage, err)
	return err
}
