// Package pipeline runs one scheduled ingestion batch: every ingestable
// company is crawled, reconciled, and swept, then a single alert dispatch
// covers the run's newly created postings.
package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oryndra/jobradar/internal/adapter"
	"github.com/oryndra/jobradar/internal/alert"
	"github.com/oryndra/jobradar/internal/ingest"
	"github.com/oryndra/jobradar/internal/model"
	"github.com/oryndra/jobradar/internal/reconcile"
	"github.com/oryndra/jobradar/internal/retry"
	"github.com/oryndra/jobradar/internal/store"
)

// Summary is one company's outcome within a run.
type Summary struct {
	Company   string
	Created   int
	Updated   int
	Unchanged int
	Failed    int // per-record persistence failures
	Stale     int64
	Err       error // fetch/abort error; nil when the company completed
}

// Report is the outcome of one full batch run.
type Report struct {
	Summaries []Summary
	Alert     alert.Outcome
	AlertErr  error
}

// FailedCompanies counts companies whose ingestion aborted.
func (r Report) FailedCompanies() int {
	n := 0
	for _, s := range r.Summaries {
		if s.Err != nil {
			n++
		}
	}
	return n
}

// Runner wires the per-company pipeline stages together.
type Runner struct {
	store          *store.Store
	client         *adapter.Client
	engine         *reconcile.Engine
	dispatcher     *alert.Dispatcher
	workers        int
	companyTimeout time.Duration
	staleAfter     time.Duration
	logger         *slog.Logger
}

// NewRunner creates a batch runner.
func NewRunner(
	st *store.Store,
	client *adapter.Client,
	engine *reconcile.Engine,
	dispatcher *alert.Dispatcher,
	workers int,
	companyTimeout time.Duration,
	staleAfter time.Duration,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		store:          st,
		client:         client,
		engine:         engine,
		dispatcher:     dispatcher,
		workers:        workers,
		companyTimeout: companyTimeout,
		staleAfter:     staleAfter,
		logger:         logger,
	}
}

// Run executes one batch. Companies proceed independently with bounded
// parallelism; one company's failure never cancels its siblings. Pagination
// within a company stays strictly sequential. The returned error covers
// whole-run problems only (the store being unreachable); per-company
// failures live in the report.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	companies, err := r.store.IngestableCompanies(ctx)
	if err != nil {
		return Report{}, err
	}

	r.logger.Info("starting run", "companies", len(companies), "workers", r.workers)

	var (
		mu        sync.Mutex
		summaries []Summary
		created   []model.Job
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, company := range companies {
		g.Go(func() error {
			s, jobs := r.runCompany(gctx, company)
			mu.Lock()
			summaries = append(summaries, s)
			created = append(created, jobs...)
			mu.Unlock()
			return nil // best effort: never cancel siblings
		})
	}
	_ = g.Wait()

	// Deterministic report order regardless of completion order.
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Company < summaries[j].Company })

	report := Report{Summaries: summaries}

	outcome, err := r.dispatcher.Dispatch(ctx, created)
	report.Alert = outcome
	if err != nil {
		report.AlertErr = err
		r.logger.Error("alert dispatch failed", "error", err)
	}

	r.logger.Info("run complete",
		"companies", len(companies),
		"failed_companies", report.FailedCompanies(),
		"created", len(created),
		"alert_matched", outcome.Matched,
		"alert_sent", outcome.Sent,
	)

	return report, nil
}

// runCompany runs ingest → reconcile → stale sweep for one company and
// returns its summary plus the created jobs for the run-level dispatch.
func (r *Runner) runCompany(ctx context.Context, company model.Company) (Summary, []model.Job) {
	s := Summary{Company: company.Name}

	cctx, cancel := context.WithTimeout(ctx, r.companyTimeout)
	defer cancel()

	fetcher, err := adapter.ForCompany(company, r.client)
	if err != nil {
		s.Err = err
		r.logger.Error("skipping company", "company", company.Name, "error", err)
		return s, nil
	}
	fetcher = retry.NewPageFetcher(fetcher, 2, 5*time.Second, r.logger)

	jobs, err := ingest.New(company, fetcher, r.logger).Ingest(cctx)
	if err != nil {
		s.Err = err
		r.logger.Error("ingestion aborted", "company", company.Name, "error", err)
		return s, nil
	}

	res := r.engine.Reconcile(cctx, company, jobs)
	s.Created = len(res.Created)
	s.Updated = len(res.Updated)
	s.Unchanged = len(res.Unchanged)
	s.Failed = len(res.Failed)

	// Sweep runs only after a fully successful crawl so a transient board
	// outage cannot mass-deactivate postings.
	if s.Failed == 0 {
		stale, err := r.store.MarkStale(cctx, company.ID, time.Now().Add(-r.staleAfter))
		if err != nil {
			r.logger.Error("stale sweep failed", "company", company.Name, "error", err)
		} else {
			s.Stale = stale
		}
	}

	r.logger.Info("company reconciled",
		"company", company.Name,
		"fetched", len(jobs),
		"created", s.Created,
		"updated", s.Updated,
		"unchanged", s.Unchanged,
		"failed", s.Failed,
		"stale", s.Stale,
	)

	return s, res.Created
}
