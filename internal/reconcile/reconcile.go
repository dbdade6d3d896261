// Package reconcile merges ingested jobs into the store and classifies each
// one as created, updated, or unchanged.
package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/oryndra/jobradar/internal/model"
)

// Result is the outcome of one reconcile pass for one company. It lives for
// one run: the dispatcher consumes Created and the result is discarded.
// Order within each slice follows the input (page-then-item) order.
type Result struct {
	Created   []model.Job
	Updated   []model.Job
	Unchanged []model.Job
	Failed    []*model.PersistError
}

// Engine upserts jobs keyed on (company_id, external_id).
type Engine struct {
	store  model.JobStore
	now    func() time.Time
	logger *slog.Logger
}

// New creates a reconcile engine over the given store.
func New(store model.JobStore, logger *slog.Logger) *Engine {
	return &Engine{
		store:  store,
		now:    time.Now,
		logger: logger,
	}
}

// NewWithClock is New with an injected clock, for tests.
func NewWithClock(store model.JobStore, now func() time.Time, logger *slog.Logger) *Engine {
	e := New(store, logger)
	e.now = now
	return e
}

// Reconcile upserts each job and classifies it. A persistence error on one
// record excludes that record from the result and moves on; the record is
// simply observed again on the next scheduled run. Re-running with an
// identical input is a no-op beyond the last_seen refresh.
func (e *Engine) Reconcile(ctx context.Context, company model.Company, jobs []model.Job) Result {
	var res Result

	for _, job := range jobs {
		prevFP, existed, err := e.store.GetFingerprint(ctx, job.CompanyID, job.ExternalID)
		if err != nil {
			res.Failed = append(res.Failed, &model.PersistError{
				Company: company.Name, ExternalID: job.ExternalID, Err: err,
			})
			continue
		}

		persisted, created, err := e.store.UpsertJob(ctx, job, e.now())
		if err != nil {
			res.Failed = append(res.Failed, &model.PersistError{
				Company: company.Name, ExternalID: job.ExternalID, Err: err,
			})
			continue
		}

		switch {
		case created:
			res.Created = append(res.Created, persisted)
		case existed && prevFP == persisted.Fingerprint:
			res.Unchanged = append(res.Unchanged, persisted)
		default:
			// Fingerprint changed, or a concurrent run inserted the row
			// between our lookup and upsert. Either way the content we
			// just wrote differs from what we knew: classify updated.
			res.Updated = append(res.Updated, persisted)
		}
	}

	if len(res.Failed) > 0 {
		for _, f := range res.Failed {
			e.logger.Error("job persist failed", "company", f.Company, "external_id", f.ExternalID, "error", f.Err)
		}
	}

	return res
}
