// Package ingest drives an ATS board page-by-page and produces normalized
// jobs for reconciliation.
package ingest

import (
	"context"
	"log/slog"

	"github.com/oryndra/jobradar/internal/model"
)

// maxPages is the hard ceiling on page requests per company per run. Boards
// have been observed to re-serve their last page forever; the repeat guard
// catches that, this bounds everything else. Fixed on purpose, never derived
// from board data.
const maxPages = 100

// Driver paginates one company's board per run.
type Driver struct {
	company model.Company
	fetcher model.PageFetcher
	logger  *slog.Logger
}

// New creates a driver for the company using the given page fetcher.
func New(company model.Company, fetcher model.PageFetcher, logger *slog.Logger) *Driver {
	return &Driver{
		company: company,
		fetcher: fetcher,
		logger:  logger,
	}
}

// Ingest walks the board from page 0 and returns the normalized jobs in
// page-then-item order. It stops on the first empty page, on a page that
// yields no identifier unseen in this run (cycle guard), or at the page
// ceiling. A failed page request aborts this company only, attributed via
// FetchError.
func (d *Driver) Ingest(ctx context.Context) ([]model.Job, error) {
	// Within-run seen set, scoped to this company's run.
	seen := make(map[string]struct{})
	var jobs []model.Job

	for page := 0; page < maxPages; page++ {
		p, err := d.fetcher.FetchPage(ctx, page)
		if err != nil {
			return nil, &model.FetchError{Company: d.company.Name, Page: page, Err: err}
		}

		if len(p.Listings) == 0 {
			d.logger.Debug("empty page, stopping pagination",
				"company", d.company.Name, "page", page)
			break
		}

		fresh := 0
		for _, raw := range p.Listings {
			job, err := d.fetcher.Normalize(raw)
			if err != nil {
				// A listing without an identifier cannot be deduped or
				// stored; skip it rather than abort the page.
				d.logger.Warn("skipping unnormalizable listing",
					"company", d.company.Name, "page", page, "error", err)
				continue
			}
			if _, dup := seen[job.ExternalID]; dup {
				continue
			}
			seen[job.ExternalID] = struct{}{}
			jobs = append(jobs, job)
			fresh++
		}

		if fresh == 0 {
			d.logger.Debug("page repeated previously seen listings, stopping pagination",
				"company", d.company.Name, "page", page)
			break
		}

		if page == maxPages-1 {
			d.logger.Warn("page ceiling reached, stopping pagination",
				"company", d.company.Name, "pages", maxPages, "jobs", len(jobs))
		}
	}

	return jobs, nil
}
