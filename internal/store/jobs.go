package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oryndra/jobradar/internal/model"
)

// GetFingerprint looks up the stored fingerprint for (companyID, externalID).
func (s *Store) GetFingerprint(ctx context.Context, companyID int64, externalID string) (string, bool, error) {
	var fp string
	err := s.db.QueryRowContext(ctx,
		`SELECT fingerprint FROM jobs WHERE company_id = ? AND external_id = ?`,
		companyID, externalID,
	).Scan(&fp)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup fingerprint for %d/%s: %w", companyID, externalID, err)
	}
	return fp, true, nil
}

// UpsertJob inserts or updates a job keyed on (company_id, external_id).
// first_seen is written once and never touched again; last_seen and the
// mutable fields follow every observation. The returned bool reports whether
// this call created the row: on conflict first_seen keeps its old value, so
// the row was created by us exactly when first_seen comes back equal to now.
// The unique index makes this race-safe across concurrent runs.
func (s *Store) UpsertJob(ctx context.Context, job model.Job, now time.Time) (model.Job, bool, error) {
	nowStr := now.UTC().Format(timeLayout)

	var postedAt sql.NullString
	if job.PostedAt != nil {
		postedAt = sql.NullString{String: job.PostedAt.UTC().Format(time.RFC3339), Valid: true}
	}

	var id int64
	var firstSeen, lastSeen string
	err := s.db.QueryRowContext(ctx, `
INSERT INTO jobs (company_id, external_id, title, location, department, url, source, posted_at, fingerprint, first_seen, last_seen, is_active)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
ON CONFLICT(company_id, external_id) DO UPDATE SET
  title       = excluded.title,
  location    = excluded.location,
  department  = excluded.department,
  url         = excluded.url,
  source      = excluded.source,
  posted_at   = excluded.posted_at,
  fingerprint = excluded.fingerprint,
  last_seen   = excluded.last_seen,
  is_active   = 1
RETURNING id, first_seen, last_seen;`,
		job.CompanyID, job.ExternalID, job.Title, job.Location, job.Department,
		job.URL, job.Source, postedAt, job.Fingerprint, nowStr, nowStr,
	).Scan(&id, &firstSeen, &lastSeen)
	if err != nil {
		return model.Job{}, false, fmt.Errorf("upsert job %d/%s: %w", job.CompanyID, job.ExternalID, err)
	}

	job.ID = id
	job.Active = true
	job.FirstSeen, err = time.Parse(timeLayout, firstSeen)
	if err != nil {
		return model.Job{}, false, fmt.Errorf("parse first_seen %q: %w", firstSeen, err)
	}
	job.LastSeen, err = time.Parse(timeLayout, lastSeen)
	if err != nil {
		return model.Job{}, false, fmt.Errorf("parse last_seen %q: %w", lastSeen, err)
	}

	return job, firstSeen == nowStr, nil
}

// MarkStale flags a company's postings not observed since cutoff as
// inactive. Postings are never deleted; a returning external_id flips back
// to active on the next upsert.
func (s *Store) MarkStale(ctx context.Context, companyID int64, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET is_active = 0 WHERE company_id = ? AND is_active = 1 AND last_seen < ?`,
		companyID, cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("mark stale for company %d: %w", companyID, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// ListJobs returns a company's stored postings, newest first.
// companyID 0 lists every company.
func (s *Store) ListJobs(ctx context.Context, companyID int64, limit int) ([]model.Job, error) {
	if limit <= 0 {
		limit = 500
	}
	query := `
SELECT j.id, j.company_id, c.name, j.external_id, j.title, j.location, j.department,
       j.url, j.source, j.posted_at, j.fingerprint, j.first_seen, j.last_seen, j.is_active
FROM jobs j
JOIN companies c ON c.id = j.company_id
WHERE (? = 0 OR j.company_id = ?)
ORDER BY j.first_seen DESC
LIMIT ?;`

	rows, err := s.db.QueryContext(ctx, query, companyID, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []model.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (model.Job, error) {
	var j model.Job
	var postedAt sql.NullString
	var firstSeen, lastSeen string
	var active int
	if err := row.Scan(
		&j.ID, &j.CompanyID, &j.Company, &j.ExternalID, &j.Title, &j.Location,
		&j.Department, &j.URL, &j.Source, &postedAt, &j.Fingerprint,
		&firstSeen, &lastSeen, &active,
	); err != nil {
		return model.Job{}, fmt.Errorf("scan job: %w", err)
	}
	if postedAt.Valid {
		if t, err := time.Parse(time.RFC3339, postedAt.String); err == nil {
			j.PostedAt = &t
		}
	}
	j.FirstSeen, _ = time.Parse(timeLayout, firstSeen)
	j.LastSeen, _ = time.Parse(timeLayout, lastSeen)
	j.Active = active == 1
	return j, nil
}
