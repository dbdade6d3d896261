package store

import (
	"context"
	"fmt"
	"time"

	"github.com/oryndra/jobradar/internal/model"
)

// EnqueueAlert stages a job for at-least-once alert delivery. Re-queueing an
// already staged job is a no-op, so a crash between stage and send cannot
// double-book it.
func (s *Store) EnqueueAlert(ctx context.Context, jobID int64, now time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO alert_outbox (job_id, queued_at) VALUES (?, ?)`,
		jobID, now.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("enqueue alert for job %d: %w", jobID, err)
	}
	return nil
}

// PendingAlerts returns the staged jobs, oldest first.
func (s *Store) PendingAlerts(ctx context.Context) ([]model.Job, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT j.id, j.company_id, c.name, j.external_id, j.title, j.location, j.department,
       j.url, j.source, j.posted_at, j.fingerprint, j.first_seen, j.last_seen, j.is_active
FROM alert_outbox o
JOIN jobs j ON j.id = o.job_id
JOIN companies c ON c.id = j.company_id
ORDER BY o.queued_at;`)
	if err != nil {
		return nil, fmt.Errorf("list pending alerts: %w", err)
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

// ClearAlerts removes delivered jobs from the outbox.
func (s *Store) ClearAlerts(ctx context.Context, jobIDs []int64) error {
	for _, id := range jobIDs {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM alert_outbox WHERE job_id = ?`, id); err != nil {
			return fmt.Errorf("clear alert for job %d: %w", id, err)
		}
	}
	return nil
}
