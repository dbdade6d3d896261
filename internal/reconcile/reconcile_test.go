package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/oryndra/jobradar/internal/model"
)

// --- Mock/Fake Implementations ---

// InMemoryJobStore mirrors the sqlite upsert contract: first_seen is set once
// on insert and never touched again, last_seen follows every write.
type InMemoryJobStore struct {
	rows map[string]model.Job

	FailOn map[string]error // external id -> error forced on UpsertJob
}

func NewInMemoryJobStore() *InMemoryJobStore {
	return &InMemoryJobStore{rows: make(map[string]model.Job), FailOn: make(map[string]error)}
}

func key(companyID int64, externalID string) string {
	return fmt.Sprintf("%d/%s", companyID, externalID)
}

func (s *InMemoryJobStore) GetFingerprint(_ context.Context, companyID int64, externalID string) (string, bool, error) {
	row, ok := s.rows[key(companyID, externalID)]
	if !ok {
		return "", false, nil
	}
	return row.Fingerprint, true, nil
}

func (s *InMemoryJobStore) UpsertJob(_ context.Context, job model.Job, now time.Time) (model.Job, bool, error) {
	if err := s.FailOn[job.ExternalID]; err != nil {
		return model.Job{}, false, err
	}

	k := key(job.CompanyID, job.ExternalID)
	existing, ok := s.rows[k]
	if !ok {
		job.ID = int64(len(s.rows) + 1)
		job.FirstSeen = now
		job.LastSeen = now
		job.Active = true
		s.rows[k] = job
		return job, true, nil
	}

	job.ID = existing.ID
	job.FirstSeen = existing.FirstSeen
	job.LastSeen = now
	job.Active = true
	s.rows[k] = job
	return job, false, nil
}

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeJob(externalID, title string) model.Job {
	return model.Job{
		CompanyID:   1,
		Company:     "testco",
		ExternalID:  externalID,
		Title:       title,
		Location:    "Sydney",
		URL:         "https://example.com/" + externalID,
		Fingerprint: model.Fingerprint("testco", title, "Sydney", "https://example.com/"+externalID),
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// --- Tests ---

func TestReconcile_FirstObservationIsCreated(t *testing.T) {
	store := NewInMemoryJobStore()
	engine := New(store, discardLogger())

	res := engine.Reconcile(context.Background(), model.Company{ID: 1, Name: "testco"},
		[]model.Job{makeJob("1", "CTO"), makeJob("2", "Head of Data")})

	if len(res.Created) != 2 {
		t.Errorf("created = %d, want 2", len(res.Created))
	}
	if len(res.Updated) != 0 || len(res.Unchanged) != 0 || len(res.Failed) != 0 {
		t.Errorf("updated/unchanged/failed = %d/%d/%d, want 0/0/0",
			len(res.Updated), len(res.Unchanged), len(res.Failed))
	}
}

func TestReconcile_SameContentIsUnchanged(t *testing.T) {
	store := NewInMemoryJobStore()
	t0 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	engine := NewWithClock(store, fixedClock(t0), discardLogger())

	company := model.Company{ID: 1, Name: "testco"}
	jobs := []model.Job{makeJob("1", "CTO")}

	engine.Reconcile(context.Background(), company, jobs)

	// Second run, one day on, identical content.
	engine = NewWithClock(store, fixedClock(t0.Add(24*time.Hour)), discardLogger())
	res := engine.Reconcile(context.Background(), company, jobs)

	if len(res.Unchanged) != 1 {
		t.Fatalf("unchanged = %d, want 1", len(res.Unchanged))
	}
	if len(res.Created) != 0 {
		t.Errorf("created = %d, want 0 (re-observation must not re-create)", len(res.Created))
	}

	got := res.Unchanged[0]
	if !got.FirstSeen.Equal(t0) {
		t.Errorf("first_seen = %v, want %v (immutable)", got.FirstSeen, t0)
	}
	if !got.LastSeen.Equal(t0.Add(24 * time.Hour)) {
		t.Errorf("last_seen = %v, want refreshed to %v", got.LastSeen, t0.Add(24*time.Hour))
	}
}

func TestReconcile_ChangedContentIsUpdated(t *testing.T) {
	store := NewInMemoryJobStore()
	engine := New(store, discardLogger())
	company := model.Company{ID: 1, Name: "testco"}

	engine.Reconcile(context.Background(), company, []model.Job{makeJob("1", "CTO")})
	res := engine.Reconcile(context.Background(), company, []model.Job{makeJob("1", "Interim CTO")})

	if len(res.Updated) != 1 {
		t.Fatalf("updated = %d, want 1", len(res.Updated))
	}
	if len(res.Created) != 0 {
		t.Errorf("created = %d, want 0 (a title edit is not a new posting)", len(res.Created))
	}
	if res.Updated[0].Title != "Interim CTO" {
		t.Errorf("title = %s, want Interim CTO", res.Updated[0].Title)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	store := NewInMemoryJobStore()
	engine := New(store, discardLogger())
	company := model.Company{ID: 1, Name: "testco"}
	jobs := []model.Job{makeJob("1", "CTO"), makeJob("2", "CDO")}

	first := engine.Reconcile(context.Background(), company, jobs)
	second := engine.Reconcile(context.Background(), company, jobs)
	third := engine.Reconcile(context.Background(), company, jobs)

	if len(first.Created) != 2 {
		t.Errorf("first run created = %d, want 2", len(first.Created))
	}
	for i, res := range []Result{second, third} {
		if len(res.Created) != 0 || len(res.Updated) != 0 || len(res.Unchanged) != 2 {
			t.Errorf("run %d: created/updated/unchanged = %d/%d/%d, want 0/0/2",
				i+2, len(res.Created), len(res.Updated), len(res.Unchanged))
		}
	}
	if len(store.rows) != 2 {
		t.Errorf("store rows = %d, want 2", len(store.rows))
	}
}

func TestReconcile_FailureIsolatedToRecord(t *testing.T) {
	store := NewInMemoryJobStore()
	store.FailOn["2"] = errors.New("disk I/O error")
	engine := New(store, discardLogger())

	res := engine.Reconcile(context.Background(), model.Company{ID: 1, Name: "testco"},
		[]model.Job{makeJob("1", "CTO"), makeJob("2", "CDO"), makeJob("3", "CIO")})

	if len(res.Created) != 2 {
		t.Errorf("created = %d, want 2 (records around the failure still land)", len(res.Created))
	}
	if len(res.Failed) != 1 {
		t.Fatalf("failed = %d, want 1", len(res.Failed))
	}
	if res.Failed[0].ExternalID != "2" {
		t.Errorf("failed external id = %s, want 2", res.Failed[0].ExternalID)
	}
	if res.Failed[0].Company != "testco" {
		t.Errorf("failed company = %s, want testco", res.Failed[0].Company)
	}
}
