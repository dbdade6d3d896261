package alert

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/oryndra/jobradar/internal/filter"
	"github.com/oryndra/jobradar/internal/model"
)

// --- Mock/Fake Implementations ---

// RecordingMailer captures every send; Err makes sends fail.
type RecordingMailer struct {
	Subjects []string
	Bodies   []string
	Err      error
}

func (m *RecordingMailer) Send(_ context.Context, subject, htmlBody string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Subjects = append(m.Subjects, subject)
	m.Bodies = append(m.Bodies, htmlBody)
	return nil
}

// InMemoryOutbox is a map-backed stand-in for the alert_outbox table.
type InMemoryOutbox struct {
	pending map[int64]model.Job
	jobs    map[int64]model.Job
}

func NewInMemoryOutbox(jobs ...model.Job) *InMemoryOutbox {
	o := &InMemoryOutbox{pending: make(map[int64]model.Job), jobs: make(map[int64]model.Job)}
	for _, j := range jobs {
		o.jobs[j.ID] = j
	}
	return o
}

func (o *InMemoryOutbox) EnqueueAlert(_ context.Context, jobID int64, _ time.Time) error {
	o.pending[jobID] = o.jobs[jobID]
	return nil
}

func (o *InMemoryOutbox) PendingAlerts(_ context.Context) ([]model.Job, error) {
	out := make([]model.Job, 0, len(o.pending))
	for _, j := range o.pending {
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (o *InMemoryOutbox) ClearAlerts(_ context.Context, jobIDs []int64) error {
	for _, id := range jobIDs {
		delete(o.pending, id)
	}
	return nil
}

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func execPolicy() *filter.Policy {
	return filter.NewPolicy([]string{"chief", "head"}, []string{"australia", "sydney"}, nil)
}

func makeJob(id int64, title, location string) model.Job {
	return model.Job{
		ID:       id,
		Company:  "testco",
		Title:    title,
		Location: location,
		URL:      "https://example.com/jobs/1",
	}
}

// --- Tests ---

func TestDispatch_OnlyMatchingCreatedJobsAlert(t *testing.T) {
	mailer := &RecordingMailer{}
	d := New(execPolicy(), mailer, nil, discardLogger())

	created := []model.Job{
		makeJob(1, "Chief Data Officer", "Sydney, NSW"),
		makeJob(2, "Barista", "Sydney, NSW"),        // title miss
		makeJob(3, "Head of Engineering", "London"), // location miss
	}

	out, err := d.Dispatch(context.Background(), created)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Matched != 1 || out.Sent != 1 || !out.Delivered {
		t.Errorf("outcome = %+v, want Matched:1 Sent:1 Delivered:true", out)
	}
	if len(mailer.Subjects) != 1 {
		t.Fatalf("sends = %d, want exactly 1", len(mailer.Subjects))
	}
	if !strings.Contains(mailer.Bodies[0], "Chief Data Officer") {
		t.Error("body should carry the matching job")
	}
	if strings.Contains(mailer.Bodies[0], "Barista") {
		t.Error("body should not carry non-matching jobs")
	}
}

func TestDispatch_SilenceWhenNothingMatches(t *testing.T) {
	mailer := &RecordingMailer{}
	d := New(execPolicy(), mailer, nil, discardLogger())

	out, err := d.Dispatch(context.Background(), []model.Job{
		makeJob(1, "Barista", "Sydney, NSW"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Delivered {
		t.Error("no email should go out when nothing matches")
	}
	if len(mailer.Subjects) != 0 {
		t.Errorf("sends = %d, want 0", len(mailer.Subjects))
	}
}

func TestDispatch_BatchesIntoOneEmail(t *testing.T) {
	mailer := &RecordingMailer{}
	d := New(execPolicy(), mailer, nil, discardLogger())

	created := []model.Job{
		makeJob(1, "Chief Data Officer", "Sydney"),
		makeJob(2, "Head of Technology", "Australia"),
		makeJob(3, "Chief of Staff", "Sydney"),
	}

	out, err := d.Dispatch(context.Background(), created)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(mailer.Subjects) != 1 {
		t.Fatalf("sends = %d, want 1 (all matches batched)", len(mailer.Subjects))
	}
	if out.Sent != 3 {
		t.Errorf("sent = %d, want 3", out.Sent)
	}
	if !strings.Contains(mailer.Subjects[0], "3") {
		t.Errorf("subject %q should carry the batch size", mailer.Subjects[0])
	}
}

func TestDispatch_AtMostOnceLosesAlertsOnFailure(t *testing.T) {
	mailer := &RecordingMailer{Err: errors.New("smtp: connection refused")}
	d := New(execPolicy(), mailer, nil, discardLogger())

	created := []model.Job{makeJob(1, "Chief Data Officer", "Sydney")}

	if _, err := d.Dispatch(context.Background(), created); err == nil {
		t.Fatal("expected delivery error, got nil")
	}

	// Next run, nothing newly created: the lost alert stays lost.
	mailer.Err = nil
	out, err := d.Dispatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Delivered || len(mailer.Subjects) != 0 {
		t.Error("at-most-once mode must not retry a failed alert")
	}
}

func TestDispatch_AtLeastOnceRetriesFromOutbox(t *testing.T) {
	jobs := []model.Job{
		makeJob(1, "Chief Data Officer", "Sydney"),
		makeJob(2, "Head of Technology", "Australia"),
	}
	outbox := NewInMemoryOutbox(jobs...)
	mailer := &RecordingMailer{Err: errors.New("smtp: connection refused")}
	d := New(execPolicy(), mailer, outbox, discardLogger())

	if _, err := d.Dispatch(context.Background(), jobs[:1]); err == nil {
		t.Fatal("expected delivery error, got nil")
	}
	if len(outbox.pending) != 1 {
		t.Fatalf("pending = %d, want 1 staged across the failure", len(outbox.pending))
	}

	// Next run delivers, draining the backlog alongside the fresh match.
	mailer.Err = nil
	out, err := d.Dispatch(context.Background(), jobs[1:])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Sent != 2 || !out.Delivered {
		t.Errorf("outcome = %+v, want Sent:2 Delivered:true", out)
	}
	if len(mailer.Subjects) != 1 {
		t.Errorf("sends = %d, want 1 (backlog and fresh match in one email)", len(mailer.Subjects))
	}
	if len(outbox.pending) != 0 {
		t.Errorf("pending = %d, want 0 after a delivered email", len(outbox.pending))
	}
}

func TestDispatch_OutboxDrainsWithNoFreshMatches(t *testing.T) {
	jobs := []model.Job{makeJob(1, "Chief Data Officer", "Sydney")}
	outbox := NewInMemoryOutbox(jobs...)
	outbox.EnqueueAlert(context.Background(), 1, time.Now())

	mailer := &RecordingMailer{}
	d := New(execPolicy(), mailer, outbox, discardLogger())

	out, err := d.Dispatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Matched != 0 || out.Sent != 1 || !out.Delivered {
		t.Errorf("outcome = %+v, want Matched:0 Sent:1 Delivered:true", out)
	}
}

func TestBuildBody_EscapesHTML(t *testing.T) {
	body := buildBody([]model.Job{
		{Company: "A&B <Co>", Title: "Head of R&D", Location: "Sydney", URL: "https://example.com/?a=1&b=2"},
	})
	if strings.Contains(body, "<Co>") {
		t.Error("company name should be HTML-escaped")
	}
	if !strings.Contains(body, "A&amp;B") {
		t.Error("ampersands should be escaped")
	}
}
