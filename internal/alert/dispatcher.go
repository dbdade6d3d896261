// Package alert gates newly created postings through the relevance policy
// and delivers at most one batched email per run.
package alert

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/oryndra/jobradar/internal/filter"
	"github.com/oryndra/jobradar/internal/model"
)

// Outbox stages alerts for at-least-once delivery.
type Outbox interface {
	EnqueueAlert(ctx context.Context, jobID int64, now time.Time) error
	PendingAlerts(ctx context.Context) ([]model.Job, error)
	ClearAlerts(ctx context.Context, jobIDs []int64) error
}

// Outcome summarizes one dispatch.
type Outcome struct {
	Matched   int  // created jobs that passed the policy this run
	Sent      int  // jobs included in a delivered email (outbox backlog included)
	Delivered bool // whether an email went out
}

// Dispatcher filters created jobs through the policy and invokes the mailer
// at most once per run, with every qualifying job batched into one message.
// Updated and unchanged jobs are never considered: alerting is strictly a
// function of first observation.
type Dispatcher struct {
	policy *filter.Policy
	mailer model.Mailer
	outbox Outbox // nil selects at-most-once delivery
	now    func() time.Time
	logger *slog.Logger
}

// New creates a dispatcher. Passing a nil outbox selects at-most-once
// delivery (a failed send is reported and the alerts are lost); a non-nil
// outbox selects at-least-once (failed sends are retried next run, at the
// cost of possible duplicate alerts).
func New(policy *filter.Policy, mailer model.Mailer, outbox Outbox, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		policy: policy,
		mailer: mailer,
		outbox: outbox,
		now:    time.Now,
		logger: logger,
	}
}

// Dispatch sends the run's alert email if any created job qualifies.
// Silence is the expected common case: no qualifying jobs, no mailer call.
func (d *Dispatcher) Dispatch(ctx context.Context, created []model.Job) (Outcome, error) {
	var qualifying []model.Job
	for _, j := range created {
		if d.policy.Matches(j) {
			qualifying = append(qualifying, j)
		}
	}
	out := Outcome{Matched: len(qualifying)}

	if d.outbox == nil {
		if len(qualifying) == 0 {
			return out, nil
		}
		if err := d.send(ctx, qualifying); err != nil {
			return out, err
		}
		out.Sent = len(qualifying)
		out.Delivered = true
		return out, nil
	}

	// At-least-once: stage this run's matches, then drain everything
	// pending, which picks up alerts a previous failed delivery left behind.
	for _, j := range qualifying {
		if err := d.outbox.EnqueueAlert(ctx, j.ID, d.now()); err != nil {
			return out, err
		}
	}

	pending, err := d.outbox.PendingAlerts(ctx)
	if err != nil {
		return out, err
	}
	if len(pending) == 0 {
		return out, nil
	}

	if err := d.send(ctx, pending); err != nil {
		return out, err
	}

	ids := make([]int64, 0, len(pending))
	for _, j := range pending {
		ids = append(ids, j.ID)
	}
	if err := d.outbox.ClearAlerts(ctx, ids); err != nil {
		// The email went out; a clear failure only risks a duplicate next
		// run, which at-least-once mode accepts.
		d.logger.Error("clearing alert outbox failed", "error", err)
	}

	out.Sent = len(pending)
	out.Delivered = true
	return out, nil
}

func (d *Dispatcher) send(ctx context.Context, jobs []model.Job) error {
	subject := fmt.Sprintf("JobRadar — %d new relevant roles", len(jobs))
	if err := d.mailer.Send(ctx, subject, buildBody(jobs)); err != nil {
		return err
	}
	d.logger.Info("alert email sent", "jobs", len(jobs))
	return nil
}

// buildBody renders the batched alert as a simple HTML list.
func buildBody(jobs []model.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h3>New relevant roles found: %d</h3>\n<ul>\n", len(jobs))
	for _, j := range jobs {
		fmt.Fprintf(&b, "<li><a href='%s'>%s — %s</a> (%s)</li>\n",
			html.EscapeString(j.URL),
			html.EscapeString(j.Company),
			html.EscapeString(j.Title),
			html.EscapeString(j.Location),
		)
	}
	b.WriteString("</ul>\n")
	return b.String()
}
