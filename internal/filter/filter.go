// Package filter holds the relevance policy: a pure predicate over a
// normalized job, independent of persistence state.
package filter

import (
	"strings"

	"github.com/oryndra/jobradar/internal/model"
)

// Policy is the configured relevance predicate. Rule categories combine
// conjunctively (title AND location AND department); keywords within a
// category combine disjunctively. An empty category matches everything.
// Matching is case-insensitive substring; evaluation is deterministic and
// does no I/O.
type Policy struct {
	titleKeywords []string
	locations     []string
	departments   []string
}

// NewPolicy builds a policy from the three rule categories. Keywords are
// lowered once here so Matches stays allocation-light.
func NewPolicy(titleKeywords, locations, departments []string) *Policy {
	return &Policy{
		titleKeywords: lowerAll(titleKeywords),
		locations:     lowerAll(locations),
		departments:   lowerAll(departments),
	}
}

// Matches reports whether the job satisfies every configured rule category.
func (p *Policy) Matches(job model.Job) bool {
	return containsAny(job.Title, p.titleKeywords) &&
		containsAny(job.Location, p.locations) &&
		containsAny(job.Department, p.departments)
}

// containsAny reports whether value contains any of the (pre-lowered)
// keywords. An empty keyword list passes all.
func containsAny(value string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(value)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(strings.ToLower(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
