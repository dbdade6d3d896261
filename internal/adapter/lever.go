package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/oryndra/jobradar/internal/model"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

// LeverAdapter fetches jobs from the Lever public postings API. Lever
// returns the whole board as one JSON array, so everything arrives on
// page 0.
type LeverAdapter struct {
	slug    string
	company model.Company
	client  *Client
}

// NewLeverAdapter creates an adapter for the company's Lever board.
func NewLeverAdapter(company model.Company, client *Client) (*LeverAdapter, error) {
	slug, err := ExtractLeverSlug(company.BoardURL)
	if err != nil {
		return nil, err
	}
	return &LeverAdapter{
		slug:    slug,
		company: company,
		client:  client,
	}, nil
}

// FetchPage retrieves the full board on page 0 and reports an empty page for
// every later index.
func (a *LeverAdapter) FetchPage(ctx context.Context, page int) (model.Page, error) {
	if page > 0 {
		return model.Page{}, nil
	}

	url := fmt.Sprintf("%s/%s?mode=json&limit=250", leverBaseURL, a.slug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.Page{}, fmt.Errorf("lever fetch for %s: %w", a.slug, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return model.Page{}, fmt.Errorf("lever fetch for %s: %w", a.slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Page{}, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("lever fetch for %s: unexpected status %d", a.slug, resp.StatusCode),
		}
	}

	var postings []model.RawListing
	if err := json.NewDecoder(resp.Body).Decode(&postings); err != nil {
		return model.Page{}, fmt.Errorf("lever decode for %s: %w", a.slug, err)
	}

	return model.Page{Listings: postings, Total: len(postings)}, nil
}

// Normalize maps a Lever posting onto the canonical Job.
func (a *LeverAdapter) Normalize(raw model.RawListing) (model.Job, error) {
	externalID := raw.String("id")
	if externalID == "" {
		return model.Job{}, fmt.Errorf("lever posting for %s has no id", a.company.Name)
	}

	title := strings.TrimSpace(raw.String("text"))
	if title == "" {
		title = "Unknown title"
	}
	url := raw.FirstString("hostedUrl", "applyUrl")

	var location, department string
	if cats, ok := raw["categories"].(map[string]any); ok {
		location, _ = cats["location"].(string)
		if location == "" {
			if all, ok := cats["allLocations"].([]any); ok {
				var parts []string
				for _, l := range all {
					if s, ok := l.(string); ok {
						parts = append(parts, s)
					}
				}
				location = strings.Join(parts, ", ")
			}
		}
		department, _ = cats["department"].(string)
		if department == "" {
			department, _ = cats["team"].(string)
		}
	}

	// Lever uses millisecond epoch timestamps.
	var postedAt *time.Time
	if ms, ok := raw.Number("createdAt"); ok && ms > 0 {
		t := time.UnixMilli(int64(ms)).UTC()
		postedAt = &t
	}

	return model.Job{
		CompanyID:   a.company.ID,
		Company:     a.company.Name,
		ExternalID:  externalID,
		Title:       title,
		Location:    location,
		Department:  department,
		URL:         url,
		Source:      "lever",
		PostedAt:    postedAt,
		Fingerprint: model.Fingerprint(a.company.Name, title, location, url),
	}, nil
}
