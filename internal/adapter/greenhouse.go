package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/oryndra/jobradar/internal/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// greenhouseResponse is the top-level Greenhouse jobs API response.
type greenhouseResponse struct {
	Jobs []model.RawListing `json:"jobs"`
}

// GreenhouseAdapter fetches jobs from the Greenhouse public boards API.
// The API is not paginated: everything arrives on page 0.
type GreenhouseAdapter struct {
	boardToken string
	company    model.Company
	client     *Client
}

// NewGreenhouseAdapter creates an adapter for the company's Greenhouse board.
func NewGreenhouseAdapter(company model.Company, client *Client) (*GreenhouseAdapter, error) {
	token, err := ExtractGreenhouseToken(company.BoardURL)
	if err != nil {
		return nil, err
	}
	return &GreenhouseAdapter{
		boardToken: token,
		company:    company,
		client:     client,
	}, nil
}

// FetchPage retrieves the full board on page 0 and reports an empty page for
// every later index.
func (a *GreenhouseAdapter) FetchPage(ctx context.Context, page int) (model.Page, error) {
	if page > 0 {
		return model.Page{}, nil
	}

	url := fmt.Sprintf("%s/%s/jobs?content=true", greenhouseBaseURL, a.boardToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.Page{}, fmt.Errorf("greenhouse fetch for %s: %w", a.boardToken, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return model.Page{}, fmt.Errorf("greenhouse fetch for %s: %w", a.boardToken, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Page{}, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("greenhouse fetch for %s: unexpected status %d", a.boardToken, resp.StatusCode),
		}
	}

	var ghResp greenhouseResponse
	if err := json.NewDecoder(resp.Body).Decode(&ghResp); err != nil {
		return model.Page{}, fmt.Errorf("greenhouse fetch for %s: %w", a.boardToken, err)
	}

	return model.Page{Listings: ghResp.Jobs, Total: len(ghResp.Jobs)}, nil
}

// Normalize maps a Greenhouse job onto the canonical Job.
func (a *GreenhouseAdapter) Normalize(raw model.RawListing) (model.Job, error) {
	var externalID string
	if id, ok := raw.Number("id"); ok {
		externalID = strconv.FormatInt(int64(id), 10)
	}
	if externalID == "" {
		return model.Job{}, fmt.Errorf("greenhouse listing for %s has no id", a.company.Name)
	}

	title := raw.String("title")
	if title == "" {
		title = "Unknown title"
	}
	url := raw.String("absolute_url")

	// Location arrives as a nested {"name": ...} object.
	var location string
	if loc, ok := raw["location"].(map[string]any); ok {
		location, _ = loc["name"].(string)
	}

	// First department wins when several are attached.
	var department string
	if deps, ok := raw["departments"].([]any); ok && len(deps) > 0 {
		if dep, ok := deps[0].(map[string]any); ok {
			department, _ = dep["name"].(string)
		}
	}

	var postedAt *time.Time
	if ts := raw.FirstString("updated_at", "created_at", "first_published"); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			postedAt = &t
		}
	}

	return model.Job{
		CompanyID:   a.company.ID,
		Company:     a.company.Name,
		ExternalID:  externalID,
		Title:       title,
		Location:    location,
		Department:  department,
		URL:         url,
		Source:      "greenhouse",
		PostedAt:    postedAt,
		Fingerprint: model.Fingerprint(a.company.Name, title, location, url),
	}, nil
}
