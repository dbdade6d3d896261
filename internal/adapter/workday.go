package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/oryndra/jobradar/internal/model"
)

// PageSize is the deterministic page-size parameter sent to paged boards.
const PageSize = 20

// workdayListingRequest is the POST body for the Workday jobs listing endpoint.
type workdayListingRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

// workdayListingResponse is the response from the Workday jobs listing
// endpoint. Some tenants return the page under "items" instead of
// "jobPostings".
type workdayListingResponse struct {
	Total       int                `json:"total"`
	JobPostings []model.RawListing `json:"jobPostings"`
	Items       []model.RawListing `json:"items"`
}

// WorkdayAdapter fetches jobs from a Workday career site's internal API.
type WorkdayAdapter struct {
	apiURL  string
	company model.Company
	client  *Client
}

// NewWorkdayAdapter creates an adapter for the company's Workday board.
func NewWorkdayAdapter(company model.Company, client *Client) (*WorkdayAdapter, error) {
	apiURL, err := ExtractWorkdayEndpoint(company.BoardURL)
	if err != nil {
		return nil, err
	}
	return &WorkdayAdapter{
		apiURL:  apiURL,
		company: company,
		client:  client,
	}, nil
}

// FetchPage requests one page of listings at offset page*PageSize.
func (a *WorkdayAdapter) FetchPage(ctx context.Context, page int) (model.Page, error) {
	body := workdayListingRequest{
		AppliedFacets: map[string]any{},
		Limit:         PageSize,
		Offset:        page * PageSize,
		SearchText:    "",
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return model.Page{}, fmt.Errorf("workday listing marshal for %s: %w", a.company.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiURL, bytes.NewReader(jsonBody))
	if err != nil {
		return model.Page{}, fmt.Errorf("workday listing request for %s: %w", a.company.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return model.Page{}, fmt.Errorf("workday listing fetch for %s: %w", a.company.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Page{}, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("workday listing fetch for %s: unexpected status %d", a.company.Name, resp.StatusCode),
		}
	}

	var listResp workdayListingResponse
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		return model.Page{}, fmt.Errorf("workday listing decode for %s: %w", a.company.Name, err)
	}

	listings := listResp.JobPostings
	if len(listings) == 0 {
		listings = listResp.Items
	}

	return model.Page{Listings: listings, Total: listResp.Total}, nil
}

// Normalize maps a Workday listing onto the canonical Job. Field fallbacks
// follow what tenants have been observed to serve; absent optional fields
// stay empty, never fabricated.
func (a *WorkdayAdapter) Normalize(raw model.RawListing) (model.Job, error) {
	title := raw.FirstString("title", "jobTitle")
	location := raw.FirstString("locationsText", "location")
	externalPath := raw.FirstString("externalPath", "path")

	url := raw.String("externalUrl")
	if url == "" && externalPath != "" {
		url = strings.TrimRight(a.company.BoardURL, "/") + externalPath
	}

	// The requisition ID hides in bulletFields under several labels; fall
	// back to listing-level IDs and finally the URL.
	bf := bulletFieldsToMap(raw["bulletFields"])
	externalID := firstNonEmpty(
		bf["Req ID"],
		bf["Requisition ID"],
		bf["Job Requisition ID"],
		bf["jobReqId"],
		raw.String("jobReqId"),
		raw.String("id"),
		externalPath,
		url,
	)
	if externalID == "" {
		return model.Job{}, fmt.Errorf("workday listing for %s has no usable identifier", a.company.Name)
	}
	if title == "" {
		title = "Unknown title"
	}

	return model.Job{
		CompanyID:   a.company.ID,
		Company:     a.company.Name,
		ExternalID:  externalID,
		Title:       title,
		Location:    location,
		URL:         url,
		Source:      "workday",
		PostedAt:    parsePostedOn(raw.String("postedOn")),
		Fingerprint: model.Fingerprint(a.company.Name, title, location, url),
	}, nil
}

// bulletFieldsToMap normalizes Workday's bulletFields, which arrive either
// as an object or as a list of {"label": ..., "value": ...} pairs.
func bulletFieldsToMap(v any) map[string]string {
	out := make(map[string]string)
	switch bf := v.(type) {
	case map[string]any:
		for k, val := range bf {
			if s, ok := val.(string); ok {
				out[k] = s
			}
		}
	case []any:
		for _, item := range bf {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			label, _ := m["label"].(string)
			if label == "" {
				label, _ = m["name"].(string)
			}
			value, _ := m["value"].(string)
			if label != "" {
				out[label] = value
			}
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

var daysAgoRegex = regexp.MustCompile(`^Posted (\d+) Days? Ago$`)

// parsePostedOn converts a Workday relative date string ("Posted Today",
// "Posted 3 Days Ago") to an approximate timestamp. "Posted 30+ Days Ago"
// and anything unrecognized yield nil.
func parsePostedOn(postedOn string) *time.Time {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch postedOn {
	case "Posted Today":
		return &today
	case "Posted Yesterday":
		t := today.AddDate(0, 0, -1)
		return &t
	}

	if m := daysAgoRegex.FindStringSubmatch(postedOn); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			t := today.AddDate(0, 0, -n)
			return &t
		}
	}

	return nil
}
