package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oryndra/jobradar/internal/model"
)

func workdayCompany() model.Company {
	return model.Company{
		ID:       1,
		Name:     "Telstra",
		ATSType:  "workday",
		BoardURL: "https://telstra.wd3.myworkdayjobs.com/Telstra_Careers",
	}
}

func newWorkdayTestAdapter(t *testing.T, srv *httptest.Server) *WorkdayAdapter {
	t.Helper()
	a, err := NewWorkdayAdapter(workdayCompany(), testClient(srv))
	if err != nil {
		t.Fatalf("NewWorkdayAdapter: %v", err)
	}
	return a
}

func TestWorkdayFetchPage_RequestShape(t *testing.T) {
	var gotPath string
	var gotBody workdayListingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total": 45, "jobPostings": [{"title": "CTO", "externalPath": "/job/CTO_R-1"}]}`))
	}))
	defer srv.Close()

	a := newWorkdayTestAdapter(t, srv)
	page, err := a.FetchPage(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/wday/cxs/telstra/Telstra_Careers/jobs" {
		t.Errorf("path = %s, want the cxs jobs endpoint", gotPath)
	}
	if gotBody.Limit != PageSize {
		t.Errorf("limit = %d, want %d", gotBody.Limit, PageSize)
	}
	if gotBody.Offset != 2*PageSize {
		t.Errorf("offset = %d, want %d", gotBody.Offset, 2*PageSize)
	}
	if page.Total != 45 {
		t.Errorf("total = %d, want 45", page.Total)
	}
	if len(page.Listings) != 1 {
		t.Errorf("listings = %d, want 1", len(page.Listings))
	}
}

func TestWorkdayFetchPage_ItemsFallback(t *testing.T) {
	// Some tenants serve the page under "items" instead of "jobPostings".
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total": 2, "items": [{"title": "CDO"}, {"title": "CIO"}]}`))
	}))
	defer srv.Close()

	a := newWorkdayTestAdapter(t, srv)
	page, err := a.FetchPage(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Listings) != 2 {
		t.Errorf("listings = %d, want 2 via items fallback", len(page.Listings))
	}
}

func TestWorkdayFetchPage_HTTPErrorCarriesRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := newWorkdayTestAdapter(t, srv)
	_, err := a.FetchPage(context.Background(), 0)
	if err == nil {
		t.Fatal("expected error for HTTP 429, got nil")
	}

	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error %v is not an HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", httpErr.StatusCode)
	}
	if httpErr.RetryAfter.Seconds() != 30 {
		t.Errorf("retry-after = %v, want 30s", httpErr.RetryAfter)
	}
}

func TestWorkdayNormalize(t *testing.T) {
	a, err := NewWorkdayAdapter(workdayCompany(), nil)
	if err != nil {
		t.Fatalf("NewWorkdayAdapter: %v", err)
	}

	raw := model.RawListing{
		"title":         "Chief Technology Officer",
		"locationsText": "Melbourne, VIC",
		"externalPath":  "/job/Melbourne/Chief-Technology-Officer_R-12345",
		"postedOn":      "Posted Today",
		"bulletFields":  []any{map[string]any{"label": "Req ID", "value": "R-12345"}},
	}

	job, err := a.Normalize(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if job.ExternalID != "R-12345" {
		t.Errorf("external id = %s, want R-12345 from bulletFields", job.ExternalID)
	}
	if job.Title != "Chief Technology Officer" {
		t.Errorf("title = %s", job.Title)
	}
	if job.Location != "Melbourne, VIC" {
		t.Errorf("location = %s", job.Location)
	}
	wantURL := "https://telstra.wd3.myworkdayjobs.com/Telstra_Careers/job/Melbourne/Chief-Technology-Officer_R-12345"
	if job.URL != wantURL {
		t.Errorf("url = %s, want %s", job.URL, wantURL)
	}
	if job.Source != "workday" {
		t.Errorf("source = %s, want workday", job.Source)
	}
	if job.PostedAt == nil {
		t.Error("expected PostedAt for Posted Today")
	}
	if job.Fingerprint == "" {
		t.Error("fingerprint should be computed at normalization")
	}
}

func TestWorkdayNormalize_IdentifierFallbackChain(t *testing.T) {
	a, err := NewWorkdayAdapter(workdayCompany(), nil)
	if err != nil {
		t.Fatalf("NewWorkdayAdapter: %v", err)
	}

	tests := []struct {
		name   string
		raw    model.RawListing
		wantID string
	}{
		{
			name:   "bulletFields object form",
			raw:    model.RawListing{"title": "CTO", "bulletFields": map[string]any{"Requisition ID": "REQ-9"}},
			wantID: "REQ-9",
		},
		{
			name:   "listing-level jobReqId",
			raw:    model.RawListing{"title": "CTO", "jobReqId": "JR-7"},
			wantID: "JR-7",
		},
		{
			name:   "falls back to externalPath",
			raw:    model.RawListing{"title": "CTO", "externalPath": "/job/CTO_R-5"},
			wantID: "/job/CTO_R-5",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, err := a.Normalize(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if job.ExternalID != tt.wantID {
				t.Errorf("external id = %s, want %s", job.ExternalID, tt.wantID)
			}
		})
	}

	// No identifier anywhere is a normalization error, not a fabricated id.
	if _, err := a.Normalize(model.RawListing{"title": "Mystery Role"}); err == nil {
		t.Error("expected error for listing with no identifier")
	}
}

func TestParsePostedOn(t *testing.T) {
	if got := parsePostedOn("Posted 3 Days Ago"); got == nil {
		t.Error("expected a timestamp for Posted 3 Days Ago")
	}
	if got := parsePostedOn("Posted Yesterday"); got == nil {
		t.Error("expected a timestamp for Posted Yesterday")
	}
	if got := parsePostedOn("Posted 30+ Days Ago"); got != nil {
		t.Errorf("open-ended relative date should yield nil, got %v", got)
	}
	if got := parsePostedOn(""); got != nil {
		t.Errorf("empty postedOn should yield nil, got %v", got)
	}
}
