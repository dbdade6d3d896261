package model

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Company identifies one employer and its ATS board. Rows are created by
// seeding/discovery and are read-only to the ingestion pipeline.
type Company struct {
	ID         int64
	Ticker     string
	Name       string
	WebsiteURL string
	ATSType    string // "workday", "greenhouse", "lever", or "unknown"
	BoardURL   string
	CareersURL string
	Active     bool
	Notes      string
}

// RawListing is one ATS-native page item. Its shape is controlled entirely
// by the ATS; only the adapter's normalization step may look inside.
type RawListing map[string]any

// String returns the raw value for key if present and a string.
func (r RawListing) String(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// FirstString returns the first non-empty string value among keys.
// Adapters use this to express field-name fallback chains explicitly.
func (r RawListing) FirstString(keys ...string) string {
	for _, k := range keys {
		if s := r.String(k); s != "" {
			return s
		}
	}
	return ""
}

// Number returns the raw value for key as a float64 (JSON numbers decode to
// float64 inside a RawListing).
func (r RawListing) Number(key string) (float64, bool) {
	v, ok := r[key].(float64)
	return v, ok
}

// Page is one page of listings returned by a board.
type Page struct {
	Listings []RawListing
	Total    int // total postings reported by the ATS, 0 if unknown
}

// Job is the canonical normalized posting. (CompanyID, ExternalID) is the
// dedup key; the storage row id is never used for identity.
type Job struct {
	ID          int64 // storage row id, 0 until persisted
	CompanyID   int64
	Company     string // display name, carried for alerts
	ExternalID  string // ATS-native identifier, unique per company
	Title       string
	Location    string
	Department  string
	URL         string
	Source      string     // ATS name
	PostedAt    *time.Time // best effort; nil when the ATS gives nothing usable
	Fingerprint string
	FirstSeen   time.Time
	LastSeen    time.Time
	Active      bool
}

// Fingerprint hashes a posting's normalized content so silent edits can be
// detected without comparing every field.
func Fingerprint(company, title, location, url string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s", company, title, location, url)))
	return hex.EncodeToString(sum[:])
}

// PageFetcher fetches and normalizes listings for a single company's board.
// Boards without native pagination return everything on page 0 and an empty
// Page for every later index.
type PageFetcher interface {
	FetchPage(ctx context.Context, page int) (Page, error)
	Normalize(raw RawListing) (Job, error)
}

// JobStore persists jobs keyed on (company_id, external_id).
type JobStore interface {
	// GetFingerprint looks up the stored fingerprint for the dedup key.
	GetFingerprint(ctx context.Context, companyID int64, externalID string) (string, bool, error)
	// UpsertJob inserts or updates the job atomically and reports whether
	// this call created the row. first_seen is immutable once set.
	UpsertJob(ctx context.Context, job Job, now time.Time) (Job, bool, error)
}

// Mailer delivers one batched alert message.
type Mailer interface {
	Send(ctx context.Context, subject, htmlBody string) error
}
