package model

import (
	"fmt"
	"time"
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// FetchError attributes a failed board request to a company and page.
// It aborts ingestion for that company only; the rest of the batch proceeds.
type FetchError struct {
	Company string
	Page    int
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s page %d: %v", e.Company, e.Page, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// PersistError attributes a failed upsert to a single job record. The record
// is dropped from the current run's results and picked up on the next run.
type PersistError struct {
	Company    string
	ExternalID string
	Err        error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s/%s: %v", e.Company, e.ExternalID, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// DeliveryError reports a failed alert email for a run.
type DeliveryError struct {
	Recipient string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver alert to %s: %v", e.Recipient, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
