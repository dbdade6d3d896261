package adapter

import (
	"net/http"

	"github.com/oryndra/jobradar/internal/ratelimit"
)

const userAgent = "JobRadar/1.0 (+https://github.com/oryndra/jobradar)"

// Client wraps an http.Client with the shared per-host rate limiter and the
// crawler User-Agent. Every adapter request goes through it.
type Client struct {
	hc      *http.Client
	limiter *ratelimit.HostLimiter
}

// NewClient returns a rate-limited HTTP client. limiter may be nil (tests).
func NewClient(hc *http.Client, limiter *ratelimit.HostLimiter) *Client {
	return &Client{hc: hc, limiter: limiter}
}

// Do waits for the target host's rate limiter, sets the User-Agent, and
// performs the request.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.WaitURL(req.Context(), req.URL.String()); err != nil {
			return nil, err
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}
	return c.hc.Do(req)
}
