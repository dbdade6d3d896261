package adapter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

var (
	greenhouseTokenRegex = regexp.MustCompile(`(?i)greenhouse\.io/(?:embed/job_board\?for=)?([a-z0-9_-]+)`)
	leverSlugRegex       = regexp.MustCompile(`(?i)lever\.co/([a-z0-9_-]+)`)
	workdayBoardRegex    = regexp.MustCompile(`^(https?://[^/]+)/([^/?#]+)`)
)

// ExtractGreenhouseToken pulls the board token out of a stored board URL,
// e.g. https://boards.greenhouse.io/atlassian -> "atlassian".
func ExtractGreenhouseToken(boardURL string) (string, error) {
	m := greenhouseTokenRegex.FindStringSubmatch(boardURL)
	if m == nil {
		return "", fmt.Errorf("cannot extract greenhouse board token from %q", boardURL)
	}
	return m[1], nil
}

// ExtractLeverSlug pulls the company slug out of a stored board URL,
// e.g. https://jobs.lever.co/atlassian -> "atlassian".
func ExtractLeverSlug(boardURL string) (string, error) {
	m := leverSlugRegex.FindStringSubmatch(boardURL)
	if m == nil {
		return "", fmt.Errorf("cannot extract lever slug from %q", boardURL)
	}
	return m[1], nil
}

// ExtractWorkdayEndpoint derives the internal jobs API URL from a public
// Workday board URL. https://acme.wd3.myworkdayjobs.com/External becomes
// https://acme.wd3.myworkdayjobs.com/wday/cxs/acme/External/jobs.
func ExtractWorkdayEndpoint(boardURL string) (string, error) {
	m := workdayBoardRegex.FindStringSubmatch(strings.TrimSpace(boardURL))
	if m == nil {
		return "", fmt.Errorf("invalid workday board URL %q", boardURL)
	}
	base, site := m[1], m[2]
	host := strings.SplitN(base, "://", 2)[1]
	tenant := strings.SplitN(host, ".", 2)[0]
	return fmt.Sprintf("%s/wday/cxs/%s/%s/jobs", base, tenant, site), nil
}
