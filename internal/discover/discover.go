// Package discover finds a company's ATS board by crawling its website:
// detect a known board URL on the homepage, otherwise follow the careers
// link and scan there.
package discover

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/oryndra/jobradar/internal/adapter"
	"github.com/oryndra/jobradar/internal/model"
)

// atsPatterns maps ATS names to the board-URL shapes they leave in page
// source. Order matters: the first match wins.
var atsPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"greenhouse", regexp.MustCompile(`(?i)https?://boards\.greenhouse\.io/[a-z0-9_-]+`)},
	{"lever", regexp.MustCompile(`(?i)https?://jobs\.lever\.co/[a-z0-9_-]+`)},
	{"workday", regexp.MustCompile(`(?i)https?://[^"'<>\s]+myworkdayjobs\.com[^"'<>\s]*`)},
	{"smartrecruiters", regexp.MustCompile(`(?i)https?://(?:www\.)?smartrecruiters\.com/[^"'<>\s]+`)},
	{"successfactors", regexp.MustCompile(`(?i)https?://[^"'<>\s]*successfactors\.com[^"'<>\s]*`)},
	{"icims", regexp.MustCompile(`(?i)https?://[^"'<>\s]*icims\.com[^"'<>\s]*`)},
	{"jobvite", regexp.MustCompile(`(?i)https?://[^"'<>\s]*jobvite\.com[^"'<>\s]*`)},
}

var careersLinkWords = []string{"careers", "career", "jobs", "join us", "work with us"}

var careersPathFallbacks = []string{
	"/careers",
	"/career",
	"/jobs",
	"/about/careers",
	"/about-us/careers",
}

// Result is the outcome of one company's discovery pass.
type Result struct {
	ATSType    string
	BoardURL   string
	CareersURL string
	Notes      string
}

// CompanyStore is the slice of the store discovery needs.
type CompanyStore interface {
	UndiscoveredCompanies(ctx context.Context, limit int) ([]model.Company, error)
	UpdateCompanyDiscovery(ctx context.Context, id int64, atsType, boardURL, careersURL, notes string) error
}

// Discoverer crawls company websites through the shared rate-limited client.
type Discoverer struct {
	client *adapter.Client
	logger *slog.Logger
}

// New creates a discoverer.
func New(client *adapter.Client, logger *slog.Logger) *Discoverer {
	return &Discoverer{client: client, logger: logger}
}

// Run discovers ATS boards for up to limit companies that have a website
// but no known board, recording each outcome on the company row.
func (d *Discoverer) Run(ctx context.Context, st CompanyStore, limit int) error {
	companies, err := st.UndiscoveredCompanies(ctx, limit)
	if err != nil {
		return err
	}
	d.logger.Info("discovering ATS boards", "companies", len(companies))

	for _, c := range companies {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		res := d.Discover(ctx, c)
		d.logger.Info("discovery result",
			"company", c.Name,
			"ats_type", res.ATSType,
			"board_url", res.BoardURL,
			"notes", res.Notes,
		)
		if err := st.UpdateCompanyDiscovery(ctx, c.ID, res.ATSType, res.BoardURL, res.CareersURL, res.Notes); err != nil {
			return err
		}
	}
	return nil
}

// Discover runs the homepage-then-careers scan for one company.
func (d *Discoverer) Discover(ctx context.Context, company model.Company) Result {
	if company.WebsiteURL == "" {
		return Result{Notes: "no website_url set"}
	}

	home, err := d.fetchHTML(ctx, company.WebsiteURL)
	if err != nil {
		return Result{Notes: fmt.Sprintf("failed to fetch homepage: %v", err)}
	}

	// The board link is sometimes right on the homepage.
	if ats, boardURL, ok := detectATS(home); ok {
		return Result{ATSType: ats, BoardURL: boardURL}
	}

	careersURL := d.findCareersLink(ctx, home, company.WebsiteURL)
	if careersURL == "" {
		return Result{Notes: "no careers link found on homepage"}
	}

	res := Result{CareersURL: careersURL}
	careersHTML, err := d.fetchHTML(ctx, careersURL)
	if err != nil {
		res.Notes = fmt.Sprintf("careers page found but failed to fetch: %v", err)
		return res
	}

	if ats, boardURL, ok := detectATS(careersHTML); ok {
		res.ATSType, res.BoardURL = ats, boardURL
		return res
	}

	// Some pages only carry the board URL inside href attributes.
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(careersHTML)); err == nil {
		var hrefs []string
		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			if href, ok := sel.Attr("href"); ok {
				hrefs = append(hrefs, href)
			}
		})
		if ats, boardURL, ok := detectATS(strings.Join(hrefs, " ")); ok {
			res.ATSType, res.BoardURL = ats, boardURL
			return res
		}
	}

	res.Notes = "careers page found but ATS not detected (possibly JS-rendered)"
	return res
}

// detectATS scans text for a known board-URL shape.
func detectATS(text string) (atsType, boardURL string, ok bool) {
	for _, p := range atsPatterns {
		if m := p.re.FindString(text); m != "" {
			return p.name, m, true
		}
	}
	return "", "", false
}

// findCareersLink looks for a careers anchor on the homepage and falls back
// to probing common careers paths.
func (d *Discoverer) findCareersLink(ctx context.Context, homeHTML, baseURL string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(homeHTML))
	if err == nil {
		var found string
		doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := strings.ToLower(strings.TrimSpace(sel.Text()))
			href, _ := sel.Attr("href")
			href = strings.TrimSpace(href)
			for _, kw := range careersLinkWords {
				if strings.Contains(text, kw) {
					switch {
					case strings.HasPrefix(href, "http"):
						found = href
					case strings.HasPrefix(href, "/"):
						found = strings.TrimRight(baseURL, "/") + href
					}
					return found == ""
				}
			}
			return true
		})
		if found != "" {
			return found
		}
	}

	for _, path := range careersPathFallbacks {
		probe := strings.TrimRight(baseURL, "/") + path
		if d.probe(ctx, probe) {
			return probe
		}
	}
	return ""
}

// probe reports whether a GET of url returns 200.
func (d *Discoverer) probe(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

func (d *Discoverer) fetchHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &model.HTTPError{StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}
	return string(body), nil
}
