package store

import (
	"context"
	"fmt"

	"github.com/oryndra/jobradar/internal/model"
)

// UpsertCompany inserts or refreshes a company keyed on ticker. Seeding is
// rerunnable: name and website follow the holdings file, everything the
// discovery step fills in is left alone.
func (s *Store) UpsertCompany(ctx context.Context, c model.Company) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO companies (ticker, name, website_url, active)
VALUES (?, ?, ?, 1)
ON CONFLICT(ticker) WHERE ticker != '' DO UPDATE SET
  name        = excluded.name,
  website_url = CASE WHEN excluded.website_url != '' THEN excluded.website_url ELSE companies.website_url END;`,
		c.Ticker, c.Name, c.WebsiteURL,
	)
	if err != nil {
		return fmt.Errorf("upsert company %s: %w", c.Ticker, err)
	}
	return nil
}

// UpdateCompanyDiscovery records the outcome of an ATS discovery pass.
func (s *Store) UpdateCompanyDiscovery(ctx context.Context, id int64, atsType, boardURL, careersURL, notes string) error {
	if atsType == "" {
		atsType = "unknown"
	}
	_, err := s.db.ExecContext(ctx, `
UPDATE companies SET ats_type = ?, ats_board_url = ?, careers_url = ?, notes = ?
WHERE id = ?;`,
		atsType, boardURL, careersURL, notes, id,
	)
	if err != nil {
		return fmt.Errorf("update discovery for company %d: %w", id, err)
	}
	return nil
}

// IngestableCompanies returns active companies whose ATS board has been
// discovered. These are the pipeline's work items.
func (s *Store) IngestableCompanies(ctx context.Context) ([]model.Company, error) {
	return s.queryCompanies(ctx, `
SELECT id, ticker, name, website_url, ats_type, ats_board_url, careers_url, active, notes
FROM companies
WHERE active = 1 AND ats_type != 'unknown' AND ats_board_url != ''
ORDER BY name;`)
}

// UndiscoveredCompanies returns companies with a website but no known ATS
// board, the discovery step's work items.
func (s *Store) UndiscoveredCompanies(ctx context.Context, limit int) ([]model.Company, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.queryCompanies(ctx, `
SELECT id, ticker, name, website_url, ats_type, ats_board_url, careers_url, active, notes
FROM companies
WHERE active = 1 AND website_url != '' AND (ats_type = 'unknown' OR ats_board_url = '')
ORDER BY name
LIMIT ?;`, limit)
}

// ListCompanies returns every company.
func (s *Store) ListCompanies(ctx context.Context) ([]model.Company, error) {
	return s.queryCompanies(ctx, `
SELECT id, ticker, name, website_url, ats_type, ats_board_url, careers_url, active, notes
FROM companies
ORDER BY name;`)
}

func (s *Store) queryCompanies(ctx context.Context, query string, args ...any) ([]model.Company, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	var out []model.Company
	for rows.Next() {
		var c model.Company
		var active int
		if err := rows.Scan(&c.ID, &c.Ticker, &c.Name, &c.WebsiteURL, &c.ATSType,
			&c.BoardURL, &c.CareersURL, &active, &c.Notes); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		c.Active = active == 1
		out = append(out, c)
	}
	return out, rows.Err()
}
