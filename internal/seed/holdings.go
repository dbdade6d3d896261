// Package seed loads the one-time company list from an index-holdings CSV
// (the iShares IOZ portfolio composition file) and upserts it into the
// store. The pipeline consumes company rows read-only.
package seed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/oryndra/jobradar/internal/model"
)

// Holding is one parsed holdings row.
type Holding struct {
	Ticker string
	Name   string
	ISIN   string
}

// ParseHoldingsCSV reads a PCF-style holdings file. The file carries fund
// metadata above the actual table, so the parser first scans for the header
// line naming both "Security Name" and "ISIN" columns.
func ParseHoldingsCSV(r io.Reader) ([]Holding, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read holdings csv: %w", err)
	}

	var lines []string
	for _, ln := range strings.Split(string(raw), "\n") {
		if strings.TrimSpace(ln) != "" {
			lines = append(lines, strings.TrimRight(ln, "\r"))
		}
	}

	headerIdx := -1
	for i, line := range lines {
		low := strings.ToLower(line)
		if strings.Contains(low, "security name") && strings.Contains(low, "isin") {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return nil, fmt.Errorf("holdings table header not found (needs %q and %q columns)", "Security Name", "ISIN")
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(lines[headerIdx:], "\n")))
	reader.FieldsPerRecord = -1 // footer rows are ragged

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read holdings header: %w", err)
	}
	nameCol, isinCol := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "security name":
			nameCol = i
		case "isin":
			isinCol = i
		}
	}
	if nameCol == -1 || isinCol == -1 {
		return nil, fmt.Errorf("holdings header missing required columns")
	}

	var out []Holding
	seen := make(map[string]struct{})
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Ragged footer noise; the table is over.
			break
		}
		if nameCol >= len(row) || isinCol >= len(row) {
			continue
		}
		name := strings.TrimSpace(row[nameCol])
		isin := strings.TrimSpace(row[isinCol])
		if name == "" || isin == "" {
			continue
		}

		ticker := isinToTicker(isin)
		if _, dup := seen[ticker]; dup {
			continue
		}
		seen[ticker] = struct{}{}

		out = append(out, Holding{
			Ticker: ticker,
			Name:   titleCase(name),
			ISIN:   isin,
		})
	}

	return out, nil
}

// isinToTicker extracts the ASX ticker from an Australian ISIN.
// AU000000ANZ3 -> ANZ: strip the country prefix, the trailing check digit,
// then the zero padding. Non-AU or malformed ISINs pass through unchanged.
func isinToTicker(isin string) string {
	isin = strings.ToUpper(strings.TrimSpace(isin))
	if !strings.HasPrefix(isin, "AU") || len(isin) != 12 {
		return isin
	}
	core := strings.TrimRight(isin[2:], "0123456789")
	ticker := strings.TrimLeft(core, "0")
	if ticker == "" {
		return isin
	}
	return ticker
}

// titleCase normalizes the all-caps security names the file ships with.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Companies converts holdings to company rows, attaching known websites.
// Holdings without a known website are still seeded; discovery skips them
// until a website is filled in.
func Companies(holdings []Holding) []model.Company {
	out := make([]model.Company, 0, len(holdings))
	for _, h := range holdings {
		out = append(out, model.Company{
			Ticker:     h.Ticker,
			Name:       h.Name,
			WebsiteURL: knownWebsites[h.Ticker],
			Active:     true,
		})
	}
	return out
}

// LoadFile parses a holdings CSV from disk.
func LoadFile(path string) ([]Holding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open holdings csv: %w", err)
	}
	defer f.Close()
	return ParseHoldingsCSV(f)
}
