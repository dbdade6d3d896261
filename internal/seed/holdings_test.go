package seed

import (
	"strings"
	"testing"
)

// sample mirrors the real PCF layout: fund metadata above the table, a
// ragged footer below it.
const sampleHoldings = `iShares Core S&P/ASX 200 ETF
Fund Holdings as of,"21-Aug-2026"
Inception Date,"06-Dec-2010"

Ticker,Security Name,Sector,Asset Class,ISIN,Weight (%)
BHP,BHP GROUP LTD,Materials,Equity,AU000000BHP4,9.71
CBA,COMMONWEALTH BANK OF AUSTRALIA,Financials,Equity,AU000000CBA7,9.02
ANZ,ANZ GROUP HOLDINGS LTD,Financials,Equity,AU000000ANZ3,3.11
CBA,COMMONWEALTH BANK OF AUSTRALIA,Financials,Equity,AU000000CBA7,9.02
,,,,,
"The content above is for information purposes only"
`

func TestParseHoldingsCSV(t *testing.T) {
	holdings, err := ParseHoldingsCSV(strings.NewReader(sampleHoldings))
	if err != nil {
		t.Fatalf("ParseHoldingsCSV: %v", err)
	}

	if len(holdings) != 3 {
		t.Fatalf("holdings = %d, want 3 (duplicate row collapsed)", len(holdings))
	}
	if holdings[0].Ticker != "BHP" {
		t.Errorf("ticker = %s, want BHP", holdings[0].Ticker)
	}
	if holdings[0].Name != "Bhp Group Ltd" {
		t.Errorf("name = %q, want title-cased", holdings[0].Name)
	}
	if holdings[1].Ticker != "CBA" || holdings[2].Ticker != "ANZ" {
		t.Errorf("tickers = %s, %s", holdings[1].Ticker, holdings[2].Ticker)
	}
}

func TestParseHoldingsCSV_NoHeader(t *testing.T) {
	_, err := ParseHoldingsCSV(strings.NewReader("just,some,random,rows\n1,2,3,4\n"))
	if err == nil {
		t.Fatal("expected error when the holdings table header is absent")
	}
}

func TestIsinToTicker(t *testing.T) {
	tests := []struct {
		isin string
		want string
	}{
		{"AU000000BHP4", "BHP"},
		{"AU000000ANZ3", "ANZ"},
		{"AU000000CSL8", "CSL"},
		{"AU0000030678", "AU0000030678"}, // all-numeric body passes through
		{"US0378331005", "US0378331005"}, // non-AU passes through
		{"garbage", "garbage"},
	}
	for _, tt := range tests {
		if got := isinToTicker(tt.isin); got != tt.want {
			t.Errorf("isinToTicker(%s) = %s, want %s", tt.isin, got, tt.want)
		}
	}
}

func TestCompanies_AttachesKnownWebsites(t *testing.T) {
	companies := Companies([]Holding{
		{Ticker: "TLS", Name: "Telstra Group Ltd"},
		{Ticker: "ZZZ", Name: "Obscure Co"},
	})

	if len(companies) != 2 {
		t.Fatalf("companies = %d, want 2", len(companies))
	}
	if companies[0].WebsiteURL == "" {
		t.Error("TLS should carry a known website")
	}
	if companies[1].WebsiteURL != "" {
		t.Error("unknown ticker should have no website, not a guessed one")
	}
	for _, c := range companies {
		if !c.Active {
			t.Errorf("company %s should be seeded active", c.Ticker)
		}
	}
}
