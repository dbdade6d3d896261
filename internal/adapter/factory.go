package adapter

import (
	"fmt"

	"github.com/oryndra/jobradar/internal/model"
)

// ForCompany builds the page fetcher matching the company's discovered ATS.
func ForCompany(company model.Company, client *Client) (model.PageFetcher, error) {
	switch company.ATSType {
	case "workday":
		return NewWorkdayAdapter(company, client)
	case "greenhouse":
		return NewGreenhouseAdapter(company, client)
	case "lever":
		return NewLeverAdapter(company, client)
	default:
		return nil, fmt.Errorf("unsupported ATS %q for %s", company.ATSType, company.Name)
	}
}
