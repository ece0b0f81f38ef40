// Package render produces spreadsheet-ready output from extracted
// business records.
package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/oakmoor/scout/internal/extract"
)

var csvHeader = []string{
	"Business Name",
	"Phone Numbers",
	"Email Addresses",
	"Physical Address",
	"Services Offered",
	"Years in Business",
	"Website URL",
	"Confidence Score",
}

// CSV writes the records as a CSV document with a header row.
// List fields are joined with "; " so each record stays on one row.
func CSV(w io.Writer, records []extract.BusinessRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range records {
		years := ""
		if r.YearsInBusiness > 0 {
			years = strconv.Itoa(r.YearsInBusiness)
		}

		row := []string{
			r.Name,
			strings.Join(r.Phones, "; "),
			strings.Join(r.Emails, "; "),
			r.Address,
			strings.Join(r.Services, "; "),
			years,
			r.SourceURL,
			strconv.FormatFloat(r.Confidence, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// CSVString renders the records as a CSV document in memory.
func CSVString(records []extract.BusinessRecord) (string, error) {
	var sb strings.Builder
	if err := CSV(&sb, records); err != nil {
		return "", err
	}
	return sb.String(), nil
}
