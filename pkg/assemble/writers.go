package assemble

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"webcrawl/pkg/models"
)

// WriteJSONL writes one JSON object per page, one page per line.
func WriteJSONL(w io.Writer, pages []models.VisitedPage) error {
	encoder := json.NewEncoder(w)
	for i := range pages {
		if err := encoder.Encode(&pages[i]); err != nil {
			return fmt.Errorf("encoding page %q: %w", pages[i].URL, err)
		}
	}
	return nil
}

// WriteTSV writes the tabular packaging as tab-separated values with a
// header row.
func WriteTSV(w io.Writer, pages []models.VisitedPage) error {
	table := NewTable(pages)
	writer := csv.NewWriter(w)
	writer.Comma = '\t'

	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range table.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
