// Package ingest parses uploaded brokerage CSV exports into header-mapped
// raw records.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/bobmcallan/totalreturn/internal/models"
)

// ParseCSV reads one export file into raw records keyed by the file's own
// column headers. Exports are messy: a UTF-8 BOM on the first header,
// ragged rows, blank separator lines and trailing disclaimer text are all
// tolerated. Rows shorter than the header are padded with empty fields;
// extra fields are dropped. Rows that carry no data at all are skipped.
func ParseCSV(r io.Reader) ([]models.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []models.RawRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		record := make(models.RawRecord, len(header))
		empty := true
		for i, name := range header {
			if name == "" {
				continue
			}
			value := ""
			if i < len(row) {
				value = strings.TrimSpace(row[i])
			}
			record[name] = value
			if value != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}
