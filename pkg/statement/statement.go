// Package statement reads semicolon-delimited bank statement exports into
// normalized records.
package statement

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/xinyuanma/Bankstatements2iCost/pkg/models"
)

type Reader struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Reader {
	return &Reader{
		logger: logger,
	}
}

// Read parses a statement into records. Headers and values are stripped of
// surrounding whitespace and double quotes; rows shorter than the header
// read as empty for the missing columns. Structural CSV errors surface to
// the caller.
func (r *Reader) Read(in io.Reader) ([]models.Record, error) {
	cr := csv.NewReader(in)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1 // exports vary per bank, validate per row instead

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read statement header: %w", err)
	}

	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = models.Clean(h)
	}
	r.logger.Debug("parsed statement header", "columns", cols)

	var records []models.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read statement row: %w", err)
		}

		rec := make(models.Record, len(cols))
		for i, col := range cols {
			if col == "" {
				continue
			}
			if i < len(row) {
				rec[col] = models.Clean(row[i])
			} else {
				rec[col] = ""
			}
		}
		records = append(records, rec)
	}

	r.logger.Debug("statement parsed", "records", len(records))
	return records, nil
}
