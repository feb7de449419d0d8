// Package icost writes the fixed-schema bookkeeping CSV.
package icost

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xinyuanma/Bankstatements2iCost/pkg/models"
)

// Write emits the bookkeeping CSV: the fixed eleven-column header, then one
// row per record in input order.
func Write(w io.Writer, rows []models.Fields) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(models.Header()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, f := range rows {
		if err := cw.Write(f.Row()); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
