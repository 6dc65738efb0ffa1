// Package export renders admin reports as spreadsheets.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/m3rciful/iskra/internal/domain"
)

const queueSheet = "Pending"

var queueHeader = []any{"Request", "User", "Name", "City", "Goal", "Preference", "Bio", "Submitted (UTC)", "Waiting (h)"}

// ModerationQueue writes pending requests into an xlsx workbook.
func ModerationQueue(reqs []domain.ModerationRequest, now time.Time) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", queueSheet); err != nil {
		return nil, fmt.Errorf("export: rename sheet: %w", err)
	}
	if err := f.SetSheetRow(queueSheet, "A1", &queueHeader); err != nil {
		return nil, fmt.Errorf("export: header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("export: style: %w", err)
	}
	if err := f.SetRowStyle(queueSheet, 1, 1, bold); err != nil {
		return nil, fmt.Errorf("export: style: %w", err)
	}

	for i, r := range reqs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("export: cell: %w", err)
		}
		row := []any{
			r.ID.String(),
			r.UserID,
			r.DisplayName,
			r.City,
			string(r.Goal),
			string(r.Preference),
			r.Bio,
			r.CreatedAt.UTC().Format("2006-01-02 15:04"),
			int(now.Sub(r.CreatedAt).Hours()),
		}
		if err := f.SetSheetRow(queueSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("export: row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(queueSheet, "A", "A", 38); err != nil {
		return nil, fmt.Errorf("export: width: %w", err)
	}
	if err := f.SetColWidth(queueSheet, "G", "G", 60); err != nil {
		return nil, fmt.Errorf("export: width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: write: %w", err)
	}
	return buf, nil
}
