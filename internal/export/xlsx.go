package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// XLSXWriter implements SheetWriter by writing a local workbook.
type XLSXWriter struct {
	path string
	now  func() time.Time
}

// NewXLSXWriter creates a writer that saves to path, overwriting it.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{path: path, now: time.Now}
}

// Write saves a workbook with LISTINGS and SUMMARY sheets.
func (w *XLSXWriter) Write(ctx context.Context, rows []ListingRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", listingsSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if err := writeSheet(f, listingsSheet, listingValues(rows)); err != nil {
		return err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating %s: %w", summarySheet, err)
	}
	summary := [][]any{summaryHeader, buildSummaryRow(rows, w.now())}
	if err := writeSheet(f, summarySheet, summary); err != nil {
		return err
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("saving %s: %w", w.path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, values [][]any) error {
	for i, row := range values {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name for row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
