package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/repfinder/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	ExtXLSX = ".xlsx"
	ExtCSV  = ".csv"

	// SheetName is the worksheet the xlsx export writes to.
	SheetName = "repeats"
)

// EnsureExtension appends ".xlsx" unless name already ends in a recognised
// extension.
func EnsureExtension(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ExtXLSX, ExtCSV:
		return name
	default:
		return name + ExtXLSX
	}
}

// Write exports t to path, choosing the format from the extension.
func Write(t Table, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtXLSX:
		return WriteXLSX(t, path)
	case ExtCSV:
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		if err := WriteCSV(t, f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	default:
		return apperrors.Newf(apperrors.ErrUnsupportedFormat, apperrors.ExitUsage,
			"%s: expected %s or %s", path, ExtXLSX, ExtCSV)
	}
}

// WriteXLSX writes t as a single-sheet workbook. The first row holds the
// patterns and the first column the 1-based row numbers.
func WriteXLSX(t Table, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	header := make([]interface{}, 0, len(t.Columns)+1)
	header = append(header, "")
	for _, c := range t.Columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range t.Rows {
		values := make([]interface{}, 0, len(row.Cells)+1)
		values = append(values, row.Number)
		for _, cell := range row.Cells {
			if cell.Present {
				values = append(values, cell.String())
			} else {
				values = append(values, nil)
			}
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("addressing row %d: %w", row.Number, err)
		}
		if err := f.SetSheetRow(SheetName, addr, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", row.Number, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes t with the same layout as WriteXLSX.
func WriteCSV(t Table, w io.Writer) error {
	cw := csv.NewWriter(w)
	header := append([]string{""}, t.Columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, row := range t.Rows {
		record := make([]string, 0, len(row.Cells)+1)
		record = append(record, strconv.Itoa(row.Number))
		for _, cell := range row.Cells {
			record = append(record, cell.String())
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row %d: %w", row.Number, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
