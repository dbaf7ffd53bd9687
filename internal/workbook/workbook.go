package workbook

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/apgr0ss/covid19-scraper/internal/table"
	"github.com/xuri/excelize/v2"
)

// maxSheetNameLength is Excel's limit on sheet name length, in characters.
const maxSheetNameLength = 31

// defaultSheet is the sheet excelize creates in a new file.
const defaultSheet = "Sheet1"

// ErrEmpty is returned when there is nothing to export
var ErrEmpty = errors.New("no state tables to export")

// SheetName converts a state name into a name Excel accepts: forbidden characters are
// removed, leading and trailing apostrophes are trimmed, and the result is cut to 31
// characters.
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return -1
		}
		return r
	}, name)
	name = strings.Trim(strings.TrimSpace(name), "'")

	if utf8.RuneCountInString(name) > maxSheetNameLength {
		name = string([]rune(name)[:maxSheetNameLength])
		name = strings.TrimRight(name, "' ")
	}

	if name == "" {
		return "Sheet"
	}
	return name
}

// Build renders the collection into an in-memory workbook. The caller must Close it.
func Build(c *Collection) (*excelize.File, error) {
	if c.Len() == 0 {
		return nil, ErrEmpty
	}

	f := excelize.NewFile()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close() // nolint:errcheck
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	for i, t := range c.Tables() {
		sheet := SheetName(t.Name)

		if i == 0 {
			// Reuse the default sheet so the workbook never carries an empty tab.
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				f.Close() // nolint:errcheck
				return nil, fmt.Errorf("naming sheet %q: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			f.Close() // nolint:errcheck
			return nil, fmt.Errorf("creating sheet %q: %w", sheet, err)
		}

		if err := writeSheet(f, sheet, t, header); err != nil {
			f.Close() // nolint:errcheck
			return nil, fmt.Errorf("writing sheet %q: %w", sheet, err)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Write serializes the collection as an xlsx workbook to w.
func Write(c *Collection, w io.Writer) error {
	f, err := Build(c)
	if err != nil {
		return err
	}
	defer f.Close() // nolint:errcheck

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// WriteFile saves the collection as an xlsx workbook at path.
func WriteFile(c *Collection, path string) error {
	f, err := Build(c)
	if err != nil {
		return err
	}
	defer f.Close() // nolint:errcheck

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, t *table.StateTable, headerStyle int) error {
	header := make([]interface{}, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(len(table.Columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		cells := row.Cells()
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}

	return nil
}
