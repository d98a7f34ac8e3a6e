package service

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/fredoxntz/store-automation/model"
)

// DecodeTable reads the first sheet of an xlsx workbook into a Table.
// headerRow is the zero-based index of the header row; Naver raw
// exports carry a one-line notice above the header, so their callers
// pass 1. A non-empty password opens workbook-encrypted files; a wrong
// password surfaces as ErrDecryptFailed before any table is built.
func DecodeTable(data []byte, password string, headerRow int) (*model.Table, error) {
	opts := excelize.Options{Password: password}
	f, err := excelize.OpenReader(bytes.NewReader(data), opts)
	if err != nil {
		if password != "" {
			return nil, fmt.Errorf("%w: %v", ErrDecryptFailed, err)
		}
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) <= headerRow {
		return nil, fmt.Errorf("sheet %q has no header row at index %d", sheet, headerRow)
	}

	table := model.NewTable(rows[headerRow])
	for _, raw := range rows[headerRow+1:] {
		row := make(model.Row, len(table.Columns))
		for i, col := range table.Columns {
			if i < len(raw) {
				row[col] = raw[i]
			} else {
				// GetRows drops trailing empty cells.
				row[col] = ""
			}
		}
		table.Append(row)
	}
	return table, nil
}

// EncodeTable serializes a table to xlsx bytes with the table's column
// order as the header row.
func EncodeTable(t *model.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range t.Rows {
		values := make([]interface{}, len(t.Columns))
		for j, col := range t.Columns {
			values[j] = row[col]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadBulkColumns reads the header row of a reference bulk file to
// discover the marketplace's current column order. The reference file
// is optional: any failure falls back to the hard-coded list so the
// builders keep producing structurally valid files offline.
func LoadBulkColumns(path string, fallback []string) []string {
	if path == "" {
		return fallback
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fallback
	}
	table, err := DecodeTable(data, "", 0)
	if err != nil || len(table.Columns) == 0 {
		return fallback
	}
	return table.Columns
}
