// Package workbooktest собирает xlsx-документы в памяти для тестов.
package workbooktest

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// Sheet — лист документа. Пустые строки в Rows не записываются в ячейки.
type Sheet struct {
	Name string
	Rows [][]any
}

// Build возвращает байты xlsx-документа с указанными листами.
func Build(t testing.TB, sheets ...Sheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			t.Fatalf("new sheet %s: %v", sheet.Name, err)
		}

		for r, row := range sheet.Rows {
			for c, value := range row {
				if value == nil || value == "" {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("cell name: %v", err)
				}
				if err := f.SetCellValue(sheet.Name, cell, value); err != nil {
					t.Fatalf("set %s!%s: %v", sheet.Name, cell, err)
				}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// Categories — лист с деревом A → B → C, A → B2.
func Categories(name string) Sheet {
	return Sheet{
		Name: name,
		Rows: [][]any{
			{"Tier 1", "Tier 2", "Tier 3", "Tier 4"},
			{"A"},
			{"", "B"},
			{"", "", "C"},
			{"", "B2"},
		},
	}
}
