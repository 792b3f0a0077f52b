// Package workbook открывает документы таблиц из памяти.
//
// Формат определяется по содержимому, а не по расширению:
// OOXML (zip-контейнер) открывается через excelize, старый бинарный
// формат .xls (OLE2) отклоняется как неподдерживаемый.
package workbook

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

// Workbook — открытый документ.
type Workbook struct {
	file   *excelize.File
	format string
}

// Open открывает документ из байтов.
func Open(data []byte) (*Workbook, error) {
	format, err := detect(data)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return &Workbook{file: f, format: format}, nil
}

// detect проверяет сигнатуру документа.
func detect(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty document", ErrDecode)
	}

	mtype := mimetype.Detect(data)

	// xlsx — наследник zip в дереве mimetype; обычный zip тоже пропускаем,
	// если xlsx не распознан по первым записям архива — решит excelize.
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return mtype.String(), nil
		}
	}

	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("application/x-ole-storage") {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mtype.String())
		}
	}

	return "", fmt.Errorf("%w: not a spreadsheet (%s)", ErrDecode, mtype.String())
}

// Format возвращает MIME-тип, определённый по содержимому.
func (w *Workbook) Format() string {
	return w.format
}

// SheetNames возвращает имена листов в порядке следования.
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// HasSheet проверяет наличие листа с точным именем (с учётом регистра).
func (w *Workbook) HasSheet(name string) bool {
	for _, sheet := range w.file.GetSheetList() {
		if sheet == name {
			return true
		}
	}
	return false
}

// Worksheet возвращает строки листа name.
func (w *Workbook) Worksheet(name string) (*Rows, error) {
	if !w.HasSheet(name) {
		return nil, &SheetNotFoundError{Name: name}
	}

	rows, err := w.file.Rows(name)
	if err != nil {
		var notExist excelize.ErrSheetNotExist
		if errors.As(err, &notExist) {
			return nil, &SheetNotFoundError{Name: name}
		}
		return nil, fmt.Errorf("%w: open sheet %s: %v", ErrDecode, name, err)
	}

	return &Rows{rows: rows}, nil
}

// Close освобождает ресурсы документа.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// Rows — однопроходный итератор по строкам листа.
//
// Ячейки возвращаются отформатированными строками: числа и даты —
// в отображаемом виде, пустые ячейки внутри строки — "".
// Хвостовые пустые ячейки в строку не попадают.
type Rows struct {
	rows *excelize.Rows
	err  error
}

// Next переходит к следующей строке.
func (r *Rows) Next() bool {
	if r.err != nil {
		return false
	}
	return r.rows.Next()
}

// Columns возвращает ячейки текущей строки.
func (r *Rows) Columns() ([]string, error) {
	cols, err := r.rows.Columns()
	if err != nil {
		r.err = fmt.Errorf("%w: %v", ErrDecode, err)
		return nil, r.err
	}
	if cols == nil {
		cols = []string{}
	}
	return cols, nil
}

// Err возвращает ошибку итерации.
func (r *Rows) Err() error {
	if r.err != nil {
		return r.err
	}
	if err := r.rows.Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// Close закрывает итератор.
func (r *Rows) Close() error {
	return r.rows.Close()
}

// ReadAll читает все оставшиеся строки.
func ReadAll(rows *Rows) ([][]string, error) {
	var result [][]string
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return nil, err
		}
		result = append(result, cols)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
