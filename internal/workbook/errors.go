package workbook

import (
	"errors"
	"fmt"
)

// Ошибки разбора документа.
var (
	// ErrDecode — документ повреждён или не является таблицей.
	ErrDecode = errors.New("decode failed")

	// ErrUnsupportedFormat — формат распознан, но не поддерживается (.xls).
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported document format", ErrDecode)

	// ErrSheetNotFound — в документе нет листа с указанным именем.
	ErrSheetNotFound = errors.New("sheet not found")
)

// SheetNotFoundError — запрошенного листа нет в документе.
type SheetNotFoundError struct {
	Name string
}

// Error реализует интерфейс error.
func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("sheet %s not found", e.Name)
}

// Is позволяет проверять ошибку через errors.Is(err, ErrSheetNotFound).
func (e *SheetNotFoundError) Is(target error) bool {
	return target == ErrSheetNotFound
}
