package tree

import (
	"fmt"

	"github.com/shaiso/Importer/internal/domain"
)

// RowIterator — однопроходная последовательность строк листа.
//
// Реализуется workbook.Rows; для тестов достаточно SliceRows.
type RowIterator interface {
	// Next переходит к следующей строке. false — строки закончились.
	Next() bool

	// Columns возвращает ячейки текущей строки. Пустая ячейка — "".
	Columns() ([]string, error)

	// Err возвращает ошибку, прервавшую итерацию.
	Err() error
}

// Builder строит лес категорий по одной строке за раз.
//
// Заголовок Builder не пропускает — это делают Build и BuildRows.
// Builder не потокобезопасен; на каждый импорт создаётся новый.
type Builder struct {
	forest domain.Forest

	// stack — индексы открытых предков в forest, уровни растут снизу вверх.
	stack []int

	// row — номер последней добавленной строки листа.
	row int
}

// NewBuilder создаёт пустой Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Skip учитывает строку без добавления категории (заголовок).
func (b *Builder) Skip() {
	b.row++
}

// Add добавляет категорию для строки cells и возвращает её индекс.
func (b *Builder) Add(cells []string) int {
	b.row++

	name, raw := firstNonEmpty(cells)

	// Сворачиваем ветки, которые закончились: на вершине остаётся
	// ближайший предок с уровнем не больше raw.
	for len(b.stack) > 0 && b.forest[b.stack[len(b.stack)-1]].Level > raw {
		b.stack = b.stack[:len(b.stack)-1]
	}

	parent := domain.NoParent
	if len(b.stack) > 0 {
		parent = b.stack[len(b.stack)-1]
	}

	idx := len(b.forest)
	b.forest = append(b.forest, domain.Category{
		Name:   name,
		Level:  raw + 1,
		Parent: parent,
		Row:    b.row,
	})
	b.stack = append(b.stack, idx)

	return idx
}

// Forest возвращает построенный лес.
func (b *Builder) Forest() domain.Forest {
	return b.forest
}

// Depth возвращает текущую глубину стека предков.
func (b *Builder) Depth() int {
	return len(b.stack)
}

// Build строит лес из строк листа. Первая строка — заголовок, пропускается.
func Build(rows [][]string) domain.Forest {
	b := NewBuilder()
	for i, row := range rows {
		if i == 0 {
			b.Skip()
			continue
		}
		b.Add(row)
	}
	return nonNil(b.Forest())
}

// BuildRows строит лес из итератора строк.
//
// Ошибка возвращается только если сам источник строк не смог
// прочитать данные; в этом случае частичный лес не возвращается.
func BuildRows(rows RowIterator) (domain.Forest, error) {
	b := NewBuilder()
	header := true

	for rows.Next() {
		cells, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", b.row+1, err)
		}

		if header {
			header = false
			b.Skip()
			continue
		}
		b.Add(cells)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return nonNil(b.Forest()), nil
}

// firstNonEmpty возвращает текст первой непустой ячейки и её колонку.
// Для строки без данных — "" и -1 (итоговый уровень 0).
func firstNonEmpty(cells []string) (string, int) {
	for i, cell := range cells {
		if cell != "" {
			return cell, i
		}
	}
	return "", -1
}

func nonNil(f domain.Forest) domain.Forest {
	if f == nil {
		return domain.Forest{}
	}
	return f
}

// SliceRows — RowIterator поверх уже прочитанных строк.
type SliceRows struct {
	rows [][]string
	pos  int
}

// NewSliceRows создаёт итератор по rows.
func NewSliceRows(rows [][]string) *SliceRows {
	return &SliceRows{rows: rows, pos: -1}
}

// Next переходит к следующей строке.
func (s *SliceRows) Next() bool {
	if s.pos+1 >= len(s.rows) {
		return false
	}
	s.pos++
	return true
}

// Columns возвращает текущую строку.
func (s *SliceRows) Columns() ([]string, error) {
	if s.pos < 0 || s.pos >= len(s.rows) {
		return nil, fmt.Errorf("no current row")
	}
	return s.rows[s.pos], nil
}

// Err всегда nil.
func (s *SliceRows) Err() error {
	return nil
}
