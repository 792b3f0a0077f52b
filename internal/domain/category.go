package domain

// NoParent — значение Category.Parent для корневых категорий.
const NoParent = -1

// Category — узел дерева категорий, восстановленного из листа таблицы.
//
// Категории хранятся в Forest (arena) в порядке строк листа.
// Родитель задаётся индексом в той же arena, а не указателем:
// категория не владеет родителем, и лес сериализуется без рекурсии.
type Category struct {
	// Name — текст первой непустой ячейки строки.
	// Пустая строка, если в строке нет ни одной непустой ячейки.
	Name string `json:"name"`

	// Level — глубина вложенности: индекс колонки первой непустой ячейки + 1.
	// Для строки без непустых ячеек — 0.
	Level int `json:"level"`

	// Parent — индекс родителя в Forest или NoParent.
	// Родитель всегда расположен раньше в Forest и имеет меньший Level.
	Parent int `json:"parent"`

	// Row — номер строки листа (с 1, как в Excel). Только для диагностики.
	Row int `json:"row,omitempty"`
}

// HasParent возвращает true, если у категории есть родитель.
func (c Category) HasParent() bool {
	return c.Parent != NoParent
}

// IsBlank возвращает true для вырожденной категории из строки без данных.
func (c Category) IsBlank() bool {
	return c.Name == "" && c.Level == 0
}
