package domain

// Forest — лес категорий, закодированный списком с parent-индексами.
//
// Порядок элементов совпадает с порядком строк листа.
// Иерархия восстанавливается через Category.Parent.
type Forest []Category

// Node — вложенное представление категории для вывода (CLI, JSON).
type Node struct {
	Name     string  `json:"name"`
	Level    int     `json:"level"`
	Row      int     `json:"row,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// Len возвращает количество категорий.
func (f Forest) Len() int {
	return len(f)
}

// Roots возвращает индексы корневых категорий (без родителя).
func (f Forest) Roots() []int {
	var roots []int
	for i := range f {
		if !f[i].HasParent() {
			roots = append(roots, i)
		}
	}
	return roots
}

// Children возвращает индексы прямых потомков категории i в порядке строк.
func (f Forest) Children(i int) []int {
	var children []int
	for j := i + 1; j < len(f); j++ {
		if f[j].Parent == i {
			children = append(children, j)
		}
	}
	return children
}

// Path возвращает имена категорий от корня до i включительно.
func (f Forest) Path(i int) []string {
	if i < 0 || i >= len(f) {
		return nil
	}

	var path []string
	for cur := i; cur != NoParent; cur = f[cur].Parent {
		path = append(path, f[cur].Name)
	}

	// Разворачиваем: собирали от листа к корню
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path
}

// MaxLevel возвращает максимальную глубину в лесу.
func (f Forest) MaxLevel() int {
	maxLevel := 0
	for i := range f {
		maxLevel = max(maxLevel, f[i].Level)
	}
	return maxLevel
}

// Nodes строит вложенное представление леса.
//
// Один проход: родитель всегда раньше потомка, поэтому его узел уже создан.
func (f Forest) Nodes() []*Node {
	nodes := make([]*Node, len(f))
	roots := []*Node{}

	for i := range f {
		c := f[i]
		node := &Node{Name: c.Name, Level: c.Level, Row: c.Row}
		nodes[i] = node

		if c.HasParent() && c.Parent < i {
			parent := nodes[c.Parent]
			parent.Children = append(parent.Children, node)
			continue
		}
		roots = append(roots, node)
	}

	return roots
}
