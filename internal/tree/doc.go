// Package tree восстанавливает дерево категорий из строк листа.
//
// Вложенность в исходных таблицах задаётся отступом: имя категории
// записывается в колонку, номер которой равен глубине. Пакет превращает
// плоскую последовательность строк в domain.Forest за один проход
// со стеком предков, без возвратов и повторных проходов.
//
// Пример:
//
//	Header
//	A
//	    B
//	        C
//	    B2
//
// даёт A(1) → B(2) → C(3) и A(1) → B2(2): B2 прикрепляется к A,
// а не к C, потому что перед ним стек сворачивается до уровня 1.
//
// Построение никогда не падает на корректных строках: строка без
// непустых ячеек превращается в категорию с пустым именем и уровнем 0.
package tree
