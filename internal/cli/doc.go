// Package cli реализует инструмент командной строки importer.
//
// # Команды
//
//   - enqueue FILENAME... — поставить импорт файлов в очередь (import.requested)
//   - parse PATH          — разобрать локальный xlsx и вывести дерево категорий
//   - fetch FILENAME      — скачать файл из файлового сервиса и разобрать его
//
// parse и fetch выполняют тот же конвейер, что и воркер, но в процессе CLI:
// удобно для проверки документа до отправки в очередь.
//
// # Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json (для дерева — вложенные узлы)
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: importer parse a.xlsx --json | jq .
//
// Команды создаются фабриками (NewEnqueueCmd и т.д.), принимающими
// замыкания для ленивого создания зависимостей после разбора флагов.
package cli
