// Package scheduler периодически ставит импорты в очередь.
//
// По cron-выражению (5 полей, robfig/cron) на каждом тике публикуется
// import.requested для каждого файла из списка. Сам импорт выполняет
// importer-worker; планировщик только отправляет запросы.
//
// Ошибка публикации одного файла не мешает остальным.
package scheduler
