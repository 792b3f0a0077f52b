// Package worker обрабатывает запросы на импорт из очереди imports.
//
// # Обзор
//
// Worker — stateless хост вокруг importer.Importer. На каждое сообщение
// import.requested он:
//
//  1. Создаёт запись Import (QUEUED → RUNNING) в истории
//  2. Выполняет конвейер fetch → decode → build с таймаутом на задачу
//  3. Передаёт построенный лес в Sink (если задан)
//  4. Фиксирует итог (SUCCEEDED или FAILED с этапом) и метрики
//  5. Публикует import.completed и подтверждает сообщение
//
// Ошибка конвейера — итог импорта, а не ошибка обработки: сообщение
// подтверждается и повторно не доставляется. В DLQ уходят только
// сообщения, которые нельзя разобрать.
//
// Параллельность задаётся prefetch очереди; общих изменяемых данных
// между импортами нет, кроме журнала последних импортов.
//
//	w := worker.New(worker.Config{
//	    Importer:  imp,
//	    Conn:      mqConn,
//	    Publisher: publisher,
//	    History:   importRepo, // опционально
//	    Metrics:   metrics,
//	    Logger:    logger,
//	})
//
//	if err := w.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop()
//
// # HTTP
//
// Handler() отдаёт /healthz и /imports (последние импорты в JSON);
// /metrics подключается в main через promhttp.
package worker
