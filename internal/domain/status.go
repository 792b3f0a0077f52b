package domain

// ImportStatus — статус импорта категорий.
//
// Жизненный цикл:
//
//	QUEUED → RUNNING → SUCCEEDED
//	                 ↘ FAILED
//
// Повторных попыток нет: FAILED — финальный статус.
type ImportStatus string

const (
	// ImportStatusQueued — запрос получен, обработка ещё не началась.
	ImportStatusQueued ImportStatus = "QUEUED"

	// ImportStatusRunning — файл скачивается или разбирается.
	ImportStatusRunning ImportStatus = "RUNNING"

	// ImportStatusSucceeded — дерево категорий построено.
	ImportStatusSucceeded ImportStatus = "SUCCEEDED"

	// ImportStatusFailed — импорт прерван на одном из этапов.
	ImportStatusFailed ImportStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный.
func (s ImportStatus) IsTerminal() bool {
	switch s {
	case ImportStatusSucceeded, ImportStatusFailed:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление ImportStatus.
func (s ImportStatus) String() string {
	return string(s)
}

// ParseImportStatus парсит строку в ImportStatus.
func ParseImportStatus(s string) ImportStatus {
	switch s {
	case "RUNNING":
		return ImportStatusRunning
	case "SUCCEEDED":
		return ImportStatusSucceeded
	case "FAILED":
		return ImportStatusFailed
	default:
		return ImportStatusQueued
	}
}

// Stage — этап конвейера импорта.
type Stage string

const (
	StageFetch  Stage = "fetch"
	StageDecode Stage = "decode"
	StageBuild  Stage = "build"

	// StageSink — получатель отклонил построенный лес.
	StageSink Stage = "sink"
)
