package domain

import (
	"time"

	"github.com/google/uuid"
)

// Import — запись об одном вызове задачи импорта категорий.
//
// Import создаётся Worker'ом при получении сообщения import.requested
// и хранится в истории импортов. Сами категории в историю не попадают.
type Import struct {
	// ID — уникальный идентификатор импорта.
	ID uuid.UUID `json:"id"`

	// MessageID — ID сообщения из очереди, породившего импорт.
	MessageID string `json:"message_id,omitempty"`

	// Filename — имя файла в файловом сервисе.
	Filename string `json:"filename"`

	// Status — текущий статус импорта.
	Status ImportStatus `json:"status"`

	// Stage — этап, на котором импорт упал. Пусто при успехе.
	Stage Stage `json:"stage,omitempty"`

	// Categories — количество построенных категорий.
	Categories int `json:"categories"`

	// Error — текст ошибки при неудаче.
	Error string `json:"error,omitempty"`

	// StartedAt — время начала обработки.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// CreatedAt — время получения запроса.
	CreatedAt time.Time `json:"created_at"`
}

// NewImport создаёт импорт в статусе QUEUED.
func NewImport(filename, messageID string) *Import {
	return &Import{
		ID:        uuid.New(),
		MessageID: messageID,
		Filename:  filename,
		Status:    ImportStatusQueued,
		CreatedAt: time.Now(),
	}
}

// Duration возвращает продолжительность обработки.
func (i *Import) Duration() time.Duration {
	if i.StartedAt == nil || i.FinishedAt == nil {
		return 0
	}
	return i.FinishedAt.Sub(*i.StartedAt)
}

// IsFinished возвращает true, если импорт завершён.
func (i *Import) IsFinished() bool {
	return i.Status.IsTerminal()
}

// MarkRunning переводит импорт в статус RUNNING.
func (i *Import) MarkRunning() {
	now := time.Now()
	i.Status = ImportStatusRunning
	i.StartedAt = &now
}

// MarkSucceeded переводит импорт в статус SUCCEEDED.
func (i *Import) MarkSucceeded(categories int) {
	now := time.Now()
	i.Status = ImportStatusSucceeded
	i.FinishedAt = &now
	i.Categories = categories
	i.Stage = ""
	i.Error = ""
}

// MarkFailed переводит импорт в статус FAILED с указанием этапа.
func (i *Import) MarkFailed(stage Stage, err string) {
	now := time.Now()
	i.Status = ImportStatusFailed
	i.FinishedAt = &now
	i.Stage = stage
	i.Error = err
}
