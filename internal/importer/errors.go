package importer

import (
	"errors"
	"fmt"

	"github.com/shaiso/Importer/internal/domain"
)

// StageError — ошибка конвейера с указанием этапа, на котором он прервался.
type StageError struct {
	Stage domain.Stage
	Err   error
}

// Error реализует интерфейс error.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap возвращает исходную ошибку.
func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf возвращает этап, на котором упал импорт.
// Для ошибок вне конвейера — пустая строка.
func StageOf(err error) domain.Stage {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return ""
}

func stageError(stage domain.Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
