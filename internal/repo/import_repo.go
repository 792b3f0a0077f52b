package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Importer/internal/domain"
)

const (
	// DefaultListLimit — размер выборки ListRecent по умолчанию.
	DefaultListLimit = 50
	maxListLimit     = 500
)

const importColumns = `id, message_id, filename, status, stage, categories, error,
	started_at, finished_at, created_at`

// ImportRepo — история импортов.
type ImportRepo struct {
	pool *pgxpool.Pool
}

// NewImportRepo создаёт новый ImportRepo.
func NewImportRepo(pool *pgxpool.Pool) *ImportRepo {
	return &ImportRepo{pool: pool}
}

// Create записывает новый импорт.
func (r *ImportRepo) Create(ctx context.Context, imp *domain.Import) error {
	query := `
		INSERT INTO imports (` + importColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		imp.ID,
		nullString(imp.MessageID),
		imp.Filename,
		imp.Status,
		nullString(string(imp.Stage)),
		imp.Categories,
		nullString(imp.Error),
		imp.StartedAt,
		imp.FinishedAt,
		imp.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: import %s", ErrAlreadyExists, imp.ID)
		}
		return fmt.Errorf("insert import: %w", err)
	}
	return nil
}

// Update сохраняет статус и итог импорта.
func (r *ImportRepo) Update(ctx context.Context, imp *domain.Import) error {
	query := `
		UPDATE imports
		SET status = $2, stage = $3, categories = $4, error = $5,
		    started_at = $6, finished_at = $7
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		imp.ID,
		imp.Status,
		nullString(string(imp.Stage)),
		imp.Categories,
		nullString(imp.Error),
		imp.StartedAt,
		imp.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("update import: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID возвращает импорт по ID.
func (r *ImportRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Import, error) {
	query := `SELECT ` + importColumns + ` FROM imports WHERE id = $1`
	return scanImport(r.pool.QueryRow(ctx, query, id))
}

// ListRecent возвращает последние импорты, новые первыми.
func (r *ImportRepo) ListRecent(ctx context.Context, limit int) ([]domain.Import, error) {
	query := `SELECT ` + importColumns + ` FROM imports ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	defer rows.Close()

	imports := []domain.Import{}
	for rows.Next() {
		imp, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		imports = append(imports, *imp)
	}
	return imports, rows.Err()
}

// clampLimit приводит limit к допустимому диапазону.
func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}

// scanImport читает одну строку; подходит и для pgx.Row, и для pgx.Rows.
func scanImport(row pgx.Row) (*domain.Import, error) {
	var imp domain.Import
	var messageID, stage, importErr *string

	err := row.Scan(
		&imp.ID,
		&messageID,
		&imp.Filename,
		&imp.Status,
		&stage,
		&imp.Categories,
		&importErr,
		&imp.StartedAt,
		&imp.FinishedAt,
		&imp.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan import: %w", err)
	}

	if messageID != nil {
		imp.MessageID = *messageID
	}
	if stage != nil {
		imp.Stage = domain.Stage(*stage)
	}
	if importErr != nil {
		imp.Error = *importErr
	}

	return &imp, nil
}
