package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ury-pos/pos-core/internal/database"
	"github.com/ury-pos/pos-core/internal/errors"
)

const defaultErrorLogLimit = 50

// ErrorLogRepository appends and reads the persisted internal error log.
type ErrorLogRepository struct {
	db *database.DB
}

// NewErrorLogRepository creates a new ErrorLogRepository.
func NewErrorLogRepository(db *database.DB) *ErrorLogRepository {
	return &ErrorLogRepository{db: db}
}

// Append inserts one entry. Entries are never updated or deleted.
func (r *ErrorLogRepository) Append(ctx context.Context, entry *ErrorLogEntry) error {
	entry.ID = uuid.NewString()

	query := `
		INSERT INTO pos_error_log (id, title, message)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	if err := r.db.QueryRow(ctx, query, entry.ID, entry.Title, entry.Message).Scan(&entry.CreatedAt); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to append error log entry")
	}
	return nil
}

// ListRecent returns up to limit entries, newest first. A non-positive
// limit falls back to 50.
func (r *ErrorLogRepository) ListRecent(ctx context.Context, limit int) ([]*ErrorLogEntry, error) {
	if limit <= 0 {
		limit = defaultErrorLogLimit
	}

	query := `
		SELECT id::text, title, message, created_at
		FROM pos_error_log
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to list error log")
	}
	defer rows.Close()

	return r.scanRows(rows)
}

// ── scan helpers ──────────────────────────────────────────────────────────────

func (r *ErrorLogRepository) scanRows(rows pgx.Rows) ([]*ErrorLogEntry, error) {
	entries := make([]*ErrorLogEntry, 0)
	for rows.Next() {
		entry := &ErrorLogEntry{}
		if err := rows.Scan(&entry.ID, &entry.Title, &entry.Message, &entry.CreatedAt); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan error log entry")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to read error log")
	}
	return entries, nil
}
