package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/domain"
)

var _ domain.HistoryRepository = (*SQLHistoryRepository)(nil)

// SQLHistoryRepository keeps one JSON document per user in user_growth_history.
// Queries are written with ? and rebound for the driver, so it serves Postgres and SQLite alike.
type SQLHistoryRepository struct {
	db *sqlx.DB
}

func NewSQLHistoryRepository(db *sqlx.DB) *SQLHistoryRepository {
	return &SQLHistoryRepository{db: db}
}

type historyRow struct {
	UserID    string    `db:"user_id"`
	History   []byte    `db:"history"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *SQLHistoryRepository) Read(ctx context.Context, userID string) (domain.History, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var row historyRow
	query := r.db.Rebind(`SELECT user_id, history, updated_at FROM user_growth_history WHERE user_id = ?`)

	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHistoryNotFound
		}
		return nil, fmt.Errorf("repository: read history failed: %w", err)
	}

	var doc domain.Document
	if err := json.Unmarshal(row.History, &doc.History); err != nil {
		return nil, fmt.Errorf("repository: corrupted history for user %s: %w", userID, err)
	}
	if doc.History == nil {
		doc.History = domain.History{}
	}

	return doc.History, nil
}

func (r *SQLHistoryRepository) Write(ctx context.Context, userID string, history domain.History) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if history == nil {
		history = domain.History{}
	}

	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("repository: failed to marshal history: %w", err)
	}

	query := r.db.Rebind(`
		INSERT INTO user_growth_history (user_id, history, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET history = excluded.history,
		    updated_at = excluded.updated_at`)

	if _, err := r.db.ExecContext(ctx, query, userID, string(data), time.Now().UTC()); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("repository: write history failed: %w", err)
	}

	return nil
}
