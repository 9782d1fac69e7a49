package favorites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id FROM favorites WHERE session_id = $1 ORDER BY created_at`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return ids, nil
}

func (r *PostgresRepository) Add(ctx context.Context, sessionID, productID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO favorites (product_id, session_id) VALUES ($1, $2)`,
		productID, sessionID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil // already a favorite
		}
		return fmt.Errorf("failed to insert favorite: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Remove(ctx context.Context, sessionID, productID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE product_id = $1 AND session_id = $2`,
		productID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Clear(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to clear favorites: %w", err)
	}
	return nil
}
