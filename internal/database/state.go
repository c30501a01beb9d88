package database

import (
	"context"
	"fmt"
	"time"
)

// StateRepository stores serialized state collections keyed by logical name
type StateRepository struct {
	db *DB
}

// NewStateRepository creates a new state repository
func NewStateRepository(db *DB) *StateRepository {
	return &StateRepository{db: db}
}

// Migrate creates the agent_state table if it does not exist
func (r *StateRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS agent_state (
			name       TEXT PRIMARY KEY,
			data       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate agent_state: %w", err)
	}
	return nil
}

// GetAll returns every stored collection keyed by name
func (r *StateRepository) GetAll(ctx context.Context) (map[string][]byte, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, data FROM agent_state`)
	if err != nil {
		return nil, fmt.Errorf("failed to query agent_state: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var name string
		var data []byte
		if err := rows.Scan(&name, &data); err != nil {
			return nil, fmt.Errorf("failed to scan agent_state: %w", err)
		}
		out[name] = data
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating agent_state: %w", err)
	}

	return out, nil
}

// PutAll overwrites the given collections in a single transaction
func (r *StateRepository) PutAll(ctx context.Context, collections map[string][]byte) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	now := time.Now()
	for name, data := range collections {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO agent_state (name, data, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO UPDATE SET
				data = EXCLUDED.data,
				updated_at = EXCLUDED.updated_at
		`, name, data, now)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				_ = rbErr
			}
			return fmt.Errorf("failed to write state %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit state: %w", err)
	}
	return nil
}
