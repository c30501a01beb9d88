package store

import (
	"context"
	"fmt"

	"github.com/benvon/daily-agent/internal/database"
	"github.com/benvon/daily-agent/internal/models"
)

// PostgresPersister stores the state collections as JSONB rows
type PostgresPersister struct {
	db   *database.DB
	repo database.StateRepositoryInterface
}

// NewPostgresPersister connects to Postgres and ensures the state table exists
func NewPostgresPersister(ctx context.Context, databaseURL string) (*PostgresPersister, error) {
	db, err := database.New(databaseURL)
	if err != nil {
		return nil, err
	}

	repo := database.NewStateRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			_ = closeErr
		}
		return nil, err
	}

	return &PostgresPersister{db: db, repo: repo}, nil
}

// Load implements Persister
func (p *PostgresPersister) Load(ctx context.Context) (*models.State, error) {
	collections, err := p.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return decodeState(collections)
}

// Save implements Persister
func (p *PostgresPersister) Save(ctx context.Context, state *models.State) error {
	collections, err := encodeState(state)
	if err != nil {
		return err
	}
	if err := p.repo.PutAll(ctx, collections); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Ping checks the database connection
func (p *PostgresPersister) Ping(ctx context.Context) error {
	if p.db == nil {
		return nil
	}
	return p.db.PingContext(ctx)
}

// Close implements Persister
func (p *PostgresPersister) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}
