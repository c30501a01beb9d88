package database

import (
	"context"
)

// StateRepositoryInterface is the storage contract the Postgres persister depends on.
// Tests substitute an in-memory implementation.
type StateRepositoryInterface interface {
	GetAll(ctx context.Context) (map[string][]byte, error)
	PutAll(ctx context.Context, collections map[string][]byte) error
}

var _ StateRepositoryInterface = (*StateRepository)(nil)
