package services

import (
	"context"
	"database/sql"
)

// Warehouse yields the connection every service statement executes on.
// Satisfied by warehouse.Provider; tests substitute a stub backed by sqlmock.
type Warehouse interface {
	Acquire(ctx context.Context) (*sql.DB, error)
}
