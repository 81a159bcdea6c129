//go:build mem

package db

import "context"

// openSQLite fallback: use the in-memory store when built with the mem tag.
func openSQLite(ctx context.Context, dsn string) (Store, error) {
	return NewMemStore(), nil
}
