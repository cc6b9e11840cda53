package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/aim/internal/db"
)

// ConfigRepository implements secondary.ConfigRepository over the config
// table. It backs the stored-config provider, the highest precedence layer.
type ConfigRepository struct {
	store *db.Store
}

// NewConfigRepository creates a new SQLite config repository.
func NewConfigRepository(store *db.Store) *ConfigRepository {
	return &ConfigRepository{store: store}
}

// Get returns the value for a key, or empty when unset.
func (r *ConfigRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.store.QueryOne(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get config %s: %w", key, err)
	}
	return value, nil
}

// Set upserts a key/value pair.
func (r *ConfigRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.store.Execute(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set config %s: %w", key, err)
	}
	return nil
}

// All returns every stored key/value pair.
func (r *ConfigRepository) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.store.QueryAll(ctx, "SELECT key, value FROM config ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list config: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan config: %w", err)
		}
		values[k] = v
	}

	return values, rows.Err()
}
