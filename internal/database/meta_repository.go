package database

import (
	"database/sql"
	"fmt"
)

// MetaRepository stores small one-off service flags
type MetaRepository struct{}

// NewMetaRepository creates a new repository instance
func NewMetaRepository() *MetaRepository {
	return &MetaRepository{}
}

// Get returns the stored value for a key, or "" when unset
func (r *MetaRepository) Get(key string) (string, error) {
	var value string
	err := DB.Get(&value, "SELECT value FROM meta WHERE key = $1", key)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get meta key %s: %v", key, err)
	}
	return value, nil
}

// Set stores a value for a key, overwriting any previous one
func (r *MetaRepository) Set(key, value string) error {
	_, err := DB.Exec(
		`INSERT INTO meta (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set meta key %s: %v", key, err)
	}
	return nil
}
