package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rivals-tracker/internal/constants"

	"github.com/rs/zerolog"
)

// SQLiteStore keeps entries in the kv_entries table, one namespace per store.
type SQLiteStore struct {
	db        *sql.DB
	namespace string
	logger    zerolog.Logger
}

func NewSQLiteStore(db *sql.DB, namespace string, logger zerolog.Logger) *SQLiteStore {
	return &SQLiteStore{
		db:        db,
		namespace: namespace,
		logger:    logger.With().Str("namespace", namespace).Logger(),
	}
}

var _ Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv_entries WHERE namespace = ? AND key = ?`,
		s.namespace, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to read entry")
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_entries (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.namespace, key, value, time.Now().UTC(),
	)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to write entry")
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	s.logger.Debug().Str("key", key).Int("bytes", len(value)).Msg("entry written")
	return nil
}

func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE namespace = ? AND key = ?`,
		s.namespace, key,
	); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to remove entry")
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// PurgeNamespacesBefore drops entries of other session namespaces untouched since cutoff.
// Returns the number of rows removed.
func PurgeNamespacesBefore(ctx context.Context, db *sql.DB, namespacePrefix string, cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	res, err := db.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE namespace LIKE ? AND updated_at < ?`,
		namespacePrefix+"%", cutoff.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return res.RowsAffected()
}
