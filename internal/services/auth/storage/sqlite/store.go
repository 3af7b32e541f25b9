package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/openpreview/preprint.review/internal/platform/storage/sqlitemigrate"
	"github.com/openpreview/preprint.review/internal/services/auth/storage"
	"github.com/openpreview/preprint.review/internal/services/auth/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for auth session state.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens an auth SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := store.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) runMigrations() error {
	return sqlitemigrate.ApplyMigrations(s.sqlDB, migrations.FS, "")
}

// PutSession persists one session row.
func (s *Store) PutSession(ctx context.Context, record storage.SessionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizeSessionRecord(record)
	if err != nil {
		return err
	}

	var revokedAt sql.NullInt64
	if normalized.RevokedAt != nil {
		revokedAt = sql.NullInt64{Int64: toMillis(*normalized.RevokedAt), Valid: true}
	}
	_, err = s.sqlDB.ExecContext(ctx, `
	INSERT INTO auth_sessions (
		id, orcid, created_at, expires_at, revoked_at
	) VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		orcid = excluded.orcid,
		created_at = excluded.created_at,
		expires_at = excluded.expires_at,
		revoked_at = excluded.revoked_at
	`,
		normalized.ID,
		normalized.ORCID,
		toMillis(normalized.CreatedAt),
		toMillis(normalized.ExpiresAt),
		revokedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// GetSession loads one session row by ID.
func (s *Store) GetSession(ctx context.Context, sessionID string) (storage.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.SessionRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.SessionRecord{}, fmt.Errorf("storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return storage.SessionRecord{}, fmt.Errorf("session id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, orcid, created_at, expires_at, revoked_at
FROM auth_sessions
WHERE id = ?
`, sessionID)
	record, err := scanSession(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.SessionRecord{}, storage.ErrNotFound
		}
		return storage.SessionRecord{}, fmt.Errorf("get session: %w", err)
	}
	return record, nil
}

// RevokeSession marks one session row as revoked.
func (s *Store) RevokeSession(ctx context.Context, sessionID string, revokedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if revokedAt.IsZero() {
		return fmt.Errorf("revoked at is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE auth_sessions
SET revoked_at = ?
WHERE id = ? AND revoked_at IS NULL
`, toMillis(revokedAt.UTC()), sessionID)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke session rows affected: %w", err)
	}
	if affected == 0 {
		// Either unknown or already revoked. Distinguish for the caller.
		if _, getErr := s.GetSession(ctx, sessionID); getErr != nil {
			return getErr
		}
		return nil
	}
	return nil
}

type scanner func(dest ...any) error

func normalizeSessionRecord(record storage.SessionRecord) (storage.SessionRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.ORCID = strings.TrimSpace(record.ORCID)
	if record.ID == "" {
		return storage.SessionRecord{}, fmt.Errorf("session id is required")
	}
	if record.ORCID == "" {
		return storage.SessionRecord{}, fmt.Errorf("orcid is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.SessionRecord{}, fmt.Errorf("created_at is required")
	}
	if record.ExpiresAt.IsZero() {
		return storage.SessionRecord{}, fmt.Errorf("expires_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.ExpiresAt = record.ExpiresAt.UTC()
	if record.RevokedAt != nil {
		revokedAt := record.RevokedAt.UTC()
		record.RevokedAt = &revokedAt
	}
	return record, nil
}

func scanSession(scan scanner) (storage.SessionRecord, error) {
	var record storage.SessionRecord
	var createdAt int64
	var expiresAt int64
	var revokedAt sql.NullInt64
	if err := scan(
		&record.ID,
		&record.ORCID,
		&createdAt,
		&expiresAt,
		&revokedAt,
	); err != nil {
		return storage.SessionRecord{}, err
	}
	record.CreatedAt = fromMillis(createdAt)
	record.ExpiresAt = fromMillis(expiresAt)
	if revokedAt.Valid {
		value := fromMillis(revokedAt.Int64)
		record.RevokedAt = &value
	}
	return record, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "unique constraint failed")
}
