// Package sqlite provides SQLite-backed persistence for identity state.
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
	"github.com/openpreview/preprint.review/internal/services/userhub/storage"
	"github.com/openpreview/preprint.review/internal/services/userhub/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for identity state.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens an identity SQLite store at the provided path.
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

// PutIdentity upserts one identity row.
func (s *Store) PutIdentity(ctx context.Context, record storage.IdentityRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizeIdentityRecord(record)
	if err != nil {
		return err
	}
	return putIdentityExec(ctx, s.sqlDB, normalized)
}

// PutIdentityWithPersonas atomically persists an identity together with its
// first personas. Backs registration so a half-written account never exists.
func (s *Store) PutIdentityWithPersonas(ctx context.Context, identity storage.IdentityRecord, personas []storage.PersonaRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalizedIdentity, err := normalizeIdentityRecord(identity)
	if err != nil {
		return err
	}
	normalizedPersonas := make([]storage.PersonaRecord, 0, len(personas))
	for _, persona := range personas {
		normalized, err := normalizePersonaRecord(persona)
		if err != nil {
			return err
		}
		normalizedPersonas = append(normalizedPersonas, normalized)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin registration write: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback registration write: %v", cause, rollbackErr)
		}
		return cause
	}

	if err := putIdentityExec(ctx, tx, normalizedIdentity); err != nil {
		return rollbackWith(err)
	}
	for _, persona := range normalizedPersonas {
		if err := putPersonaExec(ctx, tx, persona); err != nil {
			return rollbackWith(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit registration write: %w", err)
	}
	return nil
}

// GetIdentity loads one identity row by ID.
func (s *Store) GetIdentity(ctx context.Context, identityID string) (storage.IdentityRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.IdentityRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.IdentityRecord{}, fmt.Errorf("storage is not configured")
	}
	identityID = strings.TrimSpace(identityID)
	if identityID == "" {
		return storage.IdentityRecord{}, fmt.Errorf("identity id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, orcid, is_private, default_persona_id, created_at, updated_at
FROM identities
WHERE id = ?
`, identityID)
	return scanIdentityRow(row.Scan, "get identity")
}

// GetIdentityByORCID loads one identity row by its ORCID iD.
func (s *Store) GetIdentityByORCID(ctx context.Context, orcid string) (storage.IdentityRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.IdentityRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.IdentityRecord{}, fmt.Errorf("storage is not configured")
	}
	orcid = strings.TrimSpace(orcid)
	if orcid == "" {
		return storage.IdentityRecord{}, fmt.Errorf("orcid is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, orcid, is_private, default_persona_id, created_at, updated_at
FROM identities
WHERE orcid = ?
`, orcid)
	return scanIdentityRow(row.Scan, "get identity by orcid")
}

// PutPersona upserts one persona row.
func (s *Store) PutPersona(ctx context.Context, record storage.PersonaRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizePersonaRecord(record)
	if err != nil {
		return err
	}
	return putPersonaExec(ctx, s.sqlDB, normalized)
}

// GetPersona loads one persona row by ID.
func (s *Store) GetPersona(ctx context.Context, personaID string) (storage.PersonaRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.PersonaRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.PersonaRecord{}, fmt.Errorf("storage is not configured")
	}
	personaID = strings.TrimSpace(personaID)
	if personaID == "" {
		return storage.PersonaRecord{}, fmt.Errorf("persona id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, identity_id, display_name, is_anonymous, is_locked, is_flagged, avatar_url, created_at, updated_at
FROM personas
WHERE id = ?
`, personaID)
	record, err := scanPersona(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.PersonaRecord{}, storage.ErrNotFound
		}
		return storage.PersonaRecord{}, fmt.Errorf("get persona: %w", err)
	}
	return record, nil
}

// ListPersonasByIdentity lists personas of one identity oldest first.
func (s *Store) ListPersonasByIdentity(ctx context.Context, identityID string) ([]storage.PersonaRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	identityID = strings.TrimSpace(identityID)
	if identityID == "" {
		return nil, fmt.Errorf("identity id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, identity_id, display_name, is_anonymous, is_locked, is_flagged, avatar_url, created_at, updated_at
FROM personas
WHERE identity_id = ?
ORDER BY created_at ASC, id ASC
`, identityID)
	if err != nil {
		return nil, fmt.Errorf("list personas: %w", err)
	}
	defer rows.Close()

	var records []storage.PersonaRecord
	for rows.Next() {
		record, scanErr := scanPersona(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan persona row: %w", scanErr)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate persona rows: %w", err)
	}
	return records, nil
}

type scanner func(dest ...any) error

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func normalizeIdentityRecord(record storage.IdentityRecord) (storage.IdentityRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.ORCID = strings.TrimSpace(record.ORCID)
	record.DefaultPersonaID = strings.TrimSpace(record.DefaultPersonaID)
	if record.ID == "" {
		return storage.IdentityRecord{}, fmt.Errorf("identity id is required")
	}
	if record.ORCID == "" {
		return storage.IdentityRecord{}, fmt.Errorf("orcid is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.IdentityRecord{}, fmt.Errorf("created_at is required")
	}
	if record.UpdatedAt.IsZero() {
		return storage.IdentityRecord{}, fmt.Errorf("updated_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	return record, nil
}

func normalizePersonaRecord(record storage.PersonaRecord) (storage.PersonaRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.IdentityID = strings.TrimSpace(record.IdentityID)
	record.DisplayName = strings.TrimSpace(record.DisplayName)
	record.AvatarURL = strings.TrimSpace(record.AvatarURL)
	if record.ID == "" {
		return storage.PersonaRecord{}, fmt.Errorf("persona id is required")
	}
	if record.IdentityID == "" {
		return storage.PersonaRecord{}, fmt.Errorf("identity id is required")
	}
	if record.DisplayName == "" {
		return storage.PersonaRecord{}, fmt.Errorf("display name is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.PersonaRecord{}, fmt.Errorf("created_at is required")
	}
	if record.UpdatedAt.IsZero() {
		return storage.PersonaRecord{}, fmt.Errorf("updated_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	return record, nil
}

func putIdentityExec(ctx context.Context, execer sqlExecer, record storage.IdentityRecord) error {
	_, err := execer.ExecContext(ctx, `
	INSERT INTO identities (
		id, orcid, is_private, default_persona_id, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		orcid = excluded.orcid,
		is_private = excluded.is_private,
		default_persona_id = excluded.default_persona_id,
		created_at = excluded.created_at,
		updated_at = excluded.updated_at
	`,
		record.ID,
		record.ORCID,
		boolToInt(record.IsPrivate),
		record.DefaultPersonaID,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put identity: %w", err)
	}
	return nil
}

func putPersonaExec(ctx context.Context, execer sqlExecer, record storage.PersonaRecord) error {
	_, err := execer.ExecContext(ctx, `
	INSERT INTO personas (
		id, identity_id, display_name, is_anonymous, is_locked, is_flagged, avatar_url, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		identity_id = excluded.identity_id,
		display_name = excluded.display_name,
		is_anonymous = excluded.is_anonymous,
		is_locked = excluded.is_locked,
		is_flagged = excluded.is_flagged,
		avatar_url = excluded.avatar_url,
		created_at = excluded.created_at,
		updated_at = excluded.updated_at
	`,
		record.ID,
		record.IdentityID,
		record.DisplayName,
		boolToInt(record.IsAnonymous),
		boolToInt(record.IsLocked),
		boolToInt(record.IsFlagged),
		record.AvatarURL,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) || isForeignKeyConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put persona: %w", err)
	}
	return nil
}

func scanIdentityRow(scan scanner, op string) (storage.IdentityRecord, error) {
	var record storage.IdentityRecord
	var isPrivate int
	var createdAt int64
	var updatedAt int64
	if err := scan(
		&record.ID,
		&record.ORCID,
		&isPrivate,
		&record.DefaultPersonaID,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.IdentityRecord{}, storage.ErrNotFound
		}
		return storage.IdentityRecord{}, fmt.Errorf("%s: %w", op, err)
	}
	record.IsPrivate = isPrivate != 0
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

func scanPersona(scan scanner) (storage.PersonaRecord, error) {
	var record storage.PersonaRecord
	var isAnonymous int
	var isLocked int
	var isFlagged int
	var createdAt int64
	var updatedAt int64
	if err := scan(
		&record.ID,
		&record.IdentityID,
		&record.DisplayName,
		&isAnonymous,
		&isLocked,
		&isFlagged,
		&record.AvatarURL,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.PersonaRecord{}, err
	}
	record.IsAnonymous = isAnonymous != 0
	record.IsLocked = isLocked != 0
	record.IsFlagged = isFlagged != 0
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "unique constraint failed")
}

func isForeignKeyConstraintError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "foreign key constraint failed")
}
