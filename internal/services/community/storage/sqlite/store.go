// Package sqlite provides SQLite-backed persistence for community state.
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
	"github.com/openpreview/preprint.review/internal/services/community/storage"
	"github.com/openpreview/preprint.review/internal/services/community/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for community state.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a community SQLite store at the provided path.
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

// PutCommunity upserts one community row.
func (s *Store) PutCommunity(ctx context.Context, record storage.CommunityRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizeCommunityRecord(record)
	if err != nil {
		return err
	}
	return putCommunityExec(ctx, s.sqlDB, normalized)
}

// PutCommunityWithOwner atomically persists a community with its founding
// owner membership.
func (s *Store) PutCommunityWithOwner(ctx context.Context, community storage.CommunityRecord, owner storage.MemberRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalizedCommunity, err := normalizeCommunityRecord(community)
	if err != nil {
		return err
	}
	normalizedOwner, err := normalizeMemberRecord(owner)
	if err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin community bootstrap write: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback community bootstrap write: %v", cause, rollbackErr)
		}
		return cause
	}

	if err := putCommunityExec(ctx, tx, normalizedCommunity); err != nil {
		return rollbackWith(err)
	}
	if err := putMemberExec(ctx, tx, normalizedOwner); err != nil {
		return rollbackWith(err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit community bootstrap write: %w", err)
	}
	return nil
}

// GetCommunity loads one community row by ID.
func (s *Store) GetCommunity(ctx context.Context, communityID string) (storage.CommunityRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.CommunityRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.CommunityRecord{}, fmt.Errorf("storage is not configured")
	}
	communityID = strings.TrimSpace(communityID)
	if communityID == "" {
		return storage.CommunityRecord{}, fmt.Errorf("community id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, slug, name, description, created_at, updated_at
FROM communities
WHERE id = ?
`, communityID)
	return scanCommunityRow(row.Scan, "get community")
}

// GetCommunityBySlug loads one community row by its slug.
func (s *Store) GetCommunityBySlug(ctx context.Context, slug string) (storage.CommunityRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.CommunityRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.CommunityRecord{}, fmt.Errorf("storage is not configured")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return storage.CommunityRecord{}, fmt.Errorf("community slug is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, slug, name, description, created_at, updated_at
FROM communities
WHERE slug = ?
`, slug)
	return scanCommunityRow(row.Scan, "get community by slug")
}

// PutMember upserts one membership row.
func (s *Store) PutMember(ctx context.Context, record storage.MemberRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizeMemberRecord(record)
	if err != nil {
		return err
	}
	return putMemberExec(ctx, s.sqlDB, normalized)
}

// GetMember loads one membership row.
func (s *Store) GetMember(ctx context.Context, communityID string, personaID string) (storage.MemberRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.MemberRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.MemberRecord{}, fmt.Errorf("storage is not configured")
	}
	communityID = strings.TrimSpace(communityID)
	personaID = strings.TrimSpace(personaID)
	if communityID == "" || personaID == "" {
		return storage.MemberRecord{}, fmt.Errorf("community id and persona id are required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT community_id, persona_id, role, created_at, updated_at
FROM community_members
WHERE community_id = ? AND persona_id = ?
`, communityID, personaID)
	record, err := scanMember(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.MemberRecord{}, storage.ErrNotFound
		}
		return storage.MemberRecord{}, fmt.Errorf("get member: %w", err)
	}
	return record, nil
}

// DeleteMember removes one membership row.
func (s *Store) DeleteMember(ctx context.Context, communityID string, personaID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	communityID = strings.TrimSpace(communityID)
	personaID = strings.TrimSpace(personaID)
	if communityID == "" || personaID == "" {
		return fmt.Errorf("community id and persona id are required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
DELETE FROM community_members
WHERE community_id = ? AND persona_id = ?
`, communityID, personaID)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete member rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListMembersByCommunity lists membership rows of one community oldest first.
func (s *Store) ListMembersByCommunity(ctx context.Context, communityID string) ([]storage.MemberRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	communityID = strings.TrimSpace(communityID)
	if communityID == "" {
		return nil, fmt.Errorf("community id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT community_id, persona_id, role, created_at, updated_at
FROM community_members
WHERE community_id = ?
ORDER BY created_at ASC, persona_id ASC
`, communityID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var records []storage.MemberRecord
	for rows.Next() {
		record, scanErr := scanMember(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan member row: %w", scanErr)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate member rows: %w", err)
	}
	return records, nil
}

// PutPreprintLink records one community-preprint association. Repeat
// attachments are no-ops.
func (s *Store) PutPreprintLink(ctx context.Context, record storage.PreprintLinkRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	record.CommunityID = strings.TrimSpace(record.CommunityID)
	record.PreprintID = strings.TrimSpace(record.PreprintID)
	if record.CommunityID == "" {
		return fmt.Errorf("community id is required")
	}
	if record.PreprintID == "" {
		return fmt.Errorf("preprint id is required")
	}
	if record.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
	INSERT INTO community_preprints (community_id, preprint_id, created_at)
	VALUES (?, ?, ?)
	ON CONFLICT(community_id, preprint_id) DO NOTHING
	`,
		record.CommunityID,
		record.PreprintID,
		toMillis(record.CreatedAt),
	)
	if err != nil {
		if isForeignKeyConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put preprint link: %w", err)
	}
	return nil
}

// ListCommunitiesForPreprint lists communities a preprint is attached to in
// attachment order.
func (s *Store) ListCommunitiesForPreprint(ctx context.Context, preprintID string) ([]storage.CommunityRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	preprintID = strings.TrimSpace(preprintID)
	if preprintID == "" {
		return nil, fmt.Errorf("preprint id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT c.id, c.slug, c.name, c.description, c.created_at, c.updated_at
FROM community_preprints cp
JOIN communities c ON c.id = cp.community_id
WHERE cp.preprint_id = ?
ORDER BY cp.created_at ASC, c.id ASC
`, preprintID)
	if err != nil {
		return nil, fmt.Errorf("list communities for preprint: %w", err)
	}
	defer rows.Close()

	var records []storage.CommunityRecord
	for rows.Next() {
		record, scanErr := scanCommunity(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan community row: %w", scanErr)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate community rows: %w", err)
	}
	return records, nil
}

type scanner func(dest ...any) error

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func normalizeCommunityRecord(record storage.CommunityRecord) (storage.CommunityRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.Slug = strings.TrimSpace(record.Slug)
	record.Name = strings.TrimSpace(record.Name)
	record.Description = strings.TrimSpace(record.Description)
	if record.ID == "" {
		return storage.CommunityRecord{}, fmt.Errorf("community id is required")
	}
	if record.Slug == "" {
		return storage.CommunityRecord{}, fmt.Errorf("community slug is required")
	}
	if record.Name == "" {
		return storage.CommunityRecord{}, fmt.Errorf("community name is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.CommunityRecord{}, fmt.Errorf("created_at is required")
	}
	if record.UpdatedAt.IsZero() {
		return storage.CommunityRecord{}, fmt.Errorf("updated_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	return record, nil
}

func normalizeMemberRecord(record storage.MemberRecord) (storage.MemberRecord, error) {
	record.CommunityID = strings.TrimSpace(record.CommunityID)
	record.PersonaID = strings.TrimSpace(record.PersonaID)
	record.Role = strings.TrimSpace(record.Role)
	if record.CommunityID == "" {
		return storage.MemberRecord{}, fmt.Errorf("community id is required")
	}
	if record.PersonaID == "" {
		return storage.MemberRecord{}, fmt.Errorf("persona id is required")
	}
	if record.Role == "" {
		return storage.MemberRecord{}, fmt.Errorf("role is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.MemberRecord{}, fmt.Errorf("created_at is required")
	}
	if record.UpdatedAt.IsZero() {
		return storage.MemberRecord{}, fmt.Errorf("updated_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	return record, nil
}

func putCommunityExec(ctx context.Context, execer sqlExecer, record storage.CommunityRecord) error {
	_, err := execer.ExecContext(ctx, `
	INSERT INTO communities (
		id, slug, name, description, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		slug = excluded.slug,
		name = excluded.name,
		description = excluded.description,
		created_at = excluded.created_at,
		updated_at = excluded.updated_at
	`,
		record.ID,
		record.Slug,
		record.Name,
		record.Description,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put community: %w", err)
	}
	return nil
}

func putMemberExec(ctx context.Context, execer sqlExecer, record storage.MemberRecord) error {
	_, err := execer.ExecContext(ctx, `
	INSERT INTO community_members (community_id, persona_id, role, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(community_id, persona_id) DO UPDATE SET
		role = excluded.role,
		updated_at = excluded.updated_at
	`,
		record.CommunityID,
		record.PersonaID,
		record.Role,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) || isForeignKeyConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put member: %w", err)
	}
	return nil
}

func scanCommunityRow(scan scanner, op string) (storage.CommunityRecord, error) {
	record, err := scanCommunity(scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.CommunityRecord{}, storage.ErrNotFound
		}
		return storage.CommunityRecord{}, fmt.Errorf("%s: %w", op, err)
	}
	return record, nil
}

func scanCommunity(scan scanner) (storage.CommunityRecord, error) {
	var record storage.CommunityRecord
	var createdAt int64
	var updatedAt int64
	if err := scan(
		&record.ID,
		&record.Slug,
		&record.Name,
		&record.Description,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.CommunityRecord{}, err
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

func scanMember(scan scanner) (storage.MemberRecord, error) {
	var record storage.MemberRecord
	var createdAt int64
	var updatedAt int64
	if err := scan(
		&record.CommunityID,
		&record.PersonaID,
		&record.Role,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.MemberRecord{}, err
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
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
