// Package sqlite provides SQLite-backed persistence for review state.
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
	"github.com/openpreview/preprint.review/internal/services/review/storage"
	"github.com/openpreview/preprint.review/internal/services/review/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for review state.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a review SQLite store at the provided path.
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

// PutReview upserts one review row.
func (s *Store) PutReview(ctx context.Context, record storage.ReviewRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizeReviewRecord(record)
	if err != nil {
		return err
	}

	var publishedAt sql.NullInt64
	if normalized.PublishedAt != nil {
		publishedAt = sql.NullInt64{Int64: toMillis(*normalized.PublishedAt), Valid: true}
	}
	_, err = s.sqlDB.ExecContext(ctx, `
	INSERT INTO reviews (
		id, preprint_id, is_published, is_flagged, doi, created_at, updated_at, published_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		preprint_id = excluded.preprint_id,
		is_published = excluded.is_published,
		is_flagged = excluded.is_flagged,
		doi = excluded.doi,
		created_at = excluded.created_at,
		updated_at = excluded.updated_at,
		published_at = excluded.published_at
	`,
		normalized.ID,
		normalized.PreprintID,
		boolToInt(normalized.IsPublished),
		boolToInt(normalized.IsFlagged),
		normalized.DOI,
		toMillis(normalized.CreatedAt),
		toMillis(normalized.UpdatedAt),
		publishedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put review: %w", err)
	}
	return nil
}

// GetReview loads one review row by ID.
func (s *Store) GetReview(ctx context.Context, reviewID string) (storage.ReviewRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.ReviewRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ReviewRecord{}, fmt.Errorf("storage is not configured")
	}
	reviewID = strings.TrimSpace(reviewID)
	if reviewID == "" {
		return storage.ReviewRecord{}, fmt.Errorf("review id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, preprint_id, is_published, is_flagged, doi, created_at, updated_at, published_at
FROM reviews
WHERE id = ?
`, reviewID)
	record, err := scanReview(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ReviewRecord{}, storage.ErrNotFound
		}
		return storage.ReviewRecord{}, fmt.Errorf("get review: %w", err)
	}
	return record, nil
}

// ListReviewsByPreprint lists reviews of one preprint oldest first.
func (s *Store) ListReviewsByPreprint(ctx context.Context, preprintID string) ([]storage.ReviewRecord, error) {
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
SELECT id, preprint_id, is_published, is_flagged, doi, created_at, updated_at, published_at
FROM reviews
WHERE preprint_id = ?
ORDER BY created_at ASC, id ASC
`, preprintID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var records []storage.ReviewRecord
	for rows.Next() {
		record, scanErr := scanReview(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan review row: %w", scanErr)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}
	return records, nil
}

// SetReviewDOI assigns a DOI to one review. The partial unique index on doi
// turns cross-review duplicates into ErrConflict.
func (s *Store) SetReviewDOI(ctx context.Context, reviewID string, doi string, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	reviewID = strings.TrimSpace(reviewID)
	doi = strings.TrimSpace(doi)
	if reviewID == "" {
		return fmt.Errorf("review id is required")
	}
	if doi == "" {
		return fmt.Errorf("doi is required")
	}
	if updatedAt.IsZero() {
		return fmt.Errorf("updated_at is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE reviews
SET doi = ?, updated_at = ?
WHERE id = ?
`, doi, toMillis(updatedAt), reviewID)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("set review doi: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set review doi rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// PutDraft persists one immutable draft row.
func (s *Store) PutDraft(ctx context.Context, record storage.DraftRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizeDraftRecord(record)
	if err != nil {
		return err
	}
	return putDraftExec(ctx, s.sqlDB, normalized)
}

// PutDraftWithRoster atomically persists a draft together with a roster row.
// Backs the implicit first-author bootstrap on first draft creation.
func (s *Store) PutDraftWithRoster(ctx context.Context, draft storage.DraftRecord, roster storage.RosterRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalizedDraft, err := normalizeDraftRecord(draft)
	if err != nil {
		return err
	}
	normalizedRoster, err := normalizeRosterRecord(roster)
	if err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin draft bootstrap write: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback draft bootstrap write: %v", cause, rollbackErr)
		}
		return cause
	}

	if err := putDraftExec(ctx, tx, normalizedDraft); err != nil {
		return rollbackWith(err)
	}
	if err := putRosterExec(ctx, tx, normalizedRoster); err != nil {
		return rollbackWith(err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit draft bootstrap write: %w", err)
	}
	return nil
}

// LatestDraft loads the newest draft of one review.
func (s *Store) LatestDraft(ctx context.Context, reviewID string) (storage.DraftRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.DraftRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.DraftRecord{}, fmt.Errorf("storage is not configured")
	}
	reviewID = strings.TrimSpace(reviewID)
	if reviewID == "" {
		return storage.DraftRecord{}, fmt.Errorf("review id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, review_id, contents, created_at
FROM review_drafts
WHERE review_id = ?
ORDER BY created_at DESC, id DESC
LIMIT 1
`, reviewID)
	var record storage.DraftRecord
	var createdAt int64
	if err := row.Scan(&record.ID, &record.ReviewID, &record.Contents, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.DraftRecord{}, storage.ErrNotFound
		}
		return storage.DraftRecord{}, fmt.Errorf("get latest draft: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

// CountDrafts counts drafts of one review.
func (s *Store) CountDrafts(ctx context.Context, reviewID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	reviewID = strings.TrimSpace(reviewID)
	if reviewID == "" {
		return 0, fmt.Errorf("review id is required")
	}

	var count int
	if err := s.sqlDB.QueryRowContext(ctx, `
SELECT COUNT(1) FROM review_drafts WHERE review_id = ?
`, reviewID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count drafts: %w", err)
	}
	return count, nil
}

// PutRosterEntry upserts one roster membership row.
func (s *Store) PutRosterEntry(ctx context.Context, record storage.RosterRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizeRosterRecord(record)
	if err != nil {
		return err
	}
	return putRosterExec(ctx, s.sqlDB, normalized)
}

// ConfirmRosterEntry moves one pending invite row to confirmed. The single
// UPDATE keeps invited and confirmed states disjoint.
func (s *Store) ConfirmRosterEntry(ctx context.Context, reviewID string, personaID string, role string, confirmedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	reviewID = strings.TrimSpace(reviewID)
	personaID = strings.TrimSpace(personaID)
	role = strings.TrimSpace(role)
	if reviewID == "" || personaID == "" || role == "" {
		return fmt.Errorf("review id, persona id, and role are required")
	}
	if confirmedAt.IsZero() {
		return fmt.Errorf("confirmed_at is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE review_roster
SET status = ?, updated_at = ?
WHERE review_id = ? AND persona_id = ? AND role = ? AND status = ?
`, storage.RosterStatusConfirmed, toMillis(confirmedAt), reviewID, personaID, role, storage.RosterStatusInvited)
	if err != nil {
		return fmt.Errorf("confirm roster entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("confirm roster entry rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteRosterEntry removes one roster row.
func (s *Store) DeleteRosterEntry(ctx context.Context, reviewID string, personaID string, role string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	reviewID = strings.TrimSpace(reviewID)
	personaID = strings.TrimSpace(personaID)
	role = strings.TrimSpace(role)
	if reviewID == "" || personaID == "" || role == "" {
		return fmt.Errorf("review id, persona id, and role are required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
DELETE FROM review_roster
WHERE review_id = ? AND persona_id = ? AND role = ?
`, reviewID, personaID, role)
	if err != nil {
		return fmt.Errorf("delete roster entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete roster entry rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListRosterByReview lists all roster rows of one review.
func (s *Store) ListRosterByReview(ctx context.Context, reviewID string) ([]storage.RosterRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	reviewID = strings.TrimSpace(reviewID)
	if reviewID == "" {
		return nil, fmt.Errorf("review id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT review_id, persona_id, role, status, created_at, updated_at
FROM review_roster
WHERE review_id = ?
ORDER BY created_at ASC, persona_id ASC, role ASC
`, reviewID)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	defer rows.Close()
	return collectRosterRows(rows)
}

// ListPendingInvitesByPersona lists pending invite rows addressed to one persona.
func (s *Store) ListPendingInvitesByPersona(ctx context.Context, personaID string) ([]storage.RosterRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	personaID = strings.TrimSpace(personaID)
	if personaID == "" {
		return nil, fmt.Errorf("persona id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT review_id, persona_id, role, status, created_at, updated_at
FROM review_roster
WHERE persona_id = ? AND status = ?
ORDER BY created_at ASC, review_id ASC, role ASC
`, personaID, storage.RosterStatusInvited)
	if err != nil {
		return nil, fmt.Errorf("list pending invites: %w", err)
	}
	defer rows.Close()
	return collectRosterRows(rows)
}

// PutComment upserts one comment row.
func (s *Store) PutComment(ctx context.Context, record storage.CommentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizeCommentRecord(record)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
	INSERT INTO review_comments (
		id, review_id, author_persona_id, contents, is_published, is_flagged, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		review_id = excluded.review_id,
		author_persona_id = excluded.author_persona_id,
		contents = excluded.contents,
		is_published = excluded.is_published,
		is_flagged = excluded.is_flagged,
		created_at = excluded.created_at
	`,
		normalized.ID,
		normalized.ReviewID,
		normalized.AuthorPersonaID,
		normalized.Contents,
		boolToInt(normalized.IsPublished),
		boolToInt(normalized.IsFlagged),
		toMillis(normalized.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) || isForeignKeyConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put comment: %w", err)
	}
	return nil
}

// GetComment loads one comment row.
func (s *Store) GetComment(ctx context.Context, reviewID string, commentID string) (storage.CommentRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.CommentRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.CommentRecord{}, fmt.Errorf("storage is not configured")
	}
	reviewID = strings.TrimSpace(reviewID)
	commentID = strings.TrimSpace(commentID)
	if reviewID == "" || commentID == "" {
		return storage.CommentRecord{}, fmt.Errorf("review id and comment id are required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, review_id, author_persona_id, contents, is_published, is_flagged, created_at
FROM review_comments
WHERE review_id = ? AND id = ?
`, reviewID, commentID)
	record, err := scanComment(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.CommentRecord{}, storage.ErrNotFound
		}
		return storage.CommentRecord{}, fmt.Errorf("get comment: %w", err)
	}
	return record, nil
}

// ListCommentsByReview lists the comment thread of one review in creation order.
func (s *Store) ListCommentsByReview(ctx context.Context, reviewID string) ([]storage.CommentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	reviewID = strings.TrimSpace(reviewID)
	if reviewID == "" {
		return nil, fmt.Errorf("review id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, review_id, author_persona_id, contents, is_published, is_flagged, created_at
FROM review_comments
WHERE review_id = ?
ORDER BY created_at ASC, id ASC
`, reviewID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var records []storage.CommentRecord
	for rows.Next() {
		record, scanErr := scanComment(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan comment row: %w", scanErr)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comment rows: %w", err)
	}
	return records, nil
}

type scanner func(dest ...any) error

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func normalizeReviewRecord(record storage.ReviewRecord) (storage.ReviewRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.PreprintID = strings.TrimSpace(record.PreprintID)
	record.DOI = strings.TrimSpace(record.DOI)
	if record.ID == "" {
		return storage.ReviewRecord{}, fmt.Errorf("review id is required")
	}
	if record.PreprintID == "" {
		return storage.ReviewRecord{}, fmt.Errorf("preprint id is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.ReviewRecord{}, fmt.Errorf("created_at is required")
	}
	if record.UpdatedAt.IsZero() {
		return storage.ReviewRecord{}, fmt.Errorf("updated_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	if record.PublishedAt != nil {
		publishedAt := record.PublishedAt.UTC()
		record.PublishedAt = &publishedAt
	}
	return record, nil
}

func normalizeDraftRecord(record storage.DraftRecord) (storage.DraftRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.ReviewID = strings.TrimSpace(record.ReviewID)
	if record.ID == "" {
		return storage.DraftRecord{}, fmt.Errorf("draft id is required")
	}
	if record.ReviewID == "" {
		return storage.DraftRecord{}, fmt.Errorf("review id is required")
	}
	if record.Contents == "" {
		return storage.DraftRecord{}, fmt.Errorf("draft contents are required")
	}
	if record.CreatedAt.IsZero() {
		return storage.DraftRecord{}, fmt.Errorf("created_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	return record, nil
}

func normalizeRosterRecord(record storage.RosterRecord) (storage.RosterRecord, error) {
	record.ReviewID = strings.TrimSpace(record.ReviewID)
	record.PersonaID = strings.TrimSpace(record.PersonaID)
	record.Role = strings.TrimSpace(record.Role)
	record.Status = storage.RosterStatus(strings.TrimSpace(string(record.Status)))
	if record.ReviewID == "" {
		return storage.RosterRecord{}, fmt.Errorf("review id is required")
	}
	if record.PersonaID == "" {
		return storage.RosterRecord{}, fmt.Errorf("persona id is required")
	}
	if record.Role == "" {
		return storage.RosterRecord{}, fmt.Errorf("role is required")
	}
	if record.Status != storage.RosterStatusInvited && record.Status != storage.RosterStatusConfirmed {
		return storage.RosterRecord{}, fmt.Errorf("roster status %q is invalid", record.Status)
	}
	if record.CreatedAt.IsZero() {
		return storage.RosterRecord{}, fmt.Errorf("created_at is required")
	}
	if record.UpdatedAt.IsZero() {
		return storage.RosterRecord{}, fmt.Errorf("updated_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	return record, nil
}

func normalizeCommentRecord(record storage.CommentRecord) (storage.CommentRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.ReviewID = strings.TrimSpace(record.ReviewID)
	record.AuthorPersonaID = strings.TrimSpace(record.AuthorPersonaID)
	if record.ID == "" {
		return storage.CommentRecord{}, fmt.Errorf("comment id is required")
	}
	if record.ReviewID == "" {
		return storage.CommentRecord{}, fmt.Errorf("review id is required")
	}
	if record.AuthorPersonaID == "" {
		return storage.CommentRecord{}, fmt.Errorf("author persona id is required")
	}
	if record.Contents == "" {
		return storage.CommentRecord{}, fmt.Errorf("comment contents are required")
	}
	if record.CreatedAt.IsZero() {
		return storage.CommentRecord{}, fmt.Errorf("created_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	return record, nil
}

func putDraftExec(ctx context.Context, execer sqlExecer, record storage.DraftRecord) error {
	_, err := execer.ExecContext(ctx, `
	INSERT INTO review_drafts (id, review_id, contents, created_at)
	VALUES (?, ?, ?, ?)
	`,
		record.ID,
		record.ReviewID,
		record.Contents,
		toMillis(record.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) || isForeignKeyConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put draft: %w", err)
	}
	return nil
}

func putRosterExec(ctx context.Context, execer sqlExecer, record storage.RosterRecord) error {
	_, err := execer.ExecContext(ctx, `
	INSERT INTO review_roster (review_id, persona_id, role, status, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(review_id, persona_id, role) DO UPDATE SET
		status = excluded.status,
		updated_at = excluded.updated_at
	`,
		record.ReviewID,
		record.PersonaID,
		record.Role,
		record.Status,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) || isForeignKeyConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put roster entry: %w", err)
	}
	return nil
}

func scanReview(scan scanner) (storage.ReviewRecord, error) {
	var record storage.ReviewRecord
	var isPublished int
	var isFlagged int
	var createdAt int64
	var updatedAt int64
	var publishedAt sql.NullInt64
	if err := scan(
		&record.ID,
		&record.PreprintID,
		&isPublished,
		&isFlagged,
		&record.DOI,
		&createdAt,
		&updatedAt,
		&publishedAt,
	); err != nil {
		return storage.ReviewRecord{}, err
	}
	record.IsPublished = isPublished != 0
	record.IsFlagged = isFlagged != 0
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	if publishedAt.Valid {
		value := fromMillis(publishedAt.Int64)
		record.PublishedAt = &value
	}
	return record, nil
}

func scanComment(scan scanner) (storage.CommentRecord, error) {
	var record storage.CommentRecord
	var isPublished int
	var isFlagged int
	var createdAt int64
	if err := scan(
		&record.ID,
		&record.ReviewID,
		&record.AuthorPersonaID,
		&record.Contents,
		&isPublished,
		&isFlagged,
		&createdAt,
	); err != nil {
		return storage.CommentRecord{}, err
	}
	record.IsPublished = isPublished != 0
	record.IsFlagged = isFlagged != 0
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

func collectRosterRows(rows *sql.Rows) ([]storage.RosterRecord, error) {
	var records []storage.RosterRecord
	for rows.Next() {
		var record storage.RosterRecord
		var createdAt int64
		var updatedAt int64
		if err := rows.Scan(
			&record.ReviewID,
			&record.PersonaID,
			&record.Role,
			&record.Status,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan roster row: %w", err)
		}
		record.CreatedAt = fromMillis(createdAt)
		record.UpdatedAt = fromMillis(updatedAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster rows: %w", err)
	}
	return records, nil
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
