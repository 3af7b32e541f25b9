// Package sqlite provides SQLite-backed persistence for preprint state.
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
	"github.com/openpreview/preprint.review/internal/services/preprint/storage"
	"github.com/openpreview/preprint.review/internal/services/preprint/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for preprint state.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a preprint SQLite store at the provided path.
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

// PutPreprint upserts one preprint row.
func (s *Store) PutPreprint(ctx context.Context, record storage.PreprintRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizePreprintRecord(record)
	if err != nil {
		return err
	}

	var publishedOn any
	if normalized.PublishedOn != nil {
		publishedOn = toMillis(*normalized.PublishedOn)
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO preprints (id, handle, title, url, authors, server, license, published_on, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	handle = excluded.handle,
	title = excluded.title,
	url = excluded.url,
	authors = excluded.authors,
	server = excluded.server,
	license = excluded.license,
	published_on = excluded.published_on,
	updated_at = excluded.updated_at
`,
		normalized.ID,
		normalized.Handle,
		normalized.Title,
		normalized.URL,
		normalized.Authors,
		normalized.Server,
		normalized.License,
		publishedOn,
		toMillis(normalized.CreatedAt),
		toMillis(normalized.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put preprint: %w", err)
	}
	return nil
}

// GetPreprint loads one preprint row by ID.
func (s *Store) GetPreprint(ctx context.Context, preprintID string) (storage.PreprintRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.PreprintRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.PreprintRecord{}, fmt.Errorf("storage is not configured")
	}
	preprintID = strings.TrimSpace(preprintID)
	if preprintID == "" {
		return storage.PreprintRecord{}, fmt.Errorf("preprint id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, handle, title, url, authors, server, license, published_on, created_at, updated_at
FROM preprints
WHERE id = ?
`, preprintID)
	record, err := scanPreprint(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.PreprintRecord{}, storage.ErrNotFound
		}
		return storage.PreprintRecord{}, fmt.Errorf("get preprint: %w", err)
	}
	return record, nil
}

// GetPreprintByHandle loads one preprint row by its unique handle.
func (s *Store) GetPreprintByHandle(ctx context.Context, handle string) (storage.PreprintRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.PreprintRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.PreprintRecord{}, fmt.Errorf("storage is not configured")
	}
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return storage.PreprintRecord{}, fmt.Errorf("handle is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, handle, title, url, authors, server, license, published_on, created_at, updated_at
FROM preprints
WHERE handle = ?
`, handle)
	record, err := scanPreprint(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.PreprintRecord{}, storage.ErrNotFound
		}
		return storage.PreprintRecord{}, fmt.Errorf("get preprint by handle: %w", err)
	}
	return record, nil
}

// PutRequest inserts one review request row.
func (s *Store) PutRequest(ctx context.Context, record storage.RequestRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizeRequestRecord(record)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO preprint_requests (id, preprint_id, author_persona_id, created_at)
VALUES (?, ?, ?, ?)
`,
		normalized.ID,
		normalized.PreprintID,
		normalized.AuthorPersonaID,
		toMillis(normalized.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) || isForeignKeyConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put request: %w", err)
	}
	return nil
}

// ListRequestsByPreprint lists request rows of one preprint, oldest first.
func (s *Store) ListRequestsByPreprint(ctx context.Context, preprintID string) ([]storage.RequestRecord, error) {
	return s.listRequests(ctx, "preprint_id", preprintID)
}

// ListRequestsByPersona lists request rows made by one persona, oldest first.
func (s *Store) ListRequestsByPersona(ctx context.Context, personaID string) ([]storage.RequestRecord, error) {
	return s.listRequests(ctx, "author_persona_id", personaID)
}

func (s *Store) listRequests(ctx context.Context, column string, value string) ([]storage.RequestRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("%s is required", column)
	}

	rows, err := s.sqlDB.QueryContext(ctx, fmt.Sprintf(`
SELECT id, preprint_id, author_persona_id, created_at
FROM preprint_requests
WHERE %s = ?
ORDER BY created_at ASC, id ASC
`, column), value)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var records []storage.RequestRecord
	for rows.Next() {
		var record storage.RequestRecord
		var createdAt int64
		if err := rows.Scan(&record.ID, &record.PreprintID, &record.AuthorPersonaID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan request row: %w", err)
		}
		record.CreatedAt = fromMillis(createdAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate request rows: %w", err)
	}
	return records, nil
}

// PutRapidReview atomically upserts one rapid review row and replaces its
// answer rows in a single transaction.
func (s *Store) PutRapidReview(ctx context.Context, record storage.RapidReviewRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizeRapidReviewRecord(record)
	if err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rapid review write: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback rapid review write: %v", cause, rollbackErr)
		}
		return cause
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO rapid_reviews (id, preprint_id, author_persona_id, is_published, is_flagged, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	is_published = excluded.is_published,
	is_flagged = excluded.is_flagged
`,
		normalized.ID,
		normalized.PreprintID,
		normalized.AuthorPersonaID,
		boolToInt(normalized.IsPublished),
		boolToInt(normalized.IsFlagged),
		toMillis(normalized.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) || isForeignKeyConstraintError(err) {
			return rollbackWith(storage.ErrConflict)
		}
		return rollbackWith(fmt.Errorf("put rapid review: %w", err))
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM rapid_review_answers WHERE rapid_review_id = ?`, normalized.ID); err != nil {
		return rollbackWith(fmt.Errorf("clear rapid review answers: %w", err))
	}
	for question, answer := range normalized.Answers {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO rapid_review_answers (rapid_review_id, question, answer)
VALUES (?, ?, ?)
`, normalized.ID, question, answer); err != nil {
			return rollbackWith(fmt.Errorf("put rapid review answer %s: %w", question, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rapid review write: %w", err)
	}
	return nil
}

// GetRapidReview loads one rapid review row with its answers.
func (s *Store) GetRapidReview(ctx context.Context, preprintID string, rapidReviewID string) (storage.RapidReviewRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.RapidReviewRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.RapidReviewRecord{}, fmt.Errorf("storage is not configured")
	}
	preprintID = strings.TrimSpace(preprintID)
	rapidReviewID = strings.TrimSpace(rapidReviewID)
	if preprintID == "" || rapidReviewID == "" {
		return storage.RapidReviewRecord{}, fmt.Errorf("preprint id and rapid review id are required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, preprint_id, author_persona_id, is_published, is_flagged, created_at
FROM rapid_reviews
WHERE preprint_id = ? AND id = ?
`, preprintID, rapidReviewID)
	record, err := scanRapidReview(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.RapidReviewRecord{}, storage.ErrNotFound
		}
		return storage.RapidReviewRecord{}, fmt.Errorf("get rapid review: %w", err)
	}
	record.Answers, err = s.loadAnswers(ctx, record.ID)
	if err != nil {
		return storage.RapidReviewRecord{}, err
	}
	return record, nil
}

// ListRapidReviewsByPreprint lists rapid review rows of one preprint with
// their answers, oldest first.
func (s *Store) ListRapidReviewsByPreprint(ctx context.Context, preprintID string) ([]storage.RapidReviewRecord, error) {
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
SELECT id, preprint_id, author_persona_id, is_published, is_flagged, created_at
FROM rapid_reviews
WHERE preprint_id = ?
ORDER BY created_at ASC, id ASC
`, preprintID)
	if err != nil {
		return nil, fmt.Errorf("list rapid reviews: %w", err)
	}
	defer rows.Close()

	var records []storage.RapidReviewRecord
	for rows.Next() {
		record, scanErr := scanRapidReview(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan rapid review row: %w", scanErr)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rapid review rows: %w", err)
	}

	for i := range records {
		records[i].Answers, err = s.loadAnswers(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (s *Store) loadAnswers(ctx context.Context, rapidReviewID string) (map[string]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT question, answer
FROM rapid_review_answers
WHERE rapid_review_id = ?
`, rapidReviewID)
	if err != nil {
		return nil, fmt.Errorf("list rapid review answers: %w", err)
	}
	defer rows.Close()

	answers := make(map[string]string)
	for rows.Next() {
		var question, answer string
		if err := rows.Scan(&question, &answer); err != nil {
			return nil, fmt.Errorf("scan rapid review answer row: %w", err)
		}
		answers[question] = answer
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rapid review answer rows: %w", err)
	}
	return answers, nil
}

// PutTag upserts one tag row.
func (s *Store) PutTag(ctx context.Context, record storage.TagRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizeTagRecord(record)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO preprint_tags (preprint_id, name, created_at)
VALUES (?, ?, ?)
ON CONFLICT (preprint_id, name) DO NOTHING
`,
		normalized.PreprintID,
		normalized.Name,
		toMillis(normalized.CreatedAt),
	)
	if err != nil {
		if isForeignKeyConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put tag: %w", err)
	}
	return nil
}

// ListTagsByPreprint lists tag rows of one preprint in name order.
func (s *Store) ListTagsByPreprint(ctx context.Context, preprintID string) ([]storage.TagRecord, error) {
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
SELECT preprint_id, name, created_at
FROM preprint_tags
WHERE preprint_id = ?
ORDER BY name ASC
`, preprintID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var records []storage.TagRecord
	for rows.Next() {
		var record storage.TagRecord
		var createdAt int64
		if err := rows.Scan(&record.PreprintID, &record.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan tag row: %w", err)
		}
		record.CreatedAt = fromMillis(createdAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tag rows: %w", err)
	}
	return records, nil
}

type scanner func(dest ...any) error

func scanPreprint(scan scanner) (storage.PreprintRecord, error) {
	var record storage.PreprintRecord
	var publishedOn sql.NullInt64
	var createdAt, updatedAt int64
	if err := scan(
		&record.ID,
		&record.Handle,
		&record.Title,
		&record.URL,
		&record.Authors,
		&record.Server,
		&record.License,
		&publishedOn,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.PreprintRecord{}, err
	}
	if publishedOn.Valid {
		value := fromMillis(publishedOn.Int64)
		record.PublishedOn = &value
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

func scanRapidReview(scan scanner) (storage.RapidReviewRecord, error) {
	var record storage.RapidReviewRecord
	var isPublished, isFlagged int
	var createdAt int64
	if err := scan(
		&record.ID,
		&record.PreprintID,
		&record.AuthorPersonaID,
		&isPublished,
		&isFlagged,
		&createdAt,
	); err != nil {
		return storage.RapidReviewRecord{}, err
	}
	record.IsPublished = isPublished != 0
	record.IsFlagged = isFlagged != 0
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

func normalizePreprintRecord(record storage.PreprintRecord) (storage.PreprintRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.Handle = strings.TrimSpace(record.Handle)
	record.Title = strings.TrimSpace(record.Title)
	if record.ID == "" {
		return storage.PreprintRecord{}, fmt.Errorf("preprint id is required")
	}
	if record.Handle == "" {
		return storage.PreprintRecord{}, fmt.Errorf("handle is required")
	}
	if record.Title == "" {
		return storage.PreprintRecord{}, fmt.Errorf("title is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.PreprintRecord{}, fmt.Errorf("created_at is required")
	}
	if record.UpdatedAt.IsZero() {
		return storage.PreprintRecord{}, fmt.Errorf("updated_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	if record.PublishedOn != nil {
		publishedOn := record.PublishedOn.UTC()
		record.PublishedOn = &publishedOn
	}
	return record, nil
}

func normalizeRequestRecord(record storage.RequestRecord) (storage.RequestRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.PreprintID = strings.TrimSpace(record.PreprintID)
	record.AuthorPersonaID = strings.TrimSpace(record.AuthorPersonaID)
	if record.ID == "" {
		return storage.RequestRecord{}, fmt.Errorf("request id is required")
	}
	if record.PreprintID == "" {
		return storage.RequestRecord{}, fmt.Errorf("preprint id is required")
	}
	if record.AuthorPersonaID == "" {
		return storage.RequestRecord{}, fmt.Errorf("author persona id is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.RequestRecord{}, fmt.Errorf("created_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	return record, nil
}

func normalizeRapidReviewRecord(record storage.RapidReviewRecord) (storage.RapidReviewRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.PreprintID = strings.TrimSpace(record.PreprintID)
	record.AuthorPersonaID = strings.TrimSpace(record.AuthorPersonaID)
	if record.ID == "" {
		return storage.RapidReviewRecord{}, fmt.Errorf("rapid review id is required")
	}
	if record.PreprintID == "" {
		return storage.RapidReviewRecord{}, fmt.Errorf("preprint id is required")
	}
	if record.AuthorPersonaID == "" {
		return storage.RapidReviewRecord{}, fmt.Errorf("author persona id is required")
	}
	if len(record.Answers) == 0 {
		return storage.RapidReviewRecord{}, fmt.Errorf("answers are required")
	}
	if record.CreatedAt.IsZero() {
		return storage.RapidReviewRecord{}, fmt.Errorf("created_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	return record, nil
}

func normalizeTagRecord(record storage.TagRecord) (storage.TagRecord, error) {
	record.PreprintID = strings.TrimSpace(record.PreprintID)
	record.Name = strings.TrimSpace(record.Name)
	if record.PreprintID == "" {
		return storage.TagRecord{}, fmt.Errorf("preprint id is required")
	}
	if record.Name == "" {
		return storage.TagRecord{}, fmt.Errorf("tag name is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.TagRecord{}, fmt.Errorf("created_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
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
