// Package storage defines persistence records and boundaries for preprint state.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested preprint record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a requested write conflicts with uniqueness constraints.
	ErrConflict = errors.New("record conflict")
)

// PreprintRecord stores one preprint row. Handle is unique.
type PreprintRecord struct {
	ID          string
	Handle      string
	Title       string
	URL         string
	Authors     string
	Server      string
	License     string
	PublishedOn *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RequestRecord stores one review request row.
type RequestRecord struct {
	ID              string
	PreprintID      string
	AuthorPersonaID string
	CreatedAt       time.Time
}

// RapidReviewRecord stores one rapid review row plus its answer rows.
type RapidReviewRecord struct {
	ID              string
	PreprintID      string
	AuthorPersonaID string
	Answers         map[string]string
	IsPublished     bool
	IsFlagged       bool
	CreatedAt       time.Time
}

// TagRecord stores one preprint tag row keyed by (preprint_id, name).
type TagRecord struct {
	PreprintID string
	Name       string
	CreatedAt  time.Time
}

// PreprintStore persists preprint rows.
type PreprintStore interface {
	PutPreprint(ctx context.Context, record PreprintRecord) error
	GetPreprint(ctx context.Context, preprintID string) (PreprintRecord, error)
	GetPreprintByHandle(ctx context.Context, handle string) (PreprintRecord, error)
}

// RequestStore persists review request rows.
type RequestStore interface {
	PutRequest(ctx context.Context, record RequestRecord) error
	ListRequestsByPreprint(ctx context.Context, preprintID string) ([]RequestRecord, error)
	ListRequestsByPersona(ctx context.Context, personaID string) ([]RequestRecord, error)
}

// RapidReviewStore persists rapid review rows with their answers.
type RapidReviewStore interface {
	PutRapidReview(ctx context.Context, record RapidReviewRecord) error
	GetRapidReview(ctx context.Context, preprintID string, rapidReviewID string) (RapidReviewRecord, error)
	ListRapidReviewsByPreprint(ctx context.Context, preprintID string) ([]RapidReviewRecord, error)
}

// TagStore persists preprint tag rows.
type TagStore interface {
	PutTag(ctx context.Context, record TagRecord) error
	ListTagsByPreprint(ctx context.Context, preprintID string) ([]TagRecord, error)
}
