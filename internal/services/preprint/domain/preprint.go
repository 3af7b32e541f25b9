package domain

import "time"

// Preprint is a registered manuscript record. The handle (a DOI or arXiv ID)
// uniquely identifies the preprint across the platform; the remaining
// metadata is supplied by the caller's resolution step.
type Preprint struct {
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

// Request is a standing ask for reviews of a preprint. Requests are never
// consumed or resolved; duplicates by the same persona are allowed.
type Request struct {
	ID              string
	PreprintID      string
	AuthorPersonaID string
	CreatedAt       time.Time
}

// Tag is a named label attached to a preprint.
type Tag struct {
	PreprintID string
	Name       string
	CreatedAt  time.Time
}

// Capability carries the caller's resolved permissions.
type Capability struct {
	PersonaID  string
	Moderation bool
}

// CreatePreprintInput carries resolved metadata for a new preprint record.
type CreatePreprintInput struct {
	Handle      string
	Title       string
	URL         string
	Authors     string
	Server      string
	License     string
	PublishedOn *time.Time
}

// CreateRequestInput asks for reviews of a preprint.
type CreateRequestInput struct {
	PreprintID      string
	AuthorPersonaID string
}

// AddTagInput attaches a named tag to a preprint.
type AddTagInput struct {
	PreprintID string
	Name       string
}
