package domain

import (
	"strings"
	"time"
)

// Identity is one registered researcher account keyed by ORCID iD.
type Identity struct {
	ID               string
	ORCID            string
	IsPrivate        bool
	DefaultPersonaID string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Persona is one public byline an identity writes under. A persona may be
// anonymous (a platform pseudonym) and carries its own moderation state.
type Persona struct {
	ID          string
	IdentityID  string
	DisplayName string
	IsAnonymous bool
	IsLocked    bool
	IsFlagged   bool
	AvatarURL   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive reports whether the persona may act on the platform.
func (p Persona) IsActive() bool {
	return !p.IsLocked
}

// Capability carries the caller's resolved permissions.
type Capability struct {
	PersonaID  string
	Moderation bool
}

// RegisterIdentityInput registers an ORCID iD with its first personas.
type RegisterIdentityInput struct {
	ORCID       string
	DisplayName string
	// PseudonymName, when set, creates an additional anonymous persona
	// alongside the named default one.
	PseudonymName string
	IsPrivate     bool
	AvatarURL     string
}

// CreatePersonaInput adds a byline to an existing identity.
type CreatePersonaInput struct {
	IdentityID  string
	DisplayName string
	IsAnonymous bool
	AvatarURL   string
}

// SetPersonaFlagInput toggles the moderation flag on a persona.
type SetPersonaFlagInput struct {
	PersonaID  string
	Flagged    bool
	Capability Capability
}

// NormalizeORCID trims and uppercases an ORCID iD, stripping a URL prefix.
func NormalizeORCID(orcid string) string {
	orcid = strings.TrimSpace(orcid)
	orcid = strings.TrimPrefix(orcid, "https://orcid.org/")
	orcid = strings.TrimPrefix(orcid, "http://orcid.org/")
	return strings.ToUpper(orcid)
}

// ValidateORCID checks the 0000-0000-0000-0000 shape and the ISO 7064 11-2
// check digit of a normalized ORCID iD.
func ValidateORCID(orcid string) error {
	if orcid == "" {
		return ErrEmptyOrcid
	}
	if len(orcid) != 19 {
		return ErrInvalidOrcid
	}
	total := 0
	digits := 0
	for i, r := range orcid {
		if (i+1)%5 == 0 {
			if r != '-' {
				return ErrInvalidOrcid
			}
			continue
		}
		digits++
		var value int
		switch {
		case r >= '0' && r <= '9':
			value = int(r - '0')
		case r == 'X' && digits == 16:
			value = 10
		default:
			return ErrInvalidOrcid
		}
		if digits == 16 {
			checksum := (12 - (total % 11)) % 11
			if checksum != value {
				return ErrInvalidOrcid
			}
			continue
		}
		total = (total + value) * 2
	}
	return nil
}
