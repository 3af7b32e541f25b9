package domain

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/openpreview/preprint.review/internal/platform/errors"
	"github.com/openpreview/preprint.review/internal/platform/id"
)

// inviteGrantEnv holds raw env values before post-parse validation.
type inviteGrantEnv struct {
	Issuer     string        `env:"PREPRINT_REVIEW_INVITE_GRANT_ISSUER"`
	Audience   string        `env:"PREPRINT_REVIEW_INVITE_GRANT_AUDIENCE"`
	PublicKey  string        `env:"PREPRINT_REVIEW_INVITE_GRANT_PUBLIC_KEY"`
	PrivateKey string        `env:"PREPRINT_REVIEW_INVITE_GRANT_PRIVATE_KEY"`
	TTL        time.Duration `env:"PREPRINT_REVIEW_INVITE_GRANT_TTL" envDefault:"168h"`
}

// InviteGrantConfig defines how invite grants are minted and verified. The
// private key is only needed on the minting side.
type InviteGrantConfig struct {
	Issuer     string
	Audience   string
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
	TTL        time.Duration
	Now        func() time.Time
}

// InviteGrantExpectation defines the expected identity for an invite grant.
type InviteGrantExpectation struct {
	ReviewID  string
	PersonaID string
	Role      Role
}

// InviteGrantClaims captures validated invite grant claims.
type InviteGrantClaims struct {
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
	IssuedAt  time.Time
	JWTID     string
	ReviewID  string
	PersonaID string
	Role      Role
}

// inviteGrantClaims is the internal claims type used for JWT parsing.
type inviteGrantClaims struct {
	jwt.RegisteredClaims
	ReviewID  string `json:"review_id"`
	PersonaID string `json:"persona_id"`
	Role      string `json:"role"`
}

// LoadInviteGrantConfigFromEnv reads invite grant configuration. The public
// key is always required; the private key only when minting.
func LoadInviteGrantConfigFromEnv(now func() time.Time) (InviteGrantConfig, error) {
	var raw inviteGrantEnv
	if err := env.Parse(&raw); err != nil {
		return InviteGrantConfig{}, fmt.Errorf("parse invite grant env: %w", err)
	}
	issuer := strings.TrimSpace(raw.Issuer)
	audience := strings.TrimSpace(raw.Audience)
	publicKey := strings.TrimSpace(raw.PublicKey)
	if issuer == "" {
		return InviteGrantConfig{}, fmt.Errorf("PREPRINT_REVIEW_INVITE_GRANT_ISSUER is required")
	}
	if audience == "" {
		return InviteGrantConfig{}, fmt.Errorf("PREPRINT_REVIEW_INVITE_GRANT_AUDIENCE is required")
	}
	if publicKey == "" {
		return InviteGrantConfig{}, fmt.Errorf("PREPRINT_REVIEW_INVITE_GRANT_PUBLIC_KEY is required")
	}
	publicBytes, err := decodeBase64(publicKey)
	if err != nil {
		return InviteGrantConfig{}, fmt.Errorf("decode invite grant public key: %w", err)
	}
	if len(publicBytes) != ed25519.PublicKeySize {
		return InviteGrantConfig{}, fmt.Errorf("invite grant public key must be %d bytes", ed25519.PublicKeySize)
	}

	cfg := InviteGrantConfig{
		Issuer:    issuer,
		Audience:  audience,
		PublicKey: ed25519.PublicKey(publicBytes),
		TTL:       raw.TTL,
		Now:       now,
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if privateKey := strings.TrimSpace(raw.PrivateKey); privateKey != "" {
		privateBytes, err := decodeBase64(privateKey)
		if err != nil {
			return InviteGrantConfig{}, fmt.Errorf("decode invite grant private key: %w", err)
		}
		if len(privateBytes) != ed25519.PrivateKeySize {
			return InviteGrantConfig{}, fmt.Errorf("invite grant private key must be %d bytes", ed25519.PrivateKeySize)
		}
		cfg.PrivateKey = ed25519.PrivateKey(privateBytes)
	}
	return cfg, nil
}

// MintInviteGrant signs a grant token binding one review, persona, and role
// for out-of-band invite links.
func MintInviteGrant(expected InviteGrantExpectation, cfg InviteGrantConfig) (string, error) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.PrivateKey) != ed25519.PrivateKeySize {
		return "", errors.New("invite grant minter is not configured")
	}
	reviewID := strings.TrimSpace(expected.ReviewID)
	personaID := strings.TrimSpace(expected.PersonaID)
	if reviewID == "" {
		return "", ErrEmptyReviewID
	}
	if personaID == "" {
		return "", ErrEmptyPersonaID
	}
	role, err := ParseRole(string(expected.Role))
	if err != nil {
		return "", err
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 168 * time.Hour
	}
	jwtID, err := id.NewID()
	if err != nil {
		return "", fmt.Errorf("generate invite grant id: %w", err)
	}

	now := cfg.Now().UTC()
	claims := inviteGrantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jwtID,
		},
		ReviewID:  reviewID,
		PersonaID: personaID,
		Role:      string(role),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(cfg.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("sign invite grant: %w", err)
	}
	return signed, nil
}

// ValidateInviteGrant verifies an invite grant token and validates expected claims.
func ValidateInviteGrant(grant string, expected InviteGrantExpectation, cfg InviteGrantConfig) (InviteGrantClaims, error) {
	grant = strings.TrimSpace(grant)
	if grant == "" {
		return InviteGrantClaims{}, apperrors.New(apperrors.CodeInviteGrantInvalid, "invite grant is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.PublicKey) != ed25519.PublicKeySize {
		return InviteGrantClaims{}, errors.New("invite grant verifier is not configured")
	}

	var parsed inviteGrantClaims
	_, err := jwt.ParseWithClaims(grant, &parsed, func(token *jwt.Token) (any, error) {
		return cfg.PublicKey, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return InviteGrantClaims{}, mapJWTError(err)
	}

	if parsed.Issuer == "" || parsed.Issuer != cfg.Issuer {
		return InviteGrantClaims{}, apperrors.WithMetadata(
			apperrors.CodeInviteGrantMismatch,
			"invite grant issuer mismatch",
			map[string]string{"Field": "issuer"},
		)
	}
	if !audienceContains(parsed.Audience, cfg.Audience) {
		return InviteGrantClaims{}, apperrors.WithMetadata(
			apperrors.CodeInviteGrantMismatch,
			"invite grant audience mismatch",
			map[string]string{"Field": "audience"},
		)
	}
	if parsed.ID == "" {
		return InviteGrantClaims{}, apperrors.New(apperrors.CodeInviteGrantInvalid, "invite grant jti is required")
	}
	if parsed.ExpiresAt == nil {
		return InviteGrantClaims{}, apperrors.New(apperrors.CodeInviteGrantInvalid, "invite grant exp is required")
	}

	now := cfg.Now().UTC()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now) {
		return InviteGrantClaims{}, apperrors.New(apperrors.CodeInviteGrantExpired, "invite grant is expired")
	}

	if strings.TrimSpace(parsed.ReviewID) == "" || parsed.ReviewID != expected.ReviewID {
		return InviteGrantClaims{}, apperrors.WithMetadata(
			apperrors.CodeInviteGrantMismatch,
			"invite grant review mismatch",
			map[string]string{"Field": "review_id"},
		)
	}
	if strings.TrimSpace(parsed.PersonaID) == "" || parsed.PersonaID != expected.PersonaID {
		return InviteGrantClaims{}, apperrors.WithMetadata(
			apperrors.CodeInviteGrantMismatch,
			"invite grant persona mismatch",
			map[string]string{"Field": "persona_id"},
		)
	}
	role, roleErr := ParseRole(parsed.Role)
	if roleErr != nil || role != expected.Role {
		return InviteGrantClaims{}, apperrors.WithMetadata(
			apperrors.CodeInviteGrantMismatch,
			"invite grant role mismatch",
			map[string]string{"Field": "role"},
		)
	}

	claims := InviteGrantClaims{
		Issuer:    parsed.Issuer,
		Audience:  []string(parsed.Audience),
		ExpiresAt: exp,
		JWTID:     parsed.ID,
		ReviewID:  parsed.ReviewID,
		PersonaID: parsed.PersonaID,
		Role:      role,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return claims, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrEd25519Verification) {
		return apperrors.New(apperrors.CodeInviteGrantInvalid, "invite grant signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeInviteGrantInvalid, "invite grant alg is invalid")
	}
	return apperrors.New(apperrors.CodeInviteGrantInvalid, "invite grant is invalid")
}

// audienceContains reports whether the audience list contains the given value.
func audienceContains(aud jwt.ClaimStrings, value string) bool {
	for _, item := range aud {
		if item == value {
			return true
		}
	}
	return false
}

func decodeBase64(value string) ([]byte, error) {
	if value == "" {
		return nil, errors.New("empty base64 value")
	}
	decoded, err := base64.RawStdEncoding.DecodeString(value)
	if err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(value)
}
