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
)

// sessionEnv holds raw env values before post-parse validation.
type sessionEnv struct {
	Issuer     string        `env:"PREPRINT_REVIEW_AUTH_SESSION_ISSUER"`
	Audience   string        `env:"PREPRINT_REVIEW_AUTH_SESSION_AUDIENCE"`
	PublicKey  string        `env:"PREPRINT_REVIEW_AUTH_SESSION_PUBLIC_KEY"`
	PrivateKey string        `env:"PREPRINT_REVIEW_AUTH_SESSION_PRIVATE_KEY"`
	TTL        time.Duration `env:"PREPRINT_REVIEW_AUTH_SESSION_TTL" envDefault:"24h"`
}

// SessionConfig defines how session tokens are minted and verified. The
// private key is only needed on the minting side.
type SessionConfig struct {
	Issuer     string
	Audience   string
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
	TTL        time.Duration
}

// SessionClaims captures validated session token claims.
type SessionClaims struct {
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
	IssuedAt  time.Time
	JWTID     string
	ORCID     string
}

// sessionClaims is the internal claims type used for JWT parsing.
type sessionClaims struct {
	jwt.RegisteredClaims
	ORCID string `json:"orcid"`
}

// LoadSessionConfigFromEnv reads session token configuration. The public key
// is always required; the private key only when minting.
func LoadSessionConfigFromEnv() (SessionConfig, error) {
	var raw sessionEnv
	if err := env.Parse(&raw); err != nil {
		return SessionConfig{}, fmt.Errorf("parse session env: %w", err)
	}
	issuer := strings.TrimSpace(raw.Issuer)
	audience := strings.TrimSpace(raw.Audience)
	publicKey := strings.TrimSpace(raw.PublicKey)
	if issuer == "" {
		return SessionConfig{}, fmt.Errorf("PREPRINT_REVIEW_AUTH_SESSION_ISSUER is required")
	}
	if audience == "" {
		return SessionConfig{}, fmt.Errorf("PREPRINT_REVIEW_AUTH_SESSION_AUDIENCE is required")
	}
	if publicKey == "" {
		return SessionConfig{}, fmt.Errorf("PREPRINT_REVIEW_AUTH_SESSION_PUBLIC_KEY is required")
	}
	publicBytes, err := decodeBase64(publicKey)
	if err != nil {
		return SessionConfig{}, fmt.Errorf("decode session public key: %w", err)
	}
	if len(publicBytes) != ed25519.PublicKeySize {
		return SessionConfig{}, fmt.Errorf("session public key must be %d bytes", ed25519.PublicKeySize)
	}

	cfg := SessionConfig{
		Issuer:    issuer,
		Audience:  audience,
		PublicKey: ed25519.PublicKey(publicBytes),
		TTL:       raw.TTL,
	}
	if privateKey := strings.TrimSpace(raw.PrivateKey); privateKey != "" {
		privateBytes, err := decodeBase64(privateKey)
		if err != nil {
			return SessionConfig{}, fmt.Errorf("decode session private key: %w", err)
		}
		if len(privateBytes) != ed25519.PrivateKeySize {
			return SessionConfig{}, fmt.Errorf("session private key must be %d bytes", ed25519.PrivateKeySize)
		}
		cfg.PrivateKey = ed25519.PrivateKey(privateBytes)
	}
	return cfg, nil
}

// mintSessionToken signs a session token for one authenticated ORCID holder.
func mintSessionToken(orcid string, jwtID string, now time.Time, cfg SessionConfig) (string, time.Time, error) {
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.PrivateKey) != ed25519.PrivateKeySize {
		return "", time.Time{}, errors.New("session minter is not configured")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now = now.UTC()
	expiresAt := now.Add(ttl)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   orcid,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        jwtID,
		},
		ORCID: orcid,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(cfg.PrivateKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// verifySessionToken validates signature, issuer, audience, and expiry.
func verifySessionToken(token string, now time.Time, cfg SessionConfig) (SessionClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return SessionClaims{}, ErrTokenInvalid
	}
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.PublicKey) != ed25519.PublicKeySize {
		return SessionClaims{}, errors.New("session verifier is not configured")
	}

	var parsed sessionClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(token *jwt.Token) (any, error) {
		return cfg.PublicKey, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return SessionClaims{}, ErrTokenInvalid
	}

	if parsed.Issuer == "" || parsed.Issuer != cfg.Issuer {
		return SessionClaims{}, ErrTokenInvalid
	}
	if !audienceContains(parsed.Audience, cfg.Audience) {
		return SessionClaims{}, ErrTokenInvalid
	}
	if parsed.ID == "" || strings.TrimSpace(parsed.ORCID) == "" {
		return SessionClaims{}, ErrTokenInvalid
	}
	if parsed.ExpiresAt == nil {
		return SessionClaims{}, ErrTokenInvalid
	}

	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now.UTC()) {
		return SessionClaims{}, ErrTokenExpired
	}

	claims := SessionClaims{
		Issuer:    parsed.Issuer,
		Audience:  []string(parsed.Audience),
		ExpiresAt: exp,
		JWTID:     parsed.ID,
		ORCID:     parsed.ORCID,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return claims, nil
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
