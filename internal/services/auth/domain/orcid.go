package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/openpreview/preprint.review/internal/platform/id"
)

// orcidEnv holds raw env values for the ORCID strategy.
type orcidEnv struct {
	ClientID     string   `env:"PREPRINT_REVIEW_AUTH_ORCID_CLIENT_ID"`
	ClientSecret string   `env:"PREPRINT_REVIEW_AUTH_ORCID_CLIENT_SECRET"`
	RedirectURI  string   `env:"PREPRINT_REVIEW_AUTH_ORCID_REDIRECT_URI"`
	AuthURL      string   `env:"PREPRINT_REVIEW_AUTH_ORCID_AUTH_URL"  envDefault:"https://orcid.org/oauth/authorize"`
	TokenURL     string   `env:"PREPRINT_REVIEW_AUTH_ORCID_TOKEN_URL" envDefault:"https://orcid.org/oauth/token"`
	Scopes       []string `env:"PREPRINT_REVIEW_AUTH_ORCID_SCOPES"    envSeparator:","`
}

// ORCIDConfig describes the ORCID OAuth endpoints and client credentials.
type ORCIDConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	TokenURL     string
	Scopes       []string
	HTTPClient   *http.Client
}

// LoadORCIDConfigFromEnv reads ORCID strategy configuration.
func LoadORCIDConfigFromEnv() (ORCIDConfig, error) {
	var raw orcidEnv
	if err := env.Parse(&raw); err != nil {
		return ORCIDConfig{}, fmt.Errorf("parse orcid env: %w", err)
	}
	scopes := raw.Scopes
	if len(scopes) == 0 {
		scopes = []string{"/authenticate"}
	}
	return ORCIDConfig{
		ClientID:     strings.TrimSpace(raw.ClientID),
		ClientSecret: strings.TrimSpace(raw.ClientSecret),
		RedirectURI:  strings.TrimSpace(raw.RedirectURI),
		AuthURL:      strings.TrimSpace(raw.AuthURL),
		TokenURL:     strings.TrimSpace(raw.TokenURL),
		Scopes:       scopes,
	}, nil
}

// ORCIDStrategy authenticates via the ORCID three-legged OAuth flow. Only the
// authorize redirect and the code-for-token exchange live here; member API
// calls are out of scope.
type ORCIDStrategy struct {
	cfg        ORCIDConfig
	httpClient *http.Client
	newID      func() (string, error)
}

// NewORCIDStrategy constructs the ORCID OAuth strategy.
func NewORCIDStrategy(cfg ORCIDConfig) *ORCIDStrategy {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &ORCIDStrategy{
		cfg:        cfg,
		httpClient: httpClient,
		newID:      id.NewID,
	}
}

// Name identifies the strategy in configuration and challenges.
func (s *ORCIDStrategy) Name() string {
	return StrategyORCID
}

// BeginLogin builds the ORCID authorize URL with a fresh state value.
func (s *ORCIDStrategy) BeginLogin(_ context.Context, input BeginLoginInput) (LoginChallenge, error) {
	if s.cfg.ClientID == "" || s.cfg.AuthURL == "" {
		return LoginChallenge{}, fmt.Errorf("orcid strategy is not configured")
	}
	state, err := s.newID()
	if err != nil {
		return LoginChallenge{}, err
	}

	redirectURI := strings.TrimSpace(input.RedirectURI)
	if redirectURI == "" {
		redirectURI = s.cfg.RedirectURI
	}
	query := url.Values{}
	query.Set("client_id", s.cfg.ClientID)
	query.Set("response_type", "code")
	query.Set("scope", strings.Join(s.cfg.Scopes, " "))
	query.Set("redirect_uri", redirectURI)
	query.Set("state", state)

	return LoginChallenge{
		Strategy:     StrategyORCID,
		State:        state,
		AuthorizeURL: s.cfg.AuthURL + "?" + query.Encode(),
	}, nil
}

// orcidTokenResponse is the ORCID token endpoint response shape.
type orcidTokenResponse struct {
	AccessToken string `json:"access_token"`
	ORCID       string `json:"orcid"`
	Name        string `json:"name"`
}

// CompleteLogin exchanges the authorization code for the holder's ORCID iD.
func (s *ORCIDStrategy) CompleteLogin(ctx context.Context, input CompleteLoginInput) (AuthenticatedIdentity, error) {
	if s.cfg.ClientID == "" || s.cfg.TokenURL == "" {
		return AuthenticatedIdentity{}, fmt.Errorf("orcid strategy is not configured")
	}
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return AuthenticatedIdentity{}, ErrEmptyCode
	}

	form := url.Values{}
	form.Set("client_id", s.cfg.ClientID)
	form.Set("client_secret", s.cfg.ClientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", s.cfg.RedirectURI)

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return AuthenticatedIdentity{}, fmt.Errorf("build orcid token request: %w", err)
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("Accept", "application/json")

	response, err := s.httpClient.Do(request)
	if err != nil {
		return AuthenticatedIdentity{}, fmt.Errorf("exchange orcid code: %w", err)
	}
	defer func() { _ = response.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return AuthenticatedIdentity{}, fmt.Errorf("read orcid token response: %w", err)
	}
	if response.StatusCode != http.StatusOK {
		return AuthenticatedIdentity{}, fmt.Errorf("orcid token endpoint returned %d", response.StatusCode)
	}

	var token orcidTokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return AuthenticatedIdentity{}, fmt.Errorf("decode orcid token response: %w", err)
	}
	orcid := normalizeORCID(token.ORCID)
	if orcid == "" {
		return AuthenticatedIdentity{}, ErrEmptyOrcid
	}
	return AuthenticatedIdentity{
		ORCID:       orcid,
		DisplayName: strings.TrimSpace(token.Name),
	}, nil
}
