// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package strategy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"

	autherrors "github.com/stacklok/drchrono-auth/pkg/errors"
	"github.com/stacklok/drchrono-auth/pkg/logger"
	"github.com/stacklok/drchrono-auth/pkg/networking"
)

var (
	// ErrMissingState is returned when an authorization URL is requested without state.
	ErrMissingState = errors.New("state parameter is required")

	// ErrMissingCode is returned when the callback carries no authorization code.
	ErrMissingCode = errors.New("missing authorization code")
)

// Verified is what the verify callback reports back to the strategy.
type Verified struct {
	// User is the application's user record. Nil means authentication failed.
	User any

	// Info carries optional details, such as a failure message.
	Info map[string]any
}

// VerifyFunc maps a provider profile to an application user.
// Returning a nil *Verified, or one with a nil User, fails authentication without an error.
type VerifyFunc[P any] func(ctx context.Context, accessToken, refreshToken string, profile P) (*Verified, error)

// ProfileFetcher loads the provider profile for an access token.
type ProfileFetcher[P any] interface {
	FetchProfile(ctx context.Context, accessToken string) (P, error)
}

// ProfileFetcherFunc adapts a function to ProfileFetcher.
type ProfileFetcherFunc[P any] func(ctx context.Context, accessToken string) (P, error)

// FetchProfile calls f.
func (f ProfileFetcherFunc[P]) FetchProfile(ctx context.Context, accessToken string) (P, error) {
	return f(ctx, accessToken)
}

// Outcome is the result of a completed authorization.
type Outcome[P any] struct {
	Token   *oauth2.Token
	Profile P
	User    any
	Info    map[string]any
}

// Authenticated reports whether the verify callback accepted the profile.
func (o *Outcome[P]) Authenticated() bool {
	return o != nil && o.User != nil
}

// AuthorizationError is an error response delivered to the callback URL.
type AuthorizationError struct {
	Code        string
	Description string
	URI         string
}

func (e *AuthorizationError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("authorization failed: %s - %s", e.Code, e.Description)
	}
	return fmt.Sprintf("authorization failed: %s", e.Code)
}

// Option configures a Strategy.
type Option func(*settings)

type settings struct {
	httpClient networking.HTTPClient
	logger     *slog.Logger
}

// WithHTTPClient sets the client used for token exchange and profile requests.
func WithHTTPClient(client networking.HTTPClient) Option {
	return func(s *settings) {
		s.httpClient = client
	}
}

// WithLogger sets the logger. Defaults to the process-wide logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// Strategy drives the authorization-code flow for one provider.
// It is immutable after New and safe for concurrent use.
type Strategy[P any] struct {
	name           string
	config         Config
	oauth2Config   *oauth2.Config
	verify         VerifyFunc[P]
	fetcher        ProfileFetcher[P]
	httpClient     networking.HTTPClient
	exchangeClient *http.Client
	logger         *slog.Logger
}

// New builds a strategy. The verify callback is checked first, then cfg.
func New[P any](
	name string,
	cfg Config,
	verify VerifyFunc[P],
	fetcher ProfileFetcher[P],
	opts ...Option,
) (*Strategy[P], error) {
	if verify == nil {
		return nil, autherrors.NewInvalidConfigurationError("verify callback is required", ErrMissingVerify)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if fetcher == nil {
		return nil, autherrors.NewInvalidConfigurationError("profile fetcher is required", ErrMissingFetcher)
	}

	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.WithComponent(name)
	}
	if s.httpClient == nil {
		client, err := networking.NewHttpClientBuilder().Build()
		if err != nil {
			return nil, autherrors.NewInternalError("failed to build HTTP client", err)
		}
		s.httpClient = client
	}

	scopes := make([]string, len(cfg.Scopes))
	copy(scopes, cfg.Scopes)
	cfg.Scopes = scopes

	strategy := &Strategy[P]{
		name:   name,
		config: cfg,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthorizationURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		verify:         verify,
		fetcher:        fetcher,
		httpClient:     s.httpClient,
		exchangeClient: asHTTPClient(s.httpClient),
		logger:         s.logger,
	}

	s.logger.Debug("strategy configured",
		"provider", name,
		"authorization_url", cfg.AuthorizationURL,
		"token_url", cfg.TokenURL,
		"scopes", scopes,
	)

	return strategy, nil
}

// Name returns the provider name the strategy was built with.
func (s *Strategy[P]) Name() string {
	return s.name
}

// Config returns a copy of the strategy configuration.
func (s *Strategy[P]) Config() Config {
	cfg := s.config
	cfg.Scopes = append([]string(nil), s.config.Scopes...)
	return cfg
}

// HTTPClient returns the client used for outbound requests.
func (s *Strategy[P]) HTTPClient() networking.HTTPClient {
	return s.httpClient
}

// AuthCodeURL returns the provider URL the user is redirected to for consent.
func (s *Strategy[P]) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) (string, error) {
	if state == "" {
		return "", ErrMissingState
	}
	return s.oauth2Config.AuthCodeURL(state, opts...), nil
}

// Exchange trades an authorization code for a token.
func (s *Strategy[P]) Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	if code == "" {
		return nil, ErrMissingCode
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.exchangeClient)
	token, err := s.oauth2Config.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	return token, nil
}

// UserProfile loads the provider profile for accessToken.
func (s *Strategy[P]) UserProfile(ctx context.Context, accessToken string) (P, error) {
	return s.fetcher.FetchProfile(ctx, accessToken)
}

// Complete exchanges code, loads the profile and runs the verify callback.
// A rejected profile is reported through Outcome.Authenticated, not as an error.
func (s *Strategy[P]) Complete(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*Outcome[P], error) {
	token, err := s.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, err
	}

	profile, err := s.UserProfile(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	verified, err := s.verify(ctx, token.AccessToken, token.RefreshToken, profile)
	if err != nil {
		return nil, fmt.Errorf("verify callback failed: %w", err)
	}

	outcome := &Outcome[P]{Token: token, Profile: profile}
	if verified != nil {
		outcome.User = verified.User
		outcome.Info = verified.Info
	}

	if outcome.Authenticated() {
		s.logger.Debug("authentication succeeded", "provider", s.name)
	} else {
		s.logger.Debug("authentication rejected by verify callback", "provider", s.name)
	}
	return outcome, nil
}

// CompleteRequest completes the flow from the provider's redirect to the callback URL.
// State validation is left to the caller.
func (s *Strategy[P]) CompleteRequest(r *http.Request, opts ...oauth2.AuthCodeOption) (*Outcome[P], error) {
	query := r.URL.Query()
	if code := query.Get("error"); code != "" {
		return nil, &AuthorizationError{
			Code:        code,
			Description: query.Get("error_description"),
			URI:         query.Get("error_uri"),
		}
	}

	ctx := r.Context()
	if s.config.PassRequestToCallback {
		ctx = WithRequest(ctx, r)
	}
	return s.Complete(ctx, query.Get("code"), opts...)
}

// asHTTPClient adapts an HTTPClient to the *http.Client x/oauth2 expects.
func asHTTPClient(client networking.HTTPClient) *http.Client {
	if c, ok := client.(*http.Client); ok {
		return c
	}
	return &http.Client{Transport: doerTransport{client: client}}
}

type doerTransport struct {
	client networking.HTTPClient
}

func (t doerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.client.Do(req)
}
