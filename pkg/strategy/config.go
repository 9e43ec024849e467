// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package strategy

import (
	"errors"
	"fmt"

	autherrors "github.com/stacklok/drchrono-auth/pkg/errors"
	"github.com/stacklok/drchrono-auth/pkg/networking"
)

// Sentinel configuration errors. New wraps them in an invalid_configuration
// error, so callers match them with errors.Is.
var (
	ErrMissingVerify       = errors.New("strategy requires a verify callback")
	ErrMissingClientID     = errors.New("strategy requires a client ID")
	ErrMissingClientSecret = errors.New("strategy requires a client secret")
	ErrMissingCallbackURL  = errors.New("strategy requires a callback URL")
	ErrMissingEndpoint     = errors.New("strategy requires authorization and token URLs")
	ErrMissingFetcher      = errors.New("strategy requires a profile fetcher")
)

// Config holds the OAuth 2.0 client settings of a strategy.
type Config struct {
	// ClientID is the OAuth client ID
	ClientID string

	// ClientSecret is the OAuth client secret
	ClientSecret string

	// CallbackURL is the redirect URI registered with the provider
	CallbackURL string

	// Scopes are the OAuth scopes to request
	Scopes []string

	// AuthorizationURL is the provider's authorization endpoint
	AuthorizationURL string

	// TokenURL is the provider's token endpoint
	TokenURL string

	// PassRequestToCallback exposes the callback request to the verify callback
	// through RequestFromContext.
	PassRequestToCallback bool
}

// Validate checks the required fields in a fixed order and returns the first failure.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return autherrors.NewInvalidConfigurationError("client ID is required", ErrMissingClientID)
	}
	if c.ClientSecret == "" {
		return autherrors.NewInvalidConfigurationError("client secret is required", ErrMissingClientSecret)
	}
	if c.CallbackURL == "" {
		return autherrors.NewInvalidConfigurationError("callback URL is required", ErrMissingCallbackURL)
	}
	if c.AuthorizationURL == "" || c.TokenURL == "" {
		return autherrors.NewInvalidConfigurationError("provider endpoints are required", ErrMissingEndpoint)
	}
	if err := networking.ValidateEndpointURL(c.AuthorizationURL); err != nil {
		return autherrors.NewInvalidConfigurationError(
			fmt.Sprintf("invalid authorization URL %q", c.AuthorizationURL), err)
	}
	if err := networking.ValidateEndpointURL(c.TokenURL); err != nil {
		return autherrors.NewInvalidConfigurationError(
			fmt.Sprintf("invalid token URL %q", c.TokenURL), err)
	}
	return nil
}
