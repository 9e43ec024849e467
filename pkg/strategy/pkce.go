// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package strategy

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
)

// PKCE holds an RFC 7636 code verifier for a single authorization.
type PKCE struct {
	Verifier string
}

// NewPKCE generates a fresh code verifier.
func NewPKCE() *PKCE {
	return &PKCE{Verifier: oauth2.GenerateVerifier()}
}

// AuthCodeOptions returns the S256 challenge parameters for the authorization URL.
func (p *PKCE) AuthCodeOptions() []oauth2.AuthCodeOption {
	return []oauth2.AuthCodeOption{oauth2.S256ChallengeOption(p.Verifier)}
}

// ExchangeOption returns the verifier parameter for the token exchange.
func (p *PKCE) ExchangeOption() oauth2.AuthCodeOption {
	return oauth2.VerifierOption(p.Verifier)
}

// NewState generates a random state parameter.
func NewState() (string, error) {
	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(stateBytes), nil
}
