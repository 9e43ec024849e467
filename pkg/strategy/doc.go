// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package strategy provides a generic OAuth 2.0 authorization-code strategy.
//
// The protocol itself (authorization URL encoding, token exchange) is handled
// by golang.org/x/oauth2. Providers plug in through two extension points:
//
//   - a [ProfileFetcher] that turns an access token into a provider profile
//   - an optional [networking.HTTPClient] used for every outbound request
//
// The host application supplies a [VerifyFunc] that maps the provider profile
// to its own user record. [Strategy.Complete] runs exchange, profile fetch and
// verification in sequence and reports the result as an [Outcome].
//
// Example:
//
//	s, err := strategy.New("example", cfg, verify, fetcher)
//	if err != nil {
//	    return err
//	}
//	authURL, _ := s.AuthCodeURL(state)
//	// ... redirect the user, then on callback:
//	outcome, err := s.CompleteRequest(r)
package strategy
