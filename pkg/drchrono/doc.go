// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package drchrono authenticates users against drchrono using OAuth 2.0.
//
// The package supplies the drchrono-specific parts of a [strategy.Strategy]:
// the provider endpoints, a profile fetcher that calls the drchrono
// "current user" API, and a mapper that normalizes the response into a
// [Profile].
//
// Example:
//
//	s, err := drchrono.New(drchrono.Options{
//	    ClientID:     "abcdefgxs023934",
//	    ClientSecret: "assdfco09sdXDAdg9cxaaSASDF90asdgf0asdvc",
//	    CallbackURL:  "https://www.example.net/auth/drchrono/callback",
//	}, func(ctx context.Context, accessToken, refreshToken string, p *drchrono.Profile) (*strategy.Verified, error) {
//	    user, err := users.FindOrCreate(ctx, p.ID.String())
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &strategy.Verified{User: user}, nil
//	})
package drchrono
