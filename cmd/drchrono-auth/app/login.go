// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stacklok/drchrono-auth/pkg/drchrono"
	"github.com/stacklok/drchrono-auth/pkg/logger"
	"github.com/stacklok/drchrono-auth/pkg/strategy"
)

func newLoginCmd() *cobra.Command {
	var (
		skipBrowser bool
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to drchrono and print the user profile",
		Long: `Run the OAuth 2.0 authorization-code flow against drchrono.

A local server is started on the callback URL, which must point to a loopback
address (for example http://localhost:8765/callback) and be registered with
your drchrono application. The consent page is opened in the browser; once
drchrono redirects back, the code is exchanged and the profile is printed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := loadOptions()
			if err != nil {
				return err
			}

			provider, err := newTelemetry(cmd.Context())
			if err != nil {
				return err
			}
			defer shutdownTelemetry(provider)

			s, err := drchrono.New(opts, requireProfileID, telemetryOptions(provider)...)
			if err != nil {
				return err
			}

			flow, err := s.NewFlow(
				strategy.WithSkipBrowser(skipBrowser),
				strategy.WithAuthURLHandler(func(authURL string) {
					fmt.Fprintf(cmd.ErrOrStderr(), "Open this URL in your browser to sign in:\n\n  %s\n\n", authURL)
				}),
			)
			if err != nil {
				return err
			}

			logger.Debugf("Waiting for the drchrono callback on %s", opts.CallbackURL)
			outcome, err := flow.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if !outcome.Authenticated() {
				return fmt.Errorf("login rejected: %v", outcome.Info["message"])
			}

			return printProfile(cmd.OutOrStdout(), outcome.Profile, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&skipBrowser, "skip-browser", false, "Print the consent URL instead of opening a browser")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the profile as JSON")

	return cmd
}

var errNoProfileID = errors.New("drchrono profile has no id")

// requireProfileID accepts any profile that identifies a drchrono user.
func requireProfileID(_ context.Context, _, _ string, p *drchrono.Profile) (*strategy.Verified, error) {
	if p == nil || p.ID == nil || p.ID.IsEmpty() {
		return &strategy.Verified{Info: map[string]any{"message": errNoProfileID.Error()}}, nil
	}
	return &strategy.Verified{User: p.ID.Data}, nil
}
