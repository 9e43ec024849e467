// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/stacklok/drchrono-auth/cmd/drchrono-auth/app/ui"
	"github.com/stacklok/drchrono-auth/pkg/drchrono"
)

func newProfileCmd() *cobra.Command {
	var (
		accessToken string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Fetch the drchrono profile for an access token",
		Long: `Call the drchrono current-user endpoint with an existing access token
and print the normalized profile. No client credentials are needed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if accessToken == "" {
				return errors.New("--access-token is required")
			}

			opts, err := loadOptions()
			if err != nil {
				return err
			}

			provider, err := newTelemetry(cmd.Context())
			if err != nil {
				return err
			}
			defer shutdownTelemetry(provider)

			fetcher, err := drchrono.NewProfileFetcher(opts.ProfileURL, telemetryOptions(provider)...)
			if err != nil {
				return err
			}

			profile, err := fetcher.FetchProfile(cmd.Context(), accessToken)
			if err != nil {
				return err
			}
			return printProfile(cmd.OutOrStdout(), profile, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&accessToken, "access-token", "", "drchrono OAuth 2.0 access token")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the profile as JSON")

	return cmd
}

func printProfile(w io.Writer, profile *drchrono.Profile, jsonOutput bool) error {
	if !jsonOutput {
		return ui.RenderProfileTable(w, profile)
	}

	encoded, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}
