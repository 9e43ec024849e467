// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app provides the entry point for the drchrono-auth command-line application.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/stacklok/drchrono-auth/pkg/drchrono"
	"github.com/stacklok/drchrono-auth/pkg/logger"
	"github.com/stacklok/drchrono-auth/pkg/telemetry"
)

// NewRootCmd creates the root command for the drchrono-auth CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "drchrono-auth",
		DisableAutoGenTag: true,
		Short:             "Authenticate against drchrono with OAuth 2.0",
		Long: `drchrono-auth runs the drchrono OAuth 2.0 authorization-code flow from the terminal
and prints the normalized profile of the authenticated user.

Options are read, in order of precedence, from flags, DRCHRONO_* environment
variables and the YAML file given with --config.`,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				logger.Errorf("Error displaying help: %v", err)
			}
		},
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.Initialize()
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.Bool("debug", false, "Enable debug mode")
	flags.StringP("config", "c", "", "Path to a YAML file with drchrono options")
	flags.String("client-id", "", "drchrono application client ID")
	flags.String("client-secret", "", "drchrono application client secret")
	flags.String("callback-url", "", "Redirect URI registered with drchrono")
	flags.String("scope", "", "Space separated drchrono scopes (default \""+drchrono.DefaultScope+"\")")
	flags.String("profile-url", "", "Override the drchrono current-user endpoint")
	flags.String("otel-endpoint", "", "OTLP/HTTP collector address for traces and metrics (e.g. localhost:4318)")
	flags.Bool("otel-insecure", false, "Use plain HTTP for the OTLP endpoint")

	bindFlags(flags, map[string]string{
		"debug":                  "debug",
		"config":                 "config",
		drchrono.KeyClientID:     "client-id",
		drchrono.KeyClientSecret: "client-secret",
		drchrono.KeyCallbackURL:  "callback-url",
		drchrono.KeyScope:        "scope",
		drchrono.KeyProfileURL:   "profile-url",
		"otel.endpoint":          "otel-endpoint",
		"otel.insecure":          "otel-insecure",
	})

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newProfileCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			logger.Errorf("Error binding %s flag: %v", name, err)
		}
	}
}

// loadOptions merges the config file, environment and flags into drchrono options.
func loadOptions() (drchrono.Options, error) {
	v := viper.GetViper()
	if err := drchrono.ConfigureViper(v); err != nil {
		return drchrono.Options{}, err
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return drchrono.Options{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		logger.Debugf("Loaded configuration from %s", path)
	}

	return drchrono.LoadOptions(v)
}

// newTelemetry builds the OpenTelemetry providers from the otel.* settings.
func newTelemetry(ctx context.Context) (*telemetry.Provider, error) {
	cfg := telemetry.DefaultConfig()
	cfg.Endpoint = viper.GetString("otel.endpoint")
	cfg.Insecure = viper.GetBool("otel.insecure")
	if viper.IsSet("otel.sampling_rate") {
		cfg.SamplingRate = viper.GetFloat64("otel.sampling_rate")
	}

	provider, err := telemetry.NewProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}
	provider.SetGlobal()
	return provider, nil
}

func telemetryOptions(provider *telemetry.Provider) []drchrono.Option {
	return []drchrono.Option{
		drchrono.WithTracerProvider(provider.TracerProvider()),
		drchrono.WithMeterProvider(provider.MeterProvider()),
	}
}

func shutdownTelemetry(provider *telemetry.Provider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := provider.Shutdown(ctx); err != nil {
		logger.Warnf("Failed to flush telemetry: %v", err)
	}
}
