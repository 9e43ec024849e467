// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package drchrono

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	autherrors "github.com/stacklok/drchrono-auth/pkg/errors"
	"github.com/stacklok/drchrono-auth/pkg/logger"
	"github.com/stacklok/drchrono-auth/pkg/networking"
	"github.com/stacklok/drchrono-auth/pkg/strategy"
)

// Construction errors, matched with errors.Is.
var (
	ErrMissingVerify       = strategy.ErrMissingVerify
	ErrMissingClientID     = strategy.ErrMissingClientID
	ErrMissingClientSecret = strategy.ErrMissingClientSecret
	ErrMissingCallbackURL  = strategy.ErrMissingCallbackURL
)

// VerifyFunc is the verify callback for drchrono profiles.
type VerifyFunc = strategy.VerifyFunc[*Profile]

// Option configures a Strategy or ProfileFetcher.
type Option func(*settings)

type settings struct {
	httpClient     networking.HTTPClient
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	logger         *slog.Logger
}

// WithHTTPClient sets the client used for the token exchange and the profile request.
func WithHTTPClient(client networking.HTTPClient) Option {
	return func(s *settings) {
		s.httpClient = client
	}
}

// WithTracerProvider sets the tracer provider. Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *settings) {
		s.tracerProvider = tp
	}
}

// WithMeterProvider sets the meter provider. Defaults to the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *settings) {
		s.meterProvider = mp
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

func newSettings(opts []Option) (*settings, error) {
	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracerProvider == nil {
		s.tracerProvider = otel.GetTracerProvider()
	}
	if s.meterProvider == nil {
		s.meterProvider = otel.GetMeterProvider()
	}
	if s.logger == nil {
		s.logger = logger.WithComponent(ProviderName)
	}
	if s.httpClient == nil {
		client, err := networking.NewHttpClientBuilder().Build()
		if err != nil {
			return nil, autherrors.NewInternalError("failed to build HTTP client", err)
		}
		s.httpClient = client
	}
	return s, nil
}

// Strategy is the drchrono OAuth 2.0 strategy.
type Strategy struct {
	*strategy.Strategy[*Profile]

	options Options
	fetcher *ProfileFetcher
}

// New validates opts, applies the provider defaults and builds the strategy.
// The verify callback is checked first, then ClientID, ClientSecret and CallbackURL.
func New(opts Options, verify VerifyFunc, options ...Option) (*Strategy, error) {
	if verify == nil {
		return nil, autherrors.NewInvalidConfigurationError("verify callback is required", ErrMissingVerify)
	}

	opts = opts.WithDefaults()
	cfg := strategy.Config{
		ClientID:              opts.ClientID,
		ClientSecret:          opts.ClientSecret,
		CallbackURL:           opts.CallbackURL,
		Scopes:                opts.Scopes(),
		AuthorizationURL:      opts.AuthorizationURL,
		TokenURL:              opts.TokenURL,
		PassRequestToCallback: opts.PassRequestToCallback,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateProfileURL(opts.ProfileURL); err != nil {
		return nil, err
	}

	s, err := newSettings(options)
	if err != nil {
		return nil, err
	}
	fetcher := newProfileFetcher(opts.ProfileURL, s)

	base, err := strategy.New[*Profile](ProviderName, cfg, verify, fetcher,
		strategy.WithHTTPClient(s.httpClient),
		strategy.WithLogger(s.logger),
	)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("drchrono strategy created",
		"callback_url", opts.CallbackURL,
		"profile_url", opts.ProfileURL,
		"pass_request_to_callback", opts.PassRequestToCallback,
	)

	return &Strategy{
		Strategy: base,
		options:  opts,
		fetcher:  fetcher,
	}, nil
}

// Options returns the effective options, defaults included.
func (s *Strategy) Options() Options {
	return s.options
}

// ProfileFetcher returns the fetcher used after the token exchange.
func (s *Strategy) ProfileFetcher() *ProfileFetcher {
	return s.fetcher
}

// NewFlow prepares an interactive loopback login.
func (s *Strategy) NewFlow(opts ...strategy.FlowOption) (*strategy.Flow[*Profile], error) {
	return strategy.NewFlow(s.Strategy, opts...)
}
