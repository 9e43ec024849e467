// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package drchrono

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	autherrors "github.com/stacklok/drchrono-auth/pkg/errors"
	"github.com/stacklok/drchrono-auth/pkg/networking"
	"github.com/stacklok/drchrono-auth/pkg/versions"
)

const (
	// ProviderName identifies this strategy and is stamped on every fetched profile.
	ProviderName = "drchrono"

	instrumentationName = "github.com/stacklok/drchrono-auth/pkg/drchrono"

	metricProfileFetches       = "drchrono_profile_fetches"
	metricProfileFetchDuration = "drchrono_profile_fetch_duration"
)

// Fetch results recorded on the fetch counter.
const (
	resultSuccess        = "success"
	resultTransportError = "transport_error"
	resultParseError     = "parse_error"
)

// ErrMissingAccessToken is returned when FetchProfile is called without a token.
var ErrMissingAccessToken = errors.New("access token is required")

// FetchProfileError reports that the profile request did not complete.
type FetchProfileError struct {
	URL string
	Err error
}

func (e *FetchProfileError) Error() string {
	return fmt.Sprintf("failed to fetch user profile: %v", e.Err)
}

func (e *FetchProfileError) Unwrap() error {
	return e.Err
}

// ProfileFetcher loads the current drchrono user with an access token.
// It makes exactly one request per call and never retries.
type ProfileFetcher struct {
	profileURL string
	client     networking.HTTPClient
	tracer     trace.Tracer
	fetches    metric.Int64Counter
	duration   metric.Float64Histogram
	logger     *slog.Logger
}

// NewProfileFetcher creates a fetcher for profileURL.
// The URL must be https unless it points at a loopback host.
func NewProfileFetcher(profileURL string, opts ...Option) (*ProfileFetcher, error) {
	if err := validateProfileURL(profileURL); err != nil {
		return nil, err
	}
	s, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	return newProfileFetcher(profileURL, s), nil
}

func validateProfileURL(profileURL string) error {
	if err := networking.ValidateEndpointURL(profileURL); err != nil {
		return autherrors.NewInvalidConfigurationError("invalid profile URL "+profileURL, err)
	}
	return nil
}

func newProfileFetcher(profileURL string, s *settings) *ProfileFetcher {
	meter := s.meterProvider.Meter(instrumentationName)

	fetches, _ := meter.Int64Counter(
		metricProfileFetches,
		metric.WithDescription("Number of drchrono profile requests"),
	)
	duration, _ := meter.Float64Histogram(
		metricProfileFetchDuration,
		metric.WithDescription("Duration of drchrono profile requests"),
		metric.WithUnit("s"),
	)

	return &ProfileFetcher{
		profileURL: profileURL,
		client:     s.httpClient,
		tracer:     s.tracerProvider.Tracer(instrumentationName),
		fetches:    fetches,
		duration:   duration,
		logger:     s.logger,
	}
}

// FetchProfile requests the profile URL with the token in the Authorization header.
func (f *ProfileFetcher) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	if accessToken == "" {
		return nil, ErrMissingAccessToken
	}

	ctx, span := f.tracer.Start(ctx, "drchrono.FetchProfile",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("url.full", f.profileURL)),
	)
	defer span.End()

	start := time.Now()
	profile, result, err := f.fetch(ctx, accessToken)

	attrs := metric.WithAttributes(attribute.String("result", result))
	f.fetches.Add(ctx, 1, attrs)
	f.duration.Record(ctx, time.Since(start).Seconds(), attrs)

	span.SetAttributes(attribute.String("drchrono.result", result))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
		f.logger.Debug("profile fetch failed", "url", f.profileURL, "result", result, "error", err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	f.logger.Debug("profile fetched", "url", f.profileURL, "bytes", len(profile.Raw))
	return profile, nil
}

func (f *ProfileFetcher) fetch(ctx context.Context, accessToken string) (*Profile, string, error) {
	f.logger.Debug("fetching user profile", "url", f.profileURL)

	res, err := networking.Fetch(ctx, f.client, f.profileURL,
		networking.WithBearerToken(accessToken),
		networking.WithHeader("Accept", networking.ContentTypeJSON),
		networking.WithHeader("User-Agent", versions.UserAgent()),
	)
	if err != nil {
		return nil, resultTransportError, autherrors.NewTransportError(
			"profile request failed", &FetchProfileError{URL: f.profileURL, Err: err})
	}

	var decoded map[string]any
	if err := json.Unmarshal(res.Body, &decoded); err != nil {
		return nil, resultParseError, parseError(err)
	}

	profile, err := ParseProfile(res.Body)
	if err != nil {
		return nil, resultParseError, err
	}

	profile.Provider = ProviderName
	profile.Raw = res.Body
	profile.JSON = decoded
	return profile, resultSuccess, nil
}
