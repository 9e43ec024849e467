// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package drchrono

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/mock/gomock"

	autherrors "github.com/stacklok/drchrono-auth/pkg/errors"
	"github.com/stacklok/drchrono-auth/pkg/networking"
	"github.com/stacklok/drchrono-auth/pkg/networking/mocks"
)

// newProfileServer serves body with status on every request and records the request headers.
func newProfileServer(t *testing.T, status int, body string) (*httptest.Server, *http.Header) {
	t.Helper()

	var received http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		received = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &received
}

func TestFetchProfile_Success(t *testing.T) {
	t.Parallel()

	server, headers := newProfileServer(t, http.StatusOK, sampleProfileJSON)

	fetcher, err := NewProfileFetcher(server.URL+"/api/users/current", WithHTTPClient(server.Client()))
	require.NoError(t, err)

	profile, err := fetcher.FetchProfile(context.Background(), "token-123")
	require.NoError(t, err)
	require.NotNil(t, profile)

	assert.Equal(t, "Bearer token-123", headers.Get("Authorization"))
	assert.Equal(t, "application/json", headers.Get("Accept"))
	assert.Contains(t, headers.Get("User-Agent"), "drchrono-auth/")

	assert.Equal(t, ProviderName, profile.Provider)
	assert.Equal(t, float64(42), profile.ID.Data)
	assert.Equal(t, "alice", profile.Username.Data)
	assert.Equal(t, sampleProfileJSON, string(profile.Raw))
	assert.Equal(t, "alice", profile.JSON["username"])
	assert.Equal(t, float64(7), profile.JSON["practice_group"])
}

func TestFetchProfile_KeepsUnmappedFieldsInJSON(t *testing.T) {
	t.Parallel()

	server, _ := newProfileServer(t, http.StatusOK, `{"id": 1, "email": "doc@example.com"}`)

	fetcher, err := NewProfileFetcher(server.URL, WithHTTPClient(server.Client()))
	require.NoError(t, err)

	profile, err := fetcher.FetchProfile(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "doc@example.com", profile.JSON["email"])
}

func TestFetchProfile_PreservesFieldValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		body  string
		field func(*Profile) any
		want  any
	}{
		{"string id", `{"id": "42"}`, func(p *Profile) any { return p.ID.Data }, "42"},
		{"fractional id", `{"id": 42.5}`, func(p *Profile) any { return p.ID.Data }, 42.5},
		{"numeric username", `{"username": 7}`, func(p *Profile) any { return p.Username.Data }, float64(7)},
		{"string practice group", `{"practice_group": "7"}`, func(p *Profile) any { return p.PracticeGroup.Data }, "7"},
		{"string is_staff", `{"is_staff": "yes"}`, func(p *Profile) any { return p.IsStaff.Data }, "yes"},
		{"object doctor", `{"doctor": {"id": 3}}`, func(p *Profile) any { return p.Doctor.Data }, map[string]any{"id": float64(3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server, _ := newProfileServer(t, http.StatusOK, tt.body)

			fetcher, err := NewProfileFetcher(server.URL, WithHTTPClient(server.Client()))
			require.NoError(t, err)

			profile, err := fetcher.FetchProfile(context.Background(), "token")
			require.NoError(t, err)
			assert.Equal(t, ProviderName, profile.Provider)
			assert.Equal(t, tt.want, tt.field(profile))
		})
	}
}

func TestNewProfileFetcher_InvalidURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
	}{
		{"plain http remote host", "http://drchrono.com/api/users/current"},
		{"relative", "/api/users/current"},
		{"unsupported scheme", "ftp://drchrono.com/api/users/current"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fetcher, err := NewProfileFetcher(tt.url)
			require.Error(t, err)
			assert.Nil(t, fetcher)
			assert.True(t, autherrors.IsInvalidConfiguration(err))
		})
	}
}

func TestFetchProfile_TransportFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mocks.NewMockHTTPClient(ctrl)
	dialErr := errors.New("dial tcp: connection refused")
	client.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bearer token", req.Header.Get("Authorization"))
		return nil, dialErr
	}).Times(1)

	fetcher, err := NewProfileFetcher(DefaultProfileURL, WithHTTPClient(client))
	require.NoError(t, err)

	profile, err := fetcher.FetchProfile(context.Background(), "token")
	require.Error(t, err)
	assert.Nil(t, profile)

	var fetchErr *FetchProfileError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, DefaultProfileURL, fetchErr.URL)
	assert.ErrorIs(t, err, dialErr)
	assert.True(t, autherrors.IsTransport(err))
	assert.NotErrorIs(t, err, ErrParseProfile)
	assert.Contains(t, err.Error(), "failed to fetch user profile")
}

func TestFetchProfile_ErrorStatus(t *testing.T) {
	t.Parallel()

	server, _ := newProfileServer(t, http.StatusUnauthorized, `{"detail":"Invalid token."}`)

	fetcher, err := NewProfileFetcher(server.URL, WithHTTPClient(server.Client()))
	require.NoError(t, err)

	profile, err := fetcher.FetchProfile(context.Background(), "expired")
	require.Error(t, err)
	assert.Nil(t, profile)

	var fetchErr *FetchProfileError
	require.ErrorAs(t, err, &fetchErr)
	assert.True(t, networking.IsHTTPError(err, http.StatusUnauthorized))
	assert.True(t, autherrors.IsTransport(err))
}

func TestFetchProfile_MalformedBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"html", "<html>Bad Gateway</html>"},
		{"empty", ""},
		{"array", "[]"},
		{"null", "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server, _ := newProfileServer(t, http.StatusOK, tt.body)

			fetcher, err := NewProfileFetcher(server.URL, WithHTTPClient(server.Client()))
			require.NoError(t, err)

			profile, err := fetcher.FetchProfile(context.Background(), "token")
			require.Error(t, err)
			assert.Nil(t, profile)
			assert.ErrorIs(t, err, ErrParseProfile)
			assert.True(t, autherrors.IsMalformedResponse(err))

			var fetchErr *FetchProfileError
			assert.False(t, errors.As(err, &fetchErr))
		})
	}
}

func TestFetchProfile_RequiresAccessToken(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mocks.NewMockHTTPClient(ctrl)

	fetcher, err := NewProfileFetcher(DefaultProfileURL, WithHTTPClient(client))
	require.NoError(t, err)

	_, err = fetcher.FetchProfile(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingAccessToken)
}

func TestFetchProfile_Telemetry(t *testing.T) {
	t.Parallel()

	spans := tracetest.NewSpanRecorder()
	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))

	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	okServer, _ := newProfileServer(t, http.StatusOK, sampleProfileJSON)
	badServer, _ := newProfileServer(t, http.StatusOK, "not json")

	opts := []Option{
		WithHTTPClient(okServer.Client()),
		WithTracerProvider(tracerProvider),
		WithMeterProvider(meterProvider),
	}

	ok, err := NewProfileFetcher(okServer.URL, opts...)
	require.NoError(t, err)
	bad, err := NewProfileFetcher(badServer.URL, opts...)
	require.NoError(t, err)

	_, err = ok.FetchProfile(context.Background(), "token")
	require.NoError(t, err)
	_, err = bad.FetchProfile(context.Background(), "token")
	require.Error(t, err)

	ended := spans.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "drchrono.FetchProfile", ended[0].Name())
	assert.Equal(t, codes.Ok, ended[0].Status().Code)
	assert.Equal(t, codes.Error, ended[1].Status().Code)
	assert.Equal(t, resultParseError, ended[1].Status().Description)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	var foundHistogram bool
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch m.Name {
			case metricProfileFetches:
				sum, isSum := m.Data.(metricdata.Sum[int64])
				require.True(t, isSum)
				for _, dp := range sum.DataPoints {
					result, _ := dp.Attributes.Value(attribute.Key("result"))
					counts[result.AsString()] += dp.Value
				}
			case metricProfileFetchDuration:
				foundHistogram = true
			}
		}
	}

	assert.Equal(t, int64(1), counts[resultSuccess])
	assert.Equal(t, int64(1), counts[resultParseError])
	assert.True(t, foundHistogram, "fetch duration histogram should be recorded")
}
