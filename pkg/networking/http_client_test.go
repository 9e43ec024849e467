// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHttpClientBuilder(t *testing.T) {
	t.Parallel()

	builder := NewHttpClientBuilder()

	assert.Equal(t, HttpTimeout, builder.clientTimeout)
	assert.Equal(t, 10*time.Second, builder.tlsHandshakeTimeout)
	assert.Equal(t, 10*time.Second, builder.responseHeaderTimeout)
	assert.Empty(t, builder.caCertPath)
}

func TestHttpClientBuilder_FluentSetters(t *testing.T) {
	t.Parallel()

	builder := NewHttpClientBuilder()

	assert.Same(t, builder, builder.WithCABundle("/path/to/ca.crt"))
	assert.Same(t, builder, builder.WithTimeout(5*time.Second))
	assert.Equal(t, "/path/to/ca.crt", builder.caCertPath)
	assert.Equal(t, 5*time.Second, builder.clientTimeout)
}

func TestHttpClientBuilder_Build(t *testing.T) {
	t.Parallel()

	t.Run("basic client without options", func(t *testing.T) {
		t.Parallel()

		client, err := NewHttpClientBuilder().Build()
		require.NoError(t, err)
		assert.Equal(t, HttpTimeout, client.Timeout)
		assert.IsType(t, &ValidatingTransport{}, client.Transport)
	})

	t.Run("missing CA bundle", func(t *testing.T) {
		t.Parallel()

		_, err := NewHttpClientBuilder().WithCABundle("/nonexistent/ca.crt").Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read CA certificate bundle")
	})

	t.Run("CA bundle without certificates", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "ca.crt")
		require.NoError(t, os.WriteFile(path, []byte("not a certificate"), 0600))

		_, err := NewHttpClientBuilder().WithCABundle(path).Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse CA certificate bundle")
	})
}

func TestValidatingTransport_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		url           string
		expectError   bool
		errorContains string
	}{
		{
			name: "valid HTTPS URL",
			url:  "https://drchrono.com/api/users/current",
		},
		{
			name: "HTTP loopback URL",
			url:  "http://127.0.0.1:8080/callback",
		},
		{
			name:          "HTTP URL (not HTTPS)",
			url:           "http://example.com/test",
			expectError:   true,
			errorContains: "is not HTTPS scheme",
		},
		{
			name:          "malformed URL",
			url:           "not-a-url",
			expectError:   true,
			errorContains: "is not HTTPS scheme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockTransport := &mockRoundTripper{}
			transport := &ValidatingTransport{Transport: mockTransport}

			req, err := http.NewRequest(http.MethodGet, tt.url, nil)
			require.NoError(t, err)

			resp, err := transport.RoundTrip(req)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.Nil(t, resp)
				assert.False(t, mockTransport.called)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, resp)
			_ = resp.Body.Close()
			assert.True(t, mockTransport.called)
		})
	}
}

// mockRoundTripper is a simple mock implementation of http.RoundTripper for testing
type mockRoundTripper struct {
	called bool
}

func (m *mockRoundTripper) RoundTrip(_ *http.Request) (*http.Response, error) {
	m.called = true
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("OK")),
	}, nil
}
