// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package telemetry builds the OpenTelemetry providers used by drchrono-auth.
//
// Without an endpoint every provider is a no-op. With one, spans and metrics
// are exported over OTLP/HTTP.
package telemetry

import (
	"errors"
	"fmt"

	"github.com/stacklok/drchrono-auth/pkg/versions"
)

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	// Endpoint is the OTLP/HTTP collector address, e.g. "localhost:4318"
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ServiceName is the service name for telemetry
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`

	// ServiceVersion is the service version for telemetry
	ServiceVersion string `mapstructure:"service_version" yaml:"service_version"`

	// TracingEnabled controls whether spans are exported
	TracingEnabled bool `mapstructure:"tracing_enabled" yaml:"tracing_enabled"`

	// MetricsEnabled controls whether metrics are exported
	MetricsEnabled bool `mapstructure:"metrics_enabled" yaml:"metrics_enabled"`

	// SamplingRate is the trace sampling rate (0.0-1.0)
	SamplingRate float64 `mapstructure:"sampling_rate" yaml:"sampling_rate"`

	// Headers are sent with every OTLP request
	Headers map[string]string `mapstructure:"headers" yaml:"headers"`

	// Insecure uses plain HTTP for the OTLP endpoint
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`
}

// DefaultConfig returns a default telemetry configuration.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "drchrono-auth",
		ServiceVersion: versions.GetVersionInfo().Version,
		TracingEnabled: true,
		MetricsEnabled: true,
		SamplingRate:   1.0,
		Headers:        make(map[string]string),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.ServiceName == "" {
		return errors.New("service name cannot be empty")
	}
	if c.SamplingRate < 0 || c.SamplingRate > 1 {
		return fmt.Errorf("sampling rate %v must be between 0.0 and 1.0", c.SamplingRate)
	}
	if c.Endpoint != "" && !c.TracingEnabled && !c.MetricsEnabled {
		return errors.New("OTLP endpoint is configured but both tracing and metrics are disabled; " +
			"either enable tracing or metrics, or remove the endpoint")
	}
	return nil
}
