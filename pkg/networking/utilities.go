// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"errors"
	"net"
	"net/url"
	"strings"
)

// URL schemes
const (
	HttpScheme  = "http"
	HttpsScheme = "https"
)

// IsLocalhost reports whether host (optionally with a port) names the loopback interface.
func IsLocalhost(host string) bool {
	hostname := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		hostname = h
	}
	hostname = strings.TrimSuffix(strings.TrimPrefix(hostname, "["), "]")

	if strings.EqualFold(hostname, "localhost") {
		return true
	}
	ip := net.ParseIP(hostname)
	return ip != nil && ip.IsLoopback()
}

// ValidateEndpointURL checks that raw is an absolute http(s) URL.
// Plain HTTP is only accepted for loopback hosts.
func ValidateEndpointURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return errors.New("must be a valid URL")
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return errors.New("must be an absolute URL with scheme and host")
	}

	switch parsed.Scheme {
	case HttpsScheme:
		return nil
	case HttpScheme:
		if IsLocalhost(parsed.Host) {
			return nil
		}
		return errors.New("must use https unless the host is loopback")
	default:
		return errors.New("must use http or https scheme")
	}
}
