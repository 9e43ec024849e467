// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package strategy

import (
	"context"
	"net/http"
)

// RequestContextKey is the context key under which the callback request is stored
// when PassRequestToCallback is enabled.
type RequestContextKey struct{}

// WithRequest stores the callback request in the context.
// If r is nil, the original context is returned unchanged.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	if r == nil {
		return ctx
	}
	return context.WithValue(ctx, RequestContextKey{}, r)
}

// RequestFromContext returns the callback request passed to the verify callback.
// Returns nil and false unless the strategy was configured with PassRequestToCallback.
func RequestFromContext(ctx context.Context) (*http.Request, bool) {
	r, ok := ctx.Value(RequestContextKey{}).(*http.Request)
	return r, ok
}
