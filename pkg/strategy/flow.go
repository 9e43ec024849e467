// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package strategy

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/browser"

	"github.com/stacklok/drchrono-auth/pkg/networking"
)

// Flow runs an interactive login against a loopback callback URL.
type Flow[P any] struct {
	strategy    *Strategy[P]
	listener    net.Listener
	skipBrowser bool
	openURL     func(string) error
	onAuthURL   func(string)
	logger      *slog.Logger
}

// FlowOption configures a Flow.
type FlowOption func(*flowSettings)

type flowSettings struct {
	listener    net.Listener
	skipBrowser bool
	openURL     func(string) error
	onAuthURL   func(string)
}

// WithListener serves the callback on an existing listener instead of the callback URL's address.
func WithListener(l net.Listener) FlowOption {
	return func(s *flowSettings) {
		s.listener = l
	}
}

// WithSkipBrowser disables opening the browser. The URL is still reported.
func WithSkipBrowser(skip bool) FlowOption {
	return func(s *flowSettings) {
		s.skipBrowser = skip
	}
}

// WithBrowserOpener replaces the function used to open the authorization URL.
func WithBrowserOpener(open func(string) error) FlowOption {
	return func(s *flowSettings) {
		s.openURL = open
	}
}

// WithAuthURLHandler is called with the authorization URL before waiting for the callback.
func WithAuthURLHandler(fn func(string)) FlowOption {
	return func(s *flowSettings) {
		s.onAuthURL = fn
	}
}

// NewFlow prepares a login flow. The strategy's callback URL must be a loopback http(s) URL.
func NewFlow[P any](s *Strategy[P], opts ...FlowOption) (*Flow[P], error) {
	if s == nil {
		return nil, errors.New("strategy cannot be nil")
	}

	settings := &flowSettings{openURL: browser.OpenURL}
	for _, opt := range opts {
		opt(settings)
	}

	callback, err := url.Parse(s.config.CallbackURL)
	if err != nil {
		return nil, fmt.Errorf("invalid callback URL: %w", err)
	}
	if !networking.IsLocalhost(callback.Host) {
		return nil, fmt.Errorf("callback URL %s must point to a loopback address", s.config.CallbackURL)
	}

	return &Flow[P]{
		strategy:    s,
		listener:    settings.listener,
		skipBrowser: settings.skipBrowser,
		openURL:     settings.openURL,
		onAuthURL:   settings.onAuthURL,
		logger:      s.logger,
	}, nil
}

type flowResult[P any] struct {
	outcome *Outcome[P]
	err     error
}

// Run opens the consent page and waits for the provider to redirect back.
func (f *Flow[P]) Run(ctx context.Context) (*Outcome[P], error) {
	state, err := NewState()
	if err != nil {
		return nil, err
	}
	pkce := NewPKCE()

	authURL, err := f.strategy.AuthCodeURL(state, pkce.AuthCodeOptions()...)
	if err != nil {
		return nil, err
	}

	callback, err := url.Parse(f.strategy.config.CallbackURL)
	if err != nil {
		return nil, fmt.Errorf("invalid callback URL: %w", err)
	}
	callbackPath := callback.Path
	if callbackPath == "" {
		callbackPath = "/"
	}

	listener := f.listener
	if listener == nil {
		var lc net.ListenConfig
		listener, err = lc.Listen(ctx, "tcp", callback.Host)
		if err != nil {
			return nil, fmt.Errorf("failed to listen on %s: %w", callback.Host, err)
		}
	}

	results := make(chan flowResult[P], 1)
	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, f.handleCallback(state, pkce, results))

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		f.logger.Debug("starting callback server", "address", listener.Addr().String())
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("failed to start callback server: %w", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			f.logger.Warn("failed to shut down callback server", "error", err)
		}
	}()

	if f.onAuthURL != nil {
		f.onAuthURL(authURL)
	}
	if !f.skipBrowser {
		if err := f.openURL(authURL); err != nil {
			f.logger.Warn("failed to open browser", "error", err)
		}
	}

	select {
	case res := <-results:
		return res.outcome, res.err
	case err := <-serveErr:
		return nil, err
	case <-ctx.Done():
		return nil, fmt.Errorf("login cancelled: %w", ctx.Err())
	}
}

func (f *Flow[P]) handleCallback(state string, pkce *PKCE, results chan<- flowResult[P]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		query := r.URL.Query()
		if !query.Has("state") && !query.Has("code") && !query.Has("error") {
			// Not a provider redirect, e.g. the browser asking for /favicon.ico.
			http.NotFound(w, r)
			return
		}

		if query.Get("error") == "" && query.Get("state") != state {
			err := errors.New("invalid state parameter")
			writePage(w, http.StatusBadRequest, "Authentication Failed", err.Error())
			deliver(results, flowResult[P]{err: err})
			return
		}

		outcome, err := f.strategy.CompleteRequest(r, pkce.ExchangeOption())
		switch {
		case err != nil:
			writePage(w, http.StatusBadRequest, "Authentication Failed", err.Error())
		case !outcome.Authenticated():
			writePage(w, http.StatusForbidden, "Authentication Rejected", "The account was not accepted.")
		default:
			writePage(w, http.StatusOK, "Authentication Successful",
				"You can now close this window and return to the terminal.")
		}
		deliver(results, flowResult[P]{outcome: outcome, err: err})
	}
}

// deliver drops results once the first callback has been handled.
func deliver[P any](results chan<- flowResult[P], res flowResult[P]) {
	select {
	case results <- res:
	default:
	}
}

func writePage(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <title>%[1]s</title>
    <meta charset="utf-8">
    <style>body { font-family: Arial, sans-serif; margin: 40px; text-align: center; }</style>
</head>
<body>
    <h1>%[1]s</h1>
    <p>%[2]s</p>
</body>
</html>`, html.EscapeString(title), html.EscapeString(message))
}
