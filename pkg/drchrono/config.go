// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package drchrono

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Provider defaults.
const (
	DefaultAuthorizationURL = "https://drchrono.com/o/authorize/"
	DefaultTokenURL         = "https://drchrono.com/o/token/"
	DefaultProfileURL       = "https://drchrono.com/api/users/current"
	DefaultScope            = "user:read"

	// EnvPrefix is the prefix of the environment variables read by ConfigureViper.
	EnvPrefix = "DRCHRONO"
)

// Config keys, shared by config files, environment variables and flags.
const (
	KeyClientID              = "client_id"
	KeyClientSecret          = "client_secret"
	KeyCallbackURL           = "callback_url"
	KeyScope                 = "scope"
	KeyAuthorizationURL      = "authorization_url"
	KeyTokenURL              = "token_url"
	KeyProfileURL            = "profile_url"
	KeyPassRequestToCallback = "pass_request_to_callback"
)

const redacted = "********"

// Options configures the drchrono strategy.
type Options struct {
	// ClientID is the drchrono application client ID. Required.
	ClientID string `mapstructure:"client_id" yaml:"client_id"`

	// ClientSecret is the drchrono application secret. Required.
	ClientSecret string `mapstructure:"client_secret" yaml:"client_secret"`

	// CallbackURL is where drchrono redirects after consent. Required.
	CallbackURL string `mapstructure:"callback_url" yaml:"callback_url"`

	// Scope is a space separated list of drchrono scopes.
	Scope string `mapstructure:"scope" yaml:"scope"`

	// AuthorizationURL is the consent page. Defaults to DefaultAuthorizationURL.
	AuthorizationURL string `mapstructure:"authorization_url" yaml:"authorization_url"`

	// TokenURL is the code exchange endpoint. Defaults to DefaultTokenURL.
	TokenURL string `mapstructure:"token_url" yaml:"token_url"`

	// ProfileURL returns the current user. Defaults to DefaultProfileURL.
	ProfileURL string `mapstructure:"profile_url" yaml:"profile_url"`

	// PassRequestToCallback makes the callback request available to the verify
	// callback through strategy.RequestFromContext.
	PassRequestToCallback bool `mapstructure:"pass_request_to_callback" yaml:"pass_request_to_callback"`
}

// WithDefaults returns a copy with every empty optional field set to its provider default.
func (o Options) WithDefaults() Options {
	if o.Scope == "" {
		o.Scope = DefaultScope
	}
	if o.AuthorizationURL == "" {
		o.AuthorizationURL = DefaultAuthorizationURL
	}
	if o.TokenURL == "" {
		o.TokenURL = DefaultTokenURL
	}
	if o.ProfileURL == "" {
		o.ProfileURL = DefaultProfileURL
	}
	return o
}

// Scopes splits Scope on whitespace.
func (o Options) Scopes() []string {
	return strings.Fields(o.Scope)
}

// Redacted returns a copy safe to print.
func (o Options) Redacted() Options {
	if o.ClientSecret != "" {
		o.ClientSecret = redacted
	}
	return o
}

// ConfigureViper binds every option to a DRCHRONO_* environment variable
// and registers the provider defaults.
func ConfigureViper(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for _, key := range []string{
		KeyClientID,
		KeyClientSecret,
		KeyCallbackURL,
		KeyScope,
		KeyAuthorizationURL,
		KeyTokenURL,
		KeyProfileURL,
		KeyPassRequestToCallback,
	} {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	v.SetDefault(KeyScope, DefaultScope)
	v.SetDefault(KeyAuthorizationURL, DefaultAuthorizationURL)
	v.SetDefault(KeyTokenURL, DefaultTokenURL)
	v.SetDefault(KeyProfileURL, DefaultProfileURL)
	v.SetDefault(KeyPassRequestToCallback, false)
	return nil
}

// LoadOptions reads Options from v. Call ConfigureViper first to pick up the environment.
func LoadOptions(v *viper.Viper) (Options, error) {
	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return Options{}, fmt.Errorf("failed to decode drchrono options: %w", err)
	}
	return opts.WithDefaults(), nil
}
