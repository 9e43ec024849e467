// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package errors provides the typed error taxonomy shared by the strategy packages.
package errors

import (
	"errors"
	"fmt"
)

// Error types
const (
	// ErrInvalidConfiguration is returned when a strategy is built with missing or invalid options
	ErrInvalidConfiguration = "invalid_configuration"

	// ErrTransport is returned when a request to the provider could not be completed
	ErrTransport = "transport"

	// ErrMalformedResponse is returned when the provider answered with a body that cannot be parsed
	ErrMalformedResponse = "malformed_response"

	// ErrInternal is returned when there is an internal error
	ErrInternal = "internal"
)

// Error represents an error in the application
type Error struct {
	// Type is the error type
	Type string

	// Message is the error message
	Message string

	// Cause is the underlying error
	Cause error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new error
func NewError(errorType, message string, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidConfigurationError creates a new invalid configuration error
func NewInvalidConfigurationError(message string, cause error) *Error {
	return NewError(ErrInvalidConfiguration, message, cause)
}

// NewTransportError creates a new transport error
func NewTransportError(message string, cause error) *Error {
	return NewError(ErrTransport, message, cause)
}

// NewMalformedResponseError creates a new malformed response error
func NewMalformedResponseError(message string, cause error) *Error {
	return NewError(ErrMalformedResponse, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *Error {
	return NewError(ErrInternal, message, cause)
}

// IsInvalidConfiguration checks if the error chain contains an invalid configuration error
func IsInvalidConfiguration(err error) bool {
	return isType(err, ErrInvalidConfiguration)
}

// IsTransport checks if the error chain contains a transport error
func IsTransport(err error) bool {
	return isType(err, ErrTransport)
}

// IsMalformedResponse checks if the error chain contains a malformed response error
func IsMalformedResponse(err error) bool {
	return isType(err, ErrMalformedResponse)
}

// IsInternal checks if the error chain contains an internal error
func IsInternal(err error) bool {
	return isType(err, ErrInternal)
}

// isType walks the chain, so errors wrapped with fmt.Errorf("%w") still match.
func isType(err error, errorType string) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Type == errorType {
			return true
		}
		err = e.Cause
	}
	return false
}
