// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package json provides JSON-related utilities.
//
// Provider payloads carry fields whose shape the provider does not pin down
// (permission sets, feature flags). Any keeps such a value exactly as it was
// received, so it can be handed on without coercion and rendered again as
// JSON or YAML.
package json

import (
	stdjson "encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Any stores arbitrary JSON-compatible data.
//
// The Data field stores the Go value directly (maps, slices, strings,
// float64 numbers, bools, nil), which simplifies usage in tests and when
// working with the data programmatically.
type Any struct {
	// Data holds the decoded value.
	Data any `json:"-" yaml:"-"`
}

// MarshalJSON implements json.Marshaler.
func (a Any) MarshalJSON() ([]byte, error) {
	if a.Data == nil {
		return []byte("null"), nil
	}
	return stdjson.Marshal(a.Data)
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Any) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		a.Data = nil
		return nil
	}
	var v any
	if err := stdjson.Unmarshal(data, &v); err != nil {
		return err
	}
	a.Data = v
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (a Any) MarshalYAML() (interface{}, error) {
	return a.Data, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Any) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		a.Data = nil
		return nil
	}

	var value any
	if err := node.Decode(&value); err != nil {
		return err
	}
	a.Data = value
	return nil
}

// IsEmpty returns true if there is no data.
func (a Any) IsEmpty() bool {
	return a.Data == nil
}

// String renders the value as compact JSON, for tables and log lines.
func (a Any) String() string {
	if a.Data == nil {
		return ""
	}
	raw, err := stdjson.Marshal(a.Data)
	if err != nil {
		return fmt.Sprintf("%v", a.Data)
	}
	return string(raw)
}

// NewAny creates an Any directly from a value.
func NewAny(v any) Any {
	return Any{Data: v}
}
