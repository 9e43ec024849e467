// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package json

import (
	stdjson "encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func mustParse(t *testing.T, jsonStr string) Any {
	t.Helper()
	var a Any
	require.NoError(t, stdjson.Unmarshal([]byte(jsonStr), &a))
	return a
}

func TestAny_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  any
	}{
		{"array", `["a","b"]`, []any{"a", "b"}},
		{"object", `{"patients":true}`, map[string]any{"patients": true}},
		{"number", `7`, float64(7)},
		{"null", `null`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var a Any
			require.NoError(t, stdjson.Unmarshal([]byte(tt.input), &a))
			assert.Equal(t, tt.want, a.Data)
		})
	}
}

func TestAny_InStruct(t *testing.T) {
	t.Parallel()

	type holder struct {
		Permissions *Any `json:"permissions,omitempty"`
	}

	var absent holder
	require.NoError(t, stdjson.Unmarshal([]byte(`{}`), &absent))
	assert.Nil(t, absent.Permissions)

	var present holder
	require.NoError(t, stdjson.Unmarshal([]byte(`{"permissions":["a","b"]}`), &present))
	require.NotNil(t, present.Permissions)
	assert.Equal(t, []any{"a", "b"}, present.Permissions.Data)

	out, err := stdjson.Marshal(present)
	require.NoError(t, err)
	assert.JSONEq(t, `{"permissions":["a","b"]}`, string(out))
}

func TestAny_YAML(t *testing.T) {
	t.Parallel()

	a := mustParse(t, `{"billing":false,"patients":true}`)

	out, err := yaml.Marshal(a)
	require.NoError(t, err)

	var back Any
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, map[string]any{"billing": false, "patients": true}, back.Data)

	var null Any
	require.NoError(t, yaml.Unmarshal([]byte("null"), &null))
	assert.True(t, null.IsEmpty())
}

func TestAny_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `["a","b"]`, mustParse(t, `["a","b"]`).String())
	assert.Equal(t, "", Any{}.String())
	assert.Equal(t, "true", NewAny(true).String())
}
