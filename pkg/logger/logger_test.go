// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/toolhive-core/env/mocks"
	"github.com/stacklok/toolhive-core/logging"
)

func TestUnstructuredLogsCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		envValue string
		expected bool
	}{
		{"Default Case", "", true},
		{"Explicitly True", "true", true},
		{"Explicitly False", "false", false},
		{"Invalid Value", "not-a-bool", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			mockEnv := mocks.NewMockReader(ctrl)
			mockEnv.EXPECT().Getenv(UnstructuredLogsEnv).Return(tt.envValue)

			assert.Equal(t, tt.expected, unstructuredLogsWithEnv(mockEnv))
		})
	}
}

// captureForTest swaps in a debug-level logger writing to a buffer.
func captureForTest(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := singleton.Load()
	singleton.Store(logging.New(
		logging.WithOutput(&buf),
		logging.WithLevel(slog.LevelDebug),
	))
	t.Cleanup(func() { singleton.Store(prev) })
	return &buf
}

func TestLogLevels(t *testing.T) { //nolint:paralleltest // mutates singleton
	tests := []struct {
		name     string
		logFn    func()
		contains []string
	}{
		{"Debugf", func() { Debugf("fetching %s", "profile") }, []string{"fetching profile"}},
		{"Debugw", func() { Debugw("profile fetched", "status", 200) }, []string{"profile fetched", "status"}},
		{"Warnf", func() { Warnf("retry %d", 1) }, []string{"retry 1"}},
		{"Errorf", func() { Errorf("failed: %v", "denied") }, []string{"failed: denied"}},
	}

	for _, tc := range tests { //nolint:paralleltest // mutates singleton
		t.Run(tc.name, func(t *testing.T) {
			buf := captureForTest(t)

			tc.logFn()

			for _, want := range tc.contains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestWithComponent(t *testing.T) { //nolint:paralleltest // mutates singleton
	buf := captureForTest(t)

	WithComponent("drchrono").Info("profile mapped")

	assert.Contains(t, buf.String(), "profile mapped")
	assert.Contains(t, buf.String(), "drchrono")
}

func TestNewLogr(t *testing.T) { //nolint:paralleltest // mutates singleton
	buf := captureForTest(t)

	NewLogr().Info("logr test message")

	assert.Contains(t, buf.String(), "logr test message")
}

func TestInitializeWithEnv(t *testing.T) { //nolint:paralleltest // mutates singleton
	tests := []struct {
		name            string
		unstructuredEnv string
	}{
		{"Default (unstructured)", ""},
		{"Explicit unstructured", "true"},
		{"Structured JSON", "false"},
	}

	for _, tc := range tests { //nolint:paralleltest // mutates singleton
		t.Run(tc.name, func(t *testing.T) {
			prev := singleton.Load()
			t.Cleanup(func() { singleton.Store(prev) })

			ctrl := gomock.NewController(t)
			mockEnv := mocks.NewMockReader(ctrl)
			mockEnv.EXPECT().Getenv(UnstructuredLogsEnv).Return(tc.unstructuredEnv)

			InitializeWithEnv(mockEnv)

			got := singleton.Load()
			require.NotNil(t, got)
			assert.NotSame(t, prev, got)
		})
	}
}
