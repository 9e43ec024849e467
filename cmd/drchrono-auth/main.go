// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package main is the entry point for the drchrono-auth command-line tool.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/stacklok/drchrono-auth/cmd/drchrono-auth/app"
	"github.com/stacklok/drchrono-auth/pkg/logger"
)

func main() {
	logger.Initialize()

	// Cancel on signal so a pending login releases its callback port.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.NewRootCmd().ExecuteContext(ctx); err != nil {
		logger.Errorf("Error executing command: %v", err)
		cancel()
		os.Exit(1)
	}
}
