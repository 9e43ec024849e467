// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package ui renders CLI output.
package ui

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/stacklok/drchrono-auth/pkg/drchrono"
	authjson "github.com/stacklok/drchrono-auth/pkg/json"
)

const missing = "-"

// RenderProfileTable renders a drchrono profile as a two column table.
func RenderProfileTable(w io.Writer, profile *drchrono.Profile) error {
	if profile == nil {
		_, err := fmt.Fprintln(w, "No profile.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Options(
		tablewriter.WithHeader([]string{"Field", "Value"}),
		tablewriter.WithRendition(
			tw.Rendition{
				Borders: tw.Border{
					Left:   tw.State(1),
					Top:    tw.State(1),
					Right:  tw.State(1),
					Bottom: tw.State(1),
				},
			},
		),
		tablewriter.WithAlignment(tw.MakeAlign(2, tw.AlignLeft)),
	)

	rows := [][]string{
		{"Provider", orMissing(profile.Provider)},
		{"ID", formatValue(profile.ID)},
		{"Username", formatValue(profile.Username)},
		{"Doctor", formatValue(profile.Doctor)},
		{"Is Doctor", formatValue(profile.IsDoctor)},
		{"Is Staff", formatValue(profile.IsStaff)},
		{"Practice Group", formatValue(profile.PracticeGroup)},
		{"Permissions", formatValue(profile.Permissions)},
	}

	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}

func orMissing(s string) string {
	if s == "" {
		return missing
	}
	return s
}

// formatValue prints strings bare, booleans as Yes/No and anything else as JSON.
func formatValue(v *authjson.Any) string {
	if v == nil || v.IsEmpty() {
		return missing
	}
	switch data := v.Data.(type) {
	case string:
		return orMissing(data)
	case bool:
		if data {
			return "Yes"
		}
		return "No"
	default:
		return v.String()
	}
}
