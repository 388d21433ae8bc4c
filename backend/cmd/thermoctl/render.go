package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/thermalytics/thermoinsights/backend/service"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Width(20)

	valueStyle = lipgloss.NewStyle().Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

func renderView(v service.View, showRaw bool) string {
	if v.Loading {
		return mutedStyle.Render(v.SubmitLabel)
	}
	if v.Error != "" {
		return renderError(v.Error)
	}
	if !v.CanExport {
		return ""
	}

	var sections []string
	sections = append(sections, titleStyle.Render("Analysis Results"))

	for _, row := range v.Summary {
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Render(row.Label),
			valueStyle.Render(row.Value),
		))
	}
	if len(v.Summary) == 0 {
		sections = append(sections, mutedStyle.Render("Unrecognized response format"))
	}

	if v.Narrative != "" {
		sections = append(sections, "", titleStyle.Render("Detailed Analysis"), v.Narrative)
	}
	if showRaw || len(v.Summary) == 0 {
		sections = append(sections, "", mutedStyle.Render(v.Raw))
	}

	return panelStyle.Render(strings.Join(sections, "\n"))
}

func renderError(msg string) string {
	return errorStyle.Render("✗ " + msg)
}

func renderSaved(location string) string {
	return successStyle.Render(fmt.Sprintf("✓ Report saved: %s", location))
}
