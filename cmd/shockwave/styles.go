package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/remix-astronautics/shockwave/domain"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Width(12)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

func renderStatus(status string) string {
	switch status {
	case domain.SyncStatusSuccess:
		return successStyle.Render(status)
	case domain.SyncStatusPartial:
		return warnStyle.Render(status)
	case domain.SyncStatusFailed:
		return errorStyle.Render(status)
	}
	return status
}

// field renders one "label value" line of a summary.
func field(label string, value any) string {
	return labelStyle.Render(label+":") + " " + fmt.Sprint(value)
}
