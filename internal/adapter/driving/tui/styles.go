package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#FF9900")
	muted  = lipgloss.Color("241")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	subtleStyle   = lipgloss.NewStyle().Foreground(muted)
	cursorStyle   = lipgloss.NewStyle().Foreground(accent).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	labelStyle    = lipgloss.NewStyle().Width(12).Foreground(muted)

	dryRunBadge = lipgloss.NewStyle().Padding(0, 1).Bold(true).
			Foreground(lipgloss.Color("0")).Background(lipgloss.Color("42"))
	liveBadge = lipgloss.NewStyle().Padding(0, 1).Bold(true).
			Foreground(lipgloss.Color("15")).Background(lipgloss.Color("196"))

	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 1)
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(accent).
			Padding(1, 2)
)
