package tui

import "github.com/charmbracelet/lipgloss"

const sidebarWidth = 32

var (
	colorAccent = lipgloss.Color("63")
	colorMuted  = lipgloss.Color("241")
	colorError  = lipgloss.Color("196")
	colorUser   = lipgloss.Color("39")
	colorBot    = lipgloss.Color("168")

	sidebarStyle = lipgloss.NewStyle().
			Width(sidebarWidth).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(colorMuted)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	convItemStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			Foreground(colorMuted)

	convActiveStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			Bold(true).
			Foreground(colorAccent)

	convSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Reverse(true)

	userLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(colorUser)
	botLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorBot)
	timeStyle      = lipgloss.NewStyle().Foreground(colorMuted)
	pinStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))

	imageStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Underline(true)

	bannerStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)

	helpStyle = lipgloss.NewStyle().Foreground(colorMuted)
)
