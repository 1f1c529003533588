package feed

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	header    lipgloss.Style
	postTitle lipgloss.Style
	detail    lipgloss.Style
	warning   lipgloss.Style
	section   lipgloss.Style
	empty     lipgloss.Style
	tag       lipgloss.Style
	meta      lipgloss.Style
	author    lipgloss.Style
	comment   lipgloss.Style
	key       lipgloss.Style
	prompt    lipgloss.Style
	help      lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true),
		header:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		postTitle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:   lipgloss.NewStyle().MarginTop(1),
		empty:     lipgloss.NewStyle().Faint(true),
		tag:       lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		meta:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		author:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		comment:   lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("252")),
		key:       lipgloss.NewStyle().Foreground(lipgloss.Color("69")),
		prompt:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		help:      lipgloss.NewStyle().Faint(true),
	}
}
