package main

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/sevigo/hybrid-warden/internal/core"
)

type styles struct {
	app      lipgloss.Style
	header   lipgloss.Style
	viewport lipgloss.Style
	footer   lipgloss.Style
	inactive lipgloss.Style
	error    lipgloss.Style
	success  lipgloss.Style
	prompt   lipgloss.Style
	command  lipgloss.Style
	ascii    lipgloss.Style

	high   lipgloss.Style
	medium lipgloss.Style
	safe   lipgloss.Style
}

type ThemeName string

const defaultTheme ThemeName = "sentinel"

// palette holds the accent colors of a theme and the badge colors of each severity.
type palette struct {
	accent   lipgloss.Color
	detail   lipgloss.Color
	ok       lipgloss.Color
	prompt   lipgloss.Color
	muted    lipgloss.Color
	high     lipgloss.Color
	medium   lipgloss.Color
	safe     lipgloss.Color
	badgeInk lipgloss.Color
}

var palettes = map[ThemeName]palette{
	defaultTheme: {
		accent: "51", detail: "33", ok: "46", prompt: "226", muted: "240",
		high: "196", medium: "214", safe: "42", badgeInk: "16",
	},
	"matrix": {
		accent: "82", detail: "46", ok: "82", prompt: "190", muted: "238",
		high: "160", medium: "190", safe: "28", badgeInk: "16",
	},
	"amber": {
		accent: "220", detail: "214", ok: "220", prompt: "208", muted: "240",
		high: "196", medium: "208", safe: "142", badgeInk: "16",
	},
	"dracula": {
		accent: "141", detail: "117", ok: "84", prompt: "212", muted: "240",
		high: "203", medium: "215", safe: "84", badgeInk: "235",
	},
	"mono": {
		accent: "255", detail: "250", ok: "255", prompt: "255", muted: "242",
		high: "255", medium: "248", safe: "244", badgeInk: "16",
	},
}

// ListThemes returns the theme names, default first.
func ListThemes() []ThemeName {
	names := make([]ThemeName, 0, len(palettes))
	for name := range palettes {
		if name != defaultTheme {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return append([]ThemeName{defaultTheme}, names...)
}

// GetTheme builds the styles of a theme. An empty name selects the default.
func GetTheme(name ThemeName) (styles, error) {
	if name == "" {
		name = defaultTheme
	}
	p, ok := palettes[name]
	if !ok {
		return styles{}, fmt.Errorf("unknown theme %q", name)
	}
	return p.styles(), nil
}

func (p palette) styles() styles {
	badge := lipgloss.NewStyle().Padding(0, 1).Bold(true)
	return styles{
		app: lipgloss.NewStyle().Margin(0, 1),
		header: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.detail).
			Padding(0, 2).
			MarginBottom(1),
		viewport: lipgloss.NewStyle().PaddingLeft(1),
		footer: lipgloss.NewStyle().
			MarginTop(1).
			BorderTop(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(p.detail).
			PaddingTop(1),
		inactive: lipgloss.NewStyle().Foreground(p.muted),
		error:    lipgloss.NewStyle().Foreground(p.high).Bold(true),
		success:  lipgloss.NewStyle().Foreground(p.ok).Bold(true),
		prompt:   lipgloss.NewStyle().Foreground(p.prompt).Bold(true),
		command:  lipgloss.NewStyle().Foreground(p.detail).Italic(true),
		ascii:    lipgloss.NewStyle().Foreground(p.accent).Bold(true),

		high:   badge.Foreground(p.badgeInk).Background(p.high),
		medium: badge.Foreground(p.badgeInk).Background(p.medium),
		safe:   lipgloss.NewStyle().Padding(0, 1).Foreground(p.safe),
	}
}

// severity returns the badge style for a severity name; anything else renders inactive.
func (s styles) severity(name string) lipgloss.Style {
	switch name {
	case core.SeverityHigh.String():
		return s.high
	case core.SeverityMedium.String():
		return s.medium
	case core.SeveritySafe.String():
		return s.safe
	default:
		return s.inactive
	}
}
