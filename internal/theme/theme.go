// Package theme holds the static visual payloads deskpin injects: lipgloss
// palettes for the dashboard and tmux style options for the pinned panes.
package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette is one color scheme. The values are static data; nothing here
// carries invariants.
type Palette struct {
	Name string

	Accent    lipgloss.Color
	Text      lipgloss.Color
	Dim       lipgloss.Color
	Border    lipgloss.Color
	Highlight lipgloss.Color

	// tmux style fragments for the pinned panes.
	PaneBorder       string
	PaneActiveBorder string
}

// Dark is the default scheme for dark terminal backgrounds.
var Dark = Palette{
	Name:             "dark",
	Accent:           lipgloss.Color("86"),
	Text:             lipgloss.Color("252"),
	Dim:              lipgloss.Color("240"),
	Border:           lipgloss.Color("238"),
	Highlight:        lipgloss.Color("212"),
	PaneBorder:       "fg=colour238",
	PaneActiveBorder: "fg=colour86",
}

// Light is the scheme for light terminal backgrounds.
var Light = Palette{
	Name:             "light",
	Accent:           lipgloss.Color("29"),
	Text:             lipgloss.Color("235"),
	Dim:              lipgloss.Color("246"),
	Border:           lipgloss.Color("250"),
	Highlight:        lipgloss.Color("161"),
	PaneBorder:       "fg=colour250",
	PaneActiveBorder: "fg=colour29",
}

// Resolve maps a configured preference to a palette. "auto" follows the
// terminal background.
func Resolve(pref string) Palette {
	switch pref {
	case "dark":
		return Dark
	case "light":
		return Light
	default:
		if termenv.HasDarkBackground() {
			return Dark
		}
		return Light
	}
}

// TmuxStyleArgs returns the tmux set-option argument lists that inject the
// palette into a session. Applied best-effort; a host build without these
// options just ignores the failure.
func (p Palette) TmuxStyleArgs(session string) [][]string {
	return [][]string{
		{"set-option", "-t", session, "pane-border-style", p.PaneBorder},
		{"set-option", "-t", session, "pane-active-border-style", p.PaneActiveBorder},
		{"set-option", "-t", session, "status-style", fmt.Sprintf("bg=default,%s", p.PaneBorder)},
	}
}
