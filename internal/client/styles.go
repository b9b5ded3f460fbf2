package client

import (
	"github.com/charmbracelet/lipgloss"

	"tacticore/internal/console"
)

// Palette is the color set a client renders the console and board
// with, keyed by console.Severity/the selection cursor. Its field names
// mirror internal/config.PaletteConfig, the "ui" options-file section
// of spec.md §6 ("color palette, typography"); cmd/client converts one
// into the other after Load.
type Palette struct {
	Foreground  lipgloss.Color
	Muted       lipgloss.Color
	Border      lipgloss.Color
	Danger      lipgloss.Color
	Important   lipgloss.Color
	Special     lipgloss.Color
	Combat      lipgloss.Color
	Cursor      lipgloss.Color
	OwnedPiece  lipgloss.Color
	EnemyPiece  lipgloss.Color
}

// DefaultPalette is used until an options file overrides it.
func DefaultPalette() Palette {
	return Palette{
		Foreground: lipgloss.Color("#f2f2f2"),
		Muted:      lipgloss.Color("#6c7a89"),
		Border:     lipgloss.Color("#2a3850"),
		Danger:     lipgloss.Color("#e53935"),
		Important:  lipgloss.Color("#FFC107"),
		Special:    lipgloss.Color("#8BC34A"),
		Combat:     lipgloss.Color("#e57373"),
		Cursor:     lipgloss.Color("#2196F3"),
		OwnedPiece: lipgloss.Color("#8BC34A"),
		EnemyPiece: lipgloss.Color("#e53935"),
	}
}

// Styles holds the lipgloss.Style values derived from a Palette, built
// once per resize the way the teacher's chatModel rebuilds its glamour
// renderer on a windowSizeMsg.
type Styles struct {
	Console   lipgloss.Style
	Input     lipgloss.Style
	Board     lipgloss.Style
	StatusBar lipgloss.Style
	severity  map[console.Severity]lipgloss.Style
}

// NewStyles derives a Styles set from pal, sized to a console width.
func NewStyles(pal Palette, width int) Styles {
	base := lipgloss.NewStyle().Foreground(pal.Foreground)
	return Styles{
		Console: base.Copy().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(pal.Border).
			Width(width),
		Input: base.Copy().
			Border(lipgloss.NormalBorder()).
			BorderForeground(pal.Border).
			Width(width),
		Board: base.Copy().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(pal.Border),
		StatusBar: base.Copy().
			Foreground(pal.Muted),
		severity: map[console.Severity]lipgloss.Style{
			console.Normal:      base,
			console.System:      base.Copy().Foreground(pal.Muted),
			console.Unimportant: base.Copy().Foreground(pal.Muted),
			console.Defeat:      base.Copy().Foreground(pal.Danger).Bold(true),
			console.Danger:      base.Copy().Foreground(pal.Danger),
			console.Important:   base.Copy().Foreground(pal.Important).Bold(true),
			console.Special:     base.Copy().Foreground(pal.Special),
			console.Combat:      base.Copy().Foreground(pal.Combat),
		},
	}
}

// Severity returns the style a message of the given severity renders
// with, falling back to an unstyled lipgloss.Style for an unrecognized
// value.
func (s Styles) Severity(sev console.Severity) lipgloss.Style {
	if st, ok := s.severity[sev]; ok {
		return st
	}
	return lipgloss.NewStyle()
}
