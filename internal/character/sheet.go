package character

import "tacticore/internal/nouns"

// Alliance sides a piece for targeting purposes.
type Alliance uint8

const (
	Enemy Alliance = iota
	Friendly
)

// AccentColor is a display-only RGBA color associated with a sheet,
// used by clients to tint a piece's party-slot marker.
type AccentColor struct {
	R, G, B, A uint8
}

// Sheet is a character template: identity, stats, and known abilities.
// Sheets are registered resources and are immutable once loaded; a
// Piece embeds a copy (or a reference, per the resource registry) and
// never mutates it directly — stat changes flow through StatOutcomes.
type Sheet struct {
	Nouns   nouns.Nouns
	Level   uint32
	Stats   Stats
	Attacks []string // resource keys into the attack registry
	Spells  []string // resource keys into the spell registry
	Speed   uint32   // base action-delay cost of a move, in auts
	Accent  AccentColor
}
