// Package world implements the authoritative game state: floors, the
// party roster, and the turn scheduler's tick state machine. Exactly
// one Manager exists per running instance, and every mutation to it
// happens on the owning goroutine — see internal/server for the
// single-threaded main loop that enforces this.
package world

import (
	"fmt"

	"tacticore/internal/ability"
	"tacticore/internal/character"
	"tacticore/internal/console"
	"tacticore/internal/geometry"
	"tacticore/internal/resource"
	"tacticore/internal/value"
)

// Floor is one playable level: its tile map and the pieces currently
// on it.
type Floor struct {
	Tiles  *geometry.Map
	Pieces *character.Arena
}

// NewFloor returns an empty floor backed by a fresh tile map and arena.
func NewFloor() *Floor {
	return &Floor{Tiles: geometry.NewMap(), Pieces: character.NewArena()}
}

// Level is a named sequence of floors, indexed by Location.Floor.
type Level struct {
	Name   string
	Floors []*Floor
}

// Location points at the currently loaded floor within a Level.
type Location struct {
	Level string
	Floor int
}

// PartyMember is one entry of a world's starting-party blueprint: a
// sheet resource key paired with the accent color the client should
// render that slot's piece in. Mirrors the original engine's
// PartyReferenceBase.
type PartyMember struct {
	Sheet  string
	Accent character.AccentColor
}

// Manager owns every piece of authoritative world state: the current
// level/floor, the party roster (stable across floor transitions), the
// inventory, and the scheduler's tick state machine.
type Manager struct {
	Location     Location
	Levels       map[string]*Level
	Party        []character.PieceID
	Inventory    []string
	Console      *console.Console
	Resources    *resource.Registry
	Host         ability.Host
	ScriptCache  map[string]string

	state        tickState
	actingPiece  character.PieceID
	pending      *ability.Partial
	pendingKind  character.ActionKind
	pendingRef   string
}

// NewManager builds a Manager with a single starting level ("New
// Level", one floor) and instantiates the party blueprint's pieces onto
// it, each marked :conscious and player-controlled.
func NewManager(resources *resource.Registry, host ability.Host, con *console.Console, blueprint []PartyMember) (*Manager, error) {
	floor := NewFloor()
	level := &Level{Name: "New Level", Floors: []*Floor{floor}}

	m := &Manager{
		Location:    Location{Level: level.Name, Floor: 0},
		Levels:      map[string]*Level{level.Name: level},
		Console:     con,
		Resources:   resources,
		Host:        host,
		ScriptCache: resources.Scripts,
		state:       stateIdle,
	}

	for i, member := range blueprint {
		sheet, err := resources.GetSheet(member.Sheet)
		if err != nil {
			return nil, fmt.Errorf("world: party blueprint %q: %w", member.Sheet, err)
		}
		sheet.Accent = member.Accent
		piece := &character.Piece{
			Sheet:            sheet,
			X:                i,
			Y:                0,
			HP:               sheet.Stats.Heart,
			SP:               sheet.Stats.Soul,
			Alliance:         character.Friendly,
			PlayerControlled: true,
			Components:       map[string]*character.Component{character.Conscious: {Descriptor: character.Descriptor{Name: "conscious"}}},
		}
		id := floor.Pieces.Insert(piece)
		m.Party = append(m.Party, id)
	}

	return m, nil
}

// CurrentFloor returns the floor the location currently points at.
func (m *Manager) CurrentFloor() *Floor {
	return m.Levels[m.Location.Level].Floors[m.Location.Floor]
}

// GetPiece resolves a piece id against the current floor's arena.
func (m *Manager) GetPiece(id character.PieceID) (*character.Piece, bool) {
	return m.CurrentFloor().Pieces.Get(id)
}

// CharacterSnapshot returns a read-only view of every piece on the
// current floor, for a script sandbox's "Characters" query data and for
// target-by-index resolution (internal/consider): the returned
// []character.PieceID is index-aligned with the snapshot's sequence.
func (m *Manager) CharacterSnapshot() (value.Value, []character.PieceID) {
	floor := m.CurrentFloor()

	var ids []character.PieceID
	var rows []value.Value
	floor.Pieces.All(func(id character.PieceID, p *character.Piece) {
		ids = append(ids, id)
		rows = append(rows, value.Table([]value.Pair{
			{Key: value.Str("id"), Value: value.Str(id.String())},
			{Key: value.Str("x"), Value: value.Int(int64(p.X))},
			{Key: value.Str("y"), Value: value.Int(int64(p.Y))},
			{Key: value.Str("alliance"), Value: value.Int(int64(p.Alliance))},
			{Key: value.Str("hp"), Value: value.Int(int64(p.HP))},
		}))
	})
	return value.Sequence(rows), ids
}

// ConfirmExit implements the floor transition of spec.md §4.7: when a
// conscious piece standing on an Exit tile confirms, a floor freshly
// generated from set and seed is appended to the current level and the
// location moves to it. The previous floor is not discarded; it stays
// in Level.Floors with its non-party pieces. Party pieces are copied
// onto the new floor along row y=0 (slot i at x=i) under new piece ids.
func (m *Manager) ConfirmExit(id character.PieceID, seed string, set VaultSet) error {
	floor := m.CurrentFloor()
	piece, ok := floor.Pieces.Get(id)
	if !ok {
		return fmt.Errorf("world: exit confirmed by unknown piece %s", id)
	}
	if !piece.Conscious() {
		return fmt.Errorf("world: exit confirmed by non-conscious piece %s", id)
	}
	if floor.Tiles.At(piece.X, piece.Y) != geometry.Exit {
		return fmt.Errorf("world: piece %s is not standing on an exit", id)
	}

	next, err := GenerateFloor(seed, set, m.Resources)
	if err != nil {
		return err
	}

	for i, partyID := range m.Party {
		p, ok := floor.Pieces.Get(partyID)
		if !ok {
			continue
		}
		carried := *p
		carried.X, carried.Y = i, 0
		newID := next.Pieces.Insert(&carried)
		m.Party[i] = newID
	}

	level := m.Levels[m.Location.Level]
	level.Floors = append(level.Floors, next)
	m.Location.Floor = len(level.Floors) - 1
	return nil
}
