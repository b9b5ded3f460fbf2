package character

import "fmt"

// PieceID is a stable, generation-checked reference into an Arena. It
// replaces the original's shared interior-mutable piece handles: every
// reference to a piece is an (index, generation) pair resolved through
// the arena, so there is never aliased mutable state and a stale
// reference to a removed piece is detectable rather than dangling.
type PieceID struct {
	index      int
	generation uint32
}

func (id PieceID) String() string {
	return fmt.Sprintf("Piece#%d.%d", id.index, id.generation)
}

// ParsePieceID parses a PieceID's String() form back into a PieceID, for
// target references that round-trip through script-visible strings
// (action args, sandbox queries). The second return is false for any
// input that isn't a String() rendering.
func ParsePieceID(s string) (PieceID, bool) {
	var id PieceID
	if _, err := fmt.Sscanf(s, "Piece#%d.%d", &id.index, &id.generation); err != nil {
		return PieceID{}, false
	}
	return id, true
}

// Piece is one actor on the board.
type Piece struct {
	ID             PieceID
	Sheet          Sheet
	X, Y           int
	HP, SP         uint32
	ActionDelay    uint32 // counts down to zero, at which point the piece must act
	Alliance       Alliance
	PlayerControlled bool
	Components     map[string]*Component

	NextAction *Action
}

// EffectiveStats folds every attached component's debuff into the
// sheet's base stats.
func (p *Piece) EffectiveStats() (Stats, error) {
	outcomes := StatOutcomes{Base: p.Sheet.Stats}
	for key, c := range p.Components {
		delta, err := c.OnDebuff()
		if err != nil {
			return Stats{}, fmt.Errorf("piece %s: component %q: %w", p.ID, key, err)
		}
		outcomes.Debuff = outcomes.Debuff.Add(delta)
	}
	return outcomes.Effective(), nil
}

// Conscious reports whether the piece carries the :conscious component
// and is therefore schedulable as a player turn.
func (p *Piece) Conscious() bool {
	_, ok := p.Components[Conscious]
	return ok
}

// MoveBy applies a one-tile offset directly to the piece's position.
// Callers are responsible for validating the destination tile before
// calling this (see internal/world).
func (p *Piece) MoveBy(dx, dy int) {
	p.X += dx
	p.Y += dy
}

var compassOffsets = map[string][2]int{
	"up": {0, -1}, "up_right": {1, -1}, "right": {1, 0}, "down_right": {1, 1},
	"down": {0, 1}, "down_left": {-1, 1}, "left": {-1, 0}, "up_left": {-1, -1},
}

// CompassOffset resolves one of the eight compass direction names used
// by Direction input requests to a unit (dx,dy) offset.
func CompassOffset(name string) (dx, dy int, ok bool) {
	o, ok := compassOffsets[name]
	return o[0], o[1], ok
}

// arenaSlot holds one arena cell: either a live piece at the current
// generation, or an empty cell ready for reuse at the next generation.
type arenaSlot struct {
	piece      *Piece
	generation uint32
}

// Arena owns every live Piece, indexed by stable PieceID. Removing a
// piece bumps its slot's generation so any PieceID still referencing it
// fails to resolve instead of aliasing the slot's next occupant.
type Arena struct {
	slots    []arenaSlot
	freeList []int
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Insert adds a piece to the arena and returns its stable id. The
// piece's ID field is populated to match.
func (a *Arena) Insert(p *Piece) PieceID {
	var idx int
	if n := len(a.freeList); n > 0 {
		idx = a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		a.slots[idx].piece = p
	} else {
		idx = len(a.slots)
		a.slots = append(a.slots, arenaSlot{piece: p, generation: 0})
	}
	id := PieceID{index: idx, generation: a.slots[idx].generation}
	p.ID = id
	return id
}

// Get resolves a PieceID to its live piece, or false if the id is stale
// or out of range.
func (a *Arena) Get(id PieceID) (*Piece, bool) {
	if id.index < 0 || id.index >= len(a.slots) {
		return nil, false
	}
	slot := a.slots[id.index]
	if slot.piece == nil || slot.generation != id.generation {
		return nil, false
	}
	return slot.piece, true
}

// Remove deletes the piece at id, bumping its slot's generation so the
// id cannot be reused to reach whatever occupies the slot next.
func (a *Arena) Remove(id PieceID) bool {
	if id.index < 0 || id.index >= len(a.slots) {
		return false
	}
	slot := &a.slots[id.index]
	if slot.piece == nil || slot.generation != id.generation {
		return false
	}
	slot.piece = nil
	slot.generation++
	a.freeList = append(a.freeList, id.index)
	return true
}

// Len returns the number of live pieces.
func (a *Arena) Len() int {
	n := 0
	for _, s := range a.slots {
		if s.piece != nil {
			n++
		}
	}
	return n
}

// All calls fn for every live piece, in arena slot order (insertion
// order modulo removals) — the stable order the scheduler relies on to
// break action_delay ties.
func (a *Arena) All(fn func(PieceID, *Piece)) {
	for i, s := range a.slots {
		if s.piece != nil {
			fn(PieceID{index: i, generation: s.generation}, s.piece)
		}
	}
}
