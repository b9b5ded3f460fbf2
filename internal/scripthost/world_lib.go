package scripthost

// characterRow is one entry of the "Characters" sandbox sequence a
// caller (internal/world, internal/consider) populates before running a
// script: a read-only snapshot of one piece, keyed by its PieceID
// string so a script can reference a piece without holding a live
// handle into engine state.
type characterRow struct {
	id       string
	x, y     int
	alliance int
	hp       int
}

func (rt *Runtime) characters() []characterRow {
	seq, ok := rt.Get("Characters").Items()
	if !ok {
		return nil
	}
	rows := make([]characterRow, 0, len(seq))
	for _, item := range seq {
		fields, ok := item.Pairs()
		if !ok {
			continue
		}
		var row characterRow
		for _, p := range fields {
			k, ok := p.Key.Str()
			if !ok {
				continue
			}
			switch k {
			case "id":
				row.id, _ = p.Value.Str()
			case "x":
				n, _ := p.Value.Int()
				row.x = int(n)
			case "y":
				n, _ := p.Value.Int()
				row.y = int(n)
			case "alliance":
				n, _ := p.Value.Int()
				row.alliance = int(n)
			case "hp":
				n, _ := p.Value.Int()
				row.hp = int(n)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// WorldCharacters returns the id of every piece the sandbox knows
// about.
func WorldCharacters(rt *Runtime) []string {
	rows := rt.characters()
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.id
	}
	return ids
}

// WorldCharacterAt returns the id of the piece standing at (x, y), if
// any.
func WorldCharacterAt(rt *Runtime, x, y int) (string, bool) {
	for _, row := range rt.characters() {
		if row.x == x && row.y == y {
			return row.id, true
		}
	}
	return "", false
}

// WorldCharactersWithin returns every piece id within radius tiles of
// (x, y), Chebyshev distance (matching the engine's eight-direction
// movement model).
func WorldCharactersWithin(rt *Runtime, x, y, radius int) []string {
	var ids []string
	for _, row := range rt.characters() {
		if chebyshev(row.x-x, row.y-y) <= radius {
			ids = append(ids, row.id)
		}
	}
	return ids
}

func chebyshev(dx, dy int) int {
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// WorldAttachComponent declares a component attachment on target: a
// named, visible, magnitude-bearing component that internal/world
// builds in place from these fields, since no resource-backed component
// lookup is reachable from a script sandbox.
func WorldAttachComponent(rt *Runtime, target, name string, magnitude int, duration string) {
	rt.addEffect(
		pair("op", "attach"),
		pair("target", target),
		pair("name", name),
		pairInt("magnitude", magnitude),
		pair("duration", duration),
	)
}

// WorldDetachComponent declares the removal of a named component from
// target.
func WorldDetachComponent(rt *Runtime, target, name string) {
	rt.addEffect(
		pair("op", "detach"),
		pair("target", target),
		pair("name", name),
	)
}

// WorldSpawn declares a new piece of sheet at (x, y), enemy-aligned —
// the only alliance a script-triggered spawn (summon, trap) has reason
// to create.
func WorldSpawn(rt *Runtime, sheet string, x, y int) {
	rt.addEffect(
		pair("op", "spawn"),
		pair("sheet", sheet),
		pairInt("x", x),
		pairInt("y", y),
	)
}

// WorldSendMessage declares a console message, posted once the script
// completes so it's ordered after the effects it describes rather than
// racing ahead of them.
func WorldSendMessage(rt *Runtime, text string) {
	rt.addEffect(
		pair("op", "message"),
		pair("text", text),
	)
}
