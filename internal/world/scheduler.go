package world

import (
	"fmt"

	"tacticore/internal/ability"
	"tacticore/internal/character"
	"tacticore/internal/console"
	"tacticore/internal/value"
)

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// tickState is the scheduler's current phase, per spec.md §4.7.
type tickState uint8

const (
	stateIdle tickState = iota
	stateAwaitingAction
	stateDeliberating
	stateApplying
	stateAwaitingInput
)

// State reports the scheduler's current phase, for server logging and
// tests; callers should drive behavior off Pump/SubmitAction's return
// values, not this.
func (m *Manager) State() string {
	switch m.state {
	case stateIdle:
		return "idle"
	case stateAwaitingAction:
		return "awaiting_action"
	case stateDeliberating:
		return "deliberating"
	case stateApplying:
		return "applying"
	case stateAwaitingInput:
		return "awaiting_input"
	default:
		return "unknown"
	}
}

// AwaitingActionFrom reports the piece the scheduler is blocked
// waiting on a player Action for, if the state is stateAwaitingAction.
func (m *Manager) AwaitingActionFrom() (character.PieceID, bool) {
	if m.state != stateAwaitingAction {
		return character.PieceID{}, false
	}
	return m.actingPiece, true
}

// AwaitingInputFrom reports the piece and InputRequest the scheduler is
// blocked on mid-resolution, if the state is stateAwaitingInput. The
// reply goes back through ResumeInput; internal/server, the caller,
// does not forward Request to a client and resumes with a unit reply.
func (m *Manager) AwaitingInputFrom() (character.PieceID, ability.InputRequest, bool) {
	if m.state != stateAwaitingInput || m.pending == nil {
		return character.PieceID{}, ability.InputRequest{}, false
	}
	return m.actingPiece, m.pending.Request, true
}

// nextActor returns the live piece with the smallest ActionDelay on the
// current floor, breaking ties by stable arena (insertion) order —
// the invariant spec.md §3 requires of World.
func nextActor(floor *Floor) (character.PieceID, *character.Piece, bool) {
	var (
		bestID    character.PieceID
		best      *character.Piece
		bestDelay uint32
		found     bool
	)
	floor.Pieces.All(func(id character.PieceID, p *character.Piece) {
		if !found || p.ActionDelay < bestDelay {
			bestID, best, bestDelay, found = id, p, p.ActionDelay, true
		}
	})
	return bestID, best, found
}

// advanceDelay decrements every piece's ActionDelay by the smallest
// delay currently outstanding — equivalent under the scheduler's
// invariants to ticking one unit at a time until the next actor is due,
// but O(pieces) instead of O(pieces * ticks).
func advanceDelay(floor *Floor, by uint32) {
	if by == 0 {
		return
	}
	floor.Pieces.All(func(_ character.PieceID, p *character.Piece) {
		if p.ActionDelay >= by {
			p.ActionDelay -= by
		} else {
			p.ActionDelay = 0
		}
	})
}

// Pump advances the scheduler by one step. It returns true if it made
// progress (play moved from Idle into deliberation for an NPC turn),
// and false when blocked waiting for external input — either a player
// Action (SubmitAction) or a suspended ability's input reply
// (ResumeInput). A caller (internal/server's session loop) should call
// Pump repeatedly until it returns false, per spec.md §4.10's "pumped
// until it reports no more progress without input."
func (m *Manager) Pump() (bool, error) {
	switch m.state {
	case stateAwaitingAction, stateAwaitingInput:
		return false, nil
	case stateIdle:
		floor := m.CurrentFloor()
		id, piece, ok := nextActor(floor)
		if !ok {
			return false, nil
		}
		if piece.ActionDelay > 0 {
			advanceDelay(floor, piece.ActionDelay)
		}

		// An orphaned conscious piece (see the disconnect-ownership
		// decision) is still routed through deliberation rather than
		// AwaitingAction, so the scheduler never stalls waiting for a
		// client that isn't coming back.
		if piece.Conscious() && piece.PlayerControlled {
			m.state = stateAwaitingAction
			m.actingPiece = id
			return false, nil
		}

		m.state = stateDeliberating
		m.actingPiece = id
		return true, nil
	default:
		return false, fmt.Errorf("world: Pump called in state %s", m.State())
	}
}

// Deliberate runs the deliberation procedure for the piece the
// scheduler selected in stateDeliberating and begins applying its
// chosen action. Callers should call this immediately after a Pump
// that returns (true, nil) while State() == "deliberating".
func (m *Manager) Deliberate(decide func(piece *character.Piece) (character.Action, error)) error {
	if m.state != stateDeliberating {
		return fmt.Errorf("world: Deliberate called in state %s", m.State())
	}
	piece, ok := m.GetPiece(m.actingPiece)
	if !ok {
		m.state = stateIdle
		return nil
	}
	action, err := decide(piece)
	if err != nil {
		return err
	}
	return m.beginApply(piece, action)
}

// SubmitAction supplies the player-chosen Action for the piece the
// scheduler is waiting on in stateAwaitingAction, enforcing the
// authority rule: the submitting client's piece must actually be the
// one the scheduler selected.
func (m *Manager) SubmitAction(id character.PieceID, action character.Action) error {
	if m.state != stateAwaitingAction {
		return fmt.Errorf("world: no action is awaited")
	}
	if id != m.actingPiece {
		return fmt.Errorf("world: action submitted for %s but scheduler awaits %s", id, m.actingPiece)
	}
	piece, ok := m.GetPiece(id)
	if !ok {
		m.state = stateIdle
		return fmt.Errorf("world: acting piece %s no longer exists", id)
	}
	return m.beginApply(piece, action)
}

// ResumeInput continues a suspended ability invocation with the
// client's reply to the InputRequest reported by AwaitingInputFrom.
func (m *Manager) ResumeInput(reply value.Value) error {
	if m.state != stateAwaitingInput || m.pending == nil {
		return fmt.Errorf("world: no input is awaited")
	}
	partial, result, err := ability.ResumeInput(m.pending, reply)
	if err != nil {
		return err
	}
	if partial != nil {
		m.pending = partial
		return nil
	}
	m.pending = nil
	return m.applyEffect(result)
}

// beginApply starts applying action for piece: moves are resolved
// immediately; attacks and casts first run their on_input coroutine
// (which may suspend the scheduler into stateAwaitingInput) seeded with
// the action's already-chosen args, then their on_use/on_cast effect.
func (m *Manager) beginApply(piece *character.Piece, action character.Action) error {
	m.state = stateApplying

	switch action.Kind {
	case character.ActionMove:
		if abs(action.DX) > 1 || abs(action.DY) > 1 {
			return fmt.Errorf("world: move offset (%d,%d) exceeds a single tile step", action.DX, action.DY)
		}
		floor := m.CurrentFloor()
		nx, ny := piece.X+action.DX, piece.Y+action.DY
		if floor.Tiles.Passable(nx, ny) {
			piece.MoveBy(action.DX, action.DY)
		} else if m.Console != nil {
			m.Console.SendMessage(fmt.Sprintf("%s is blocked.", piece.Sheet.Nouns.Address()), console.System, console.PlainPrinter())
		}
		piece.ActionDelay = piece.Sheet.Speed
		return m.finishApply()
	case character.ActionAttack, character.ActionCast:
		onInput, onUse, useTime, err := m.resolveAbility(action)
		if err != nil {
			return err
		}
		m.pendingKind, m.pendingRef = action.Kind, action.Ref

		if action.Kind == character.ActionCast {
			spell, err := m.Resources.GetSpell(action.Ref)
			if err != nil {
				return err
			}
			if !spell.CastableBySP(piece.SP) {
				if m.Console != nil {
					m.Console.SendMessage(fmt.Sprintf("%s lacks the SP to cast %s.", piece.Sheet.Nouns.Address(), spell.Name), console.System, console.PlainPrinter())
				}
				return m.finishApply()
			}
		}

		sandbox := m.sandboxFor(piece, action)
		partial, result, err := ability.GatherInput(m.Host, onInput, m.ScriptCache, sandbox)
		if err != nil {
			return err
		}
		if partial != nil {
			m.pending = partial
			m.state = stateAwaitingInput
			return nil
		}
		piece.ActionDelay = useTime
		return m.applyEffectScript(onUse, result)
	default:
		return fmt.Errorf("world: unrecognized action kind %d", action.Kind)
	}
}

func (m *Manager) resolveAbility(action character.Action) (onInput, onUse ability.Script, useTime uint32, err error) {
	if action.Kind == character.ActionAttack {
		a, err := m.Resources.GetAttack(action.Ref)
		if err != nil {
			return ability.Script{}, ability.Script{}, 0, err
		}
		return a.OnInput, a.OnUse, a.UseTime, nil
	}
	s, err := m.Resources.GetSpell(action.Ref)
	if err != nil {
		return ability.Script{}, ability.Script{}, 0, err
	}
	return s.OnInput, s.OnCast, uint32(s.Level), nil
}

func (m *Manager) sandboxFor(piece *character.Piece, action character.Action) map[string]value.Value {
	characters, _ := m.CharacterSnapshot()
	sandbox := map[string]value.Value{
		"User":         value.Str(piece.ID.String()),
		"Characters":   characters,
		"KnownAttacks": stringSequence(piece.Sheet.Attacks),
		"KnownSpells":  stringSequence(piece.Sheet.Spells),
	}
	for k, v := range action.Args {
		sandbox[k] = v
	}
	return sandbox
}

func stringSequence(items []string) value.Value {
	vals := make([]value.Value, len(items))
	for i, s := range items {
		vals[i] = value.Str(s)
	}
	return value.Sequence(vals)
}

// applyEffect re-resolves the pending ability's on_use/on_cast script
// using the result of a just-completed input-gathering phase.
func (m *Manager) applyEffect(result map[string]value.Value) error {
	piece, ok := m.GetPiece(m.actingPiece)
	if !ok {
		m.state = stateIdle
		return nil
	}
	_, onUse, useTime, err := m.resolveAbility(character.Action{Kind: m.pendingKind, Ref: m.pendingRef})
	if err != nil {
		return err
	}
	piece.ActionDelay = useTime
	return m.applyEffectScript(onUse, result)
}

// applyEffectScript deducts a pending cast's SP cost before running the
// on_use/on_cast script, then applies whatever world mutations it
// declared through the combat/world library before sweeping and
// returning to idle.
func (m *Manager) applyEffectScript(onUse ability.Script, sandbox map[string]value.Value) error {
	if m.pendingKind == character.ActionCast {
		if err := m.deductCastSP(); err != nil {
			return err
		}
	}
	result, err := ability.ApplyEffect(m.Host, onUse, m.ScriptCache, sandbox)
	if err != nil {
		return err
	}
	m.applyScriptEffects(result)
	return m.finishApply()
}

// deductCastSP charges the acting piece its pending spell's Level in
// SP, floored at zero.
func (m *Manager) deductCastSP() error {
	piece, ok := m.GetPiece(m.actingPiece)
	if !ok {
		return nil
	}
	spell, err := m.Resources.GetSpell(m.pendingRef)
	if err != nil {
		return err
	}
	cost := uint32(spell.Level)
	if cost > piece.SP {
		piece.SP = 0
	} else {
		piece.SP -= cost
	}
	return nil
}

// finishApply runs the end-of-tick sweep and returns the scheduler to
// stateIdle.
func (m *Manager) finishApply() error {
	m.sweep()
	m.state = stateIdle
	m.pending = nil
	return nil
}

// sweep removes any piece whose HP has reached zero (posting a death
// message), and decrements/expires Turn-duration components, per
// spec.md §4.7's end-of-tick sweep.
func (m *Manager) sweep() {
	floor := m.CurrentFloor()

	var dead []character.PieceID
	floor.Pieces.All(func(id character.PieceID, p *character.Piece) {
		if p.HP == 0 {
			dead = append(dead, id)
			return
		}
		for key, c := range p.Components {
			if c.Descriptor.Duration != character.DurationTurn {
				continue
			}
			if c.Magnitude <= 1 {
				delete(p.Components, key)
			} else {
				c.Magnitude--
			}
		}
	})

	for _, id := range dead {
		p, _ := floor.Pieces.Get(id)
		if p != nil && m.Console != nil {
			m.Console.SendMessage(fmt.Sprintf("%s has fallen.", p.Sheet.Nouns.Address()), console.Defeat, console.PlainPrinter())
		}
		floor.Pieces.Remove(id)
	}
}

// applyScriptEffects interprets the ability.EffectsKey sequence an
// on_use/on_cast script accumulated through the combat/world library
// calls, applying each declared mutation against authoritative piece
// and console state. Unresolvable effects (an unknown target, an
// unregistered spawn sheet) are skipped rather than failing the whole
// resolution — a malformed single effect shouldn't stall the tick.
func (m *Manager) applyScriptEffects(result map[string]value.Value) {
	seq, ok := result[ability.EffectsKey]
	if !ok {
		return
	}
	items, ok := seq.Items()
	if !ok {
		return
	}
	for _, item := range items {
		fields, ok := tableFields(item)
		if !ok {
			continue
		}
		op, _ := fields["op"].Str()
		switch op {
		case "damage":
			m.applyDamage(fields, true)
		case "pierce":
			m.applyDamage(fields, false)
		case "deduct_sp":
			m.applyDeductSP(fields)
		case "attach":
			m.applyAttach(fields)
		case "detach":
			m.applyDetach(fields)
		case "spawn":
			m.applySpawn(fields)
		case "message":
			m.applyScriptMessage(fields)
		}
	}
}

func tableFields(v value.Value) (map[string]value.Value, bool) {
	pairs, ok := v.Pairs()
	if !ok {
		return nil, false
	}
	out := make(map[string]value.Value, len(pairs))
	for _, p := range pairs {
		if k, ok := p.Key.Str(); ok {
			out[k] = p.Value
		}
	}
	return out, true
}

func (m *Manager) resolveEffectTarget(fields map[string]value.Value) (*character.Piece, bool) {
	raw, ok := fields["target"].Str()
	if !ok {
		return nil, false
	}
	id, ok := character.ParsePieceID(raw)
	if !ok {
		return nil, false
	}
	return m.GetPiece(id)
}

func (m *Manager) applyDamage(fields map[string]value.Value, mitigated bool) {
	target, ok := m.resolveEffectTarget(fields)
	if !ok {
		return
	}
	amount, _ := fields["amount"].Int()
	dmg := uint32(amount)
	if mitigated {
		if stats, err := target.EffectiveStats(); err == nil {
			if stats.Defense >= dmg {
				dmg = 0
			} else {
				dmg -= stats.Defense
			}
		}
	}
	if dmg > target.HP {
		target.HP = 0
	} else {
		target.HP -= dmg
	}
}

func (m *Manager) applyDeductSP(fields map[string]value.Value) {
	target, ok := m.resolveEffectTarget(fields)
	if !ok {
		return
	}
	amount, _ := fields["amount"].Int()
	cost := uint32(amount)
	if cost > target.SP {
		target.SP = 0
	} else {
		target.SP -= cost
	}
}

func (m *Manager) applyAttach(fields map[string]value.Value) {
	target, ok := m.resolveEffectTarget(fields)
	if !ok {
		return
	}
	name, _ := fields["name"].Str()
	magnitude, _ := fields["magnitude"].Int()
	durationStr, _ := fields["duration"].Str()

	duration := character.DurationRest
	if durationStr == "turn" {
		duration = character.DurationTurn
	}
	if target.Components == nil {
		target.Components = map[string]*character.Component{}
	}
	target.Components[name] = &character.Component{
		Descriptor: character.Descriptor{Name: name, Visible: true, Duration: duration},
		Magnitude:  uint32(magnitude),
	}
}

func (m *Manager) applyDetach(fields map[string]value.Value) {
	target, ok := m.resolveEffectTarget(fields)
	if !ok {
		return
	}
	name, _ := fields["name"].Str()
	delete(target.Components, name)
}

func (m *Manager) applySpawn(fields map[string]value.Value) {
	sheetRef, _ := fields["sheet"].Str()
	sheet, err := m.Resources.GetSheet(sheetRef)
	if err != nil {
		return
	}
	x, _ := fields["x"].Int()
	y, _ := fields["y"].Int()
	piece := &character.Piece{
		Sheet:    sheet,
		X:        int(x),
		Y:        int(y),
		HP:       sheet.Stats.Heart,
		SP:       sheet.Stats.Soul,
		Alliance: character.Enemy,
	}
	m.CurrentFloor().Pieces.Insert(piece)
}

func (m *Manager) applyScriptMessage(fields map[string]value.Value) {
	if m.Console == nil {
		return
	}
	text, _ := fields["text"].Str()
	m.Console.SendMessage(text, console.Combat, console.PlainPrinter())
}
