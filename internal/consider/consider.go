// Package consider implements deliberation: enumerating the actions a
// non-player piece could take, scoring them, and picking one.
package consider

import (
	"fmt"

	"tacticore/internal/ability"
	"tacticore/internal/character"
	"tacticore/internal/geometry"
	"tacticore/internal/value"
)

// Heuristic is the read-only score handed to a decider script for one
// Consideration: Score is normalized to [0,1] (expected damage against
// the target's remaining HP), Tag is a short human-readable label
// ("lethal", "chip", "miss") a script can branch on without
// recomputing the arithmetic itself. This is the scoring contract the
// source left undecided; fixing the formula here keeps "how good is
// this move" centrally tunable while leaving "which move to take"
// entirely up to content scripts.
type Heuristic struct {
	Score float64
	Tag   string
}

// ComputeHeuristic derives a Heuristic from expected damage against a
// target's current HP.
func ComputeHeuristic(expectedDamage, targetHP uint32) Heuristic {
	if targetHP == 0 {
		return Heuristic{Score: 0, Tag: "moot"}
	}
	score := float64(expectedDamage) / float64(targetHP)
	tag := "chip"
	switch {
	case expectedDamage == 0:
		tag = "miss"
	case expectedDamage >= targetHP:
		tag = "lethal"
		score = 1
	}
	if score > 1 {
		score = 1
	}
	return Heuristic{Score: score, Tag: tag}
}

// OutcomeKind tags a Consideration's ability-outcome variant.
type OutcomeKind uint8

const (
	OutcomeAttack OutcomeKind = iota
	OutcomeSpell
)

// Consideration is one scored, candidate ability use: an on_consider
// script's report of what using a given attack or spell against a
// given target would accomplish.
type Consideration struct {
	Kind      OutcomeKind
	Ref       string // attack or spell resource key
	Target    character.PieceID
	Damage    uint32
	Heuristic Heuristic
}

// Gather runs on_consider for every known attack and spell on piece's
// sheet that defines one, returning every Consideration it reports.
// Scripts without an on_consider are silently skipped — they simply
// never get considered by the AI, matching the spec's "optional
// on_consider script" framing.
func Gather(
	host ability.Host,
	piece *character.Piece,
	attacks map[string]ability.Attack,
	spells map[string]ability.Spell,
	scriptCache map[string]string,
	boardContext map[string]value.Value,
	targets []character.PieceID,
) ([]Consideration, error) {
	var out []Consideration

	for _, ref := range piece.Sheet.Attacks {
		a, ok := attacks[ref]
		if !ok || a.OnConsider == nil {
			continue
		}
		cs, err := runConsider(host, *a.OnConsider, scriptCache, boardContext, OutcomeAttack, ref, targets)
		if err != nil {
			return nil, err
		}
		out = append(out, cs...)
	}

	for _, ref := range piece.Sheet.Spells {
		s, ok := spells[ref]
		if !ok || s.OnConsider == nil {
			continue
		}
		cs, err := runConsider(host, *s.OnConsider, scriptCache, boardContext, OutcomeSpell, ref, targets)
		if err != nil {
			return nil, err
		}
		out = append(out, cs...)
	}

	return out, nil
}

func runConsider(host ability.Host, script ability.Script, cache map[string]string, sandbox map[string]value.Value, kind OutcomeKind, ref string, targets []character.PieceID) ([]Consideration, error) {
	contents, err := script.Contents(cache)
	if err != nil {
		return nil, err
	}
	_, outcome, err := host.Run(contents, sandbox)
	if err != nil {
		return nil, fmt.Errorf("consider: on_consider %s: %w", script.Name(), err)
	}
	if outcome.Request != nil {
		return nil, fmt.Errorf("consider: on_consider %s yielded input, unsupported", script.Name())
	}
	return decodeConsiderations(outcome.Result, kind, ref, targets)
}

// decodeConsiderations interprets the script's result map: a "damage"
// sequence of tables, each with target/amount keys, scored by
// ComputeHeuristic against the target's reported current HP. "target"
// is an index into the same ordered targets list the caller embedded in
// the sandbox's "Targets"/"Characters" sequence; an out-of-range index
// silently drops that single consideration rather than guessing a
// piece to aim at.
func decodeConsiderations(result map[string]value.Value, kind OutcomeKind, ref string, targets []character.PieceID) ([]Consideration, error) {
	damageVal, ok := result["damage"]
	if !ok {
		return nil, nil
	}
	items, ok := damageVal.Items()
	if !ok {
		return nil, fmt.Errorf("consider: %q result must be a sequence", "damage")
	}

	out := make([]Consideration, 0, len(items))
	for _, item := range items {
		pairs, ok := item.Pairs()
		if !ok {
			continue
		}
		fields := map[string]value.Value{}
		for _, p := range pairs {
			if k, ok := p.Key.Str(); ok {
				fields[k] = p.Value
			}
		}
		targetIdx, _ := fields["target"].Int()
		amount, _ := fields["amount"].Int()
		targetHP, _ := fields["target_hp"].Int()

		if targetIdx < 0 || int(targetIdx) >= len(targets) {
			continue
		}

		out = append(out, Consideration{
			Kind:      kind,
			Ref:       ref,
			Target:    targets[targetIdx],
			Damage:    uint32(amount),
			Heuristic: ComputeHeuristic(uint32(amount), uint32(targetHP)),
		})
	}
	return out, nil
}

// Decide calls a piece's decider script with the full list of
// Considerations and the piece itself, and returns the single Action it
// chose. If the decider script is empty/unset, or every Consideration
// scores at or below floorScore, the caller should fall back to
// DefaultAction instead of calling Decide.
func Decide(host ability.Host, decider ability.Script, cache map[string]string, sandbox map[string]value.Value) (character.Action, error) {
	contents, err := decider.Contents(cache)
	if err != nil {
		return character.Action{}, err
	}
	_, outcome, err := host.Run(contents, sandbox)
	if err != nil {
		return character.Action{}, fmt.Errorf("consider: decider %s: %w", decider.Name(), err)
	}
	if outcome.Request != nil {
		return character.Action{}, fmt.Errorf("consider: decider %s yielded input, unsupported", decider.Name())
	}
	return character.DecodeAction(outcome.Result)
}

// FloorScore is the minimum heuristic score an ability must clear to be
// worth acting on; below it, DefaultAction governs instead.
const FloorScore = 0.05

// DefaultAction is the fallback when no scripted consideration clears
// FloorScore: step one tile along the Dijkstra field toward the
// nearest hostile piece.
func DefaultAction(field *geometry.Field, fromX, fromY int) character.Action {
	next, ok := field.Step(fromX, fromY)
	if !ok {
		return character.Move(0, 0)
	}
	return character.Move(next.X-fromX, next.Y-fromY)
}
