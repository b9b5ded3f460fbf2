package character_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tacticore/internal/character"
	"tacticore/internal/value"
)

func newPiece() *character.Piece {
	return &character.Piece{
		Sheet:      character.Sheet{Stats: character.Stats{Heart: 10, Defense: 2}},
		HP:         10,
		Components: map[string]*character.Component{},
	}
}

func TestArenaInsertAndGet(t *testing.T) {
	arena := character.NewArena()
	p := newPiece()
	id := arena.Insert(p)

	got, ok := arena.Get(id)
	require.True(t, ok)
	require.Same(t, p, got)
	require.Equal(t, 1, arena.Len())
}

func TestArenaRemoveInvalidatesID(t *testing.T) {
	arena := character.NewArena()
	id := arena.Insert(newPiece())

	require.True(t, arena.Remove(id))
	_, ok := arena.Get(id)
	require.False(t, ok)
	require.Equal(t, 0, arena.Len())
}

func TestArenaReusedSlotGetsFreshGeneration(t *testing.T) {
	arena := character.NewArena()
	first := arena.Insert(newPiece())
	arena.Remove(first)
	second := arena.Insert(newPiece())

	_, ok := arena.Get(first)
	require.False(t, ok, "stale id from before removal must not resolve to the new occupant")

	got, ok := arena.Get(second)
	require.True(t, ok)
	require.NotNil(t, got)
}

func TestConsciousComponentGatesScheduling(t *testing.T) {
	p := newPiece()
	require.False(t, p.Conscious())

	p.Components[character.Conscious] = &character.Component{
		Descriptor: character.Descriptor{Name: "conscious"},
	}
	require.True(t, p.Conscious())
}

type fixedDebuff struct {
	delta character.Stats
}

func (f fixedDebuff) Eval(magnitude uint32) (character.Stats, error) {
	d := f.delta
	d.Power *= magnitude
	return d, nil
}

func TestEffectiveStatsAppliesDebuff(t *testing.T) {
	p := newPiece()
	p.Sheet.Stats.Power = 10
	p.Components["weak"] = &character.Component{
		Descriptor: character.Descriptor{Name: "Weak", OnDebuff: fixedDebuff{delta: character.Stats{Power: 1}}},
		Magnitude:  3,
	}

	eff, err := p.EffectiveStats()
	require.NoError(t, err)
	require.EqualValues(t, 7, eff.Power)
}

func TestComponentTipListsNonzeroStats(t *testing.T) {
	c := &character.Component{
		Descriptor: character.Descriptor{Name: "Poisoned"},
		Static:     &character.Stats{Heart: 5, Defense: 3},
	}
	require.Equal(t, "Poisoned -5 Heart -3 Defense", c.Tip())
}

func TestComponentColorIsRedForDebuff(t *testing.T) {
	c := &character.Component{
		Descriptor: character.Descriptor{Name: "Poisoned"},
		Static:     &character.Stats{Heart: 5},
	}
	r, g, b, a := c.Color()
	require.Equal(t, [4]uint8{255, 0, 0, 255}, [4]uint8{r, g, b, a})
}

func TestCompassOffset(t *testing.T) {
	dx, dy, ok := character.CompassOffset("up_right")
	require.True(t, ok)
	require.Equal(t, 1, dx)
	require.Equal(t, -1, dy)

	_, _, ok = character.CompassOffset("sideways")
	require.False(t, ok)
}

func TestMoveActionConstructor(t *testing.T) {
	a := character.Move(1, 0)
	require.Equal(t, character.ActionMove, a.Kind)
	require.Equal(t, 1, a.DX)
}

func TestDecodeActionMove(t *testing.T) {
	a, err := character.DecodeAction(map[string]value.Value{
		"kind": value.Str("move"),
		"dx":   value.Int(1),
		"dy":   value.Int(-1),
	})
	require.NoError(t, err)
	require.Equal(t, character.ActionMove, a.Kind)
	require.Equal(t, 1, a.DX)
	require.Equal(t, -1, a.DY)
}

func TestDecodeActionAttackWithArgs(t *testing.T) {
	a, err := character.DecodeAction(map[string]value.Value{
		"kind": value.Str("attack"),
		"ref":  value.Str("slash"),
		"args": value.Table([]value.Pair{{Key: value.Str("target"), Value: value.Int(7)}}),
	})
	require.NoError(t, err)
	require.Equal(t, character.ActionAttack, a.Kind)
	require.Equal(t, "slash", a.Ref)
	require.Equal(t, int64(7), mustInt(t, a.Args["target"]))
}

func TestDecodeActionUnknownKindErrors(t *testing.T) {
	_, err := character.DecodeAction(map[string]value.Value{"kind": value.Str("fly")})
	require.Error(t, err)
}

func mustInt(t *testing.T, v value.Value) int64 {
	t.Helper()
	i, ok := v.Int()
	require.True(t, ok)
	return i
}
