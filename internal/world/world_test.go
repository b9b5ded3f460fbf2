package world_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tacticore/internal/ability"
	"tacticore/internal/character"
	"tacticore/internal/console"
	"tacticore/internal/geometry"
	"tacticore/internal/resource"
	"tacticore/internal/value"
	"tacticore/internal/vault"
	"tacticore/internal/world"
)

// fakeHost returns a fixed outcome for every script it runs, regardless
// of contents, so the scheduler can be exercised without a real sandbox.
type fakeHost struct {
	outcome ability.Outcome
	err     error
}

func (h fakeHost) Run(script string, sandbox map[string]value.Value) (ability.Coroutine, ability.Outcome, error) {
	if h.err != nil {
		return nil, ability.Outcome{}, h.err
	}
	return nil, h.outcome, nil
}

func TestNewManagerInstantiatesParty(t *testing.T) {
	reg := &resource.Registry{
		Sheets: map[string]character.Sheet{
			"luvui": {Stats: character.Stats{Heart: 20, Soul: 10}},
		},
	}
	m, err := world.NewManager(reg, fakeHost{}, console.New(), []world.PartyMember{
		{Sheet: "luvui", Accent: character.AccentColor{R: 1}},
	})
	require.NoError(t, err)
	require.Len(t, m.Party, 1)

	p, ok := m.GetPiece(m.Party[0])
	require.True(t, ok)
	require.EqualValues(t, 20, p.HP)
	require.True(t, p.Conscious())
	require.True(t, p.PlayerControlled)
}

func TestNewManagerUnknownSheetErrors(t *testing.T) {
	reg := &resource.Registry{Sheets: map[string]character.Sheet{}}
	_, err := world.NewManager(reg, fakeHost{}, console.New(), []world.PartyMember{{Sheet: "missing"}})
	require.Error(t, err)
}

func newTestManager(t *testing.T) (*world.Manager, character.PieceID) {
	t.Helper()
	reg := &resource.Registry{
		Sheets: map[string]character.Sheet{
			"hero": {Stats: character.Stats{Heart: 20}, Speed: 5},
		},
	}
	m, err := world.NewManager(reg, fakeHost{}, console.New(), []world.PartyMember{{Sheet: "hero"}})
	require.NoError(t, err)
	return m, m.Party[0]
}

func TestPumpPausesForPlayerAction(t *testing.T) {
	m, id := newTestManager(t)
	progressed, err := m.Pump()
	require.NoError(t, err)
	require.False(t, progressed)

	awaiting, ok := m.AwaitingActionFrom()
	require.True(t, ok)
	require.Equal(t, id, awaiting)
}

func TestSubmitActionMoveAdvancesAndSweeps(t *testing.T) {
	m, id := newTestManager(t)
	m.CurrentFloor().Tiles.Set(1, 0, geometry.Floor)
	_, err := m.Pump()
	require.NoError(t, err)

	err = m.SubmitAction(id, character.Move(1, 0))
	require.NoError(t, err)
	require.Equal(t, "idle", m.State())

	p, ok := m.GetPiece(id)
	require.True(t, ok)
	require.Equal(t, 1, p.X)
	require.EqualValues(t, 5, p.ActionDelay)
}

func TestSubmitActionRejectsWrongPiece(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Pump()
	require.NoError(t, err)

	err = m.SubmitAction(character.PieceID{}, character.Move(0, 0))
	require.Error(t, err)
}

func TestNonPlayerPieceDeliberatesInsteadOfAwaiting(t *testing.T) {
	reg := &resource.Registry{
		Sheets: map[string]character.Sheet{
			"goblin": {Stats: character.Stats{Heart: 5}, Speed: 3},
		},
	}
	m, err := world.NewManager(reg, fakeHost{}, console.New(), nil)
	require.NoError(t, err)

	floor := m.CurrentFloor()
	floor.Tiles.Set(1, 0, geometry.Floor)
	npc := &character.Piece{Sheet: reg.Sheets["goblin"], HP: 5, Alliance: character.Enemy}
	id := floor.Pieces.Insert(npc)

	progressed, err := m.Pump()
	require.NoError(t, err)
	require.True(t, progressed)
	require.Equal(t, "deliberating", m.State())

	err = m.Deliberate(func(p *character.Piece) (character.Action, error) {
		return character.Move(1, 0), nil
	})
	require.NoError(t, err)
	require.Equal(t, "idle", m.State())

	p, ok := m.GetPiece(id)
	require.True(t, ok)
	require.Equal(t, 1, p.X)
}

func TestSweepRemovesDeadPieces(t *testing.T) {
	m, id := newTestManager(t)
	p, _ := m.GetPiece(id)
	p.HP = 0
	m.CurrentFloor().Tiles.Set(p.X, p.Y, geometry.Floor)

	_, err := m.Pump()
	require.NoError(t, err)
	err = m.SubmitAction(id, character.Move(0, 0))
	require.NoError(t, err)

	_, ok := m.GetPiece(id)
	require.False(t, ok)
	require.Equal(t, 1, m.Console.Len())
}

func TestAttackSuspendsOnInput(t *testing.T) {
	reg := &resource.Registry{
		Sheets: map[string]character.Sheet{
			"hero": {Stats: character.Stats{Heart: 20}, Attacks: []string{"slash"}},
		},
		Attacks: map[string]ability.Attack{
			"slash": {Name: "Slash", OnInput: ability.InlineScript("..."), OnUse: ability.InlineScript("...")},
		},
	}
	req := ability.PromptRequest("choose a target")
	host := fakeHost{outcome: ability.Outcome{Request: &req}}

	m, err := world.NewManager(reg, host, console.New(), []world.PartyMember{{Sheet: "hero"}})
	require.NoError(t, err)
	id := m.Party[0]

	_, err = m.Pump()
	require.NoError(t, err)
	err = m.SubmitAction(id, character.Attack("slash", nil))
	require.NoError(t, err)
	require.Equal(t, "awaiting_input", m.State())

	_, _, ok := m.AwaitingInputFrom()
	require.True(t, ok)
}

func TestAttackEffectDamagesTarget(t *testing.T) {
	reg := &resource.Registry{
		Sheets: map[string]character.Sheet{
			"hero": {Stats: character.Stats{Heart: 20}, Attacks: []string{"slash"}},
		},
		Attacks: map[string]ability.Attack{
			"slash": {Name: "Slash", OnInput: ability.InlineScript("..."), OnUse: ability.InlineScript("...")},
		},
	}
	m, err := world.NewManager(reg, fakeHost{}, console.New(), []world.PartyMember{{Sheet: "hero"}})
	require.NoError(t, err)
	id := m.Party[0]

	floor := m.CurrentFloor()
	target := &character.Piece{
		Sheet:    character.Sheet{Stats: character.Stats{Heart: 10}},
		HP:       10,
		Alliance: character.Enemy,
	}
	targetID := floor.Pieces.Insert(target)

	effect := value.Table([]value.Pair{
		{Key: value.Str("op"), Value: value.Str("damage")},
		{Key: value.Str("target"), Value: value.Str(targetID.String())},
		{Key: value.Str("amount"), Value: value.Int(6)},
	})
	m.Host = fakeHost{outcome: ability.Outcome{Result: map[string]value.Value{
		ability.EffectsKey: value.Sequence([]value.Value{effect}),
	}}}

	_, err = m.Pump()
	require.NoError(t, err)
	err = m.SubmitAction(id, character.Attack("slash", map[string]value.Value{"target": value.Str(targetID.String())}))
	require.NoError(t, err)
	require.Equal(t, "idle", m.State())

	p, ok := m.GetPiece(targetID)
	require.True(t, ok)
	require.EqualValues(t, 4, p.HP)
}

func TestCastRejectedWhenSPInsufficient(t *testing.T) {
	reg := &resource.Registry{
		Sheets: map[string]character.Sheet{
			"hero": {Stats: character.Stats{Heart: 20, Soul: 2}, Spells: []string{"spark"}},
		},
		Spells: map[string]ability.Spell{
			"spark": {Name: "Spark", Level: 3, OnInput: ability.InlineScript("..."), OnCast: ability.InlineScript("...")},
		},
	}
	m, err := world.NewManager(reg, fakeHost{}, console.New(), []world.PartyMember{{Sheet: "hero"}})
	require.NoError(t, err)
	id := m.Party[0]

	_, err = m.Pump()
	require.NoError(t, err)
	err = m.SubmitAction(id, character.Cast("spark", nil))
	require.NoError(t, err)
	require.Equal(t, "idle", m.State())

	p, ok := m.GetPiece(id)
	require.True(t, ok)
	require.EqualValues(t, 2, p.SP)
	require.Equal(t, 1, m.Console.Len())
}

func TestCastDeductsSPBeforeEffect(t *testing.T) {
	reg := &resource.Registry{
		Sheets: map[string]character.Sheet{
			"hero": {Stats: character.Stats{Heart: 20, Soul: 5}, Spells: []string{"spark"}},
		},
		Spells: map[string]ability.Spell{
			"spark": {Name: "Spark", Level: 3, OnInput: ability.InlineScript("..."), OnCast: ability.InlineScript("...")},
		},
	}
	m, err := world.NewManager(reg, fakeHost{}, console.New(), []world.PartyMember{{Sheet: "hero"}})
	require.NoError(t, err)
	id := m.Party[0]

	_, err = m.Pump()
	require.NoError(t, err)
	err = m.SubmitAction(id, character.Cast("spark", nil))
	require.NoError(t, err)
	require.Equal(t, "idle", m.State())

	p, ok := m.GetPiece(id)
	require.True(t, ok)
	require.EqualValues(t, 2, p.SP)
}

func TestMoveRejectsMultiTileOffset(t *testing.T) {
	m, id := newTestManager(t)
	_, err := m.Pump()
	require.NoError(t, err)

	err = m.SubmitAction(id, character.Move(2, 0))
	require.Error(t, err)
}

func TestMoveIntoWallPostsBlockedMessage(t *testing.T) {
	m, id := newTestManager(t)
	p, _ := m.GetPiece(id)
	m.CurrentFloor().Tiles.Set(p.X, p.Y, geometry.Floor)
	// (p.X+1, p.Y) is left unset, so it reads back as Wall.

	_, err := m.Pump()
	require.NoError(t, err)
	err = m.SubmitAction(id, character.Move(1, 0))
	require.NoError(t, err)

	require.Equal(t, 0, p.X)
	require.Equal(t, 1, m.Console.Len())
}

func TestConfirmExitGeneratesNewFloorFromVaults(t *testing.T) {
	reg := &resource.Registry{
		Sheets: map[string]character.Sheet{"hero": {Stats: character.Stats{Heart: 10}}},
	}
	v, err := vault.Parse(strings.NewReader("xxx\nx.e\nxxx"))
	require.NoError(t, err)
	reg.Vaults = map[string]vault.Vault{"room": v}

	m, err := world.NewManager(reg, fakeHost{}, console.New(), []world.PartyMember{{Sheet: "hero"}})
	require.NoError(t, err)
	id := m.Party[0]

	floor := m.CurrentFloor()
	floor.Tiles.Set(5, 5, geometry.Exit)
	p, _ := m.GetPiece(id)
	p.X, p.Y = 5, 5

	err = m.ConfirmExit(id, "seed-1", world.VaultSet{Keys: []string{"room"}})
	require.NoError(t, err)
	require.Equal(t, 1, m.Location.Floor)
}
