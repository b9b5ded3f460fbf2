package ability_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tacticore/internal/ability"
	"tacticore/internal/value"
)

type fakeCoroutine struct {
	replies []value.Value
	calls   int
	results []ability.Outcome
}

func (c *fakeCoroutine) Resume(reply value.Value) (ability.Outcome, error) {
	c.replies = append(c.replies, reply)
	out := c.results[c.calls]
	c.calls++
	return out, nil
}

type fakeHost struct {
	first ability.Outcome
	coro  *fakeCoroutine
}

func (h *fakeHost) Run(script string, sandbox map[string]value.Value) (ability.Coroutine, ability.Outcome, error) {
	return h.coro, h.first, nil
}

func TestGatherInputNoYield(t *testing.T) {
	host := &fakeHost{first: ability.Outcome{Result: map[string]value.Value{"target": value.Int(5)}}}
	partial, result, err := ability.GatherInput(host, ability.InlineScript("return {}"), nil, nil)
	require.NoError(t, err)
	require.Nil(t, partial)
	require.Equal(t, int64(5), mustInt(t, result["target"]))
}

func TestGatherInputYieldsThenResumeCompletes(t *testing.T) {
	req := ability.CursorRequest(5, 5, 3, nil, "pick a tile")
	coro := &fakeCoroutine{
		results: []ability.Outcome{
			{Result: map[string]value.Value{"target": value.Int(42)}},
		},
	}
	host := &fakeHost{first: ability.Outcome{Request: &req}, coro: coro}

	partial, result, err := ability.GatherInput(host, ability.InlineScript("..."), nil, nil)
	require.NoError(t, err)
	require.Nil(t, result)
	require.NotNil(t, partial)
	require.Equal(t, ability.RequestCursor, partial.Request.Kind)

	partial2, result2, err := ability.ResumeInput(partial, value.Int(6))
	require.NoError(t, err)
	require.Nil(t, partial2)
	require.Equal(t, int64(42), mustInt(t, result2["target"]))
}

func TestApplyEffectRejectsMidResolutionYield(t *testing.T) {
	req := ability.PromptRequest("are you sure?")
	host := &fakeHost{first: ability.Outcome{Request: &req}}
	_, err := ability.ApplyEffect(host, ability.InlineScript("..."), nil, nil)
	require.Error(t, err)
}

func TestScriptContentsInlineVsPath(t *testing.T) {
	inline := ability.InlineScript("return 1")
	s, err := inline.Contents(nil)
	require.NoError(t, err)
	require.Equal(t, "return 1", s)

	path := ability.PathScript("attacks/slash")
	_, err = path.Contents(map[string]string{"attacks/slash": "return 2"})
	require.NoError(t, err)

	_, err = path.Contents(nil)
	require.Error(t, err)
}

func TestSpellCastableBySP(t *testing.T) {
	s := ability.Spell{Level: 3}
	require.False(t, s.CastableBySP(2))
	require.True(t, s.CastableBySP(3))
}

func mustInt(t *testing.T, v value.Value) int64 {
	t.Helper()
	i, ok := v.Int()
	require.True(t, ok)
	return i
}
