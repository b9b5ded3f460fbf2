package nouns_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tacticore/internal/nouns"
)

func TestReplaceNounsPlural(t *testing.T) {
	luvui := nouns.Nouns{Name: "Luvui", Pronouns: nouns.Neutral}
	out := nouns.ReplaceNouns("{Address} move{s} toward {them}.", luvui)
	require.Equal(t, "Luvui move toward them.", out)
}

func TestReplaceNounsSingular(t *testing.T) {
	aris := nouns.Nouns{Name: "Aris", Pronouns: nouns.Female}
	out := nouns.ReplaceNouns("{Address} move{s} toward {their} target.", aris)
	require.Equal(t, "Aris moves toward her target.", out)
}

func TestReplacePrefixedNounsLeavesOthersAlone(t *testing.T) {
	target := nouns.Nouns{Name: "Goblin", Pronouns: nouns.Object}
	tmpl := "{Address} hits {target_them} for damage."
	out := nouns.ReplacePrefixedNouns(tmpl, "target", target)
	require.Equal(t, "{Address} hits it for damage.", out)
}

func TestIdempotentOnTemplateFreeString(t *testing.T) {
	subject := nouns.Nouns{Name: "Rock", Pronouns: nouns.Object}
	out := nouns.ReplaceNouns("nothing to replace here", subject)
	require.Equal(t, "nothing to replace here", out)
}

func TestUnknownTagLeftUntouched(t *testing.T) {
	subject := nouns.Nouns{Name: "Rock", Pronouns: nouns.Object}
	out := nouns.ReplaceNouns("{unknown} and {they}", subject)
	require.Equal(t, "{unknown} and it", out)
}
