package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tacticore/internal/value"
)

func TestRoundTripAllVariants(t *testing.T) {
	cases := []value.Value{
		value.Unit(),
		value.Bool(true),
		value.Bool(false),
		value.Int(-42),
		value.Num(3.25),
		value.Str("hit for {amount}"),
		value.Sequence([]value.Value{value.Int(1), value.Int(2), value.Str("x")}),
		value.Table([]value.Pair{
			{Key: value.Str("x"), Value: value.Int(5)},
			{Key: value.Str("y"), Value: value.Int(6)},
		}),
	}

	for _, v := range cases {
		encoded := value.Encode(nil, v)
		decoded, rest, err := value.Decode(encoded)
		require.NoError(t, err)
		require.Empty(t, rest)
		require.True(t, value.Equal(v, decoded), "round trip mismatch for %v", v)
	}
}

func TestNestedTableRoundTrip(t *testing.T) {
	inner := value.Table([]value.Pair{{Key: value.Str("a"), Value: value.Int(1)}})
	outer := value.Sequence([]value.Value{inner, value.Str("tail")})

	encoded := value.Encode(nil, outer)
	decoded, rest, err := value.Decode(encoded)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.True(t, value.Equal(outer, decoded))
}

func TestDecodeTruncatedIsError(t *testing.T) {
	encoded := value.Encode(nil, value.Str("hello"))
	_, _, err := value.Decode(encoded[:len(encoded)-2])
	require.Error(t, err)
}
