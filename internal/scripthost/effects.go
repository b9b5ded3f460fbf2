package scripthost

import "tacticore/internal/value"

// pair and pairInt build the value.Pair entries the combat/world
// library functions attach to an accumulated effect table.
func pair(key, s string) value.Pair {
	return value.Pair{Key: value.Str(key), Value: value.Str(s)}
}

func pairInt(key string, n int) value.Pair {
	return value.Pair{Key: value.Str(key), Value: value.Int(int64(n))}
}
