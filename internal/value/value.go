// Package value implements the engine's dynamically typed Value, the
// currency passed between scripts, ability argument maps, and the wire
// protocol.
package value

import (
	"fmt"
	"sort"
)

// Kind tags the variant carried by a Value.
type Kind uint8

const (
	KindUnit Kind = iota
	KindBoolean
	KindInteger
	KindNumber
	KindString
	KindTable
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "unit"
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindTable:
		return "table"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Pair is a single table entry; kept as a slice of pairs rather than a
// map so keys may themselves be non-comparable Values (tables).
type Pair struct {
	Key   Value
	Value Value
}

// Value is a tagged union: unit, boolean, integer, number, string, a
// heterogeneous table of (Value,Value) pairs, or an ordered sequence.
// Only one of the typed fields is meaningful for a given Kind.
type Value struct {
	kind Kind
	b    bool
	i    int64
	n    float64
	s    string
	pair []Pair
	seq  []Value
}

// Unit returns the unit value.
func Unit() Value { return Value{kind: KindUnit} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBoolean, b: b} }

// Int wraps an integer.
func Int(i int64) Value { return Value{kind: KindInteger, i: i} }

// Num wraps a floating point number.
func Num(n float64) Value { return Value{kind: KindNumber, n: n} }

// Str wraps a string.
func Str(s string) Value { return Value{kind: KindString, s: s} }

// Table wraps a heterogeneous (Value,Value) table. The slice is copied
// defensively so later caller mutation cannot alias engine state.
func Table(pairs []Pair) Value {
	cp := make([]Pair, len(pairs))
	copy(cp, pairs)
	return Value{kind: KindTable, pair: cp}
}

// Sequence wraps an ordered list of Values.
func Sequence(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindSequence, seq: cp}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsUnit() bool { return v.kind == KindUnit }

func (v Value) Bool() (bool, bool) {
	if v.kind != KindBoolean {
		return false, false
	}
	return v.b, true
}

func (v Value) Int() (int64, bool) {
	if v.kind != KindInteger {
		return 0, false
	}
	return v.i, true
}

func (v Value) Num() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.n, true
}

func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

func (v Value) Pairs() ([]Pair, bool) {
	if v.kind != KindTable {
		return nil, false
	}
	return v.pair, true
}

func (v Value) Items() ([]Value, bool) {
	if v.kind != KindSequence {
		return nil, false
	}
	return v.seq, true
}

// Equal performs a structural comparison, used by round-trip tests and
// by table-key lookups.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindUnit:
		return true
	case KindBoolean:
		return a.b == b.b
	case KindInteger:
		return a.i == b.i
	case KindNumber:
		return a.n == b.n
	case KindString:
		return a.s == b.s
	case KindSequence:
		if len(a.seq) != len(b.seq) {
			return false
		}
		for i := range a.seq {
			if !Equal(a.seq[i], b.seq[i]) {
				return false
			}
		}
		return true
	case KindTable:
		if len(a.pair) != len(b.pair) {
			return false
		}
		// Order-independent: sort a stable string key for comparison.
		as := sortedPairs(a.pair)
		bs := sortedPairs(b.pair)
		for i := range as {
			if !Equal(as[i].Key, bs[i].Key) || !Equal(as[i].Value, bs[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func sortedPairs(pairs []Pair) []Pair {
	cp := make([]Pair, len(pairs))
	copy(cp, pairs)
	sort.Slice(cp, func(i, j int) bool {
		return fmt.Sprintf("%v", cp[i].Key) < fmt.Sprintf("%v", cp[j].Key)
	})
	return cp
}

// String renders a debug representation; not used for protocol framing.
func (v Value) String() string {
	switch v.kind {
	case KindUnit:
		return "unit"
	case KindBoolean:
		return fmt.Sprintf("%t", v.b)
	case KindInteger:
		return fmt.Sprintf("%d", v.i)
	case KindNumber:
		return fmt.Sprintf("%g", v.n)
	case KindString:
		return fmt.Sprintf("%q", v.s)
	case KindSequence:
		return fmt.Sprintf("%v", v.seq)
	case KindTable:
		return fmt.Sprintf("%v", v.pair)
	default:
		return "?"
	}
}
