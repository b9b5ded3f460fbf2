package ability

import (
	"tacticore/internal/expr"

	"gopkg.in/yaml.v3"
)

// Attack is a melee "bump attack": simpler than a Spell because it has
// no cost or skillset gating, only a magnitude and a use-time cost.
type Attack struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Magnitude   expr.Expression `yaml:"magnitude"`
	OnUse       Script          `yaml:"on_use"`
	OnInput     Script          `yaml:"on_input"`
	OnConsider  *Script         `yaml:"on_consider,omitempty"`
	UseTime     uint32          `yaml:"use_time"`
}

// Energy is one axis of a spell's skillset gating.
type Energy uint8

const (
	Positive Energy = iota
	Negative
)

// Harmony is the other axis of a spell's skillset gating.
type Harmony uint8

const (
	Chaos Harmony = iota
	Order
)

// Affinity grades how easily a character can cast a given spell. Only
// the grades are defined here; no code in this module derives an
// Affinity from a spell's Energy/Harmony.
type Affinity uint8

const (
	Uncastable Affinity = iota
	Weak
	Average
	Strong
)

// Spell is a magical ability: gated by the caster's skillset affinity
// and SP cost (its Level), with a predicate script allowed to veto
// casting beyond the SP check.
type Spell struct {
	Name       string  `yaml:"name"`
	Icon       string  `yaml:"icon"`
	Energy     Energy  `yaml:"energy"`
	Harmony    Harmony `yaml:"harmony"`
	OnCast     Script  `yaml:"on_cast"`
	OnInput    Script  `yaml:"on_input"`
	Castable   *Script `yaml:"castable,omitempty"`
	OnConsider *Script `yaml:"on_consider,omitempty"`
	Level      uint8   `yaml:"level"`
}

// CastableBySP reports whether the caster has enough SP for the
// spell's level cost; castable's optional predicate script may impose
// further restrictions that only the pipeline (with sandbox access)
// can evaluate.
func (s Spell) CastableBySP(currentSP uint32) bool {
	return currentSP >= uint32(s.Level)
}

// UnmarshalYAML decodes the Energy scalar ("positive"/"negative").
func (e *Energy) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch s {
	case "positive":
		*e = Positive
	case "negative":
		*e = Negative
	default:
		return &unknownEnumValue{field: "energy", value: s}
	}
	return nil
}

// UnmarshalYAML decodes the Harmony scalar ("chaos"/"order").
func (h *Harmony) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch s {
	case "chaos":
		*h = Chaos
	case "order":
		*h = Order
	default:
		return &unknownEnumValue{field: "harmony", value: s}
	}
	return nil
}

type unknownEnumValue struct {
	field, value string
}

func (e *unknownEnumValue) Error() string {
	return "ability: unrecognized " + e.field + " value " + e.value
}
