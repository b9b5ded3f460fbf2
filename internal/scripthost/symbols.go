package scripthost

import (
	"reflect"

	"github.com/traefik/yaegi/interp"

	"tacticore/internal/value"
)

// symbols is the fixed set of engine types/functions an interpreted
// script may reference, registered once per interpreter in Run. Built
// by hand rather than by the yaegi extract tool, since this module
// never invokes the Go toolchain; the shape mirrors what that tool
// generates (one reflect.Value per exported identifier, a nil typed
// pointer for a type export).
var symbols = interp.Exports{
	"tacticore/internal/value/value": {
		"Unit":     reflect.ValueOf(value.Unit),
		"Bool":     reflect.ValueOf(value.Bool),
		"Int":      reflect.ValueOf(value.Int),
		"Num":      reflect.ValueOf(value.Num),
		"Str":      reflect.ValueOf(value.Str),
		"Table":    reflect.ValueOf(value.Table),
		"Sequence": reflect.ValueOf(value.Sequence),
		"Equal":    reflect.ValueOf(value.Equal),

		"Value": reflect.ValueOf((*value.Value)(nil)),
		"Pair":  reflect.ValueOf((*value.Pair)(nil)),
		"Kind":  reflect.ValueOf((*value.Kind)(nil)),
	},
	"tacticore/internal/scripthost/scripthost": {
		"Runtime": reflect.ValueOf((*Runtime)(nil)),
	},
	"tacticore/internal/scripthost/combat/combat": {
		"Format":   reflect.ValueOf(CombatFormat),
		"Damage":   reflect.ValueOf(CombatDamage),
		"Pierce":   reflect.ValueOf(CombatPierce),
		"DeductSP": reflect.ValueOf(CombatDeductSP),
	},
	"tacticore/internal/scripthost/world/world": {
		"Characters":       reflect.ValueOf(WorldCharacters),
		"CharacterAt":      reflect.ValueOf(WorldCharacterAt),
		"CharactersWithin": reflect.ValueOf(WorldCharactersWithin),
		"AttachComponent":  reflect.ValueOf(WorldAttachComponent),
		"DetachComponent":  reflect.ValueOf(WorldDetachComponent),
		"Spawn":            reflect.ValueOf(WorldSpawn),
		"SendMessage":      reflect.ValueOf(WorldSendMessage),
	},
	"tacticore/internal/scripthost/resources/resources": {
		"HasAttack": reflect.ValueOf(ResourcesHasAttack),
		"HasSpell":  reflect.ValueOf(ResourcesHasSpell),
	},
}
