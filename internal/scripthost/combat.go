package scripthost

import "strings"

// CombatFormat substitutes {noun} in template with noun — the minimal
// noun-substitution templating combat log lines use instead of a full
// expression language.
func CombatFormat(template, noun string) string {
	return strings.ReplaceAll(template, "{noun}", noun)
}

// CombatDamage declares ordinary damage against target, mitigated by
// the target's Defense stat when internal/world applies it.
func CombatDamage(rt *Runtime, target string, amount int) {
	rt.addEffect(
		pair("op", "damage"),
		pair("target", target),
		pairInt("amount", amount),
	)
}

// CombatPierce declares damage against target that bypasses Defense
// entirely, for effects that ignore armor.
func CombatPierce(rt *Runtime, target string, amount int) {
	rt.addEffect(
		pair("op", "pierce"),
		pair("target", target),
		pairInt("amount", amount),
	)
}

// CombatDeductSP declares an SP deduction against the invoking piece
// (Runtime's sandboxed "User"), the charge a spell pays before its
// effect resolves.
func CombatDeductSP(rt *Runtime, amount int) {
	rt.addEffect(
		pair("op", "deduct_sp"),
		pair("target", rt.user),
		pairInt("amount", amount),
	)
}
