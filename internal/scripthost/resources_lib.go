package scripthost

// resourceKnown reports whether ref appears in the named sandbox
// sequence ("KnownAttacks"/"KnownSpells"), the read-only registry view
// a caller populates from the acting piece's sheet.
func (rt *Runtime) resourceKnown(listKey, ref string) bool {
	items, ok := rt.Get(listKey).Items()
	if !ok {
		return false
	}
	for _, item := range items {
		if s, ok := item.Str(); ok && s == ref {
			return true
		}
	}
	return false
}

// ResourcesHasAttack reports whether the acting piece's sheet knows the
// named attack.
func ResourcesHasAttack(rt *Runtime, ref string) bool {
	return rt.resourceKnown("KnownAttacks", ref)
}

// ResourcesHasSpell reports whether the acting piece's sheet knows the
// named spell.
func ResourcesHasSpell(rt *Runtime, ref string) bool {
	return rt.resourceKnown("KnownSpells", ref)
}
