// Package resource implements the name-keyed registry of everything
// loaded from a resource tree on disk: sheets, attacks, spells,
// components, statuses, vaults, scripts, and texture references.
package resource

import (
	"tacticore/internal/ability"
	"tacticore/internal/character"
	"tacticore/internal/vault"
)

// ComponentSource is a component descriptor as read from a resource
// file. Its optional OnDebuff script is kept as loaded; no code in this
// module turns it into a character.DebuffScript. This package never
// runs scripts, only loads their source.
type ComponentSource struct {
	Name     string          `yaml:"name"`
	Icon     string          `yaml:"icon,omitempty"`
	Visible  bool            `yaml:"visible"`
	Duration string          `yaml:"duration"` // "rest" or "turn"
	OnDebuff *ability.Script `yaml:"on_debuff,omitempty"`
}

// StatusSource is a status effect as read from a resource file: either
// a fixed stat penalty (Static) or a magnitude-scaled script.
type StatusSource struct {
	Name     string           `yaml:"name"`
	Duration string           `yaml:"duration"`
	Static   *character.Stats `yaml:"static,omitempty"`
	OnDebuff *ability.Script  `yaml:"on_debuff,omitempty"`
}

// Registry is the full set of resources loaded from one resource tree.
// All maps are keyed by path relative to their top-level directory with
// the file extension stripped, e.g. "goblins/grunt" for
// sheets/goblins/grunt.yaml. Once returned from Load, a Registry is
// immutable and safe to share by reference across goroutines; a
// Watcher reload calls Load again for a fresh Registry rather than
// mutating one in place.
type Registry struct {
	Sheets     map[string]character.Sheet
	Attacks    map[string]ability.Attack
	Spells     map[string]ability.Spell
	Components map[string]ComponentSource
	Statuses   map[string]StatusSource
	Vaults     map[string]vault.Vault
	Scripts    map[string]string // contents, keyed by path
	Textures   map[string]string // absolute file path, keyed by path
}

func empty() *Registry {
	return &Registry{
		Sheets:     map[string]character.Sheet{},
		Attacks:    map[string]ability.Attack{},
		Spells:     map[string]ability.Spell{},
		Components: map[string]ComponentSource{},
		Statuses:   map[string]StatusSource{},
		Vaults:     map[string]vault.Vault{},
		Scripts:    map[string]string{},
		Textures:   map[string]string{},
	}
}

// ResourceKind names one of the registry's top-level directories, for
// error messages and logging.
type ResourceKind string

const (
	KindSheet     ResourceKind = "sheet"
	KindAttack    ResourceKind = "attack"
	KindSpell     ResourceKind = "spell"
	KindComponent ResourceKind = "component"
	KindStatus    ResourceKind = "status"
	KindVault     ResourceKind = "vault"
	KindScript    ResourceKind = "script"
	KindTexture   ResourceKind = "texture"
)

// NotFoundError reports a lookup of an unregistered resource key.
type NotFoundError struct {
	Kind ResourceKind
	Key  string
}

func (e *NotFoundError) Error() string {
	return "resource: " + string(e.Kind) + " " + e.Key + " not found"
}

func (r *Registry) GetSheet(key string) (character.Sheet, error) {
	v, ok := r.Sheets[key]
	if !ok {
		return character.Sheet{}, &NotFoundError{Kind: KindSheet, Key: key}
	}
	return v, nil
}

func (r *Registry) GetAttack(key string) (ability.Attack, error) {
	v, ok := r.Attacks[key]
	if !ok {
		return ability.Attack{}, &NotFoundError{Kind: KindAttack, Key: key}
	}
	return v, nil
}

func (r *Registry) GetSpell(key string) (ability.Spell, error) {
	v, ok := r.Spells[key]
	if !ok {
		return ability.Spell{}, &NotFoundError{Kind: KindSpell, Key: key}
	}
	return v, nil
}

func (r *Registry) GetVault(key string) (vault.Vault, error) {
	v, ok := r.Vaults[key]
	if !ok {
		return vault.Vault{}, &NotFoundError{Kind: KindVault, Key: key}
	}
	return v, nil
}
