// Package ability implements attacks and spells: their registered
// descriptions, and the three-phase resumable pipeline that resolves
// one invocation (input gathering, effect application, scheduling).
package ability

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ScriptKind tags a Script variant.
type ScriptKind uint8

const (
	// ScriptPath names a file under the resource tree's scripts/
	// directory, read once and cached by contents.
	ScriptPath ScriptKind = iota
	// ScriptInline carries its source directly.
	ScriptInline
)

// Script is either a path reference into the script cache or an inline
// source string, mirroring the original's MaybeInline/ScriptOrInline
// split without needing a registry handle to parse one — resolution
// happens later, against a cache, via Contents.
type Script struct {
	Kind   ScriptKind
	Source string
}

// InlineScript wraps source text directly.
func InlineScript(source string) Script {
	return Script{Kind: ScriptInline, Source: source}
}

// PathScript wraps a path key into the script cache.
func PathScript(path string) Script {
	return Script{Kind: ScriptPath, Source: path}
}

// Contents resolves the script's source text. Path-kind scripts are
// looked up in cache, keyed the same way the resource registry keys its
// scripts/ directory: path relative to that directory, extension
// stripped.
func (s Script) Contents(cache map[string]string) (string, error) {
	if s.Kind == ScriptInline {
		return s.Source, nil
	}
	contents, ok := cache[s.Source]
	if !ok {
		return "", fmt.Errorf("ability: script %q not found in cache", s.Source)
	}
	return contents, nil
}

// Name returns a human-readable identity for logging: the path for a
// Path script, or "<inline>" otherwise.
func (s Script) Name() string {
	if s.Kind == ScriptInline {
		return "<inline>"
	}
	return s.Source
}

// UnmarshalYAML accepts either a bare scalar (treated as a path into
// scripts/) or a one-key mapping {inline: "..."} for embedded source.
func (s *Script) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var path string
		if err := value.Decode(&path); err != nil {
			return err
		}
		*s = PathScript(path)
		return nil
	}
	var inline struct {
		Inline string `yaml:"inline"`
	}
	if err := value.Decode(&inline); err != nil {
		return fmt.Errorf("ability: script must be a path string or {inline: ...}: %w", err)
	}
	*s = InlineScript(inline.Inline)
	return nil
}
