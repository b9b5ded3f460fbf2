package client

import tea "github.com/charmbracelet/bubbletea"

// KeyMap binds every client action to the key-name strings that
// trigger it, in bubbletea's own tea.KeyMsg.String() vocabulary — the
// "upstream key-name strings of the input library" spec.md §6 requires
// the options file's controls section to use.
type KeyMap struct {
	Up, Down, Left, Right             []string
	UpLeft, UpRight, DownLeft, DownRight []string
	Wait, Attack, Cast, Help          []string
}

// DefaultKeyMap is used until an options file overrides it; it matches
// the teacher pack's vi-style navigation convention (hjkl + yubn) seen
// throughout cmd/nerd/ui, plus bubbletea's arrow-key defaults.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: []string{"up", "k"}, Down: []string{"down", "j"},
		Left: []string{"left", "h"}, Right: []string{"right", "l"},
		UpLeft: []string{"y"}, UpRight: []string{"u"},
		DownLeft: []string{"b"}, DownRight: []string{"n"},
		Wait:   []string{"."},
		Attack: []string{"a"}, Cast: []string{"c"},
		Help: []string{"?"},
	}
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// direction maps a key press to a single-tile step, per k.
func (k KeyMap) direction(msg tea.KeyMsg) (dx, dy int, ok bool) {
	name := msg.String()
	switch {
	case contains(k.Up, name):
		return 0, -1, true
	case contains(k.Down, name):
		return 0, 1, true
	case contains(k.Left, name):
		return -1, 0, true
	case contains(k.Right, name):
		return 1, 0, true
	case contains(k.UpLeft, name):
		return -1, -1, true
	case contains(k.UpRight, name):
		return 1, -1, true
	case contains(k.DownLeft, name):
		return -1, 1, true
	case contains(k.DownRight, name):
		return 1, 1, true
	case contains(k.Wait, name):
		return 0, 0, true
	}
	return 0, 0, false
}

func (k KeyMap) isAttack(msg tea.KeyMsg) bool { return contains(k.Attack, msg.String()) }
func (k KeyMap) isCast(msg tea.KeyMsg) bool   { return contains(k.Cast, msg.String()) }
func (k KeyMap) isHelp(msg tea.KeyMsg) bool   { return contains(k.Help, msg.String()) }
