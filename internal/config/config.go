// Package config loads the options file of spec.md §6: a keyed
// configuration table with board/ui/controls sections. Unknown keys
// are an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the root of the options file.
type Config struct {
	Board    BoardConfig    `yaml:"board"`
	UI       UIConfig       `yaml:"ui"`
	Controls ControlsConfig `yaml:"controls"`
}

// BoardConfig is the "board" section: tile scale.
type BoardConfig struct {
	TileScale int `yaml:"tile_scale"`
}

// UIConfig is the "ui" section: pamphlet width, console height, color
// palette, typography.
type UIConfig struct {
	PamphletWidth int              `yaml:"pamphlet_width"`
	ConsoleHeight int              `yaml:"console_height"`
	Palette       PaletteConfig    `yaml:"palette"`
	Typography    TypographyConfig `yaml:"typography"`
}

// PaletteConfig holds hex colors for every severity/role the client
// renders, mirroring internal/client.Palette field-for-field so
// cmd/client's paletteFromConfig can map one onto the other without
// guessing at intent.
type PaletteConfig struct {
	Foreground string `yaml:"foreground"`
	Muted      string `yaml:"muted"`
	Border     string `yaml:"border"`
	Danger     string `yaml:"danger"`
	Important  string `yaml:"important"`
	Special    string `yaml:"special"`
	Combat     string `yaml:"combat"`
	Cursor     string `yaml:"cursor"`
	OwnedPiece string `yaml:"owned_piece"`
	EnemyPiece string `yaml:"enemy_piece"`
}

// TypographyConfig is left minimal for a terminal client (a future SDL
// client would need font path/size beyond what a terminal emulator
// controls); present because spec.md §6 names it explicitly.
type TypographyConfig struct {
	FontFamily string `yaml:"font_family"`
	FontSize   int    `yaml:"font_size"`
}

// ControlsConfig is the "controls" section: a per-action list of key
// names, in the upstream key-name strings of the input library (here,
// bubbletea's tea.KeyMsg.String() vocabulary, e.g. "up", "k", "a").
type ControlsConfig struct {
	Up        []string `yaml:"up"`
	Down      []string `yaml:"down"`
	Left      []string `yaml:"left"`
	Right     []string `yaml:"right"`
	UpLeft    []string `yaml:"up_left"`
	UpRight   []string `yaml:"up_right"`
	DownLeft  []string `yaml:"down_left"`
	DownRight []string `yaml:"down_right"`
	Wait      []string `yaml:"wait"`
	Attack    []string `yaml:"attack"`
	Cast      []string `yaml:"cast"`
	Help      []string `yaml:"help"`
}

// Default returns the configuration used when no options file exists.
func Default() *Config {
	return &Config{
		Board: BoardConfig{TileScale: 16},
		UI: UIConfig{
			PamphletWidth: 32,
			ConsoleHeight: 10,
			Palette: PaletteConfig{
				Foreground: "#f2f2f2",
				Muted:      "#6c7a89",
				Border:     "#2a3850",
				Danger:     "#e53935",
				Important:  "#FFC107",
				Special:    "#8BC34A",
				Combat:     "#e57373",
				Cursor:     "#2196F3",
				OwnedPiece: "#8BC34A",
				EnemyPiece: "#e53935",
			},
			Typography: TypographyConfig{FontFamily: "monospace", FontSize: 14},
		},
		Controls: ControlsConfig{
			Up: []string{"up", "k"}, Down: []string{"down", "j"},
			Left: []string{"left", "h"}, Right: []string{"right", "l"},
			UpLeft: []string{"y"}, UpRight: []string{"u"},
			DownLeft: []string{"b"}, DownRight: []string{"n"},
			Wait:   []string{"."},
			Attack: []string{"a"}, Cast: []string{"c"},
			Help: []string{"?"},
		},
	}
}

// Load reads the options file at path. A missing file is not an error:
// Default() is returned instead, matching the teacher's own
// file-not-found-means-defaults Load() convention. Unknown keys in an
// existing file are rejected, per spec.md §6.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating its parent directory if
// needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create directory for %s: %w", path, err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// DefaultUserDir resolves the user directory containing options.yaml
// when --user is not given.
func DefaultUserDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve user config directory: %w", err)
	}
	return filepath.Join(dir, "tacticore"), nil
}
