// Package vault parses hand-authored room layouts ("vaults") from
// plain text and stamps them into a geometry.Map at a given offset.
package vault

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"tacticore/internal/geometry"
)

// Vault is a parsed rectangular tile layout: the widest line in the
// source text sets the width, and every row is padded to it with Floor,
// matching the original tool's rule that vaults don't have to be
// perfectly square on disk.
type Vault struct {
	Tiles  []geometry.Tile
	Width  int
	Height int
}

// At returns the tile at local coordinates (x, y) within the vault.
func (v Vault) At(x, y int) geometry.Tile {
	if x < 0 || y < 0 || x >= v.Width || y >= v.Height {
		return geometry.Wall
	}
	return v.Tiles[y*v.Width+x]
}

// tileFor maps one source character to a tile. Unrecognized characters
// are an authoring error, not a silent default, so Parse rejects them.
func tileFor(c rune) (geometry.Tile, error) {
	switch c {
	case ' ', '.':
		return geometry.Floor, nil
	case 'x', 'X':
		return geometry.Wall, nil
	case 'e', 'E':
		return geometry.Exit, nil
	default:
		return 0, fmt.Errorf("vault: unrecognized tile character %q", c)
	}
}

// Parse reads a vault layout from r.
func Parse(r io.Reader) (Vault, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	width := 0
	for scanner.Scan() {
		line := scanner.Text()
		lines = append(lines, line)
		if len(line) > width {
			width = len(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return Vault{}, fmt.Errorf("vault: read: %w", err)
	}

	tiles := make([]geometry.Tile, 0, width*len(lines))
	for _, line := range lines {
		col := 0
		for _, c := range line {
			t, err := tileFor(c)
			if err != nil {
				return Vault{}, err
			}
			tiles = append(tiles, t)
			col++
		}
		for ; col < width; col++ {
			tiles = append(tiles, geometry.Floor)
		}
	}

	return Vault{Tiles: tiles, Width: width, Height: len(lines)}, nil
}

// Open reads and parses a vault layout from a file path.
func Open(path string) (Vault, error) {
	f, err := os.Open(path)
	if err != nil {
		return Vault{}, fmt.Errorf("vault: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Stamp writes v's tiles into m with its top-left corner at (originX,
// originY).
func Stamp(m *geometry.Map, v Vault, originX, originY int) {
	for y := 0; y < v.Height; y++ {
		for x := 0; x < v.Width; x++ {
			m.Set(originX+x, originY+y, v.At(x, y))
		}
	}
}
