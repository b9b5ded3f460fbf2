// Package geometry implements the engine's spatial model: an
// infinite chunked tile map and the Dijkstra distance field used for
// pathing and threat-range queries over it.
package geometry

// Tile is the terrain at a single map cell.
type Tile uint8

const (
	// Floor is open, walkable terrain.
	Floor Tile = iota
	// Wall blocks movement and line of sight.
	Wall
	// Exit triggers a floor transition when a piece steps onto it and
	// confirms (see internal/world).
	Exit
)

func (t Tile) Passable() bool {
	return t == Floor || t == Exit
}

// chunkSize is the edge length of a map chunk in tiles.
const chunkSize = 16

// ChunkID identifies one 16x16 chunk of the infinite map.
type ChunkID struct {
	X, Y int
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m != 0 && ((a < 0) != (b < 0)) {
		m += b
	}
	return m
}

func chunkIDFor(x, y int) ChunkID {
	return ChunkID{X: floorDiv(x, chunkSize), Y: floorDiv(y, chunkSize)}
}

type chunk struct {
	tiles [chunkSize * chunkSize]Tile
}

func (c *chunk) at(localX, localY int) Tile {
	return c.tiles[localY*chunkSize+localX]
}

func (c *chunk) set(localX, localY int, t Tile) {
	c.tiles[localY*chunkSize+localX] = t
}

// Map is an infinite tile surface made of sparse 16x16 chunks. A chunk
// that has never been written reads back as impassable, so unexplored
// territory never appears walkable by default.
type Map struct {
	chunks map[ChunkID]*chunk
}

// NewMap returns an empty map; every tile reads as Wall until set.
func NewMap() *Map {
	return &Map{chunks: make(map[ChunkID]*chunk)}
}

// At returns the tile at (x, y). Absent chunks read as Wall.
func (m *Map) At(x, y int) Tile {
	id := chunkIDFor(x, y)
	c, ok := m.chunks[id]
	if !ok {
		return Wall
	}
	return c.at(floorMod(x, chunkSize), floorMod(y, chunkSize))
}

// Set writes a tile at (x, y), allocating its chunk on first use.
func (m *Map) Set(x, y int, t Tile) {
	id := chunkIDFor(x, y)
	c, ok := m.chunks[id]
	if !ok {
		c = &chunk{}
		for i := range c.tiles {
			c.tiles[i] = Wall
		}
		m.chunks[id] = c
	}
	c.set(floorMod(x, chunkSize), floorMod(y, chunkSize), t)
}

// Passable reports whether (x, y) can be moved into.
func (m *Map) Passable(x, y int) bool {
	return m.At(x, y).Passable()
}

// ChunkCount returns the number of allocated chunks, mostly useful for
// tests and diagnostics.
func (m *Map) ChunkCount() int {
	return len(m.chunks)
}

// Point is an integer map coordinate.
type Point struct {
	X, Y int
}

// Neighbors4 returns the four orthogonally adjacent points to p.
func Neighbors4(p Point) [4]Point {
	return [4]Point{
		{p.X + 1, p.Y},
		{p.X - 1, p.Y},
		{p.X, p.Y + 1},
		{p.X, p.Y - 1},
	}
}

// Neighbors8 returns the eight orthogonally and diagonally adjacent
// points to p, matching the engine's eight-direction movement model.
func Neighbors8(p Point) [8]Point {
	return [8]Point{
		{p.X + 1, p.Y},
		{p.X - 1, p.Y},
		{p.X, p.Y + 1},
		{p.X, p.Y - 1},
		{p.X + 1, p.Y + 1},
		{p.X + 1, p.Y - 1},
		{p.X - 1, p.Y + 1},
		{p.X - 1, p.Y - 1},
	}
}
