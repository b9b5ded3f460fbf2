// Package client implements the terminal reference client of spec.md
// §4.11: a World mirror cache, a console history, and a bubbletea
// input-mode state machine that turns key presses into Action packets.
package client

import "tacticore/internal/protocol"

// Cache holds everything the client remembers about a running session.
// It is only ever touched from the bubbletea update loop (spec.md §5's
// "single-threaded render/input loop" — the world cache and console are
// owned by the main loop"), so it carries no locking of its own.
type Cache struct {
	// World is nil until the first World packet arrives, per spec.md
	// §4.11 ("None until first World packet arrives").
	World *protocol.Snapshot

	// History mirrors every Message packet received, oldest first.
	History []string

	ClientID string
}

// NewCache returns an empty cache awaiting its first World snapshot.
func NewCache() *Cache {
	return &Cache{}
}

// ApplyWorld replaces the cached World wholesale. There is no merge or
// diffing: per spec.md §4.11, "on any unexpected divergence the
// server's next World is treated as the new ground truth — the client
// never argues."
func (c *Cache) ApplyWorld(snapshot protocol.Snapshot) {
	c.World = &snapshot
}

// ApplyMessage appends one rendered console line to the mirrored
// history.
func (c *Cache) ApplyMessage(line string) {
	c.History = append(c.History, line)
}

// Piece looks up a cached piece by id, returning false if no World
// snapshot has arrived yet or the id is not on the current floor.
func (c *Cache) Piece(id string) (protocol.PieceSnapshot, bool) {
	if c.World == nil {
		return protocol.PieceSnapshot{}, false
	}
	for _, p := range c.World.Pieces {
		if p.ID == id {
			return p, true
		}
	}
	return protocol.PieceSnapshot{}, false
}

// Owned returns the piece this client currently controls, identified by
// the server's Register packet. Returns false before registration or if
// the owned id isn't a party member (a pure spectator).
func (c *Cache) Owned(clientPieceID string) (protocol.PieceSnapshot, bool) {
	if clientPieceID == "" {
		return protocol.PieceSnapshot{}, false
	}
	return c.Piece(clientPieceID)
}
