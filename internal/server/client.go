package server

import (
	"tacticore/internal/character"
	"tacticore/internal/protocol"
)

// Authentication records the handshake fields supplied by a client's
// Authenticate packet, kept for log/console attribution (the original's
// `info!(username=..., "authenticated")` line).
type Authentication struct {
	Username    string
	RoutingHint string
}

// Client is one connected peer: its wire stream, handshake state, and
// the single party piece (if any) it currently has authority over. A
// client with no owned piece is a spectator — it still receives World
// and Message packets but may never submit an Action the authority
// rule will accept.
type Client struct {
	ID   string
	Addr string

	Authenticated  bool
	Authentication Authentication

	Owned    character.PieceID
	HasOwned bool
	slot     int

	RequestedWorld bool

	outbound chan protocol.ServerPacket
	closed   chan struct{}
}

func newClient(id, addr string) *Client {
	return &Client{
		ID:       id,
		Addr:     addr,
		slot:     -1,
		outbound: make(chan protocol.ServerPacket, 64),
		closed:   make(chan struct{}),
	}
}

// Send enqueues a packet for this client's writer goroutine. It reports
// false if the client's outbound queue is full — a sustained backlog
// means the peer isn't draining its connection, which the caller treats
// as grounds to disconnect it (spec.md §7's IoError: "disconnects the
// client; the server keeps running").
func (c *Client) Send(p protocol.ServerPacket) bool {
	select {
	case c.outbound <- p:
		return true
	case <-c.closed:
		return false
	default:
		return false
	}
}

func (c *Client) close() {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
}
