package client

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"tacticore/internal/protocol"
)

// packetMsg wraps one ServerPacket as a tea.Msg so bubbletea's Update
// loop sees every inbound packet exactly like a key press or a window
// resize — the "incoming packets arrive on a bounded channel drained
// once per frame" scheduling model of spec.md §5, adapted to
// bubbletea's own message queue instead of a hand-rolled channel.
type packetMsg protocol.ServerPacket

// disconnectMsg reports that the read loop ended, with the error that
// ended it (nil on a clean server-initiated close).
type disconnectMsg struct{ err error }

// Connection owns the wire stream to one server instance: an
// authenticated PacketStream plus a background read loop that feeds the
// bubbletea program. Writes happen synchronously from Update, since
// PacketStream is not safe for concurrent writers and the update loop
// is already single-threaded.
type Connection struct {
	conn   net.Conn
	stream *protocol.PacketStream

	mu     sync.Mutex
	closed bool
}

// Dial opens a TCP connection to addr and sends the authentication
// handshake.
func Dial(addr, username, routingHint string) (*Connection, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", addr, err)
	}
	c := &Connection{conn: conn, stream: protocol.NewPacketStream(conn)}
	if err := c.stream.WriteClient(protocol.Authenticate(username, routingHint)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("client: send authenticate: %w", err)
	}
	return c, nil
}

// Listen runs the read loop as a tea.Cmd: bubbletea calls it once, it
// blocks for exactly one frame, and it returns the tea.Msg for that
// frame. Returning a command that re-issues itself (see model.go's
// handling of packetMsg) keeps the read loop alive for the life of the
// program without a second goroutine racing the Update loop.
func (c *Connection) Listen() tea.Cmd {
	return func() tea.Msg {
		pkt, err := c.stream.ReadServer()
		if err != nil {
			return disconnectMsg{err: readErr(err)}
		}
		return packetMsg(pkt)
	}
}

func readErr(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Send writes a ClientPacket synchronously. Failures are reported back
// to the caller rather than torn down here, so Update can decide
// whether to reconnect or surface the error in the console.
func (c *Connection) Send(p protocol.ClientPacket) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("client: connection closed")
	}
	return c.stream.WriteClient(p)
}

// Close shuts down the underlying connection, unblocking any pending
// read.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
