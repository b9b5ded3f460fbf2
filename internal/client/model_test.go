package client

import (
	"net"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"tacticore/internal/character"
	"tacticore/internal/console"
	"tacticore/internal/protocol"
)

// pipeConnection wires a Connection to an in-process net.Pipe so a test
// can play the server side of the wire protocol without a real socket.
func pipeConnection(t *testing.T) (*Connection, *protocol.PacketStream) {
	t.Helper()
	clientSide, serverSide := net.Pipe()
	t.Cleanup(func() { clientSide.Close(); serverSide.Close() })
	conn := &Connection{conn: clientSide, stream: protocol.NewPacketStream(clientSide)}
	return conn, protocol.NewPacketStream(serverSide)
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestDirectionMapping(t *testing.T) {
	cases := []struct {
		key    tea.KeyMsg
		dx, dy int
	}{
		{tea.KeyMsg{Type: tea.KeyUp}, 0, -1},
		{tea.KeyMsg{Type: tea.KeyDown}, 0, 1},
		{tea.KeyMsg{Type: tea.KeyLeft}, -1, 0},
		{tea.KeyMsg{Type: tea.KeyRight}, 1, 0},
		{runeKey('h'), -1, 0},
		{runeKey('j'), 0, 1},
		{runeKey('k'), 0, -1},
		{runeKey('l'), 1, 0},
		{runeKey('y'), -1, -1},
		{runeKey('u'), 1, -1},
		{runeKey('b'), -1, 1},
		{runeKey('n'), 1, 1},
	}
	keys := DefaultKeyMap()
	for _, c := range cases {
		dx, dy, ok := keys.direction(c.key)
		require.True(t, ok, "key %v", c.key)
		require.Equal(t, c.dx, dx)
		require.Equal(t, c.dy, dy)
	}

	_, _, ok := keys.direction(runeKey('q'))
	require.False(t, ok)
}

func TestNormalModeMoveSendsAction(t *testing.T) {
	conn, server := pipeConnection(t)
	m := New(conn)

	done := make(chan protocol.ClientPacket, 1)
	go func() {
		pkt, err := server.ReadClient()
		require.NoError(t, err)
		done <- pkt
	}()

	updated, _ := m.handleNormalKey(tea.KeyMsg{Type: tea.KeyRight})
	m = updated.(Model)
	require.Equal(t, ModeNormal, m.mode)

	select {
	case pkt := <-done:
		require.Equal(t, protocol.KindClientAction, pkt.Kind)
		require.Equal(t, character.ActionMove, pkt.Action.Kind)
		require.Equal(t, 1, pkt.Action.DX)
		require.Equal(t, 0, pkt.Action.DY)
	case <-time.After(time.Second):
		t.Fatal("server never received the move action")
	}
}

func TestHelpToggle(t *testing.T) {
	conn, _ := pipeConnection(t)
	m := New(conn)
	require.False(t, m.showHelp)

	updated, _ := m.handleNormalKey(runeKey('?'))
	m = updated.(Model)
	require.True(t, m.showHelp)
}

func TestApplyPacketUpdatesCache(t *testing.T) {
	conn, _ := pipeConnection(t)
	m := New(conn)

	m.applyPacket(protocol.ServerPacket{Kind: protocol.KindRegister, ClientID: "piece-1"})
	require.Equal(t, "piece-1", m.cache.ClientID)

	snap := protocol.Snapshot{
		LevelName: "catacombs",
		Pieces: []protocol.PieceSnapshot{
			{ID: "piece-1", Name: "hero", HP: 10, MaxHeart: 10, Alliance: 0},
		},
	}
	m.applyPacket(protocol.ServerPacket{Kind: protocol.KindWorld, World: snap})
	require.NotNil(t, m.cache.World)
	require.Equal(t, "catacombs", m.cache.World.LevelName)

	m.applyPacket(protocol.ServerPacket{Kind: protocol.KindMessage, Message: console.Message{
		Text: "a wall blocks the way", Severity: console.Unimportant,
	}})
	require.Len(t, m.cache.History, 1)
	require.Contains(t, m.cache.History[0], "a wall blocks the way")
}

func TestAttackFlowEntersTargetingThenSubmits(t *testing.T) {
	conn, server := pipeConnection(t)
	m := New(conn)

	m.applyPacket(protocol.ServerPacket{Kind: protocol.KindRegister, ClientID: "hero"})
	m.applyPacket(protocol.ServerPacket{Kind: protocol.KindWorld, World: protocol.Snapshot{
		Pieces: []protocol.PieceSnapshot{
			{ID: "hero", Name: "hero", Alliance: 0},
			{ID: "rat", Name: "rat", Alliance: 1},
		},
	}})

	updated, cmd := m.handleNormalKey(runeKey('a'))
	m = updated.(Model)
	require.Equal(t, ModeEnterRef, m.mode)
	require.NotNil(t, cmd)

	for _, r := range "slash" {
		updated, _ = m.handleRefKey(runeKey(r))
		m = updated.(Model)
	}
	updated, _ = m.handleRefKey(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	require.Equal(t, ModeTargeting, m.mode)
	require.Equal(t, "slash", m.pendingRef)

	targets := m.hostileTargets()
	require.Len(t, targets, 1)
	require.Equal(t, "rat", targets[0].ID)

	done := make(chan protocol.ClientPacket, 1)
	go func() {
		pkt, err := server.ReadClient()
		require.NoError(t, err)
		done <- pkt
	}()

	updated, _ = m.handleTargetKey(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	require.Equal(t, ModeNormal, m.mode)

	select {
	case pkt := <-done:
		require.Equal(t, protocol.KindClientAction, pkt.Kind)
		require.Equal(t, character.ActionAttack, pkt.Action.Kind)
		require.Equal(t, "slash", pkt.Action.Ref)
		target, ok := pkt.Action.Args["target"].Str()
		require.True(t, ok)
		require.Equal(t, "rat", target)
	case <-time.After(time.Second):
		t.Fatal("server never received the attack action")
	}
}

func TestEscCancelsTargeting(t *testing.T) {
	conn, _ := pipeConnection(t)
	m := New(conn)
	m.mode = ModeTargeting
	m.pendingRef = "slash"

	updated, _ := m.handleTargetKey(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	require.Equal(t, ModeNormal, m.mode)
}
