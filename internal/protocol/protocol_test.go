package protocol_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tacticore/internal/character"
	"tacticore/internal/console"
	"tacticore/internal/protocol"
	"tacticore/internal/value"
)

func TestClientPacketRoundTripAuthenticate(t *testing.T) {
	var buf bytes.Buffer
	p := protocol.Authenticate("alice", "instance-7")
	require.NoError(t, protocol.EncodeClient(&buf, p))

	got, err := protocol.DecodeClient(&buf)
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestClientPacketRoundTripAction(t *testing.T) {
	var buf bytes.Buffer
	action := character.Attack("slash", map[string]value.Value{"target": value.Int(3)})
	p := protocol.SubmitAction(action)
	require.NoError(t, protocol.EncodeClient(&buf, p))

	got, err := protocol.DecodeClient(&buf)
	require.NoError(t, err)
	require.Equal(t, character.ActionAttack, got.Action.Kind)
	require.Equal(t, "slash", got.Action.Ref)
	v, ok := got.Action.Args["target"].Int()
	require.True(t, ok)
	require.EqualValues(t, 3, v)
}

func TestServerPacketRoundTripMessage(t *testing.T) {
	var buf bytes.Buffer
	msg := console.Message{
		Text:      "a goblin appears",
		Severity:  console.Danger,
		Printer:   console.DialoguePrinter("narrator"),
		CreatedAt: time.Unix(1700000000, 0).UTC(),
	}
	p := protocol.MessagePacket(msg)
	require.NoError(t, protocol.EncodeServer(&buf, p))

	got, err := protocol.DecodeServer(&buf)
	require.NoError(t, err)
	require.Equal(t, msg.Text, got.Message.Text)
	require.Equal(t, msg.Severity, got.Message.Severity)
	require.Equal(t, msg.Printer, got.Message.Printer)
	require.True(t, msg.CreatedAt.Equal(got.Message.CreatedAt))
}

func TestServerPacketRoundTripWorldSnapshot(t *testing.T) {
	var buf bytes.Buffer
	snap := protocol.Snapshot{
		LevelName: "New Level",
		Floor:     0,
		Pieces: []protocol.PieceSnapshot{
			{ID: "p1", Name: "Luvui", X: 1, Y: 2, HP: 10, SP: 5, MaxHeart: 10, MaxSoul: 5, Alliance: 1, Accent: [4]uint8{1, 2, 3, 255}, Conscious: true},
		},
		Party: []string{"p1"},
	}
	p := protocol.World(snap)
	require.NoError(t, protocol.EncodeServer(&buf, p))

	got, err := protocol.DecodeServer(&buf)
	require.NoError(t, err)
	require.Equal(t, snap, got.World)
}

func TestPacketStreamRoundTripsMultipleFrames(t *testing.T) {
	var conn bytes.Buffer
	stream := protocol.NewPacketStream(&conn)

	require.NoError(t, stream.WriteClient(protocol.ClientPing(42)))
	require.NoError(t, stream.WriteClient(protocol.Instantiate()))

	first, err := stream.ReadClient()
	require.NoError(t, err)
	require.Equal(t, protocol.KindClientPing, first.Kind)
	require.EqualValues(t, 42, first.Nonce)

	second, err := stream.ReadClient()
	require.NoError(t, err)
	require.Equal(t, protocol.KindInstantiate, second.Kind)
}

func TestPacketStreamRejectsOversizedFrame(t *testing.T) {
	var conn bytes.Buffer
	// Hand-craft a length prefix bigger than MaxPacketSize.
	conn.Write([]byte{0xff, 0xff, 0xff, 0xff})
	stream := protocol.NewPacketStream(&conn)

	_, err := stream.ReadClient()
	require.Error(t, err)
}
