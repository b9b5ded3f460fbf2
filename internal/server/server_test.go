package server_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"tacticore/internal/ability"
	"tacticore/internal/character"
	"tacticore/internal/console"
	"tacticore/internal/geometry"
	"tacticore/internal/protocol"
	"tacticore/internal/resource"
	"tacticore/internal/server"
	"tacticore/internal/value"
	"tacticore/internal/world"
)

type fakeHost struct{}

func (fakeHost) Run(script string, sandbox map[string]value.Value) (ability.Coroutine, ability.Outcome, error) {
	return nil, ability.Outcome{}, nil
}

func startTestServer(t *testing.T, blueprint ...world.PartyMember) (*server.Server, string) {
	t.Helper()
	reg := &resource.Registry{
		Sheets: map[string]character.Sheet{
			"hero": {Stats: character.Stats{Heart: 20, Soul: 5}, Speed: 5},
		},
	}
	m, err := world.NewManager(reg, fakeHost{}, console.New(), blueprint)
	require.NoError(t, err)
	m.CurrentFloor().Tiles.Set(1, 0, geometry.Floor)

	srv := server.New("test-instance", m, reg, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return srv, ln.Addr().String()
}

func dial(t *testing.T, addr string) *protocol.PacketStream {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return protocol.NewPacketStream(conn)
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestAuthenticateAssignsOwnedPieceAndRegisters(t *testing.T) {
	_, addr := startTestServer(t, world.PartyMember{Sheet: "hero"})
	stream := dial(t, addr)

	require.NoError(t, stream.WriteClient(protocol.Authenticate("alice", "")))

	reg, err := stream.ReadServer()
	require.NoError(t, err)
	require.Equal(t, protocol.KindRegister, reg.Kind)
	require.NotEmpty(t, reg.ClientID)

	var snapshot protocol.ServerPacket
	require.Eventually(t, func() bool {
		snapshot, err = stream.ReadServer()
		return err == nil && snapshot.Kind == protocol.KindWorld
	}, 2*time.Second, 10*time.Millisecond)

	require.Len(t, snapshot.World.Pieces, 1)
	require.True(t, snapshot.World.Pieces[0].Conscious)
}

func TestSubmitActionMovesOwnedPiece(t *testing.T) {
	srv, addr := startTestServer(t, world.PartyMember{Sheet: "hero"})
	stream := dial(t, addr)

	require.NoError(t, stream.WriteClient(protocol.Authenticate("alice", "")))
	_, err := stream.ReadServer() // Register
	require.NoError(t, err)

	require.NoError(t, stream.WriteClient(protocol.SubmitAction(character.Move(1, 0))))

	require.Eventually(t, func() bool {
		p, ok := srv.World.GetPiece(srv.World.Party[0])
		return ok && p.X == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestActionFromNonOwningClientIsRejected(t *testing.T) {
	srv, addr := startTestServer(t, world.PartyMember{Sheet: "hero"})

	owner := dial(t, addr)
	require.NoError(t, owner.WriteClient(protocol.Authenticate("alice", "")))
	_, err := owner.ReadServer()
	require.NoError(t, err)

	spectator := dial(t, addr)
	require.NoError(t, spectator.WriteClient(protocol.Authenticate("bob", "")))
	_, err = spectator.ReadServer()
	require.NoError(t, err)

	require.NoError(t, spectator.WriteClient(protocol.SubmitAction(character.Move(1, 0))))

	time.Sleep(200 * time.Millisecond)
	p, ok := srv.World.GetPiece(srv.World.Party[0])
	require.True(t, ok)
	require.Equal(t, 0, p.X)
}

func TestDisconnectDemotesOwnedPieceToNPC(t *testing.T) {
	srv, addr := startTestServer(t, world.PartyMember{Sheet: "hero"})
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	stream := protocol.NewPacketStream(conn)

	require.NoError(t, stream.WriteClient(protocol.Authenticate("alice", "")))
	_, err = stream.ReadServer()
	require.NoError(t, err)

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		p, ok := srv.World.GetPiece(srv.World.Party[0])
		return ok && !p.PlayerControlled
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPingRoundTrip(t *testing.T) {
	_, addr := startTestServer(t)
	stream := dial(t, addr)

	require.NoError(t, stream.WriteClient(protocol.ClientPing(99)))
	reply, err := stream.ReadServer()
	require.NoError(t, err)
	require.Equal(t, protocol.KindServerPing, reply.Kind)
	require.EqualValues(t, 99, reply.Nonce)
}
