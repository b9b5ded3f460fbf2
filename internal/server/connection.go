package server

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/google/uuid"

	"tacticore/internal/protocol"
)

// handleConnection owns one accepted net.Conn for its lifetime: it
// authenticates the peer, assigns it a party slot if one is free, runs
// its writer goroutine, and forwards every subsequent packet to inbound
// for the main loop to dispatch. It never touches World directly.
func (s *Server) handleConnection(ctx context.Context, conn net.Conn, inbound chan<- inboundPacket) {
	defer conn.Close()

	stream := protocol.NewPacketStream(conn)
	client := newClient(uuid.NewString(), conn.RemoteAddr().String())
	s.Party.Add(client)

	done := make(chan struct{})
	go s.writeLoop(stream, client, done)
	go func() {
		<-client.closed
		conn.Close()
	}()
	defer func() {
		client.close()
		<-done
		s.disconnect(client)
	}()

	for {
		pkt, err := stream.ReadClient()
		if err != nil {
			if !errors.Is(err, io.EOF) && s.log != nil {
				s.log.Infow("client read failed", "client", client.ID, "error", err)
			}
			return
		}

		if pkt.Kind == protocol.KindAuthenticate {
			reply := make(chan struct{})
			select {
			case s.authReq <- authRequest{client: client, pkt: pkt, reply: reply}:
			case <-ctx.Done():
				return
			}
			select {
			case <-reply:
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case inbound <- inboundPacket{ClientID: client.ID, Packet: pkt}:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) writeLoop(stream *protocol.PacketStream, client *Client, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case pkt := <-client.outbound:
			if err := stream.WriteServer(pkt); err != nil {
				client.close()
				return
			}
		case <-client.closed:
			return
		}
	}
}

