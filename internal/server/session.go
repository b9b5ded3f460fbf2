// Package server implements the authoritative session loop of
// spec.md §4.10: accept connections, authenticate clients, and drive a
// single world.Manager on one cooperative main loop while client
// readers/writers run on their own goroutines.
package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tacticore/internal/ability"
	"tacticore/internal/character"
	"tacticore/internal/console"
	"tacticore/internal/consider"
	"tacticore/internal/geometry"
	"tacticore/internal/instancedb"
	"tacticore/internal/protocol"
	"tacticore/internal/resource"
	"tacticore/internal/value"
	"tacticore/internal/world"
)

// tickInterval bounds how long the main loop waits between iterations
// when no inbound packet arrives, the short sleep for time advancement
// spec.md §4.10 multiplexes over.
const tickInterval = 50 * time.Millisecond

// Server owns one running instance: its world, its connected clients,
// and the main loop that is the only goroutine ever allowed to mutate
// World.
type Server struct {
	Instance  string
	World     *world.Manager
	Console   *console.Console
	Resources *resource.Registry
	Party     *ClientParty

	// Registry persists this instance's bookkeeping row across process
	// restarts (id, seed, last-active, client count), backing an
	// eventual Instantiate/Route listing; nil when the server runs
	// without one (every unit test, any caller that hasn't opened a
	// registry file).
	Registry *instancedb.Registry

	log *zap.SugaredLogger

	consoleCursor int

	// demote carries piece ids whose owning connection dropped, so the
	// PlayerControlled flip happens on the main loop rather than the
	// connection goroutine that noticed the disconnect — every mutation
	// of World happens on one goroutine, per spec.md §5.
	demote chan character.PieceID

	// authReq carries handshake requests from connection goroutines to
	// the main loop, which is the only goroutine allowed to read or
	// write World.Party / a piece's PlayerControlled flag.
	authReq chan authRequest
}

// authRequest is one Authenticate packet waiting to be processed by the
// main loop; reply is closed once client has been updated in place.
type authRequest struct {
	client *Client
	pkt    protocol.ClientPacket
	reply  chan struct{}
}

// New builds a Server around an already-constructed world.Manager.
func New(instanceID string, w *world.Manager, resources *resource.Registry, log *zap.SugaredLogger) *Server {
	return &Server{
		Instance:  instanceID,
		World:     w,
		Console:   w.Console,
		Resources: resources,
		Party:     newClientParty(),
		log:       log,
		demote:    make(chan character.PieceID, 64),
		authReq:   make(chan authRequest),
	}
}

// WithRegistry attaches an instance registry the main loop touches
// once per tick; returns s for chaining at construction time.
func (s *Server) WithRegistry(reg *instancedb.Registry) *Server {
	s.Registry = reg
	return s
}

type inboundPacket struct {
	ClientID string
	Packet   protocol.ClientPacket
}

// Listen binds addr and serves on it until ctx is canceled or either the
// accept loop or the main loop fails.
func (s *Server) Listen(ctx context.Context, addr string) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the accept loop and main loop over an already-bound
// listener, until ctx is canceled or either fails. Split out from
// Listen so callers (and tests) that need the bound address up front
// can create the listener themselves, e.g. with "127.0.0.1:0".
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()

	inbound := make(chan inboundPacket, 256)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.acceptLoop(gctx, ln, inbound) })
	g.Go(func() error { return s.mainLoop(gctx, inbound) })
	go func() {
		<-gctx.Done()
		ln.Close()
	}()

	return g.Wait()
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener, inbound chan<- inboundPacket) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("server: accept: %w", err)
		}
		go s.handleConnection(ctx, conn, inbound)
	}
}

// mainLoop is the single cooperative task that owns World, per
// spec.md §5's "all mutations of world state happen on the main loop."
// It multiplexes over inbound client packets and a short time-advance
// tick, and after each wakeup pumps the world until no more progress is
// possible without external input, then broadcasts whatever changed.
func (s *Server) mainLoop(ctx context.Context, inbound <-chan inboundPacket) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case pkt := <-inbound:
			s.dispatch(pkt)
		case id := <-s.demote:
			if piece, ok := s.World.GetPiece(id); ok {
				piece.PlayerControlled = false
			}
		case req := <-s.authReq:
			s.processAuth(req)
		case <-ticker.C:
			s.touchInstance()
		}

		s.advanceWorld()
		s.broadcast()
	}
}

// touchInstance records this process's liveness and current client
// count in the instance registry, a no-op when none is attached.
func (s *Server) touchInstance() {
	if s.Registry == nil {
		return
	}
	if err := s.Registry.Touch(s.Instance, len(s.Party.All())); err != nil && s.log != nil {
		s.log.Warnw("instance registry touch failed", "instance", s.Instance, "error", err)
	}
}

// processAuth runs on the main loop: it records the handshake fields,
// claims a free party slot if one exists, and flips the claimed piece's
// PlayerControlled flag — the only part of authentication that touches
// World, hence the round trip through authReq.
func (s *Server) processAuth(req authRequest) {
	defer close(req.reply)

	client := req.client
	client.Authenticated = true
	client.Authentication = Authentication{Username: req.pkt.Username, RoutingHint: req.pkt.RoutingHint}

	if slot, id, ok := s.claimSlot(client.ID); ok {
		client.HasOwned = true
		client.Owned = id
		client.slot = slot
		if piece, ok := s.World.GetPiece(id); ok {
			piece.PlayerControlled = true
		}
	}

	client.RequestedWorld = true
	client.Send(protocol.Register(client.ID))
	if s.log != nil {
		s.log.Infow("client authenticated", "client", client.ID, "username", client.Authentication.Username)
	}
}

// claimSlot assigns clientID the first party slot not already owned by
// a connected client. Only called from processAuth, on the main loop.
func (s *Server) claimSlot(clientID string) (slot int, id character.PieceID, ok bool) {
	claimed := map[int]bool{}
	for _, c := range s.Party.All() {
		if c.HasOwned && c.ID != clientID {
			claimed[c.slot] = true
		}
	}
	for i, pid := range s.World.Party {
		if !claimed[i] {
			return i, pid, true
		}
	}
	return 0, character.PieceID{}, false
}

func (s *Server) dispatch(pkt inboundPacket) {
	client, ok := s.Party.Get(pkt.ClientID)
	if !ok {
		return
	}
	switch pkt.Packet.Kind {
	case protocol.KindClientPing:
		client.Send(protocol.ServerPing(pkt.Packet.Nonce))
	case protocol.KindInstantiate, protocol.KindRoute:
		// Single-instance sessions have nothing to route between;
		// treat both as "send me the current world."
		client.RequestedWorld = true
	case protocol.KindClientAction:
		s.handleAction(client, pkt.Packet.Action)
	}
}

// handleAction enforces the authority rule of spec.md §4.10: the
// submitting client must own the piece the scheduler is actually
// waiting on. A rejected action is logged and the client is re-sent the
// current world to force a resync, per spec.md §7.
func (s *Server) handleAction(client *Client, action character.Action) {
	awaited, ok := s.World.AwaitingActionFrom()
	if !ok || !client.HasOwned || awaited != client.Owned {
		if s.log != nil {
			s.log.Warnw("action rejected by authority rule", "client", client.ID)
		}
		client.RequestedWorld = true
		return
	}
	if err := s.World.SubmitAction(client.Owned, action); err != nil {
		if s.log != nil {
			s.log.Warnw("action application failed", "client", client.ID, "error", err)
		}
	}
	client.RequestedWorld = true
}

// advanceWorld pumps the scheduler until it reports no more progress is
// possible without external input (a pending AwaitingAction or a
// suspended AwaitingInput), running deliberation for every NPC turn
// along the way.
func (s *Server) advanceWorld() {
	for {
		progressed, err := s.World.Pump()
		if err != nil {
			if s.log != nil {
				s.log.Errorw("world pump failed", "error", err)
			}
			return
		}
		if !progressed {
			break
		}
		if s.World.State() == "deliberating" {
			if err := s.World.Deliberate(s.decide); err != nil && s.log != nil {
				s.log.Errorw("deliberation failed", "error", err)
			}
		}
	}

	// No packet kind yet exists for forwarding an InputRequest to a
	// client and relaying its reply (see DESIGN.md's internal/server
	// entry); abilities that suspend mid-resolution are resumed with a
	// unit reply rather than stalling the scheduler indefinitely.
	if s.World.State() == "awaiting_input" {
		if _, _, ok := s.World.AwaitingInputFrom(); ok {
			if err := s.World.ResumeInput(value.Unit()); err != nil && s.log != nil {
				s.log.Errorw("auto-resuming suspended ability input failed", "error", err)
			}
		}
	}
}

// decide implements the deliberation procedure for one NPC/orphaned
// turn: gather every scripted consideration for the piece's attacks and
// spells, take the highest-scoring one that clears consider.FloorScore,
// and otherwise fall back to stepping toward the nearest hostile piece.
func (s *Server) decide(piece *character.Piece) (character.Action, error) {
	attacks := map[string]ability.Attack{}
	for _, ref := range piece.Sheet.Attacks {
		if a, err := s.Resources.GetAttack(ref); err == nil {
			attacks[ref] = a
		}
	}
	spells := map[string]ability.Spell{}
	for _, ref := range piece.Sheet.Spells {
		if sp, err := s.Resources.GetSpell(ref); err == nil {
			spells[ref] = sp
		}
	}

	characters, targets := s.World.CharacterSnapshot()
	sandbox := map[string]value.Value{"User": value.Str(piece.ID.String()), "Characters": characters}
	considerations, err := consider.Gather(s.World.Host, piece, attacks, spells, s.World.ScriptCache, sandbox, targets)
	if err != nil {
		return character.Action{}, err
	}

	best, bestScore := -1, consider.FloorScore
	for i, c := range considerations {
		if c.Heuristic.Score > bestScore {
			best, bestScore = i, c.Heuristic.Score
		}
	}
	if best >= 0 {
		c := considerations[best]
		args := map[string]value.Value{"target": value.Str(c.Target.String())}
		if c.Kind == consider.OutcomeAttack {
			return character.Attack(c.Ref, args), nil
		}
		return character.Cast(c.Ref, args), nil
	}

	return consider.DefaultAction(s.hostileField(piece), piece.X, piece.Y), nil
}

// hostileField radius is generous enough to cover most floor layouts
// without exploring the whole infinite map.
const hostileFieldRadius = 32

// hostileField builds a Dijkstra field seeded at every piece hostile to
// piece's alliance, letting DefaultAction step piece downhill toward
// the nearest one.
func (s *Server) hostileField(piece *character.Piece) *geometry.Field {
	floor := s.World.CurrentFloor()

	var seeds []geometry.Point
	floor.Pieces.All(func(_ character.PieceID, other *character.Piece) {
		if other.Alliance != piece.Alliance {
			seeds = append(seeds, geometry.Point{X: other.X, Y: other.Y})
		}
	})

	originX, originY := piece.X-hostileFieldRadius, piece.Y-hostileFieldRadius
	size := hostileFieldRadius*2 + 1
	return geometry.Explore(originX, originY, size, size, seeds, func(x, y int) (uint16, bool) {
		return 1, floor.Tiles.Passable(x, y)
	})
}

// broadcast sends a fresh World snapshot to every client that asked for
// one since the last broadcast, and replays any console messages
// appended since the last broadcast to every connected client.
func (s *Server) broadcast() {
	messages := s.Console.Since(s.consoleCursor)
	s.consoleCursor += len(messages)

	for _, client := range s.Party.All() {
		for _, msg := range messages {
			if !client.Send(protocol.MessagePacket(msg)) {
				s.disconnect(client)
				break
			}
		}
		if client.RequestedWorld {
			if !client.Send(protocol.World(s.snapshot())) {
				s.disconnect(client)
				continue
			}
			client.RequestedWorld = false
		}
	}
}

func (s *Server) snapshot() protocol.Snapshot {
	floor := s.World.CurrentFloor()
	snap := protocol.Snapshot{
		LevelName: s.World.Location.Level,
		Floor:     int32(s.World.Location.Floor),
	}
	floor.Pieces.All(func(id character.PieceID, p *character.Piece) {
		snap.Pieces = append(snap.Pieces, protocol.PieceSnapshot{
			ID:        id.String(),
			Name:      p.Sheet.Nouns.Name,
			X:         int32(p.X),
			Y:         int32(p.Y),
			HP:        p.HP,
			SP:        p.SP,
			MaxHeart:  p.Sheet.Stats.Heart,
			MaxSoul:   p.Sheet.Stats.Soul,
			Alliance:  uint8(p.Alliance),
			Accent:    [4]uint8{p.Sheet.Accent.R, p.Sheet.Accent.G, p.Sheet.Accent.B, p.Sheet.Accent.A},
			Conscious: p.Conscious(),
		})
	})
	for _, id := range s.World.Party {
		snap.Party = append(snap.Party, id.String())
	}
	return snap
}

// disconnect may be called from a connection goroutine (on read/write
// failure) or from the main loop (on a full outbound queue); it never
// touches World itself, only queuing the owned-piece demotion for the
// main loop to apply — see the demote field's doc comment.
func (s *Server) disconnect(client *Client) {
	client.close()
	s.Party.Remove(client.ID)
	if client.HasOwned {
		select {
		case s.demote <- client.Owned:
		default:
		}
	}
}
