// Package protocol implements the wire format between client and
// server: a tagged-union packet taxonomy, framed as a little-endian
// u32 length prefix followed by that many payload bytes, reusing
// internal/value's binary codec for Action arguments rather than
// inventing a second encoding. Console message fields (severity
// included) are written field by field with the primitives below.
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"

	"tacticore/internal/character"
	"tacticore/internal/console"
	"tacticore/internal/value"
)

// ClientKind tags a ClientPacket variant.
type ClientKind byte

const (
	KindAuthenticate ClientKind = iota
	KindRoute
	KindInstantiate
	KindClientPing
	KindClientAction
)

// ClientPacket is one client→server message, per spec.md §4.9.
type ClientPacket struct {
	Kind ClientKind

	// Authenticate
	Username    string
	RoutingHint string

	// Route
	InstanceID string

	// KindClientPing
	Nonce uint64

	// KindClientAction
	Action character.Action
}

// Authenticate constructs the opening-handshake packet.
func Authenticate(username, routingHint string) ClientPacket {
	return ClientPacket{Kind: KindAuthenticate, Username: username, RoutingHint: routingHint}
}

// Route constructs a request to attach to a specific instance.
func Route(instanceID string) ClientPacket {
	return ClientPacket{Kind: KindRoute, InstanceID: instanceID}
}

// Instantiate constructs a request to spawn a new instance.
func Instantiate() ClientPacket { return ClientPacket{Kind: KindInstantiate} }

// ClientPing constructs a liveness probe carrying nonce for round-trip
// correlation (the original's echoed Ping token, per SPEC_FULL.md §4.6).
func ClientPing(nonce uint64) ClientPacket { return ClientPacket{Kind: KindClientPing, Nonce: nonce} }

// SubmitAction constructs a player-chosen-action packet.
func SubmitAction(action character.Action) ClientPacket {
	return ClientPacket{Kind: KindClientAction, Action: action}
}

// ServerKind tags a ServerPacket variant.
type ServerKind byte

const (
	KindRegister ServerKind = iota
	KindServerPing
	KindWorld
	KindMessage
)

// ServerPacket is one server→client message, per spec.md §4.9.
type ServerPacket struct {
	Kind ServerKind

	// Register
	ClientID string

	// KindServerPing
	Nonce uint64

	// World
	World Snapshot

	// Message
	Message console.Message
}

// Register constructs the authoritative client-id assignment packet.
func Register(clientID string) ServerPacket {
	return ServerPacket{Kind: KindRegister, ClientID: clientID}
}

// ServerPing constructs a Ping response echoing the client's nonce.
func ServerPing(nonce uint64) ServerPacket { return ServerPacket{Kind: KindServerPing, Nonce: nonce} }

// World constructs a full world-snapshot packet.
func World(snapshot Snapshot) ServerPacket { return ServerPacket{Kind: KindWorld, World: snapshot} }

// MessagePacket constructs a single console-event packet.
func MessagePacket(msg console.Message) ServerPacket {
	return ServerPacket{Kind: KindMessage, Message: msg}
}

// PieceSnapshot is the wire-serializable projection of a character.Piece
// sufficient for the client to render the board without holding a
// reference into the server's arena.
type PieceSnapshot struct {
	ID       string
	Name     string
	X, Y     int32
	HP, SP   uint32
	MaxHeart uint32
	MaxSoul  uint32
	Alliance uint8
	Accent   [4]uint8
	Conscious bool
}

// Snapshot is the wire-serializable projection of a world.Manager: the
// location, every piece on the current floor, and the party roster.
type Snapshot struct {
	LevelName string
	Floor     int32
	Pieces    []PieceSnapshot
	Party     []string
}

func writeU32(w io.Writer, n uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], n)
	_, err := w.Write(buf[:])
	return err
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func writeU64(w io.Writer, n uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], n)
	_, err := w.Write(buf[:])
	return err
}

func readU64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func writeI32(w io.Writer, n int32) error { return writeU32(w, uint32(n)) }

func readI32(r io.Reader) (int32, error) {
	u, err := readU32(r)
	return int32(u), err
}

func writeString(w io.Writer, s string) error {
	if err := writeU32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func writeBool(w io.Writer, b bool) error {
	if b {
		return writeByte(w, 1)
	}
	return writeByte(w, 0)
}

func readBool(r io.Reader) (bool, error) {
	b, err := readByte(r)
	return b != 0, err
}

func writeArgs(w io.Writer, args map[string]value.Value) error {
	pairs := make([]value.Pair, 0, len(args))
	for k, v := range args {
		pairs = append(pairs, value.Pair{Key: value.Str(k), Value: v})
	}
	return writeValue(w, value.Table(pairs))
}

func readArgs(r io.Reader) (map[string]value.Value, error) {
	v, err := readValue(r)
	if err != nil {
		return nil, err
	}
	pairs, ok := v.Pairs()
	if !ok {
		return nil, fmt.Errorf("protocol: args must be a table")
	}
	out := make(map[string]value.Value, len(pairs))
	for _, p := range pairs {
		k, _ := p.Key.Str()
		out[k] = p.Value
	}
	return out, nil
}

// writeValue/readValue frame one value.Value by length-prefixing its
// Encode output, since Encode/Decode operate on byte slices rather
// than streams.
func writeValue(w io.Writer, v value.Value) error {
	buf := value.Encode(nil, v)
	if err := writeU32(w, uint32(len(buf))); err != nil {
		return err
	}
	_, err := w.Write(buf)
	return err
}

func readValue(r io.Reader) (value.Value, error) {
	n, err := readU32(r)
	if err != nil {
		return value.Value{}, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return value.Value{}, err
	}
	v, rest, err := value.Decode(buf)
	if err != nil {
		return value.Value{}, err
	}
	if len(rest) != 0 {
		return value.Value{}, fmt.Errorf("protocol: %d trailing bytes after value", len(rest))
	}
	return v, nil
}
