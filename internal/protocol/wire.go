package protocol

import (
	"fmt"
	"io"
	"time"

	"tacticore/internal/character"
	"tacticore/internal/console"
)

// EncodeClient writes packet's payload (not the length frame) to w.
func EncodeClient(w io.Writer, p ClientPacket) error {
	if err := writeByte(w, byte(p.Kind)); err != nil {
		return err
	}
	switch p.Kind {
	case KindAuthenticate:
		if err := writeString(w, p.Username); err != nil {
			return err
		}
		return writeString(w, p.RoutingHint)
	case KindRoute:
		return writeString(w, p.InstanceID)
	case KindInstantiate:
		return nil
	case KindClientPing:
		return writeU64(w, p.Nonce)
	case KindClientAction:
		return encodeAction(w, p.Action)
	default:
		return fmt.Errorf("protocol: unknown client packet kind %d", p.Kind)
	}
}

// DecodeClient reads one ClientPacket payload from r.
func DecodeClient(r io.Reader) (ClientPacket, error) {
	kindByte, err := readByte(r)
	if err != nil {
		return ClientPacket{}, err
	}
	kind := ClientKind(kindByte)
	switch kind {
	case KindAuthenticate:
		username, err := readString(r)
		if err != nil {
			return ClientPacket{}, err
		}
		hint, err := readString(r)
		if err != nil {
			return ClientPacket{}, err
		}
		return Authenticate(username, hint), nil
	case KindRoute:
		id, err := readString(r)
		if err != nil {
			return ClientPacket{}, err
		}
		return Route(id), nil
	case KindInstantiate:
		return Instantiate(), nil
	case KindClientPing:
		nonce, err := readU64(r)
		if err != nil {
			return ClientPacket{}, err
		}
		return ClientPing(nonce), nil
	case KindClientAction:
		action, err := decodeAction(r)
		if err != nil {
			return ClientPacket{}, err
		}
		return SubmitAction(action), nil
	default:
		return ClientPacket{}, fmt.Errorf("protocol: unknown client packet kind %d", kindByte)
	}
}

// EncodeServer writes packet's payload (not the length frame) to w.
func EncodeServer(w io.Writer, p ServerPacket) error {
	if err := writeByte(w, byte(p.Kind)); err != nil {
		return err
	}
	switch p.Kind {
	case KindRegister:
		return writeString(w, p.ClientID)
	case KindServerPing:
		return writeU64(w, p.Nonce)
	case KindWorld:
		return encodeSnapshot(w, p.World)
	case KindMessage:
		return encodeMessage(w, p.Message)
	default:
		return fmt.Errorf("protocol: unknown server packet kind %d", p.Kind)
	}
}

// DecodeServer reads one ServerPacket payload from r.
func DecodeServer(r io.Reader) (ServerPacket, error) {
	kindByte, err := readByte(r)
	if err != nil {
		return ServerPacket{}, err
	}
	kind := ServerKind(kindByte)
	switch kind {
	case KindRegister:
		id, err := readString(r)
		if err != nil {
			return ServerPacket{}, err
		}
		return Register(id), nil
	case KindServerPing:
		nonce, err := readU64(r)
		if err != nil {
			return ServerPacket{}, err
		}
		return ServerPing(nonce), nil
	case KindWorld:
		snap, err := decodeSnapshot(r)
		if err != nil {
			return ServerPacket{}, err
		}
		return World(snap), nil
	case KindMessage:
		msg, err := decodeMessage(r)
		if err != nil {
			return ServerPacket{}, err
		}
		return MessagePacket(msg), nil
	default:
		return ServerPacket{}, fmt.Errorf("protocol: unknown server packet kind %d", kindByte)
	}
}

func encodeAction(w io.Writer, a character.Action) error {
	if err := writeByte(w, byte(a.Kind)); err != nil {
		return err
	}
	if err := writeI32(w, int32(a.DX)); err != nil {
		return err
	}
	if err := writeI32(w, int32(a.DY)); err != nil {
		return err
	}
	if err := writeString(w, a.Ref); err != nil {
		return err
	}
	return writeArgs(w, a.Args)
}

func decodeAction(r io.Reader) (character.Action, error) {
	kindByte, err := readByte(r)
	if err != nil {
		return character.Action{}, err
	}
	dx, err := readI32(r)
	if err != nil {
		return character.Action{}, err
	}
	dy, err := readI32(r)
	if err != nil {
		return character.Action{}, err
	}
	ref, err := readString(r)
	if err != nil {
		return character.Action{}, err
	}
	args, err := readArgs(r)
	if err != nil {
		return character.Action{}, err
	}
	return character.Action{
		Kind: character.ActionKind(kindByte),
		DX:   int(dx), DY: int(dy),
		Ref:  ref,
		Args: args,
	}, nil
}

func encodeMessage(w io.Writer, m console.Message) error {
	if err := writeString(w, m.Text); err != nil {
		return err
	}
	if err := writeByte(w, byte(m.Severity)); err != nil {
		return err
	}
	if err := writeByte(w, byte(m.Printer.Kind)); err != nil {
		return err
	}
	if err := writeString(w, m.Printer.Speaker); err != nil {
		return err
	}
	if err := writeI32(w, int32(m.Printer.Progress)); err != nil {
		return err
	}
	return writeU64(w, uint64(m.CreatedAt.UnixNano()))
}

func decodeMessage(r io.Reader) (console.Message, error) {
	text, err := readString(r)
	if err != nil {
		return console.Message{}, err
	}
	severityByte, err := readByte(r)
	if err != nil {
		return console.Message{}, err
	}
	printerKindByte, err := readByte(r)
	if err != nil {
		return console.Message{}, err
	}
	speaker, err := readString(r)
	if err != nil {
		return console.Message{}, err
	}
	progress, err := readI32(r)
	if err != nil {
		return console.Message{}, err
	}
	nanos, err := readU64(r)
	if err != nil {
		return console.Message{}, err
	}
	return console.Message{
		Text:     text,
		Severity: console.Severity(severityByte),
		Printer: console.Printer{
			Kind:     console.PrinterKind(printerKindByte),
			Speaker:  speaker,
			Progress: int(progress),
		},
		CreatedAt: time.Unix(0, int64(nanos)),
	}, nil
}

func encodeSnapshot(w io.Writer, s Snapshot) error {
	if err := writeString(w, s.LevelName); err != nil {
		return err
	}
	if err := writeI32(w, s.Floor); err != nil {
		return err
	}
	if err := writeU32(w, uint32(len(s.Pieces))); err != nil {
		return err
	}
	for _, p := range s.Pieces {
		if err := encodePiece(w, p); err != nil {
			return err
		}
	}
	if err := writeU32(w, uint32(len(s.Party))); err != nil {
		return err
	}
	for _, id := range s.Party {
		if err := writeString(w, id); err != nil {
			return err
		}
	}
	return nil
}

func decodeSnapshot(r io.Reader) (Snapshot, error) {
	levelName, err := readString(r)
	if err != nil {
		return Snapshot{}, err
	}
	floor, err := readI32(r)
	if err != nil {
		return Snapshot{}, err
	}
	pieceCount, err := readU32(r)
	if err != nil {
		return Snapshot{}, err
	}
	pieces := make([]PieceSnapshot, 0, pieceCount)
	for i := uint32(0); i < pieceCount; i++ {
		p, err := decodePiece(r)
		if err != nil {
			return Snapshot{}, err
		}
		pieces = append(pieces, p)
	}
	partyCount, err := readU32(r)
	if err != nil {
		return Snapshot{}, err
	}
	party := make([]string, 0, partyCount)
	for i := uint32(0); i < partyCount; i++ {
		id, err := readString(r)
		if err != nil {
			return Snapshot{}, err
		}
		party = append(party, id)
	}
	return Snapshot{LevelName: levelName, Floor: floor, Pieces: pieces, Party: party}, nil
}

func encodePiece(w io.Writer, p PieceSnapshot) error {
	if err := writeString(w, p.ID); err != nil {
		return err
	}
	if err := writeString(w, p.Name); err != nil {
		return err
	}
	if err := writeI32(w, p.X); err != nil {
		return err
	}
	if err := writeI32(w, p.Y); err != nil {
		return err
	}
	if err := writeU32(w, p.HP); err != nil {
		return err
	}
	if err := writeU32(w, p.SP); err != nil {
		return err
	}
	if err := writeU32(w, p.MaxHeart); err != nil {
		return err
	}
	if err := writeU32(w, p.MaxSoul); err != nil {
		return err
	}
	if err := writeByte(w, p.Alliance); err != nil {
		return err
	}
	for _, c := range p.Accent {
		if err := writeByte(w, c); err != nil {
			return err
		}
	}
	return writeBool(w, p.Conscious)
}

func decodePiece(r io.Reader) (PieceSnapshot, error) {
	var p PieceSnapshot
	var err error
	if p.ID, err = readString(r); err != nil {
		return p, err
	}
	if p.Name, err = readString(r); err != nil {
		return p, err
	}
	if p.X, err = readI32(r); err != nil {
		return p, err
	}
	if p.Y, err = readI32(r); err != nil {
		return p, err
	}
	if p.HP, err = readU32(r); err != nil {
		return p, err
	}
	if p.SP, err = readU32(r); err != nil {
		return p, err
	}
	if p.MaxHeart, err = readU32(r); err != nil {
		return p, err
	}
	if p.MaxSoul, err = readU32(r); err != nil {
		return p, err
	}
	if p.Alliance, err = readByte(r); err != nil {
		return p, err
	}
	for i := range p.Accent {
		if p.Accent[i], err = readByte(r); err != nil {
			return p, err
		}
	}
	if p.Conscious, err = readBool(r); err != nil {
		return p, err
	}
	return p, nil
}
