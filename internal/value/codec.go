package value

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Codec implements the zero-copy-friendly binary schema used both to pass
// Values across the script sandbox boundary and to frame them on the wire
// (internal/protocol reuses Encode/Decode directly for Action args).
//
// Wire shape per Value: one tag byte followed by a tag-specific payload.
// Integers and lengths are little-endian, matching the packet framing in
// internal/protocol.

type tag byte

const (
	tagUnit tag = iota
	tagBool
	tagInt
	tagNum
	tagStr
	tagTable
	tagSeq
)

// Encode appends the binary encoding of v to dst and returns the result.
func Encode(dst []byte, v Value) []byte {
	switch v.kind {
	case KindUnit:
		return append(dst, byte(tagUnit))
	case KindBoolean:
		b := byte(0)
		if v.b {
			b = 1
		}
		return append(dst, byte(tagBool), b)
	case KindInteger:
		dst = append(dst, byte(tagInt))
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(v.i))
		return append(dst, buf[:]...)
	case KindNumber:
		dst = append(dst, byte(tagNum))
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v.n))
		return append(dst, buf[:]...)
	case KindString:
		dst = append(dst, byte(tagStr))
		dst = appendU32(dst, uint32(len(v.s)))
		return append(dst, v.s...)
	case KindSequence:
		dst = append(dst, byte(tagSeq))
		dst = appendU32(dst, uint32(len(v.seq)))
		for _, item := range v.seq {
			dst = Encode(dst, item)
		}
		return dst
	case KindTable:
		dst = append(dst, byte(tagTable))
		dst = appendU32(dst, uint32(len(v.pair)))
		for _, p := range v.pair {
			dst = Encode(dst, p.Key)
			dst = Encode(dst, p.Value)
		}
		return dst
	default:
		panic(fmt.Sprintf("value: unknown kind %v", v.kind))
	}
}

func appendU32(dst []byte, n uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], n)
	return append(dst, buf[:]...)
}

// Decode reads one Value from src, returning the remaining bytes.
func Decode(src []byte) (Value, []byte, error) {
	if len(src) < 1 {
		return Value{}, nil, io.ErrUnexpectedEOF
	}
	t := tag(src[0])
	src = src[1:]
	switch t {
	case tagUnit:
		return Unit(), src, nil
	case tagBool:
		if len(src) < 1 {
			return Value{}, nil, io.ErrUnexpectedEOF
		}
		return Bool(src[0] != 0), src[1:], nil
	case tagInt:
		if len(src) < 8 {
			return Value{}, nil, io.ErrUnexpectedEOF
		}
		return Int(int64(binary.LittleEndian.Uint64(src))), src[8:], nil
	case tagNum:
		if len(src) < 8 {
			return Value{}, nil, io.ErrUnexpectedEOF
		}
		return Num(math.Float64frombits(binary.LittleEndian.Uint64(src))), src[8:], nil
	case tagStr:
		n, rest, err := readU32(src)
		if err != nil {
			return Value{}, nil, err
		}
		if uint32(len(rest)) < n {
			return Value{}, nil, io.ErrUnexpectedEOF
		}
		return Str(string(rest[:n])), rest[n:], nil
	case tagSeq:
		n, rest, err := readU32(src)
		if err != nil {
			return Value{}, nil, err
		}
		items := make([]Value, 0, n)
		for i := uint32(0); i < n; i++ {
			var item Value
			item, rest, err = Decode(rest)
			if err != nil {
				return Value{}, nil, err
			}
			items = append(items, item)
		}
		return Sequence(items), rest, nil
	case tagTable:
		n, rest, err := readU32(src)
		if err != nil {
			return Value{}, nil, err
		}
		pairs := make([]Pair, 0, n)
		for i := uint32(0); i < n; i++ {
			var k, val Value
			k, rest, err = Decode(rest)
			if err != nil {
				return Value{}, nil, err
			}
			val, rest, err = Decode(rest)
			if err != nil {
				return Value{}, nil, err
			}
			pairs = append(pairs, Pair{Key: k, Value: val})
		}
		return Table(pairs), rest, nil
	default:
		return Value{}, nil, fmt.Errorf("value: unknown wire tag %d", t)
	}
}

func readU32(src []byte) (uint32, []byte, error) {
	if len(src) < 4 {
		return 0, nil, io.ErrUnexpectedEOF
	}
	return binary.LittleEndian.Uint32(src[:4]), src[4:], nil
}
