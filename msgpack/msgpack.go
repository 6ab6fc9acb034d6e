// Package msgpack provides a MessagePack codec implementation.
package msgpack

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
	"github.com/zoobzio/arbor"
)

// msgpackCodec implements arbor.Codec for MessagePack.
type msgpackCodec struct{}

// New returns a MessagePack codec.
func New() arbor.Codec {
	return &msgpackCodec{}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Encode renders n as MessagePack. Map entries are written in node order,
// duplicate keys included.
func (c *msgpackCodec) Encode(n arbor.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := writeNode(enc, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeNode(enc *msgpack.Encoder, n arbor.Node) error {
	switch n.Kind() {
	case arbor.KindNull:
		return enc.EncodeNil()
	case arbor.KindBool:
		return enc.EncodeBool(n.BoolValue())
	case arbor.KindNumber:
		return enc.EncodeFloat64(n.NumberValue())
	case arbor.KindString:
		return enc.EncodeString(n.StringValue())
	case arbor.KindArray:
		if err := enc.EncodeArrayLen(n.Len()); err != nil {
			return err
		}
		for _, item := range n.Items() {
			if err := writeNode(enc, item); err != nil {
				return err
			}
		}
		return nil
	case arbor.KindMap:
		if err := enc.EncodeMapLen(n.Len()); err != nil {
			return err
		}
		for _, entry := range n.Entries() {
			if err := enc.EncodeString(entry.Key); err != nil {
				return err
			}
			if err := writeNode(enc, entry.Value); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported node kind %s", n.Kind())
	}
}

// Decode parses MessagePack into a node tree, dispatching on the peeked
// format code so map entry order and duplicate keys survive.
func (c *msgpackCodec) Decode(data []byte) (arbor.Node, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	n, err := readNode(dec)
	if err != nil {
		return arbor.Node{}, fmt.Errorf("%w: %v", arbor.ErrParse, err)
	}
	if _, err := dec.PeekCode(); err != io.EOF {
		return arbor.Node{}, fmt.Errorf("%w: trailing data after top-level value", arbor.ErrParse)
	}
	return n, nil
}

func readNode(dec *msgpack.Decoder) (arbor.Node, error) {
	code, err := dec.PeekCode()
	if err != nil {
		return arbor.Node{}, err
	}

	switch {
	case code == msgpcode.Nil:
		if err := dec.DecodeNil(); err != nil {
			return arbor.Node{}, err
		}
		return arbor.Null(), nil

	case code == msgpcode.True, code == msgpcode.False:
		b, err := dec.DecodeBool()
		if err != nil {
			return arbor.Node{}, err
		}
		return arbor.Bool(b), nil

	case code == msgpcode.Float, code == msgpcode.Double:
		f, err := dec.DecodeFloat64()
		if err != nil {
			return arbor.Node{}, err
		}
		return arbor.Number(f), nil

	case msgpcode.IsFixedNum(code),
		code == msgpcode.Int8, code == msgpcode.Int16,
		code == msgpcode.Int32, code == msgpcode.Int64,
		code == msgpcode.Uint8, code == msgpcode.Uint16,
		code == msgpcode.Uint32, code == msgpcode.Uint64:
		i, err := dec.DecodeInt64()
		if err != nil {
			return arbor.Node{}, err
		}
		return arbor.Number(float64(i)), nil

	case msgpcode.IsString(code):
		s, err := dec.DecodeString()
		if err != nil {
			return arbor.Node{}, err
		}
		return arbor.String(s), nil

	case msgpcode.IsFixedArray(code), code == msgpcode.Array16, code == msgpcode.Array32:
		length, err := dec.DecodeArrayLen()
		if err != nil {
			return arbor.Node{}, err
		}
		items := make([]arbor.Node, 0, length)
		for i := 0; i < length; i++ {
			item, err := readNode(dec)
			if err != nil {
				return arbor.Node{}, err
			}
			items = append(items, item)
		}
		return arbor.Array(items...), nil

	case msgpcode.IsFixedMap(code), code == msgpcode.Map16, code == msgpcode.Map32:
		length, err := dec.DecodeMapLen()
		if err != nil {
			return arbor.Node{}, err
		}
		entries := make([]arbor.Entry, 0, length)
		for i := 0; i < length; i++ {
			key, err := dec.DecodeString()
			if err != nil {
				return arbor.Node{}, err
			}
			value, err := readNode(dec)
			if err != nil {
				return arbor.Node{}, err
			}
			entries = append(entries, arbor.E(key, value))
		}
		return arbor.Map(entries...), nil

	default:
		return arbor.Node{}, fmt.Errorf("unsupported format code %x", code)
	}
}
