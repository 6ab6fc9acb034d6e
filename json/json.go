// Package json provides a JSON codec implementation.
package json

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	gojson "github.com/goccy/go-json"
	"github.com/zoobzio/arbor"
)

// jsonCodec implements arbor.Codec for JSON.
type jsonCodec struct{}

// New returns a JSON codec.
func New() arbor.Codec {
	return &jsonCodec{}
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Encode renders n as JSON. Map entries are written in node order,
// duplicate keys included, so the multi-map list of entries survives the
// round trip.
func (c *jsonCodec) Encode(n arbor.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeNode(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeNode(buf *bytes.Buffer, n arbor.Node) error {
	switch n.Kind() {
	case arbor.KindNull:
		buf.WriteString("null")
	case arbor.KindBool:
		buf.WriteString(strconv.FormatBool(n.BoolValue()))
	case arbor.KindNumber:
		b, err := gojson.Marshal(n.NumberValue())
		if err != nil {
			return err
		}
		buf.Write(b)
	case arbor.KindString:
		b, err := gojson.Marshal(n.StringValue())
		if err != nil {
			return err
		}
		buf.Write(b)
	case arbor.KindArray:
		buf.WriteByte('[')
		for i, item := range n.Items() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeNode(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case arbor.KindMap:
		buf.WriteByte('{')
		for i, entry := range n.Entries() {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := gojson.Marshal(entry.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeNode(buf, entry.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// Decode parses JSON into a node tree through the streaming tokenizer, which
// keeps object member order and duplicate keys intact.
func (c *jsonCodec) Decode(data []byte) (arbor.Node, error) {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	n, err := readNode(dec)
	if err != nil {
		return arbor.Node{}, fmt.Errorf("%w: %v", arbor.ErrParse, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return arbor.Node{}, fmt.Errorf("%w: trailing data after top-level value", arbor.ErrParse)
	}
	return n, nil
}

func readNode(dec *gojson.Decoder) (arbor.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return arbor.Node{}, err
	}
	return readValue(dec, tok)
}

func readValue(dec *gojson.Decoder, tok gojson.Token) (arbor.Node, error) {
	switch t := tok.(type) {
	case gojson.Delim:
		switch t {
		case '[':
			var items []arbor.Node
			for dec.More() {
				item, err := readNode(dec)
				if err != nil {
					return arbor.Node{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return arbor.Node{}, err
			}
			return arbor.Array(items...), nil
		case '{':
			var entries []arbor.Entry
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return arbor.Node{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return arbor.Node{}, fmt.Errorf("object key is %T, not string", keyTok)
				}
				value, err := readNode(dec)
				if err != nil {
					return arbor.Node{}, err
				}
				entries = append(entries, arbor.E(key, value))
			}
			if _, err := dec.Token(); err != nil {
				return arbor.Node{}, err
			}
			return arbor.Map(entries...), nil
		default:
			return arbor.Node{}, fmt.Errorf("unexpected delimiter %v", t)
		}
	case bool:
		return arbor.Bool(t), nil
	case float64:
		return arbor.Number(t), nil
	case gojson.Number:
		f, err := t.Float64()
		if err != nil {
			return arbor.Node{}, err
		}
		return arbor.Number(f), nil
	case string:
		return arbor.String(t), nil
	case nil:
		return arbor.Null(), nil
	default:
		return arbor.Node{}, fmt.Errorf("unexpected token %T", tok)
	}
}
