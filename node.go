package arbor

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the shape of a Node.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindMap
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Entry is one key/value pair in a map Node. Keys are not required to be
// unique at this layer; the multi-map encodings rely on that.
type Entry struct {
	Key   string
	Value Node
}

// E builds a map entry.
func E(key string, value Node) Entry {
	return Entry{Key: key, Value: value}
}

// Node is the tree value exchanged with the wire-format codec. A Node is
// immutable once constructed: the constructors copy their slice arguments
// and the accessors return copies.
type Node struct {
	kind    Kind
	boolVal bool
	numVal  float64
	strVal  string
	items   []Node
	entries []Entry
}

// Null returns the null Node. The zero Node is null.
func Null() Node {
	return Node{kind: KindNull}
}

// Bool returns a boolean Node.
func Bool(v bool) Node {
	return Node{kind: KindBool, boolVal: v}
}

// Number returns a numeric Node.
func Number(v float64) Node {
	return Node{kind: KindNumber, numVal: v}
}

// String returns a string Node.
func String(v string) Node {
	return Node{kind: KindString, strVal: v}
}

// Array returns an array Node holding the given items in order.
func Array(items ...Node) Node {
	cp := make([]Node, len(items))
	copy(cp, items)
	return Node{kind: KindArray, items: cp}
}

// Map returns a map Node holding the given entries in order.
func Map(entries ...Entry) Node {
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	return Node{kind: KindMap, entries: cp}
}

// Kind reports the shape of the node.
func (n Node) Kind() Kind { return n.kind }

// IsNull reports whether the node is null.
func (n Node) IsNull() bool { return n.kind == KindNull }

// BoolValue returns the boolean payload. Valid only for KindBool.
func (n Node) BoolValue() bool { return n.boolVal }

// NumberValue returns the numeric payload. Valid only for KindNumber.
func (n Node) NumberValue() float64 { return n.numVal }

// StringValue returns the string payload. Valid only for KindString.
func (n Node) StringValue() string { return n.strVal }

// Len returns the number of items (array) or entries (map), zero otherwise.
func (n Node) Len() int {
	switch n.kind {
	case KindArray:
		return len(n.items)
	case KindMap:
		return len(n.entries)
	default:
		return 0
	}
}

// Items returns a copy of the array items. Valid only for KindArray.
func (n Node) Items() []Node {
	cp := make([]Node, len(n.items))
	copy(cp, n.items)
	return cp
}

// Entries returns a copy of the map entries. Valid only for KindMap.
func (n Node) Entries() []Entry {
	cp := make([]Entry, len(n.entries))
	copy(cp, n.entries)
	return cp
}

// Get returns the value of the first entry with the given key.
func (n Node) Get(key string) (Node, bool) {
	for _, e := range n.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Node{}, false
}

// Equal reports structural equality, including entry order for maps.
func (n Node) Equal(other Node) bool {
	if n.kind != other.kind {
		return false
	}
	switch n.kind {
	case KindNull:
		return true
	case KindBool:
		return n.boolVal == other.boolVal
	case KindNumber:
		return n.numVal == other.numVal
	case KindString:
		return n.strVal == other.strVal
	case KindArray:
		if len(n.items) != len(other.items) {
			return false
		}
		for i := range n.items {
			if !n.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(n.entries) != len(other.entries) {
			return false
		}
		for i := range n.entries {
			if n.entries[i].Key != other.entries[i].Key {
				return false
			}
			if !n.entries[i].Value.Equal(other.entries[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders a compact, JSON-like view of the node for diagnostics.
func (n Node) String() string {
	var b strings.Builder
	n.render(&b)
	return b.String()
}

func (n Node) render(b *strings.Builder) {
	switch n.kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		b.WriteString(strconv.FormatBool(n.boolVal))
	case KindNumber:
		b.WriteString(strconv.FormatFloat(n.numVal, 'g', -1, 64))
	case KindString:
		b.WriteString(strconv.Quote(n.strVal))
	case KindArray:
		b.WriteByte('[')
		for i, it := range n.items {
			if i > 0 {
				b.WriteByte(',')
			}
			it.render(b)
		}
		b.WriteByte(']')
	case KindMap:
		b.WriteByte('{')
		for i, e := range n.entries {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(e.Key))
			b.WriteByte(':')
			e.Value.render(b)
		}
		b.WriteByte('}')
	}
}
