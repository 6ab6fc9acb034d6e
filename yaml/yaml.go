// Package yaml provides a YAML codec implementation.
package yaml

import (
	"fmt"
	"math"
	"strconv"

	"github.com/zoobzio/arbor"
	yamlv3 "gopkg.in/yaml.v3"
)

// yamlCodec implements arbor.Codec for YAML.
type yamlCodec struct{}

// New returns a YAML codec.
func New() arbor.Codec {
	return &yamlCodec{}
}

// ContentType returns the MIME type for YAML.
func (c *yamlCodec) ContentType() string {
	return "application/yaml"
}

// Encode renders n as YAML through an explicit yaml.Node tree, keeping map
// entry order and duplicate keys.
func (c *yamlCodec) Encode(n arbor.Node) ([]byte, error) {
	return yamlv3.Marshal(toYAML(n))
}

func toYAML(n arbor.Node) *yamlv3.Node {
	switch n.Kind() {
	case arbor.KindNull:
		return &yamlv3.Node{Kind: yamlv3.ScalarNode, Tag: "!!null", Value: "null"}
	case arbor.KindBool:
		return &yamlv3.Node{Kind: yamlv3.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(n.BoolValue())}
	case arbor.KindNumber:
		f := n.NumberValue()
		if f == math.Trunc(f) && !math.IsInf(f, 0) {
			return &yamlv3.Node{Kind: yamlv3.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(f), 10)}
		}
		return &yamlv3.Node{Kind: yamlv3.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(f, 'g', -1, 64)}
	case arbor.KindString:
		return &yamlv3.Node{Kind: yamlv3.ScalarNode, Tag: "!!str", Value: n.StringValue()}
	case arbor.KindArray:
		out := &yamlv3.Node{Kind: yamlv3.SequenceNode, Tag: "!!seq"}
		for _, item := range n.Items() {
			out.Content = append(out.Content, toYAML(item))
		}
		return out
	default: // KindMap
		out := &yamlv3.Node{Kind: yamlv3.MappingNode, Tag: "!!map"}
		for _, entry := range n.Entries() {
			out.Content = append(out.Content,
				&yamlv3.Node{Kind: yamlv3.ScalarNode, Tag: "!!str", Value: entry.Key},
				toYAML(entry.Value))
		}
		return out
	}
}

// Decode parses YAML into a node tree.
func (c *yamlCodec) Decode(data []byte) (arbor.Node, error) {
	var root yamlv3.Node
	if err := yamlv3.Unmarshal(data, &root); err != nil {
		return arbor.Node{}, fmt.Errorf("%w: %v", arbor.ErrParse, err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return arbor.Null(), nil
	}
	n, err := fromYAML(root.Content[0])
	if err != nil {
		return arbor.Node{}, fmt.Errorf("%w: %v", arbor.ErrParse, err)
	}
	return n, nil
}

func fromYAML(y *yamlv3.Node) (arbor.Node, error) {
	switch y.Kind {
	case yamlv3.AliasNode:
		return fromYAML(y.Alias)

	case yamlv3.ScalarNode:
		switch y.Tag {
		case "!!null":
			return arbor.Null(), nil
		case "!!bool":
			b, err := strconv.ParseBool(y.Value)
			if err != nil {
				return arbor.Node{}, err
			}
			return arbor.Bool(b), nil
		case "!!int", "!!float":
			f, err := strconv.ParseFloat(y.Value, 64)
			if err != nil {
				return arbor.Node{}, err
			}
			return arbor.Number(f), nil
		default:
			return arbor.String(y.Value), nil
		}

	case yamlv3.SequenceNode:
		items := make([]arbor.Node, 0, len(y.Content))
		for _, c := range y.Content {
			item, err := fromYAML(c)
			if err != nil {
				return arbor.Node{}, err
			}
			items = append(items, item)
		}
		return arbor.Array(items...), nil

	case yamlv3.MappingNode:
		entries := make([]arbor.Entry, 0, len(y.Content)/2)
		for i := 0; i+1 < len(y.Content); i += 2 {
			key := y.Content[i]
			if key.Kind != yamlv3.ScalarNode {
				return arbor.Node{}, fmt.Errorf("mapping key at line %d is not a scalar", key.Line)
			}
			value, err := fromYAML(y.Content[i+1])
			if err != nil {
				return arbor.Node{}, err
			}
			entries = append(entries, arbor.E(key.Value, value))
		}
		return arbor.Map(entries...), nil

	default:
		return arbor.Node{}, fmt.Errorf("unsupported yaml node kind %d", y.Kind)
	}
}
