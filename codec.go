// Package arbor provides a generic bidirectional mapping engine between
// structured runtime values and a tree-shaped serialization representation.
package arbor

// Codec translates between Node trees and wire bytes. The engine itself
// never touches bytes; codecs are the external boundary it hands trees to.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Encode renders the node tree into bytes.
	Encode(n Node) ([]byte, error)

	// Decode parses bytes into a node tree. Malformed input fails with an
	// error wrapping ErrParse.
	Decode(data []byte) (Node, error)
}
