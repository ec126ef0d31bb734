// Package tuple declares the interface the signature index core needs from
// the heap tuple format, which spec.md §1 marks out of scope ("the heap
// tuple format and its textual rendering... specified only by the
// interface the core needs"). reln.Relation holds its codec as a Codec, but
// Create and Open always install the concrete tuple/csv codec; query.Query
// uses only Tuple.
package tuple

// Tuple is one fixed-width row of a relation, addressable by attribute
// index.
type Tuple interface {
	// Attr returns the string value of the i'th attribute.
	Attr(i int) string
	// Bytes returns the tuple's on-disk representation; for a tuple
	// produced by a Codec this is exactly Codec.Size() bytes.
	Bytes() []byte
	// String renders the tuple for display (the "textual rendering" spec.md
	// §1 excludes from the core's concern, but a command surface needs
	// something to print).
	String() string
}

// Codec parses and measures tuples for a relation with a fixed attribute
// count and fixed encoded width.
type Codec interface {
	// NAttrs returns the number of attributes every tuple has.
	NAttrs() int
	// Size returns the fixed encoded width, in bytes, of a tuple.
	Size() int
	// Parse decodes exactly Size() bytes into a Tuple.
	Parse(b []byte) (Tuple, error)
	// Encode encodes nattrs field values into a tuple, padding to Size().
	Encode(fields []string) (Tuple, error)
}
