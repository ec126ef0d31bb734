// Package csv is the default tuple.Codec: fixed-width, comma-separated
// attribute values, matching the comma-joined tuple strings
// original_source/SignatureIndexes reads one per line on stdin (see
// showsigs.c's "%s\t" tuple dump and query.c's wildcard grammar).
//
// spec.md §3 fixes the encoded tuple size at tupsize = 28 + 7*(nattrs-2)
// bytes but leaves the per-attribute split unspecified (the original
// tuple.c is not part of the retrieved source). This codec reproduces that
// exact formula with attribute 0 given a wider, name-like field (21 bytes)
// and every other attribute a narrower field (6 bytes) plus its leading
// comma: 21 + (nattrs-1)*7 == 28 + 7*(nattrs-2).
package csv

import (
	"fmt"
	"strings"

	"github.com/relndb/sigidx/tuple"
)

const (
	firstWidth = 21
	restWidth  = 6
)

// Codec implements tuple.Codec for a relation with a fixed attribute count.
type Codec struct {
	nattrs int
	size   int
}

// New returns a Codec for a relation with nattrs attributes (nattrs >= 2
// per spec.md §3).
func New(nattrs int) *Codec {
	if nattrs < 2 {
		panic("csv: nattrs must be >= 2")
	}
	return &Codec{
		nattrs: nattrs,
		size:   firstWidth + (nattrs-1)*(restWidth+1),
	}
}

func (c *Codec) NAttrs() int { return c.nattrs }
func (c *Codec) Size() int   { return c.size }

func fieldWidth(attr, nattrs int) int {
	if attr == 0 {
		return firstWidth
	}
	return restWidth
}

// Tuple is the concrete tuple.Tuple this codec produces.
type Tuple struct {
	fields []string
	raw    []byte
}

func (t *Tuple) Attr(i int) string { return t.fields[i] }
func (t *Tuple) Bytes() []byte     { return t.raw }
func (t *Tuple) String() string    { return strings.Join(t.fields, ",") }

var _ tuple.Tuple = (*Tuple)(nil)
var _ tuple.Codec = (*Codec)(nil)

// Encode pads each field to its fixed width and joins them with commas,
// producing exactly Size() bytes.
func (c *Codec) Encode(fields []string) (tuple.Tuple, error) {
	if len(fields) != c.nattrs {
		return nil, fmt.Errorf("csv: expected %d fields, got %d", c.nattrs, len(fields))
	}
	var sb strings.Builder
	trimmed := make([]string, c.nattrs)
	for i, f := range fields {
		w := fieldWidth(i, c.nattrs)
		if len(f) > w {
			return nil, fmt.Errorf("csv: field %d %q exceeds width %d", i, f, w)
		}
		trimmed[i] = f
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(f)
		sb.WriteString(strings.Repeat(" ", w-len(f)))
	}
	raw := []byte(sb.String())
	if len(raw) != c.size {
		return nil, fmt.Errorf("csv: encoded tuple is %d bytes, want %d", len(raw), c.size)
	}
	return &Tuple{fields: trimmed, raw: raw}, nil
}

// Parse decodes exactly Size() bytes of fixed-width comma-separated fields.
func (c *Codec) Parse(b []byte) (tuple.Tuple, error) {
	if len(b) != c.size {
		return nil, fmt.Errorf("csv: expected %d bytes, got %d", c.size, len(b))
	}
	fields := make([]string, c.nattrs)
	pos := 0
	for i := 0; i < c.nattrs; i++ {
		w := fieldWidth(i, c.nattrs)
		if i > 0 {
			if b[pos] != ',' {
				return nil, fmt.Errorf("csv: expected comma at byte %d", pos)
			}
			pos++
		}
		fields[i] = strings.TrimRight(string(b[pos:pos+w]), " ")
		pos += w
	}
	return &Tuple{fields: fields, raw: append([]byte(nil), b...)}, nil
}

// ParseLine encodes a comma-separated input line (as read from stdin by the
// insert command) into a Tuple, trimming surrounding whitespace from each
// field before padding.
func (c *Codec) ParseLine(line string) (tuple.Tuple, error) {
	parts := strings.Split(line, ",")
	if len(parts) != c.nattrs {
		return nil, fmt.Errorf("csv: expected %d comma-separated fields, got %d", c.nattrs, len(parts))
	}
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return c.Encode(parts)
}
