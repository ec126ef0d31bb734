// Package sig implements the two signature construction schemes spec.md
// §4.4 names: catc (concatenated bands, one per attribute) and simc
// (superimposed codewords OR-ed together). Both are pure functions of a
// tuple and a target signature width; they know nothing about pages or
// files. Grounded on original_source/SignatureIndexes/sig.c's catcSig and
// simcSig.
package sig

import (
	"github.com/relndb/sigidx/bitstring"
	"github.com/relndb/sigidx/codeword"
	"github.com/relndb/sigidx/tuple"
)

// Type selects which construction scheme a relation uses.
type Type int

const (
	// Catc is the concatenated-bands scheme.
	Catc Type = iota
	// Simc is the superimposed-codewords scheme.
	Simc
	// Unknown is the degenerate escape hatch: every signature is all-ones,
	// so every page passes pruning. This mirrors the `default:` case in
	// tsig.c/psig.c's makeTupleSig/makePageSig.
	Unknown
)

// ParseType maps the on-disk sigType token to a Type. Anything other than
// "catc" or "simc" maps to Unknown, matching the original's tolerant
// switch default.
func ParseType(s string) Type {
	switch s {
	case "catc":
		return Catc
	case "simc":
		return Simc
	default:
		return Unknown
	}
}

func (t Type) String() string {
	switch t {
	case Catc:
		return "catc"
	case Simc:
		return "simc"
	default:
		return "unknown"
	}
}

// SimcSig builds a siglen-bit signature by OR-ing together one k-bit codeword
// per attribute, each scattered over the full siglen positions.
func SimcSig(hash codeword.Hasher, t tuple.Tuple, nattrs, k, siglen int) *bitstring.BitString {
	s := bitstring.New(siglen)
	for i := 0; i < nattrs; i++ {
		cw := codeword.Generate(hash, t.Attr(i), siglen, k, siglen)
		s.Or(cw)
	}
	return s
}

// CatcSig builds a siglen-bit signature divided into nattrs bands, one per
// attribute. Band i (i>=1) is cwlen = siglen/nattrs bits wide, shifted left
// by i*cwlen + (siglen mod nattrs) so bands never overlap; band 0 absorbs
// the remainder siglen mod nattrs, giving it width cwlen+(siglen mod
// nattrs) and starting at position 0. Each band sets (width/2)/nTup bits.
// nTup is 1 when building a tuple signature and tupPP when building a page
// signature, so a tuple's page-signature contribution sets fewer bits per
// band than its tuple signature (none at all once tupPP exceeds width/2),
// per original_source's catcSig(r, t, siglen, nTup).
func CatcSig(hash codeword.Hasher, t tuple.Tuple, nattrs, siglen, nTup int) *bitstring.BitString {
	s := bitstring.New(siglen)
	cwlen := siglen / nattrs
	remainder := siglen % nattrs
	nBitsToSet := (cwlen / 2) / nTup
	for i := nattrs - 1; i >= 1; i-- {
		cw := codeword.Generate(hash, t.Attr(i), cwlen, nBitsToSet, siglen)
		cw.Shift(i*cwlen + remainder)
		s.Or(cw)
	}
	band0Len := cwlen + remainder
	band0Bits := (band0Len / 2) / nTup
	cw0 := codeword.Generate(hash, t.Attr(0), band0Len, band0Bits, siglen)
	s.Or(cw0)
	return s
}

// MakeTupleSig builds the tm-bit signature of a single tuple, selecting the
// construction scheme from sigType. An Unknown sigType produces an
// all-ones signature: the degenerate escape hatch from tsig.c's makeTupleSig
// default case, which makes every page pass pruning instead of failing.
func MakeTupleSig(hash codeword.Hasher, t tuple.Tuple, nattrs int, sigType Type, tk, tm int) *bitstring.BitString {
	switch sigType {
	case Catc:
		return CatcSig(hash, t, nattrs, tm, 1)
	case Simc:
		return SimcSig(hash, t, nattrs, tk, tm)
	default:
		s := bitstring.New(tm)
		s.SetAll()
		return s
	}
}

// MakePageSig builds a tuple's pm-bit contribution to its data page's
// signature. Under catc, tupPP (tuples per data page) divides the number of
// bits each per-attribute band sets, so the contribution is sparser than
// MakeTupleSig's, per psig.c's makePageSig.
func MakePageSig(hash codeword.Hasher, t tuple.Tuple, nattrs int, sigType Type, tk, pm, tupPP int) *bitstring.BitString {
	switch sigType {
	case Catc:
		return CatcSig(hash, t, nattrs, pm, tupPP)
	case Simc:
		return SimcSig(hash, t, nattrs, tk, pm)
	default:
		s := bitstring.New(pm)
		s.SetAll()
		return s
	}
}
