package reln

import (
	"fmt"

	"github.com/relndb/sigidx/page"
	"github.com/relndb/sigidx/sig"
)

// Params holds the static parameters of a relation, fixed at creation and
// immutable thereafter (spec.md §3).
type Params struct {
	NAttrs  int
	PF      float64
	SigType sig.Type
	Tk      int
	Tm      int
	Pm      int
	Bm      int
	TupSize int
	TupPP   int
	TsigPP  int
	PsigPP  int
	BsigPP  int
}

// Counters holds the dynamic counters persisted in the info file
// (spec.md §3).
type Counters struct {
	NPages     int
	NTups      int
	TsigNPages int
	NTsigs     int
	PsigNPages int
	NPsigs     int
	BsigNPages int
	NBsigs     int
}

func byteWidth(bits int) int {
	if bits%8 != 0 {
		bits += 8 - bits%8
	}
	return bits / 8
}

// roundUpToByte rounds bits up to the next multiple of 8, as spec.md §3
// (I5) requires of tm, pm and bm.
func roundUpToByte(bits int) int {
	return byteWidth(bits) * 8
}

// newParams computes the derived static parameters (tupsize, tupPP,
// *sigPP, and byte-rounded widths) from the caller-supplied ones, matching
// original_source/SignatureIndexes/reln.c's newRelation field-by-field.
// tm, pm and bm are rounded up to a whole number of bytes before any *PP
// value is computed (spec.md §3, I5). A psigPP or bsigPP below 2 means
// fewer than two page signatures, or bit slices, fit on one page; such a
// configuration is rejected rather than silently built, matching reln.c's
// startup sanity checks.
func newParams(nattrs int, pF float64, sigType sig.Type, tk, tm, pm, bm int) (Params, error) {
	tm = roundUpToByte(tm)
	pm = roundUpToByte(pm)
	bm = roundUpToByte(bm)
	tupSize := 28 + 7*(nattrs-2)
	p := Params{
		NAttrs:  nattrs,
		PF:      pF,
		SigType: sigType,
		Tk:      tk,
		Tm:      tm,
		Pm:      pm,
		Bm:      bm,
		TupSize: tupSize,
		TupPP:   page.Capacity(tupSize),
		TsigPP:  page.Capacity(byteWidth(tm)),
		PsigPP:  page.Capacity(byteWidth(pm)),
		BsigPP:  page.Capacity(byteWidth(bm)),
	}
	if p.PsigPP < 2 {
		return Params{}, fmt.Errorf("reln: pm=%d leaves psigPP=%d, need at least 2 page signatures per page: %w", pm, p.PsigPP, ErrConfigTooNarrow)
	}
	if p.BsigPP < 2 {
		return Params{}, fmt.Errorf("reln: bm=%d leaves bsigPP=%d, need at least 2 bit slices per page: %w", bm, p.BsigPP, ErrConfigTooNarrow)
	}
	return p, nil
}
