// Package query implements a partial-match scan over a reln.Relation: the
// three signature-pruning strategies (tuple, page, and bit-slice
// signatures) plus the unpruned fallback, followed by a verification scan
// that visits only the candidate pages a strategy selected. Grounded on
// original_source/SignatureIndexes/query.c, tsig.c, psig.c and bsig.c.
package query

import (
	"fmt"
	"io"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/relndb/sigidx/bitstring"
	"github.com/relndb/sigidx/codeword"
	"github.com/relndb/sigidx/page"
	"github.com/relndb/sigidx/reln"
	"github.com/relndb/sigidx/sig"
	"github.com/relndb/sigidx/tuple"
)

// Strategy selects which index a Query consults to prune candidate pages
// before the verification scan.
type Strategy byte

const (
	// TupSig scans every tuple signature (tsig.c's findPagesUsingTupSigs).
	TupSig Strategy = 't'
	// PageSig scans every page signature (psig.c's findPagesUsingPageSigs).
	PageSig Strategy = 'p'
	// BitSlice scans bit-slices for the query's set psig bits (bsig.c's
	// findPagesUsingBitSlices).
	BitSlice Strategy = 'b'
	// All skips pruning entirely and scans every data page.
	All Strategy = 'a'
)

// ParseStrategy maps a one-character command token to a Strategy. Anything
// other than t/p/b maps to All, mirroring startQuery's switch default.
func ParseStrategy(s string) Strategy {
	if len(s) == 0 {
		return All
	}
	switch Strategy(s[0]) {
	case TupSig, PageSig, BitSlice:
		return Strategy(s[0])
	default:
		return All
	}
}

// queryTuple adapts a parsed query string to tuple.Tuple so the sig
// package's signature builders can consume it unmodified; wildcard fields
// keep the literal "?" so codeword.Generate recognises them.
type queryTuple struct{ fields []string }

func (q *queryTuple) Attr(i int) string { return q.fields[i] }
func (q *queryTuple) Bytes() []byte     { return []byte(q.String()) }
func (q *queryTuple) String() string    { return strings.Join(q.fields, ",") }

var _ tuple.Tuple = (*queryTuple)(nil)

// CheckQuery reports whether qstring has exactly as many comma-separated
// fields as the relation has attributes, the same validity check
// checkQuery performs before a scan is allowed to start.
func CheckQuery(r *reln.Relation, qstring string) bool {
	if qstring == "" {
		return false
	}
	return len(strings.Split(qstring, ",")) == r.Params().NAttrs
}

// Query is one partial-match scan against a relation.
type Query struct {
	rel   *reln.Relation
	qt    *queryTuple
	pages *bitset.BitSet

	NSigs     int
	NSigPages int
	NTuples   int
	NTupPages int
	NFalse    int
}

// New parses qstring (e.g. "1234,?,abc,?") against r and runs strategy's
// pruning pass, populating the candidate page set. It returns an error if
// qstring's field count does not match the relation's attribute count.
func New(r *reln.Relation, qstring string, strategy Strategy) (*Query, error) {
	fields := strings.Split(qstring, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if !CheckQuery(r, qstring) {
		return nil, fmt.Errorf("query: %q has %d fields, relation has %d attributes: %w", qstring, len(fields), r.Params().NAttrs, ErrMalformedQuery)
	}
	q := &Query{
		rel:   r,
		qt:    &queryTuple{fields: fields},
		pages: bitset.New(uint(r.NPages())),
	}
	var err error
	switch strategy {
	case TupSig:
		err = q.findPagesUsingTupSigs()
	case PageSig:
		err = q.findPagesUsingPageSigs()
	case BitSlice:
		err = q.findPagesUsingBitSlices()
	default:
		q.setAllPages()
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (q *Query) setAllPages() {
	for i := 0; i < q.rel.NPages(); i++ {
		q.pages.Set(uint(i))
	}
}

// findPagesUsingTupSigs scans every tuple signature and, for every tsig
// that is a superset of the query's tuple signature, marks that tsig's
// data page as a candidate. tsigs are stored independently of data page
// boundaries, so a tsig's ordinal position (not its page) determines which
// data page it belongs to: dpid = ordinal / tupPP.
func (q *Query) findPagesUsingTupSigs() error {
	p := q.rel.Params()
	qsig := sig.MakeTupleSig(q.rel.Hash(), q.qt, p.NAttrs, p.SigType, p.Tk, p.Tm)
	tmBytes := byteWidth(p.Tm)

	for tpid := 0; tpid < q.rel.Counters().TsigNPages; tpid++ {
		page, err := q.rel.TsigPage(tpid)
		if err != nil {
			return fmt.Errorf("query: error reading tsig page %d: %w", tpid, err)
		}
		q.NSigPages++
		for i := 0; i < page.NItems(); i++ {
			tsig := bitstring.FromBytes(page.GetItem(i, tmBytes), p.Tm)
			if bitstring.IsSubset(qsig, tsig) {
				dpid := q.NSigs / p.TupPP
				q.pages.Set(uint(dpid))
			}
			q.NSigs++
		}
	}
	return nil
}

// findPagesUsingPageSigs scans every page signature, marking its data page
// a candidate whenever it is a superset of the query's page signature.
// Page signatures are stored one per data page in order, so a psig's
// ordinal position is exactly its data page id.
func (q *Query) findPagesUsingPageSigs() error {
	p := q.rel.Params()
	qsig := sig.MakePageSig(q.rel.Hash(), q.qt, p.NAttrs, p.SigType, p.Tk, p.Pm, p.TupPP)
	pmBytes := byteWidth(p.Pm)

	for ppid := 0; ppid < q.rel.Counters().PsigNPages; ppid++ {
		page, err := q.rel.PsigPage(ppid)
		if err != nil {
			return fmt.Errorf("query: error reading psig page %d: %w", ppid, err)
		}
		q.NSigPages++
		for i := 0; i < page.NItems(); i++ {
			psig := bitstring.FromBytes(page.GetItem(i, pmBytes), p.Pm)
			if bitstring.IsSubset(qsig, psig) {
				q.pages.Set(uint(q.NSigs))
			}
			q.NSigs++
		}
	}
	return nil
}

// findPagesUsingBitSlices starts from the all-pages set and, for every bit
// the query's page signature sets, intersects the candidate set with that
// bit-slice: a page survives only if every queried bit's slice says it
// does.
func (q *Query) findPagesUsingBitSlices() error {
	p := q.rel.Params()
	qsig := sig.MakePageSig(q.rel.Hash(), q.qt, p.NAttrs, p.SigType, p.Tk, p.Pm, p.TupPP)
	bmBytes := byteWidth(p.Bm)
	q.setAllPages()

	var bsigpage *page.Page
	bsigpid := -1
	for i := 0; i < p.Pm; i++ {
		if !qsig.Get(i) {
			continue
		}
		pid := i / p.BsigPP
		if pid != bsigpid {
			var err error
			bsigpage, err = q.rel.BsigPage(pid)
			if err != nil {
				return fmt.Errorf("query: error reading bsig page %d: %w", pid, err)
			}
			bsigpid = pid
			q.NSigPages++
		}
		q.NSigs++
		slice := bitstring.FromBytes(bsigpage.GetItem(i%p.BsigPP, bmBytes), p.Bm)
		for j := 0; j < q.rel.NPages(); j++ {
			if !slice.Get(j) {
				q.pages.Clear(uint(j))
			}
		}
	}
	return nil
}

func byteWidth(bits int) int {
	if bits%8 != 0 {
		bits += 8 - bits%8
	}
	return bits / 8
}

// Scan visits every candidate data page, writing every tuple whose
// attributes match the query (accounting for wildcards) to w, one per
// line. A candidate page that yields no matching tuple counts as a false
// positive (NFalse), the signature pruning cost paid for nothing.
func (q *Query) Scan(w io.Writer) error {
	for pid := 0; pid < q.rel.NPages(); pid++ {
		if !q.pages.Test(uint(pid)) {
			continue
		}
		page, err := q.rel.DataPage(pid)
		if err != nil {
			return fmt.Errorf("query: error reading data page %d: %w", pid, err)
		}
		q.NTupPages++
		matched := 0
		for i := 0; i < page.NItems(); i++ {
			t, err := q.rel.Tuple(page, i)
			if err != nil {
				return fmt.Errorf("query: error decoding tuple %d on page %d: %w", i, pid, err)
			}
			q.NTuples++
			if q.tupleMatch(t) {
				matched++
				if _, err := fmt.Fprintln(w, t.String()); err != nil {
					return err
				}
			}
		}
		if matched == 0 {
			q.NFalse++
		}
	}
	return nil
}

// tupleMatch reports whether every non-wildcard field of the query equals
// the corresponding attribute of t.
func (q *Query) tupleMatch(t tuple.Tuple) bool {
	for i, f := range q.qt.fields {
		if f == codeword.Wildcard {
			continue
		}
		if t.Attr(i) != f {
			return false
		}
	}
	return true
}

// Stats renders the same counters queryStats prints.
func (q *Query) Stats() string {
	return fmt.Sprintf(
		"# sig pages read:    %d\n# signatures read:   %d\n# data pages read:   %d\n# tuples examined:   %d\n# false match pages: %d\n",
		q.NSigPages, q.NSigs, q.NTupPages, q.NTuples, q.NFalse,
	)
}
