package sig

import (
	"testing"

	"github.com/relndb/sigidx/bitstring"
	"github.com/relndb/sigidx/codeword"
	"github.com/relndb/sigidx/tuple"
	"github.com/relndb/sigidx/tuple/csv"
)

func mustTuple(t *testing.T, nattrs int, fields ...string) (codeword.Hasher, tuple.Tuple) {
	t.Helper()
	c := csv.New(nattrs)
	tup, err := c.Encode(fields)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	return codeword.DefaultHasher, tup
}

func TestSimcSetsCodewordsFromEveryAttribute(t *testing.T) {
	hash, tup := mustTuple(t, 3, "alice", "30", "sydney")
	s := SimcSig(hash, tup, 3, 4, 64)
	if s.Count() == 0 {
		t.Fatal("expected simc signature to have bits set")
	}
	if s.Count() > 3*4 {
		t.Fatalf("expected at most 12 bits set (allowing overlap to reduce it), got %d", s.Count())
	}
	for i := 0; i < 3; i++ {
		cw := codeword.Generate(hash, tup.Attr(i), 64, 4, 64)
		if !bitstring.IsSubset(cw, s) {
			t.Fatalf("expected attribute %d's codeword to be set in the simc signature", i)
		}
	}
}

func TestSimcAllWildcardsIsAllZero(t *testing.T) {
	hash, tup := mustTuple(t, 2, "?", "?")
	s := SimcSig(hash, tup, 2, 4, 32)
	if s.Count() != 0 {
		t.Fatalf("expected all-wildcard simc signature to be zero, got %d bits", s.Count())
	}
}

func TestCatcBandsDoNotOverlap(t *testing.T) {
	hash, tup := mustTuple(t, 4, "alice", "30", "sydney", "nsw")
	const m = 64
	const nattrs = 4
	s := CatcSig(hash, tup, nattrs, m, 1)
	cwlen := m / nattrs
	remainder := m % nattrs
	countIn := func(lo, hi int) int {
		n := 0
		for p := lo; p < hi; p++ {
			if s.Get(p) {
				n++
			}
		}
		return n
	}
	// Band 0 spans [0, cwlen+remainder); band i>=1 spans
	// [i*cwlen+remainder, (i+1)*cwlen+remainder). Each band must hold
	// exactly the bits its own attribute's codeword sets, and the total
	// must be their sum: overlapping bands would merge or misplace bits.
	band0Bits := (cwlen + remainder) / 2
	if got := countIn(0, cwlen+remainder); got != band0Bits {
		t.Fatalf("band 0: expected %d bits set, got %d", band0Bits, got)
	}
	total := band0Bits
	for i := 1; i < nattrs; i++ {
		lo := i*cwlen + remainder
		hi := lo + cwlen
		if hi > m {
			t.Fatalf("band %d exceeds signature width: hi=%d m=%d", i, hi, m)
		}
		if got := countIn(lo, hi); got != cwlen/2 {
			t.Fatalf("band %d: expected %d bits set in [%d,%d), got %d", i, cwlen/2, lo, hi, got)
		}
		total += cwlen / 2
	}
	if s.Count() != total {
		t.Fatalf("expected %d bits set in total, got %d", total, s.Count())
	}
	if s.NBits() != m {
		t.Fatalf("expected signature width %d, got %d", m, s.NBits())
	}
}

func TestCatcAllWildcardsIsAllZero(t *testing.T) {
	hash, tup := mustTuple(t, 3, "?", "?", "?")
	s := CatcSig(hash, tup, 3, 60, 1)
	if s.Count() != 0 {
		t.Fatalf("expected all-wildcard catc signature to be zero, got %d bits", s.Count())
	}
}

func TestCatcPsigContributionNoDenserThanTsig(t *testing.T) {
	hash, tup := mustTuple(t, 2, "alice", "30")
	tsig := CatcSig(hash, tup, 2, 64, 1)
	psig := CatcSig(hash, tup, 2, 64, 8)
	if psig.Count() > tsig.Count() {
		t.Fatalf("expected psig band (nTup=8) to set no more bits than tsig band (nTup=1): psig=%d tsig=%d", psig.Count(), tsig.Count())
	}
}

func TestMakeTupleSigUnknownIsAllOnes(t *testing.T) {
	hash, tup := mustTuple(t, 2, "alice", "30")
	s := MakeTupleSig(hash, tup, 2, Unknown, 4, 32)
	if s.Count() != 32 {
		t.Fatalf("expected all-ones signature for unknown sigType, got %d/32 bits set", s.Count())
	}
}

func TestParseTypeDefaultsToUnknown(t *testing.T) {
	if ParseType("bogus") != Unknown {
		t.Fatal("expected unrecognised sigType to parse as Unknown")
	}
	if ParseType("catc") != Catc || ParseType("simc") != Simc {
		t.Fatal("expected catc/simc to parse to their own types")
	}
}
