package reln

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/relndb/sigidx/sig"
)

func mustCreate(t *testing.T, nattrs int, sigType sig.Type, tk, tm, pm, bm int) *Relation {
	t.Helper()
	r, err := Create(true, "mem", nattrs, 0.5, sigType, tk, tm, pm, bm)
	if err != nil {
		t.Fatalf("Create: %s", err)
	}
	return r
}

func TestCreateAllocatesOneOfEachPage(t *testing.T) {
	r := mustCreate(t, 3, sig.Catc, 4, 64, 64, 64)
	if r.counters.NPages != 1 || r.counters.TsigNPages != 1 || r.counters.PsigNPages != 1 {
		t.Fatalf("expected one page per file at creation, got %+v", r.counters)
	}
	if r.counters.NBsigs != r.params.Pm {
		t.Fatalf("expected %d bit-slices (one per psig bit), got %d", r.params.Pm, r.counters.NBsigs)
	}
}

func TestCreateRejectsTinyPsigPP(t *testing.T) {
	// A 20000-bit (2500-byte) psig leaves room for only one per 4096-byte
	// page, which newParams must reject.
	_, err := Create(true, "mem", 2, 0.5, sig.Catc, 4, 64, 20000, 64)
	if !errors.Is(err, ErrConfigTooNarrow) {
		t.Fatalf("expected ErrConfigTooNarrow for psigPP < 2, got %s", err)
	}
}

func TestOpenMissingRelationReturnsErrIO(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(filepath.Join(dir, "nosuch"))
	if !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO opening a missing relation, got %s", err)
	}
}

func TestInsertIncrementsCounters(t *testing.T) {
	r := mustCreate(t, 2, sig.Catc, 4, 32, 32, 32)
	for i := 0; i < 5; i++ {
		if _, err := r.Insert([]string{"alice", "30"}); err != nil {
			t.Fatalf("Insert: %s", err)
		}
	}
	if r.counters.NTups != 5 {
		t.Fatalf("expected 5 tuples, got %d", r.counters.NTups)
	}
	if r.counters.NTsigs != 5 {
		t.Fatalf("expected 5 tsigs, got %d", r.counters.NTsigs)
	}
}

func TestInsertSpillsToNewDataPage(t *testing.T) {
	r := mustCreate(t, 2, sig.Catc, 4, 32, 32, 32)
	n := r.params.TupPP + 1
	for i := 0; i < n; i++ {
		if _, err := r.Insert([]string{"alice", "30"}); err != nil {
			t.Fatalf("Insert %d: %s", i, err)
		}
	}
	if r.counters.NPages != 2 {
		t.Fatalf("expected a second data page after %d inserts (tupPP=%d), got %d pages", n, r.params.TupPP, r.counters.NPages)
	}
}

func TestInsertEveryDataPageGetsAPsigEntry(t *testing.T) {
	r := mustCreate(t, 2, sig.Catc, 4, 32, 32, 32)
	n := 2*r.params.TupPP + 1
	for i := 0; i < n; i++ {
		if _, err := r.Insert([]string{"alice", "30"}); err != nil {
			t.Fatalf("Insert %d: %s", i, err)
		}
	}
	if r.counters.NPsigs != r.counters.NPages {
		t.Fatalf("expected one psig per data page, got %d psigs for %d pages", r.counters.NPsigs, r.counters.NPages)
	}
}

func TestBitSliceTracksInsertingPage(t *testing.T) {
	// simc, because a catc page-signature contribution with tupPP=146 sets
	// no bits and there would be no bit-slice to check.
	r := mustCreate(t, 2, sig.Simc, 4, 32, 32, 32)
	datapid, err := r.Insert([]string{"alice", "30"})
	if err != nil {
		t.Fatalf("Insert: %s", err)
	}
	psigPage, err := r.PsigPage(datapid / r.params.PsigPP)
	if err != nil {
		t.Fatalf("PsigPage: %s", err)
	}
	psigBytes := psigPage.GetItem(datapid%r.params.PsigPP, byteWidth(r.params.Pm))
	anySliceSet := false
	for i := 0; i < r.params.Pm; i++ {
		if psigBytes[i/8]&(1<<uint(i%8)) == 0 {
			continue
		}
		bsigPage, err := r.BsigPage(i / r.params.BsigPP)
		if err != nil {
			t.Fatalf("BsigPage: %s", err)
		}
		slice := bsigPage.GetItem(i%r.params.BsigPP, byteWidth(r.params.Bm))
		if slice[datapid/8]&(1<<uint(datapid%8)) == 0 {
			t.Fatalf("bit-slice %d does not record page %d", i, datapid)
		}
		anySliceSet = true
	}
	if !anySliceSet {
		t.Fatal("expected at least one psig bit set for a non-wildcard tuple")
	}
}

func TestCloseOpenRoundTripsCountersAndParams(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people")
	r, err := Create(false, path, 3, 0.5, sig.Simc, 4, 64, 64, 64)
	if err != nil {
		t.Fatalf("Create: %s", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := r.Insert([]string{"alice", "30", "sydney"}); err != nil {
			t.Fatalf("Insert: %s", err)
		}
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %s", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %s", err)
	}
	if reopened.counters.NTups != 3 {
		t.Fatalf("expected 3 tuples after reopen, got %d", reopened.counters.NTups)
	}
	if reopened.params.SigType != sig.Simc || reopened.params.NAttrs != 3 {
		t.Fatalf("params did not round-trip: %+v", reopened.params)
	}
}
