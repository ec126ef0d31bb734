// Package reln implements the Relation: the five-file unit (data, tsig,
// psig, bsig, info) a signature index is built from, and the Insert
// operation that keeps all four data-bearing files in lockstep. Grounded on
// original_source/SignatureIndexes/reln.c's newRelation, openRelation,
// closeRelation, addToRelation and relationStats.
package reln

import (
	"fmt"

	"github.com/relndb/sigidx/bitstring"
	"github.com/relndb/sigidx/codeword"
	"github.com/relndb/sigidx/page"
	"github.com/relndb/sigidx/pagedfile"
	"github.com/relndb/sigidx/sig"
	"github.com/relndb/sigidx/tuple"
	"github.com/relndb/sigidx/tuple/csv"
)

// Relation binds a relation's static Params, its dynamic Counters, the four
// PagedFiles holding data/tsig/psig/bsig, and the tuple codec and hash
// function used to build signatures.
type Relation struct {
	name      string
	useMemory bool

	params   Params
	counters Counters

	codec tuple.Codec
	hash  codeword.Hasher

	data *pagedfile.PagedFile
	tsig *pagedfile.PagedFile
	psig *pagedfile.PagedFile
	bsig *pagedfile.PagedFile
}

func suffixed(name, suffix string) string {
	if name == "" {
		return ""
	}
	return name + "." + suffix
}

func infoPath(name string) string { return suffixed(name, "info") }

// Params returns the relation's static parameters.
func (r *Relation) Params() Params { return r.params }

// Counters returns a snapshot of the relation's dynamic counters.
func (r *Relation) Counters() Counters { return r.counters }

// Codec returns the tuple codec this relation was created with.
func (r *Relation) Codec() tuple.Codec { return r.codec }

// Hash returns the hash function this relation's signatures are built
// with.
func (r *Relation) Hash() codeword.Hasher { return r.hash }

// NPages returns the number of allocated data pages.
func (r *Relation) NPages() int { return r.counters.NPages }

// DataPage reads the n'th data page.
func (r *Relation) DataPage(n int) (*page.Page, error) { return r.data.GetPage(n) }

// TsigPage reads the n'th tsig page.
func (r *Relation) TsigPage(n int) (*page.Page, error) { return r.tsig.GetPage(n) }

// PsigPage reads the n'th psig page.
func (r *Relation) PsigPage(n int) (*page.Page, error) { return r.psig.GetPage(n) }

// BsigPage reads the n'th bsig page.
func (r *Relation) BsigPage(n int) (*page.Page, error) { return r.bsig.GetPage(n) }

// Tuple decodes the slot'th tuple of data page p.
func (r *Relation) Tuple(p *page.Page, slot int) (tuple.Tuple, error) {
	return r.codec.Parse(p.GetItem(slot, r.params.TupSize))
}

// Create builds a brand new relation with an empty data page, an empty
// tsig page, an empty psig page, and a bsig file pre-populated with pm
// all-zero bm-bit bit-slices, one per possible psig bit position. Grounded
// on reln.c's newRelation, including its pm-iteration loop that fills the
// bsig file before any tuple is ever inserted.
//
// When useMemory is true, name is used only to label the relation; no
// files are created on disk and Close is a no-op besides releasing memory.
func Create(useMemory bool, name string, nattrs int, pF float64, sigType sig.Type, tk, tm, pm, bm int) (*Relation, error) {
	params, err := newParams(nattrs, pF, sigType, tk, tm, pm, bm)
	if err != nil {
		return nil, err
	}

	data, err := pagedfile.Open(useMemory, suffixed(name, "data"), 0)
	if err != nil {
		return nil, fmt.Errorf("reln: error creating data file: %w", err)
	}
	tsigf, err := pagedfile.Open(useMemory, suffixed(name, "tsig"), 0)
	if err != nil {
		return nil, fmt.Errorf("reln: error creating tsig file: %w", err)
	}
	psigf, err := pagedfile.Open(useMemory, suffixed(name, "psig"), 0)
	if err != nil {
		return nil, fmt.Errorf("reln: error creating psig file: %w", err)
	}
	bsigf, err := pagedfile.Open(useMemory, suffixed(name, "bsig"), 0)
	if err != nil {
		return nil, fmt.Errorf("reln: error creating bsig file: %w", err)
	}

	counters := Counters{}

	if _, err := data.AddPage(); err != nil {
		return nil, fmt.Errorf("reln: error allocating first data page: %w", err)
	}
	counters.NPages = 1

	if _, err := tsigf.AddPage(); err != nil {
		return nil, fmt.Errorf("reln: error allocating first tsig page: %w", err)
	}
	counters.TsigNPages = 1

	if _, err := psigf.AddPage(); err != nil {
		return nil, fmt.Errorf("reln: error allocating first psig page: %w", err)
	}
	counters.PsigNPages = 1

	bsigPage, err := bsigf.AddPage()
	if err != nil {
		return nil, fmt.Errorf("reln: error allocating first bsig page: %w", err)
	}
	counters.BsigNPages = 1

	zero := bitstring.New(params.Bm)
	for i := 0; i < params.Pm; i++ {
		if bsigPage.NItems() == params.BsigPP {
			if err := bsigf.PutPage(bsigPage); err != nil {
				return nil, fmt.Errorf("reln: error flushing bsig page: %w", err)
			}
			bsigPage, err = bsigf.AddPage()
			if err != nil {
				return nil, fmt.Errorf("reln: error allocating bsig page: %w", err)
			}
			counters.BsigNPages++
		}
		bsigPage.PutItem(bsigPage.NItems(), zero.Bytes())
		bsigPage.AddOneItem()
		counters.NBsigs++
	}
	if err := bsigf.PutPage(bsigPage); err != nil {
		return nil, fmt.Errorf("reln: error flushing bsig page: %w", err)
	}

	if !useMemory {
		if err := writeInfoFile(infoPath(name), params, counters); err != nil {
			return nil, err
		}
	}

	return &Relation{
		name:      name,
		useMemory: useMemory,
		params:    params,
		counters:  counters,
		codec:     csv.New(nattrs),
		hash:      codeword.DefaultHasher,
		data:      data,
		tsig:      tsigf,
		psig:      psigf,
		bsig:      bsigf,
	}, nil
}

// Open reopens an existing on-disk relation, reading its persisted params
// and counters from the .info file.
func Open(name string) (*Relation, error) {
	params, counters, err := readInfoFile(infoPath(name))
	if err != nil {
		return nil, err
	}
	data, err := pagedfile.Open(false, suffixed(name, "data"), counters.NPages)
	if err != nil {
		return nil, fmt.Errorf("reln: error opening data file: %w", err)
	}
	tsigf, err := pagedfile.Open(false, suffixed(name, "tsig"), counters.TsigNPages)
	if err != nil {
		return nil, fmt.Errorf("reln: error opening tsig file: %w", err)
	}
	psigf, err := pagedfile.Open(false, suffixed(name, "psig"), counters.PsigNPages)
	if err != nil {
		return nil, fmt.Errorf("reln: error opening psig file: %w", err)
	}
	bsigf, err := pagedfile.Open(false, suffixed(name, "bsig"), counters.BsigNPages)
	if err != nil {
		return nil, fmt.Errorf("reln: error opening bsig file: %w", err)
	}
	return &Relation{
		name:     name,
		params:   params,
		counters: counters,
		codec:    csv.New(params.NAttrs),
		hash:     codeword.DefaultHasher,
		data:     data,
		tsig:     tsigf,
		psig:     psigf,
		bsig:     bsigf,
	}, nil
}

// Close persists the current counters to the info file (the params never
// change after Create) and releases the four paged files' file handles.
func (r *Relation) Close() error {
	if !r.useMemory {
		if err := writeInfoFile(infoPath(r.name), r.params, r.counters); err != nil {
			return err
		}
	}
	for _, f := range []*pagedfile.PagedFile{r.data, r.tsig, r.psig, r.bsig} {
		if err := f.Close(); err != nil {
			return fmt.Errorf("reln: error closing relation %s: %w", r.name, err)
		}
	}
	return nil
}

// Insert encodes fields into a tuple using the relation's codec and appends
// it, returning the data page id it landed on. It is the single entry
// point addToRelation's four steps are performed under: data page, tsig,
// psig, then the bit-slice update.
func (r *Relation) Insert(fields []string) (int, error) {
	t, err := r.codec.Encode(fields)
	if err != nil {
		return 0, err
	}
	return r.insertTuple(t)
}

func (r *Relation) insertTuple(t tuple.Tuple) (int, error) {
	datapid, err := r.appendTuple(t)
	if err != nil {
		return 0, err
	}
	if err := r.appendTupleSig(t); err != nil {
		return 0, err
	}
	tuppsig, err := r.updatePageSig(t, datapid)
	if err != nil {
		return 0, err
	}
	if err := r.updateBitSlices(tuppsig, datapid); err != nil {
		return 0, err
	}
	return datapid, nil
}

// appendTuple adds t to the last data page, allocating a new one first if
// the last page is full.
func (r *Relation) appendTuple(t tuple.Tuple) (int, error) {
	datapid := r.counters.NPages - 1
	datapage, err := r.data.GetPage(datapid)
	if err != nil {
		return 0, fmt.Errorf("reln: error reading last data page: %w", err)
	}
	if datapage.NItems() == r.params.TupPP {
		datapid++
		datapage, err = r.data.AddPage()
		if err != nil {
			return 0, fmt.Errorf("reln: error allocating data page: %w", err)
		}
		r.counters.NPages++
	}
	datapage.PutItem(datapage.NItems(), t.Bytes())
	datapage.AddOneItem()
	r.counters.NTups++
	if err := r.data.PutPage(datapage); err != nil {
		return 0, fmt.Errorf("reln: error writing data page: %w", err)
	}
	return datapid, nil
}

// appendTupleSig computes t's tuple signature and appends it to the tsig
// file, independently of the data file's page boundaries.
func (r *Relation) appendTupleSig(t tuple.Tuple) error {
	tsig := sig.MakeTupleSig(r.hash, t, r.params.NAttrs, r.params.SigType, r.params.Tk, r.params.Tm)
	tsigpid := r.counters.TsigNPages - 1
	tsigpage, err := r.tsig.GetPage(tsigpid)
	if err != nil {
		return fmt.Errorf("reln: error reading last tsig page: %w", err)
	}
	if tsigpage.NItems() == r.params.TsigPP {
		tsigpid++
		tsigpage, err = r.tsig.AddPage()
		if err != nil {
			return fmt.Errorf("reln: error allocating tsig page: %w", err)
		}
		r.counters.TsigNPages++
	}
	tsigpage.PutItem(tsigpage.NItems(), tsig.Bytes())
	tsigpage.AddOneItem()
	r.counters.NTsigs++
	if err := r.tsig.PutPage(tsigpage); err != nil {
		return fmt.Errorf("reln: error writing tsig page: %w", err)
	}
	return nil
}

// updatePageSig ORs t's page-signature contribution into the psig entry
// for datapid's page, allocating a new psig page when datapid crosses a
// psigPP boundary. It returns the tuple's own page-signature contribution,
// which the bit-slice update needs next.
func (r *Relation) updatePageSig(t tuple.Tuple, datapid int) (*bitstring.BitString, error) {
	tuppsig := sig.MakePageSig(r.hash, t, r.params.NAttrs, r.params.SigType, r.params.Tk, r.params.Pm, r.params.TupPP)

	psigpid := datapid / r.params.PsigPP
	var psigpage *page.Page
	var err error
	if psigpid > r.counters.PsigNPages-1 {
		psigpage, err = r.psig.AddPage()
		if err != nil {
			return nil, fmt.Errorf("reln: error allocating psig page: %w", err)
		}
		r.counters.PsigNPages++
	} else {
		psigpage, err = r.psig.GetPage(psigpid)
		if err != nil {
			return nil, fmt.Errorf("reln: error reading psig page %d: %w", psigpid, err)
		}
	}

	pmBytes := byteWidth(r.params.Pm)
	slot := datapid % r.params.PsigPP
	curpsig := bitstring.FromBytes(psigpage.GetItem(slot, pmBytes), r.params.Pm)
	curpsig.Or(tuppsig)
	psigpage.PutItem(slot, curpsig.Bytes())
	if r.counters.NPsigs < r.counters.NPages {
		r.counters.NPsigs++
		psigpage.AddOneItem()
	}
	if err := r.psig.PutPage(psigpage); err != nil {
		return nil, fmt.Errorf("reln: error writing psig page %d: %w", psigpid, err)
	}
	return tuppsig, nil
}

// updateBitSlices sets bit datapid in every bit-slice i for which
// tuppsig's bit i is set, matching addToRelation's final loop over
// psigBits(r).
func (r *Relation) updateBitSlices(tuppsig *bitstring.BitString, datapid int) error {
	bmBytes := byteWidth(r.params.Bm)
	var bsigpage *page.Page
	bsigpid := -1
	for i := 0; i < r.params.Pm; i++ {
		if !tuppsig.Get(i) {
			continue
		}
		pid := i / r.params.BsigPP
		if pid != bsigpid {
			if bsigpage != nil {
				if err := r.bsig.PutPage(bsigpage); err != nil {
					return fmt.Errorf("reln: error writing bsig page %d: %w", bsigpid, err)
				}
			}
			var err error
			bsigpage, err = r.bsig.GetPage(pid)
			if err != nil {
				return fmt.Errorf("reln: error reading bsig page %d: %w", pid, err)
			}
			bsigpid = pid
		}
		slot := i % r.params.BsigPP
		slice := bitstring.FromBytes(bsigpage.GetItem(slot, bmBytes), r.params.Bm)
		slice.Set(datapid)
		bsigpage.PutItem(slot, slice.Bytes())
	}
	if bsigpage != nil {
		if err := r.bsig.PutPage(bsigpage); err != nil {
			return fmt.Errorf("reln: error writing bsig page %d: %w", bsigpid, err)
		}
	}
	return nil
}

// Stats renders the same dynamic and static counters
// original_source/SignatureIndexes/reln.c's relationStats prints.
func (r *Relation) Stats() string {
	p, c := r.params, r.counters
	s := fmt.Sprintf("Dynamic:\n  #items:  tuples: %d  tsigs: %d  psigs: %d  bsigs: %d\n", c.NTups, c.NTsigs, c.NPsigs, c.NBsigs)
	s += fmt.Sprintf("  #pages:  tuples: %d  tsigs: %d  psigs: %d  bsigs: %d\n", c.NPages, c.TsigNPages, c.PsigNPages, c.BsigNPages)
	s += "Static:\n"
	s += fmt.Sprintf("  tups   #attrs: %d  size: %d bytes  max/page: %d\n", p.NAttrs, p.TupSize, p.TupPP)
	s += fmt.Sprintf("  sigs   %s", p.SigType)
	if p.SigType == sig.Simc {
		s += fmt.Sprintf("  bits/attr: %d", p.Tk)
	}
	s += "\n"
	s += fmt.Sprintf("  tsigs  size: %d bits (%d bytes)  max/page: %d\n", p.Tm, byteWidth(p.Tm), p.TsigPP)
	s += fmt.Sprintf("  psigs  size: %d bits (%d bytes)  max/page: %d\n", p.Pm, byteWidth(p.Pm), p.PsigPP)
	s += fmt.Sprintf("  bsigs  size: %d bits (%d bytes)  max/page: %d\n", p.Bm, byteWidth(p.Bm), p.BsigPP)
	return s
}
