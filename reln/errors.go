package reln

import (
	"errors"

	"github.com/relndb/sigidx/pagedfile"
)

var (
	// ErrConfigTooNarrow is returned by Create when pm or bm is too wide
	// for the derived psigPP or bsigPP to hold at least two items per
	// page.
	ErrConfigTooNarrow = errors.New("reln: signature width leaves fewer than two entries per page")

	// ErrIO is the sentinel every page read or write failure wraps,
	// re-exported from pagedfile so callers can test for it without
	// importing pagedfile themselves.
	ErrIO = pagedfile.ErrIO
)
