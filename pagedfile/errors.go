package pagedfile

import "errors"

// ErrIO is wrapped by every failure to read or write a page, the same way
// chirst-cdb/vm.ErrVersionChanged is a single sentinel every caller up the
// stack can test for with errors.Is rather than matching error strings.
var ErrIO = errors.New("pagedfile: I/O error")
