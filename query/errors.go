package query

import "errors"

// ErrMalformedQuery is wrapped by New when the query string's field count
// does not match the relation's attribute count.
var ErrMalformedQuery = errors.New("query: malformed query string")
