package codeword

import "hash/fnv"

// DefaultHasher hashes an attribute value with FNV-1a (stdlib hash/fnv).
// The signature index treats the hash function as an external collaborator
// (spec.md §1); no third-party hash library appears anywhere in the
// retrieval pack, so the standard library's well-known string hash is the
// grounded, unsurprising default.
func DefaultHasher(v string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(v))
	return h.Sum64()
}
