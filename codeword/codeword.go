// Package codeword implements the pure function that maps an attribute
// value to a sparse bit pattern: a codeword of k bits set among the low u
// positions of an m-bit string, chosen deterministically from hash(v).
//
// original_source/SignatureIndexes/sig.c seeds a single process-global
// libc PRNG (srandom/random) per call. spec.md §9 calls that out as a
// correctness hazard if ever parallelized and asks instead for "a small,
// fast, deterministic PRNG... seeded per call, held thread-local". This
// package follows that instruction literally: each call constructs its own
// generator value on the stack, so concurrent callers never share mutable
// state and no locking is needed.
package codeword

import "github.com/relndb/sigidx/bitstring"

// Wildcard is the attribute value that always produces an all-zero
// codeword, regardless of u, k or m.
const Wildcard = "?"

// Hasher maps an attribute value to a 64-bit seed. The concrete hash
// function is an external collaborator per spec.md §1; FNV1a (see
// DefaultHasher) is the default.
type Hasher func(v string) uint64

// Generate returns an m-bit BitString with k bits set, chosen from the low
// u bits, deterministically from hash(v). u must be <= m and k must be <=
// u. If v equals Wildcard, the result is all zero.
func Generate(hash Hasher, v string, u, k, m int) *bitstring.BitString {
	b := bitstring.New(m)
	if v == Wildcard {
		return b
	}
	rng := newXorshift(hash(v))
	nbits := 0
	for nbits < k {
		i := int(rng.next() % uint64(u))
		if !b.Get(i) {
			b.Set(i)
			nbits++
		}
	}
	return b
}

// xorshift64star is a small, fast, deterministic PRNG. It is not
// cryptographically strong and is not meant to be: codeword generation only
// needs a reproducible scatter of bits, not unpredictability (spec.md §9).
type xorshift64star struct {
	state uint64
}

func newXorshift(seed uint64) *xorshift64star {
	if seed == 0 {
		// A zero state is a fixed point for xorshift; nudge it so hash(v)==0
		// still produces a useful sequence.
		seed = 0x9e3779b97f4a7c15
	}
	return &xorshift64star{state: seed}
}

func (x *xorshift64star) next() uint64 {
	s := x.state
	s ^= s >> 12
	s ^= s << 25
	s ^= s >> 27
	x.state = s
	return s * 0x2545F4914F6CDD1D
}
