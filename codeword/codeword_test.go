package codeword

import "testing"

// P6: codeword determinism.
func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(DefaultHasher, "sydney", 32, 4, 64)
	b := Generate(DefaultHasher, "sydney", 32, 4, 64)
	if a.HexString() != b.HexString() {
		t.Fatalf("expected identical codewords for the same input, got %s and %s", a.HexString(), b.HexString())
	}
}

func TestGenerateWildcardIsAllZero(t *testing.T) {
	b := Generate(DefaultHasher, Wildcard, 32, 4, 64)
	if b.Count() != 0 {
		t.Fatalf("expected wildcard codeword to be all zero, got %d bits set", b.Count())
	}
}

func TestGenerateSetsExactlyKBits(t *testing.T) {
	b := Generate(DefaultHasher, "perth", 20, 6, 32)
	if c := b.Count(); c != 6 {
		t.Fatalf("expected 6 bits set, got %d", c)
	}
}

func TestGenerateOnlyTouchesLowUBits(t *testing.T) {
	const u = 10
	b := Generate(DefaultHasher, "alice", u, 5, 64)
	for i := u; i < 64; i++ {
		if b.Get(i) {
			t.Fatalf("expected bit %d >= u=%d to be clear", i, u)
		}
	}
}

func TestGenerateDiffersAcrossValues(t *testing.T) {
	a := Generate(DefaultHasher, "alice", 32, 4, 64)
	b := Generate(DefaultHasher, "bob", 32, 4, 64)
	if a.HexString() == b.HexString() {
		t.Fatal("expected distinct attribute values to (almost certainly) produce distinct codewords")
	}
}
