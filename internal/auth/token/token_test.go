package token

import "testing"

func TestGenerate_ProducesUniqueTokens(t *testing.T) {
	a, err := Generate(48)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate(48)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if a == "" || a == b {
		t.Fatalf("tokens must be non-empty and unique, got %q and %q", a, b)
	}
}

func TestHash_IsDeterministicAndOpaque(t *testing.T) {
	raw := "some-refresh-token"
	if Hash(raw) != Hash(raw) {
		t.Fatal("hash of the same input must be stable")
	}
	if Hash(raw) == raw {
		t.Fatal("hash must not equal the raw token")
	}
	if Hash(raw) == Hash(raw+"x") {
		t.Fatal("different inputs must not collide")
	}
}
