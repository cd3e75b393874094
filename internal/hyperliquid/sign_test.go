package hyperliquid

import "testing"

const testPrivateKey = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690"

func TestNewSignerDerivesAddress(t *testing.T) {
	t.Parallel()

	s, err := NewSigner(testPrivateKey, 421614)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	if s.Address().Hex() == "" {
		t.Fatal("expected a derived address")
	}
}

func TestNewSignerAcceptsHexPrefix(t *testing.T) {
	t.Parallel()

	s1, err := NewSigner(testPrivateKey, 421614)
	if err != nil {
		t.Fatalf("NewSigner without prefix: %v", err)
	}
	s2, err := NewSigner("0x"+testPrivateKey, 421614)
	if err != nil {
		t.Fatalf("NewSigner with 0x prefix: %v", err)
	}
	if s1.Address() != s2.Address() {
		t.Fatal("0x-prefixed and bare hex keys should derive the same address")
	}
}

func TestSignActionProducesNonEmptyComponents(t *testing.T) {
	t.Parallel()

	s, err := NewSigner(testPrivateKey, 421614)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	r, v1, v2, err := s.SignAction(1, []byte("action-hash-placeholder-32-bytes"))
	if err != nil {
		t.Fatalf("SignAction: %v", err)
	}
	if r == "" || v1 == "" || v2 == "" {
		t.Fatalf("expected non-empty signature components, got r=%q s=%q v=%q", r, v1, v2)
	}
}
