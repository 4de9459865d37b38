package auth

import "testing"

func TestGenerateTokenShape(t *testing.T) {
	tg := NewTokenGenerator()
	tok, err := tg.Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(tok) != TokenLength {
		t.Fatalf("expected %d characters, got %d (%q)", TokenLength, len(tok), tok)
	}
	if !tok.IsWellFormed() {
		t.Fatalf("generated token %q is not lowercase hex", tok)
	}
}

func TestGenerateTokenUniqueness(t *testing.T) {
	tg := NewTokenGenerator()
	seen := make(map[Token]bool)
	for i := 0; i < 1000; i++ {
		tok, err := tg.Generate()
		if err != nil {
			t.Fatalf("Generate failed on draw %d: %v", i, err)
		}
		if seen[tok] {
			t.Fatalf("duplicate token %q after %d draws", tok, i)
		}
		seen[tok] = true
	}
}

func TestIsWellFormed(t *testing.T) {
	cases := []struct {
		token Token
		want  bool
	}{
		{"0123456789abcdef0123456789abcdef", true},
		{"0123456789ABCDEF0123456789ABCDEF", false}, // uppercase
		{"0123456789abcdef0123456789abcde", false},  // 31 chars
		{"0123456789abcdef0123456789abcdef0", false},
		{"0123456789abcdeg0123456789abcdef", false}, // non-hex
		{"", false},
	}
	for _, c := range cases {
		if got := c.token.IsWellFormed(); got != c.want {
			t.Errorf("IsWellFormed(%q) = %v, want %v", c.token, got, c.want)
		}
	}
}
