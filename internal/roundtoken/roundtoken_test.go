package roundtoken

import (
	"strings"
	"testing"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	c := New("test-secret")
	for _, id := range []int{1, 25, 151, 493, 1025, 10001} {
		tok := c.Sign(id)
		got, ok := c.Verify(tok)
		if !ok || got != id {
			t.Errorf("Verify(Sign(%d)) = %d, %v; want %d, true", id, got, ok, id)
		}
		// Verification is idempotent.
		if again, ok := c.Verify(tok); !ok || again != id {
			t.Errorf("second Verify(Sign(%d)) = %d, %v", id, again, ok)
		}
	}
}

func TestTokenFormat(t *testing.T) {
	tok := New("s").Sign(25)
	id, sig, found := strings.Cut(tok, ".")
	if !found || id != "25" {
		t.Fatalf("token %q: want prefix 25.", tok)
	}
	if len(sig) != 64 || strings.ToLower(sig) != sig {
		t.Errorf("signature %q: want 64 lowercase hex chars", sig)
	}
}

func TestTamperedSignatureRejected(t *testing.T) {
	c := New("test-secret")
	tok := c.Sign(150)
	dot := strings.IndexByte(tok, '.')
	for i := dot + 1; i < len(tok); i++ {
		b := []byte(tok)
		if b[i] == '0' {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
		if id, ok := c.Verify(string(b)); ok {
			t.Errorf("flipped signature char %d accepted as id %d", i-dot-1, id)
		}
	}
	upper := tok[:dot+1] + strings.ToUpper(tok[dot+1:])
	if upper != tok {
		if _, ok := c.Verify(upper); ok {
			t.Error("upper-cased signature accepted")
		}
	}
}

func TestVerifyRejectsMalformed(t *testing.T) {
	c := New("test-secret")
	good := c.Sign(7)
	_, sig, _ := strings.Cut(good, ".")

	tests := []string{
		"",
		"abc",
		"7",
		".",
		"7.",
		"." + sig,
		"7." + sig + ".extra",
		"seven." + sig,
		"07." + sig,
		"+7." + sig,
		" 7." + sig,
		"-7." + New("test-secret").mac("-7"),
		"0." + New("test-secret").mac("0"),
		"8." + sig,
	}
	for _, tok := range tests {
		if id, ok := c.Verify(tok); ok {
			t.Errorf("Verify(%q) = %d, true; want rejection", tok, id)
		}
	}
}

func TestSharedSecretAcrossCodecs(t *testing.T) {
	a := New("shared")
	b := New("shared")
	tok := a.Sign(133)
	if id, ok := b.Verify(tok); !ok || id != 133 {
		t.Errorf("codec B rejected codec A token: %d, %v", id, ok)
	}

	other := New("different")
	if _, ok := other.Verify(tok); ok {
		t.Error("codec with a different secret accepted the token")
	}
}

func TestEmptySecretUsesDevDefault(t *testing.T) {
	tok := New("").Sign(1)
	if _, ok := New(DevSecret).Verify(tok); !ok {
		t.Error("empty secret should sign with DevSecret")
	}
}
