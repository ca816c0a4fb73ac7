package lang

import "testing"

func TestCoerce(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"en", "en"},
		{"fr", "fr"},
		{"FR", "fr"},
		{" de ", "de"},
		{"es", "es"},
		{"ja", "en"},
		{"", "en"},
		{"english", "en"},
	}
	for _, tt := range tests {
		if got := Coerce(tt.input); got != tt.want {
			t.Errorf("Coerce(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestOthers(t *testing.T) {
	got := Others("fr")
	if len(got) != 3 {
		t.Fatalf("Others(fr) = %v, want 3 languages", got)
	}
	for _, l := range got {
		if l == "fr" {
			t.Errorf("Others(fr) contains fr: %v", got)
		}
	}
}
