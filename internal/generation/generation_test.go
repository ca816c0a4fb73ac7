package generation

import (
	"reflect"
	"testing"
)

func TestTableContiguous(t *testing.T) {
	next := 1
	for _, r := range Table {
		if r.Min != next {
			t.Fatalf("generation %s starts at %d, want %d", r.Label, r.Min, next)
		}
		if r.Max < r.Min {
			t.Fatalf("generation %s is empty: %d..%d", r.Label, r.Min, r.Max)
		}
		next = r.Max + 1
	}
	if next-1 != MaxID {
		t.Errorf("table ends at %d, MaxID = %d", next-1, MaxID)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"all", nil},
		{"ANY", nil},
		{"0", nil},
		{"1", []string{"1"}},
		{" 3 ", []string{"3"}},
		{"1,3", []string{"1", "3"}},
		{"1|2", []string{"1", "2"}},
		{"1,1,2", []string{"1", "2"}},
		{"1,42", []string{"1"}},
		{"42", nil},
		{"kanto", nil},
	}
	for _, tt := range tests {
		got := Parse(tt.input).Labels()
		if len(got) == 0 {
			got = nil
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Parse(%q).Labels() = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestApply(t *testing.T) {
	ids := []int{1, 25, 151, 152, 251, 252, 1025, 10001}

	got := Parse("1").Apply(ids)
	want := []int{1, 25, 151}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("gen 1: got %v, want %v", got, want)
	}

	got = Parse("2,9").Apply(ids)
	want = []int{152, 251, 1025}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("gen 2,9: got %v, want %v", got, want)
	}

	if got := Parse("").Apply(ids); len(got) != len(ids) {
		t.Errorf("empty filter dropped ids: %v", got)
	}

	if got := Parse("9").Apply([]int{1, 2, 3}); len(got) != 0 {
		t.Errorf("restrictive filter must not fall back, got %v", got)
	}
}

func TestOf(t *testing.T) {
	tests := map[int]string{1: "1", 151: "1", 152: "2", 493: "4", 1025: "9", 0: "", 1026: ""}
	for id, want := range tests {
		if got := Of(id); got != want {
			t.Errorf("Of(%d) = %q, want %q", id, got, want)
		}
	}
}
