// Package generation maps game generations onto National Dex id ranges and
// restricts random draws to the generations a player asked for.
package generation

import (
	"strings"

	"github.com/samber/lo"
)

// Range is an inclusive id interval belonging to one generation.
type Range struct {
	Label string
	Min   int
	Max   int
}

// Contains reports whether id falls inside r.
func (r Range) Contains(id int) bool {
	return r.Min <= id && id <= r.Max
}

// Table is ordered, contiguous and non-overlapping from 1 through MaxID.
var Table = []Range{
	{"1", 1, 151},
	{"2", 152, 251},
	{"3", 252, 386},
	{"4", 387, 493},
	{"5", 494, 649},
	{"6", 650, 721},
	{"7", 722, 809},
	{"8", 810, 905},
	{"9", 906, 1025},
}

// MaxID is the highest species id covered by Table.
var MaxID = Table[len(Table)-1].Max

// Filter is a parsed generation selection. The zero value selects everything.
type Filter struct {
	ranges []Range
}

// Parse reads a selection such as "3", "1,3,5" or "1|2". Empty input, "all",
// "any" and "0" select everything; unknown labels are dropped, and a filter
// with no known labels also selects everything.
func Parse(raw string) Filter {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "", "all", "any", "0":
		return Filter{}
	}
	parts := strings.Split(strings.ReplaceAll(s, "|", ","), ",")
	var out []Range
	for _, p := range lo.Uniq(lo.Map(parts, func(p string, _ int) string { return strings.TrimSpace(p) })) {
		if r, ok := Lookup(p); ok {
			out = append(out, r)
		}
	}
	return Filter{ranges: out}
}

// Lookup returns the range for a generation label.
func Lookup(label string) (Range, bool) {
	return lo.Find(Table, func(r Range) bool { return r.Label == label })
}

// All reports whether f places no restriction on ids.
func (f Filter) All() bool {
	return len(f.ranges) == 0
}

// Labels returns the selected generation labels, or nil for All.
func (f Filter) Labels() []string {
	return lo.Map(f.ranges, func(r Range, _ int) string { return r.Label })
}

// Allows reports whether id is inside the selection.
func (f Filter) Allows(id int) bool {
	if f.All() {
		return true
	}
	return lo.SomeBy(f.ranges, func(r Range) bool { return r.Contains(id) })
}

// Apply returns the ids allowed by f, preserving order. A restrictive
// filter may legitimately return an empty slice.
func (f Filter) Apply(ids []int) []int {
	if f.All() {
		return ids
	}
	return lo.Filter(ids, func(id int, _ int) bool { return f.Allows(id) })
}

// Of returns the generation label for id, or "" when id is out of range.
func Of(id int) string {
	if r, ok := lo.Find(Table, func(r Range) bool { return r.Contains(id) }); ok {
		return r.Label
	}
	return ""
}
