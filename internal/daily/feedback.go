package daily

import (
	"context"
	"fmt"
)

// Status grades one attribute of a guess.
type Status string

const (
	StatusCorrect Status = "correct"
	StatusWrong   Status = "wrong"
)

// Direction says which way the answer lies from a wrong numeric guess.
type Direction string

const (
	Higher Direction = "higher"
	Lower  Direction = "lower"
)

// Relation places the guess in the answer's evolution family.
type Relation string

const (
	RelationSame       Relation = "same"
	RelationPre        Relation = "pre"
	RelationPost       Relation = "post"
	RelationSameFamily Relation = "same-family"
	RelationUnrelated  Relation = "unrelated"
)

// Attributes are the comparable facts about a species. Forms are ignored:
// numbers come from the species' default creature.
type Attributes struct {
	SpeciesID  int
	Slug       string
	Types      []string
	Height     int // decimetres
	Weight     int // hectograms
	Color      string
	Generation int
	// Stage is 1-based; Stage and StageTotal are 0 when unknown.
	Stage      int
	StageTotal int

	stages map[string]int // family member slug -> 0-based stage
}

// Attributes returns the cached attributes of species id.
func (g *Game) Attributes(ctx context.Context, id int) (*Attributes, error) {
	return g.attrs.GetOrFetch(ctx, id, func(ctx context.Context) (*Attributes, error) {
		return g.loadAttributes(ctx, id)
	})
}

func (g *Game) loadAttributes(ctx context.Context, id int) (*Attributes, error) {
	sp, err := g.src.SpeciesDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("daily: species %d: %w", id, err)
	}
	base := sp.DefaultPokemonID
	if base == 0 {
		base = id
	}
	p, err := g.src.PokemonDetail(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("daily: pokemon %d: %w", base, err)
	}

	a := &Attributes{
		SpeciesID:  id,
		Slug:       firstNonEmpty(p.SpeciesName, sp.Name, p.Name),
		Types:      p.Types,
		Height:     p.Height,
		Weight:     p.Weight,
		Color:      sp.Color,
		Generation: sp.Generation,
		stages:     map[string]int{},
	}

	paths, err := g.src.EvolutionPaths(ctx, sp.EvolutionChainURL)
	if err != nil {
		g.log.Debug("evolution chain unavailable", "id", id, "err", err)
	}
	totals := map[string]int{}
	for _, path := range paths {
		for i, slug := range path {
			a.stages[slug] = i
			totals[slug] = len(path)
		}
	}
	if i, ok := a.stages[a.Slug]; ok {
		a.Stage, a.StageTotal = i+1, totals[a.Slug]
	}
	return a, nil
}

// TypesHint grades each of the two type slots independently.
type TypesHint struct {
	Value  []string  `json:"value"`
	Status [2]Status `json:"status"`
}

// NumberHint grades a numeric attribute.
type NumberHint struct {
	Value  int       `json:"value"`
	Status Status    `json:"status"`
	Dir    Direction `json:"dir,omitempty"`
}

// StageValue is a position in an evolution line.
type StageValue struct {
	Stage int `json:"stage"`
	Total int `json:"total"`
}

// StageHint grades the evolution stage.
type StageHint struct {
	Value  StageValue `json:"value"`
	Status Status     `json:"status"`
	Dir    Direction  `json:"dir,omitempty"`
}

// ColorHint grades the Pokédex color.
type ColorHint struct {
	Value  string `json:"value"`
	Status Status `json:"status"`
}

// EvolutionHint relates the guess to the answer's family.
type EvolutionHint struct {
	Value Relation `json:"value"`
}

// Feedback describes a guessed species relative to the answer.
type Feedback struct {
	Name       string        `json:"name"`
	SpeciesID  int           `json:"species_id"`
	Types      TypesHint     `json:"types"`
	Generation NumberHint    `json:"generation"`
	Evolution  EvolutionHint `json:"evolution"`
	EvoStage   StageHint     `json:"evo_stage"`
	Height     NumberHint    `json:"height"`
	Weight     NumberHint    `json:"weight"`
	Color      ColorHint     `json:"color"`

	correct bool
}

// Compare grades guess against answer. A guess is correct when it names the
// same species, whatever form was typed; height and weight then count as
// correct too.
func Compare(answer, guess *Attributes) Feedback {
	fb := Feedback{
		SpeciesID:  guess.SpeciesID,
		Types:      TypesHint{Value: guess.Types},
		Generation: compareNumber(answer.Generation, guess.Generation),
		Evolution:  EvolutionHint{Value: relation(answer, guess)},
		Height:     compareNumber(answer.Height, guess.Height),
		Weight:     compareNumber(answer.Weight, guess.Weight),
		Color:      ColorHint{Value: guess.Color, Status: StatusWrong},
		correct:    guess.Slug == answer.Slug,
	}
	if fb.Types.Value == nil {
		fb.Types.Value = []string{}
	}

	for slot := range fb.Types.Status {
		a, g := typeAt(answer.Types, slot), typeAt(guess.Types, slot)
		fb.Types.Status[slot] = StatusWrong
		if a == g {
			fb.Types.Status[slot] = StatusCorrect
		}
	}

	stage := compareNumber(answer.Stage, guess.Stage)
	fb.EvoStage = StageHint{
		Value:  StageValue{Stage: guess.Stage, Total: guess.StageTotal},
		Status: stage.Status,
		Dir:    stage.Dir,
	}

	if guess.Color != "" && guess.Color == answer.Color {
		fb.Color.Status = StatusCorrect
	}

	if fb.correct {
		fb.Height = NumberHint{Value: guess.Height, Status: StatusCorrect}
		fb.Weight = NumberHint{Value: guess.Weight, Status: StatusCorrect}
	}
	return fb
}

// compareNumber grades guess against answer. Zero means unknown and is
// always wrong, without a direction.
func compareNumber(answer, guess int) NumberHint {
	h := NumberHint{Value: guess, Status: StatusWrong}
	switch {
	case answer == 0 || guess == 0:
	case guess == answer:
		h.Status = StatusCorrect
	case guess < answer:
		h.Dir = Higher
	default:
		h.Dir = Lower
	}
	return h
}

func relation(answer, guess *Attributes) Relation {
	if guess.Slug == answer.Slug {
		return RelationSame
	}
	gi, inFamily := answer.stages[guess.Slug]
	if !inFamily {
		return RelationUnrelated
	}
	ai, ok := answer.stages[answer.Slug]
	switch {
	case !ok:
		return RelationSameFamily
	case gi < ai:
		return RelationPre
	case gi > ai:
		return RelationPost
	}
	return RelationSame
}

func typeAt(types []string, slot int) string {
	if slot < len(types) {
		return types[slot]
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
