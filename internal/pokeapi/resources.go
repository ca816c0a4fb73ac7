package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// NamedResource is PokeAPI's {name, url} reference.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ID returns the numeric id at the end of URL.
func (r NamedResource) ID() int { return IDFromURL(r.URL) }

// SpeciesList returns every species reference, in upstream order.
func (c *Client) SpeciesList(ctx context.Context) ([]NamedResource, error) {
	body, err := c.get(ctx, c.resource("pokemon-species")+"?limit=20000")
	if err != nil {
		return nil, err
	}
	var page struct {
		Results []NamedResource `json:"results"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("pokeapi: decode species list: %w", err)
	}
	return page.Results, nil
}

// Species is the subset of /pokemon-species/{id} the games use.
type Species struct {
	ID                int
	Name              string
	Names             map[string]string // language -> display name
	Flavor            map[string]string // language -> first cleaned flavor text
	FlavorAny         string
	Color             string
	Generation        int
	EvolutionChainURL string
	DefaultPokemonID  int
}

type speciesJSON struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Names []struct {
		Name     string        `json:"name"`
		Language NamedResource `json:"language"`
	} `json:"names"`
	FlavorTextEntries []struct {
		FlavorText string        `json:"flavor_text"`
		Language   NamedResource `json:"language"`
	} `json:"flavor_text_entries"`
	Color          NamedResource `json:"color"`
	Generation     NamedResource `json:"generation"`
	EvolutionChain struct {
		URL string `json:"url"`
	} `json:"evolution_chain"`
	Varieties []struct {
		IsDefault bool          `json:"is_default"`
		Pokemon   NamedResource `json:"pokemon"`
	} `json:"varieties"`
}

// Species fetches /pokemon-species/{id}.
func (c *Client) Species(ctx context.Context, id int) (*Species, error) {
	body, err := c.get(ctx, c.resource("pokemon-species", strconv.Itoa(id)))
	if err != nil {
		return nil, err
	}
	var raw speciesJSON
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("pokeapi: decode species %d: %w", id, err)
	}

	s := &Species{
		ID:                raw.ID,
		Name:              raw.Name,
		Names:             make(map[string]string, len(raw.Names)),
		Flavor:            make(map[string]string),
		Color:             raw.Color.Name,
		Generation:        raw.Generation.ID(),
		EvolutionChainURL: raw.EvolutionChain.URL,
	}
	for _, n := range raw.Names {
		if n.Name != "" {
			s.Names[n.Language.Name] = n.Name
		}
	}
	for _, e := range raw.FlavorTextEntries {
		text := CleanFlavorText(e.FlavorText)
		if text == "" {
			continue
		}
		if _, seen := s.Flavor[e.Language.Name]; !seen {
			s.Flavor[e.Language.Name] = text
		}
		if s.FlavorAny == "" {
			s.FlavorAny = text
		}
	}
	for _, v := range raw.Varieties {
		if v.IsDefault {
			s.DefaultPokemonID = v.Pokemon.ID()
			break
		}
	}
	if s.DefaultPokemonID == 0 {
		s.DefaultPokemonID = s.ID
	}
	return s, nil
}

// CleanFlavorText turns game text control characters into spaces and
// collapses runs of whitespace.
func CleanFlavorText(s string) string {
	s = strings.NewReplacer("\f", " ", "\n", " ", "\r", " ", "\u00ad", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Pokemon is the subset of /pokemon/{id or name} the games use.
type Pokemon struct {
	ID          int
	Name        string
	SpeciesID   int
	SpeciesName string
	Sprite      string
	Cry         string
	Types       []string // ordered by slot
	Height      int      // decimetres
	Weight      int      // hectograms
}

// Pokemon fetches /pokemon/{ref}, where ref is an id or a slug.
func (c *Client) Pokemon(ctx context.Context, ref string) (*Pokemon, error) {
	body, err := c.get(ctx, c.resource("pokemon", strings.ToLower(ref)))
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("pokeapi: decode pokemon %s: invalid json", ref)
	}

	doc := gjson.ParseBytes(body)
	p := &Pokemon{
		ID:          int(doc.Get("id").Int()),
		Name:        doc.Get("name").String(),
		SpeciesName: doc.Get("species.name").String(),
		SpeciesID:   IDFromURL(doc.Get("species.url").String()),
		Sprite:      pickSprite(doc.Get("sprites")),
		Cry:         firstNonEmpty(doc.Get("cries.latest").String(), doc.Get("cries.legacy").String()),
		Height:      int(doc.Get("height").Int()),
		Weight:      int(doc.Get("weight").Int()),
	}

	type slotted struct {
		slot int64
		name string
	}
	var types []slotted
	doc.Get("types").ForEach(func(_, t gjson.Result) bool {
		types = append(types, slotted{t.Get("slot").Int(), t.Get("type.name").String()})
		return true
	})
	sort.SliceStable(types, func(i, j int) bool { return types[i].slot < types[j].slot })
	for _, t := range types {
		p.Types = append(p.Types, t.name)
	}
	return p, nil
}

// pickSprite prefers official artwork, then the default front sprite, then
// any other artwork set that has a front image.
func pickSprite(sprites gjson.Result) string {
	if u := sprites.Get("other.official-artwork.front_default").String(); u != "" {
		return u
	}
	if u := sprites.Get("front_default").String(); u != "" {
		return u
	}
	var found string
	sprites.Get("other").ForEach(func(_, set gjson.Result) bool {
		found = set.Get("front_default").String()
		return found == ""
	})
	return found
}

// PokemonForm fetches /pokemon-form/{slug} and returns the id of the
// pokemon that owns the form.
func (c *Client) PokemonForm(ctx context.Context, slug string) (int, error) {
	body, err := c.get(ctx, c.resource("pokemon-form", strings.ToLower(slug)))
	if err != nil {
		return 0, err
	}
	id := IDFromURL(gjson.GetBytes(body, "pokemon.url").String())
	if id == 0 {
		return 0, fmt.Errorf("pokeapi: form %s has no pokemon", slug)
	}
	return id, nil
}

// EvolutionChain fetches an evolution chain by URL and flattens it into the
// root-to-node path of every species in it, parents before children. A
// species' index in its path is its stage.
func (c *Client) EvolutionChain(ctx context.Context, url string) ([][]string, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	var paths [][]string
	walkChain(gjson.GetBytes(body, "chain"), nil, &paths)
	return paths, nil
}

func walkChain(node gjson.Result, prefix []string, out *[][]string) {
	path := prefix
	if name := node.Get("species.name").String(); name != "" {
		path = append(append([]string(nil), prefix...), name)
		*out = append(*out, path)
	}
	node.Get("evolves_to").ForEach(func(_, next gjson.Result) bool {
		walkChain(next, path, out)
		return true
	})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
