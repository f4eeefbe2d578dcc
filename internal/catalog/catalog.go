// Package catalog holds the static category catalog for Indian construction
// expenses and the typeahead matcher over it. The catalog is configuration
// data: declared once, never mutated at runtime.
package catalog

import (
	"sort"
	"strings"
)

// maxSuggestions caps how many category names Suggest returns.
const maxSuggestions = 10

// Entry is a category with the colloquial names buyers actually type.
type Entry struct {
	Name    string
	Aliases []string
}

// Options lists every known category in display order.
var Options = []Entry{
	{Name: "Bricks", Aliases: []string{"Brick", "It", "Eent", "Eint", "Ith", "Clay Blocks"}},
	{Name: "Cement", Aliases: []string{"Cem", "Cement Bag", "ACC", "Ambuja", "Ultratech"}},
	{Name: "Sand", Aliases: []string{"Reti", "Balu", "M Sand", "River Sand", "Rait"}},
	{Name: "Aggregate", Aliases: []string{"Gitti", "Metal", "Stone Chips", "Bajri", "Khadi", "Crusher"}},
	{Name: "Steel (Rebar)", Aliases: []string{"Sariya", "TMT", "Rod", "Bars", "TMT Bar"}},
	{Name: "Concrete/Ready-mix", Aliases: []string{"RMC", "Ready Mix", "Concrete", "Mixture"}},
	{Name: "Blocks (AAC/CLC)", Aliases: []string{"AAC Blocks", "CLC Blocks", "Siporex", "Autoclaved Blocks"}},
	{Name: "Mortar/Plaster", Aliases: []string{"Plaster", "Plaster of Paris", "POP", "Mortar"}},
	{Name: "Tiles", Aliases: []string{"Ceramic Tiles", "Vitrified Tiles", "Floor Tiles", "Wall Tiles"}},
	{Name: "Granite/Marble", Aliases: []string{"Marble", "Granite", "Stone Slab"}},
	{Name: "Wood/Timber", Aliases: []string{"Timber", "Plywood", "Board", "MDF"}},
	{Name: "Doors/Windows", Aliases: []string{"Frames", "Shutters", "UPVC", "Aluminium Windows"}},
	{Name: "Paint/Putty", Aliases: []string{"Paint", "Putty", "Primer", "Enamel", "Distemper"}},
	{Name: "Electrical", Aliases: []string{"Wires", "Switches", "Lights", "MCB", "Conduit", "DB"}},
	{Name: "Plumbing", Aliases: []string{"Pipes", "Fittings", "CPVC", "UPVC", "GI", "Sanitary"}},
	{Name: "Sanitaryware", Aliases: []string{"WC", "Wash Basin", "Closet", "Cistern", "Tap", "Faucet"}},
	{Name: "Waterproofing", Aliases: []string{"Dr. Fixit", "Compound", "Membrane", "Bitumen"}},
	{Name: "Fabrication", Aliases: []string{"Welding", "MS Work", "Grill", "Gate", "Railing"}},
	{Name: "Shuttering/Scaffolding", Aliases: []string{"Formwork", "Scaffolding", "Centering", "Props"}},
	{Name: "Labour (Mason/Helper)", Aliases: []string{"Mason", "Rajmistri", "Mazdoor", "Helper", "Coolie", "Labour"}},
	{Name: "Site Expenses", Aliases: []string{"Tea", "Snacks", "Water", "Housekeeping", "Security"}},
	{Name: "Transport/Loading", Aliases: []string{"Freight", "Tempo", "Tractor", "Loader", "Unloading"}},
	{Name: "Tools/Equipment", Aliases: []string{"Mixer", "Vibrator", "Drill", "Bit", "Trowel", "Wheelbarrow"}},
	{Name: "Curing/Water", Aliases: []string{"Water Tanker", "Curing", "Sprinkler"}},
	{Name: "Gypsum/POP", Aliases: []string{"POP", "Gypsum", "False Ceiling"}},
	{Name: "False Ceiling", Aliases: []string{"Ceiling", "Gypsum Board", "Grid", "Channel"}},
	{Name: "Hardware/Fasteners", Aliases: []string{"Screws", "Nails", "Anchors", "Hinges", "Locks"}},
	{Name: "Glass/Glazing", Aliases: []string{"Glass", "Glazing", "Toughened", "Laminated"}},
	{Name: "Pavers/Compound", Aliases: []string{"Paver Blocks", "Interlocking", "Kerb", "Compound Wall"}},
	{Name: "Landscaping", Aliases: []string{"Soil", "Plants", "Grass", "Pavers", "Stone"}},
	{Name: "Miscellaneous", Aliases: []string{"Misc", "Other", "General"}},
}

// indexed pairs a category name with its lower-cased search terms
// (the name itself plus every alias).
type indexed struct {
	name  string
	terms []string
}

var index = buildIndex(Options)

func buildIndex(opts []Entry) []indexed {
	out := make([]indexed, len(opts))
	for i, c := range opts {
		terms := make([]string, 0, len(c.Aliases)+1)
		terms = append(terms, strings.ToLower(c.Name))
		for _, a := range c.Aliases {
			terms = append(terms, strings.ToLower(a))
		}
		out[i] = indexed{name: c.Name, terms: terms}
	}
	return out
}

// Suggest returns up to 10 category names matching the query. An empty or
// whitespace-only query returns the first 10 catalog entries in declaration
// order. A term starting with the query outranks one merely containing it;
// ties break by case-insensitive name order.
func Suggest(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		n := min(maxSuggestions, len(Options))
		out := make([]string, n)
		for i := 0; i < n; i++ {
			out[i] = Options[i].Name
		}
		return out
	}

	type scored struct {
		name  string
		score int
	}
	var hits []scored
	for _, c := range index {
		score := 0
		for _, t := range c.terms {
			if strings.HasPrefix(t, q) {
				score = 2
				break
			}
			if strings.Contains(t, q) {
				score = 1
			}
		}
		if score > 0 {
			hits = append(hits, scored{name: c.name, score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return strings.ToLower(hits[i].name) < strings.ToLower(hits[j].name)
	})
	if len(hits) > maxSuggestions {
		hits = hits[:maxSuggestions]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}
	return out
}
