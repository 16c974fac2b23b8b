// Package catalogtest provides an in-memory PokeAPI for tests of the
// catalog service and the surfaces built on it.
package catalogtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pokedex/internal/pokeapi"
)

type Mon struct {
	ID    int
	Name  string
	Types []string
}

// Roster is a small slice of the national dex, enough for type overlaps,
// substring searches and a branching evolution tree.
var Roster = []Mon{
	{1, "bulbasaur", []string{"grass", "poison"}},
	{2, "ivysaur", []string{"grass", "poison"}},
	{3, "venusaur", []string{"grass", "poison"}},
	{4, "charmander", []string{"fire"}},
	{5, "charmeleon", []string{"fire"}},
	{6, "charizard", []string{"fire", "flying"}},
	{7, "squirtle", []string{"water"}},
	{16, "pidgey", []string{"normal", "flying"}},
	{133, "eevee", []string{"normal"}},
	{134, "vaporeon", []string{"water"}},
	{135, "jolteon", []string{"electric"}},
	{136, "flareon", []string{"fire"}},
}

// Evolution lines by root id. Eevee branches three ways.
var lines = map[int][][]int{
	1:   {{1, 2}, {2, 3}},
	4:   {{4, 5}, {5, 6}},
	7:   nil,
	16:  nil,
	133: {{133, 134}, {133, 135}, {133, 136}},
}

// MovesPerPokemon is how many move references every fixture pokemon has.
const MovesPerPokemon = 6

func PokemonURL(id int) string {
	return fmt.Sprintf("%s/pokemon/%d/", pokeapi.CanonicalBaseURL, id)
}

func SpeciesURL(id int) string {
	return fmt.Sprintf("%s/pokemon-species/%d/", pokeapi.CanonicalBaseURL, id)
}

func ChainURL(rootID int) string {
	return fmt.Sprintf("%s/evolution-chain/%d/", pokeapi.CanonicalBaseURL, rootID)
}

func MoveURL(id int) string {
	return fmt.Sprintf("%s/move/%d/", pokeapi.CanonicalBaseURL, id)
}

func Ref(m Mon) pokeapi.NamedResource {
	return pokeapi.NamedResource{Name: m.Name, URL: PokemonURL(m.ID)}
}

func Stats(pairs ...any) []pokeapi.PokemonStat {
	var out []pokeapi.PokemonStat
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, pokeapi.PokemonStat{
			BaseStat: pairs[i+1].(int),
			Stat:     pokeapi.NamedResource{Name: pairs[i].(string)},
		})
	}
	return out
}

// Document builds the /pokemon/{id} document for m. Stat values are
// derived from the id: hp 10+id, attack 20+id, ... speed 60+id.
func Document(m Mon) pokeapi.Pokemon {
	p := pokeapi.Pokemon{
		ID:      m.ID,
		Name:    m.Name,
		Height:  m.ID,
		Weight:  m.ID * 10,
		Species: pokeapi.NamedResource{Name: m.Name, URL: SpeciesURL(m.ID)},
		Stats: Stats(
			pokeapi.StatHP, 10+m.ID,
			pokeapi.StatAttack, 20+m.ID,
			pokeapi.StatDefense, 30+m.ID,
			pokeapi.StatSpecialAttack, 40+m.ID,
			pokeapi.StatSpecialDefense, 50+m.ID,
			pokeapi.StatSpeed, 60+m.ID,
		),
		Abilities: []pokeapi.PokemonAbility{
			{Ability: pokeapi.NamedResource{Name: m.Name + "-ability"}, Slot: 1},
		},
	}
	for i, t := range m.Types {
		p.Types = append(p.Types, pokeapi.PokemonType{Slot: i + 1, Type: pokeapi.NamedResource{Name: t}})
	}
	for i := 1; i <= MovesPerPokemon; i++ {
		p.Moves = append(p.Moves, pokeapi.PokemonMove{
			Move: pokeapi.NamedResource{Name: fmt.Sprintf("move-%d", i), URL: MoveURL(i)},
		})
	}
	p.Sprites.FrontDefault = fmt.Sprintf("front/%d.png", m.ID)
	p.Sprites.Other.OfficialArtwork.FrontDefault = fmt.Sprintf("art/%d.png", m.ID)
	return p
}

func name(id int) string {
	for _, m := range Roster {
		if m.ID == id {
			return m.Name
		}
	}
	return fmt.Sprintf("unknown-%d", id)
}

func chainLink(id int, edges [][]int) pokeapi.ChainLink {
	link := pokeapi.ChainLink{Species: pokeapi.NamedResource{Name: name(id), URL: SpeciesURL(id)}}
	for _, e := range edges {
		if e[0] == id {
			link.EvolvesTo = append(link.EvolvesTo, chainLink(e[1], edges))
		}
	}
	return link
}

// Fake is an in-memory PokeAPI. Every call is recorded. Set the error
// maps to make individual documents fail.
type Fake struct {
	mu    sync.Mutex
	calls []string

	List        []pokeapi.NamedResource
	ListErr     error
	Types       map[string][]pokeapi.NamedResource
	TypeErr     map[string]error
	Mons        map[int]pokeapi.Pokemon
	MonErr      map[int]error
	Delay       func(id int) time.Duration
	SpeciesDocs map[string]pokeapi.Species
	SpeciesErr  error
	Chains      map[string]pokeapi.EvolutionChain
	ChainErr    error
	Moves       map[string]pokeapi.Move
	MoveErr     map[string]error
}

// NewFake returns a Fake loaded with the roster, its species, evolution
// chains and MovesPerPokemon moves.
func NewFake() *Fake {
	f := &Fake{
		Types:       map[string][]pokeapi.NamedResource{},
		TypeErr:     map[string]error{},
		Mons:        map[int]pokeapi.Pokemon{},
		MonErr:      map[int]error{},
		SpeciesDocs: map[string]pokeapi.Species{},
		Chains:      map[string]pokeapi.EvolutionChain{},
		Moves:       map[string]pokeapi.Move{},
		MoveErr:     map[string]error{},
	}
	for _, m := range Roster {
		f.List = append(f.List, Ref(m))
		f.Mons[m.ID] = Document(m)
		for _, t := range m.Types {
			f.Types[t] = append(f.Types[t], Ref(m))
		}
	}

	for root, edges := range lines {
		f.Chains[ChainURL(root)] = pokeapi.EvolutionChain{ID: root, Chain: chainLink(root, edges)}
		members := []int{root}
		for _, e := range edges {
			members = append(members, e[1])
		}
		for _, id := range members {
			sp := pokeapi.Species{
				ID:   id,
				Name: name(id),
				FlavorTextEntries: []pokeapi.FlavorText{
					{FlavorText: "テスト", Language: pokeapi.NamedResource{Name: "ja"}},
					{FlavorText: fmt.Sprintf("%s\fis pokemon\nnumber   %d.", name(id), id), Language: pokeapi.NamedResource{Name: "en"}},
					{FlavorText: "second english entry", Language: pokeapi.NamedResource{Name: "en"}},
				},
			}
			sp.EvolutionChain.URL = ChainURL(root)
			f.SpeciesDocs[SpeciesURL(id)] = sp
		}
	}

	for i := 1; i <= MovesPerPokemon; i++ {
		power, accuracy := 10*i, 100
		m := pokeapi.Move{ID: i, Name: fmt.Sprintf("move-%d", i), Type: pokeapi.NamedResource{Name: "normal"}}
		if i%3 != 0 {
			m.Power, m.Accuracy = &power, &accuracy
		}
		f.Moves[MoveURL(i)] = m
	}
	return f
}

func (f *Fake) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

// Calls returns a copy of the recorded calls in arrival order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// Upstream500 is what a failing PokeAPI call returns.
func Upstream500(url string) error {
	return &pokeapi.StatusError{URL: url, StatusCode: 500}
}

// Upstream404 is what PokeAPI returns for a document it does not have.
func Upstream404(url string) error {
	return &pokeapi.StatusError{URL: url, StatusCode: 404}
}

// SetListErr swaps the bulk listing error while requests may be in flight.
func (f *Fake) SetListErr(err error) {
	f.mu.Lock()
	f.ListErr = err
	f.mu.Unlock()
}

func (f *Fake) ListPokemon(ctx context.Context, limit, offset int) (pokeapi.ResourceList, error) {
	f.record(fmt.Sprintf("list %d %d", limit, offset))
	f.mu.Lock()
	err := f.ListErr
	f.mu.Unlock()
	if err != nil {
		return pokeapi.ResourceList{}, err
	}
	return pokeapi.ResourceList{Count: len(f.List), Results: f.List}, nil
}

func (f *Fake) Type(ctx context.Context, name string) (pokeapi.TypeDocument, error) {
	f.record("type " + name)
	if err := f.TypeErr[name]; err != nil {
		return pokeapi.TypeDocument{}, err
	}
	members, ok := f.Types[name]
	if !ok {
		return pokeapi.TypeDocument{}, &pokeapi.StatusError{URL: "type/" + name, StatusCode: 404}
	}
	doc := pokeapi.TypeDocument{Name: name}
	for i, r := range members {
		doc.Pokemon = append(doc.Pokemon, pokeapi.TypeMember{Slot: i + 1, Pokemon: r})
	}
	return doc, nil
}

func (f *Fake) Pokemon(ctx context.Context, id int) (pokeapi.Pokemon, error) {
	f.record(fmt.Sprintf("pokemon %d", id))
	if f.Delay != nil {
		select {
		case <-time.After(f.Delay(id)):
		case <-ctx.Done():
			return pokeapi.Pokemon{}, ctx.Err()
		}
	}
	if err := f.MonErr[id]; err != nil {
		return pokeapi.Pokemon{}, err
	}
	p, ok := f.Mons[id]
	if !ok {
		return pokeapi.Pokemon{}, &pokeapi.StatusError{URL: PokemonURL(id), StatusCode: 404}
	}
	return p, nil
}

func (f *Fake) PokemonByURL(ctx context.Context, ref string) (pokeapi.Pokemon, error) {
	id, ok := pokeapi.IDFromURL(ref)
	if !ok {
		f.record("pokemon " + ref)
		return pokeapi.Pokemon{}, &pokeapi.StatusError{URL: ref, StatusCode: 404}
	}
	return f.Pokemon(ctx, id)
}

func (f *Fake) Species(ctx context.Context, ref string) (pokeapi.Species, error) {
	f.record("species " + ref)
	if f.SpeciesErr != nil {
		return pokeapi.Species{}, f.SpeciesErr
	}
	s, ok := f.SpeciesDocs[ref]
	if !ok {
		return pokeapi.Species{}, Upstream500(ref)
	}
	return s, nil
}

func (f *Fake) EvolutionChain(ctx context.Context, ref string) (pokeapi.EvolutionChain, error) {
	f.record("chain " + ref)
	if f.ChainErr != nil {
		return pokeapi.EvolutionChain{}, f.ChainErr
	}
	c, ok := f.Chains[ref]
	if !ok {
		return pokeapi.EvolutionChain{}, Upstream500(ref)
	}
	return c, nil
}

func (f *Fake) Move(ctx context.Context, ref string) (pokeapi.Move, error) {
	f.record("move " + ref)
	if err := f.MoveErr[ref]; err != nil {
		return pokeapi.Move{}, err
	}
	m, ok := f.Moves[ref]
	if !ok {
		return pokeapi.Move{}, Upstream500(ref)
	}
	return m, nil
}
