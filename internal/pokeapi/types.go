package pokeapi

// NamedResource is PokeAPI's {name, url} reference pair. The url is the
// canonical reference string; its trailing path segment is the numeric id.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ResourceList is the paged index returned by GET /pokemon.
type ResourceList struct {
	Count    int             `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  []NamedResource `json:"results"`
}

type TypeMember struct {
	Slot    int           `json:"slot"`
	Pokemon NamedResource `json:"pokemon"`
}

// TypeDocument is GET /type/{name}; only the member list is used.
type TypeDocument struct {
	ID      int          `json:"id"`
	Name    string       `json:"name"`
	Pokemon []TypeMember `json:"pokemon"`
}

type PokemonType struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

type PokemonStat struct {
	BaseStat int           `json:"base_stat"`
	Effort   int           `json:"effort"`
	Stat     NamedResource `json:"stat"`
}

type PokemonAbility struct {
	Ability  NamedResource `json:"ability"`
	IsHidden bool          `json:"is_hidden"`
	Slot     int           `json:"slot"`
}

type PokemonMove struct {
	Move NamedResource `json:"move"`
}

type Sprites struct {
	FrontDefault string `json:"front_default"`
	Other        struct {
		OfficialArtwork struct {
			FrontDefault string `json:"front_default"`
		} `json:"official-artwork"`
	} `json:"other"`
}

// Pokemon is GET /pokemon/{id}.
type Pokemon struct {
	ID        int              `json:"id"`
	Name      string           `json:"name"`
	Height    int              `json:"height"`
	Weight    int              `json:"weight"`
	Types     []PokemonType    `json:"types"`
	Sprites   Sprites          `json:"sprites"`
	Stats     []PokemonStat    `json:"stats"`
	Abilities []PokemonAbility `json:"abilities"`
	Moves     []PokemonMove    `json:"moves"`
	Species   NamedResource    `json:"species"`
}

// Stat names as PokeAPI spells them.
const (
	StatHP             = "hp"
	StatAttack         = "attack"
	StatDefense        = "defense"
	StatSpecialAttack  = "special-attack"
	StatSpecialDefense = "special-defense"
	StatSpeed          = "speed"
)

// Stat looks a base stat up by name. PokeAPI does not promise an order for
// the stats array, so nothing may index it positionally. Missing stats are 0.
func (p Pokemon) Stat(name string) int {
	for _, s := range p.Stats {
		if s.Stat.Name == name {
			return s.BaseStat
		}
	}
	return 0
}

// TypeNames returns the type names in slot order as delivered.
func (p Pokemon) TypeNames() []string {
	out := make([]string, 0, len(p.Types))
	for _, t := range p.Types {
		out = append(out, t.Type.Name)
	}
	return out
}

func (p Pokemon) AbilityNames() []string {
	out := make([]string, 0, len(p.Abilities))
	for _, a := range p.Abilities {
		out = append(out, a.Ability.Name)
	}
	return out
}

// Artwork prefers the official artwork and falls back to the front sprite.
func (p Pokemon) Artwork() string {
	if a := p.Sprites.Other.OfficialArtwork.FrontDefault; a != "" {
		return a
	}
	return p.Sprites.FrontDefault
}

type FlavorText struct {
	FlavorText string        `json:"flavor_text"`
	Language   NamedResource `json:"language"`
	Version    NamedResource `json:"version"`
}

// Species is the pokemon-species document reached through Pokemon.Species.URL.
type Species struct {
	ID                int          `json:"id"`
	Name              string       `json:"name"`
	FlavorTextEntries []FlavorText `json:"flavor_text_entries"`
	EvolutionChain    struct {
		URL string `json:"url"`
	} `json:"evolution_chain"`
}

// ChainLink is one node of an evolution tree.
type ChainLink struct {
	Species   NamedResource `json:"species"`
	EvolvesTo []ChainLink   `json:"evolves_to"`
}

type EvolutionChain struct {
	ID    int       `json:"id"`
	Chain ChainLink `json:"chain"`
}

// Move is GET /move/{id}. Power, accuracy and pp are null for some moves.
type Move struct {
	ID       int           `json:"id"`
	Name     string        `json:"name"`
	Type     NamedResource `json:"type"`
	Power    *int          `json:"power"`
	Accuracy *int          `json:"accuracy"`
	PP       *int          `json:"pp"`
}
