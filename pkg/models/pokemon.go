package models

// BaseStats is the trimmed stat block shown on listing cards.
type BaseStats struct {
	HP      int `json:"hp"`
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
}

type FullStats struct {
	HP             int `json:"hp"`
	Attack         int `json:"attack"`
	Defense        int `json:"defense"`
	SpecialAttack  int `json:"specialAttack"`
	SpecialDefense int `json:"specialDefense"`
	Speed          int `json:"speed"`
}

// PokemonSummary is one entry of a listing page.
type PokemonSummary struct {
	ID     int       `json:"id"`
	Name   string    `json:"name"`
	Types  []string  `json:"types"`
	Sprite string    `json:"sprite"`
	Stats  BaseStats `json:"stats"`
}

type EvolutionEntry struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Sprite string `json:"sprite"`
}

// Move keeps power and accuracy as pointers: status moves have neither,
// and the client renders null differently from 0.
type Move struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Power    *int   `json:"power"`
	Accuracy *int   `json:"accuracy"`
}

// PokemonDetail is the flattened detail record: the pokemon itself plus
// its species description, evolution chain and a few moves.
type PokemonDetail struct {
	ID             int              `json:"id"`
	Name           string           `json:"name"`
	Types          []string         `json:"types"`
	Sprite         string           `json:"sprite"`
	Stats          FullStats        `json:"stats"`
	Height         int              `json:"height"` // decimetres
	Weight         int              `json:"weight"` // hectograms
	Abilities      []string         `json:"abilities"`
	Description    string           `json:"description"`
	EvolutionChain []EvolutionEntry `json:"evolutionChain"`
	Moves          []Move           `json:"moves"`
}
