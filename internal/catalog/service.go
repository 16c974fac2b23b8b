// Package catalog aggregates PokeAPI documents into the listing and detail
// shapes the browser client consumes.
//
// Every call is request-scoped: nothing is cached or shared between calls,
// and each fan-out runs in its own errgroup that is joined before the next
// dependent step starts.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"pokedex/internal/pokeapi"
)

// Source is the upstream collaborator. *pokeapi.Client implements it.
type Source interface {
	ListPokemon(ctx context.Context, limit, offset int) (pokeapi.ResourceList, error)
	Type(ctx context.Context, name string) (pokeapi.TypeDocument, error)
	Pokemon(ctx context.Context, id int) (pokeapi.Pokemon, error)
	PokemonByURL(ctx context.Context, ref string) (pokeapi.Pokemon, error)
	Species(ctx context.Context, ref string) (pokeapi.Species, error)
	EvolutionChain(ctx context.Context, ref string) (pokeapi.EvolutionChain, error)
	Move(ctx context.Context, ref string) (pokeapi.Move, error)
}

// LineageStrategy selects how an evolution tree is flattened.
type LineageStrategy string

const (
	// LineageTree visits every branch, fetching siblings in parallel.
	LineageTree LineageStrategy = "tree"
	// LineageChain follows only the first child at each level.
	LineageChain LineageStrategy = "chain"
)

func ParseLineageStrategy(s string) (LineageStrategy, error) {
	switch LineageStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", LineageTree:
		return LineageTree, nil
	case LineageChain:
		return LineageChain, nil
	default:
		return "", fmt.Errorf("unknown lineage strategy %q (want tree or chain)", s)
	}
}

const (
	DefaultMoveLimit   = 4
	MaxMoveLimit       = 12
	DefaultLanguage    = "en"
	DefaultConcurrency = 16
	// BulkListLimit is large enough for the listing endpoint to return
	// every pokemon in one page.
	BulkListLimit = 100000
)

type Options struct {
	Lineage     LineageStrategy
	MoveLimit   int
	Language    string // flavor text language code
	Concurrency int    // max in-flight upstream calls per fan-out group
}

func (o Options) withDefaults() Options {
	if o.Lineage == "" {
		o.Lineage = LineageTree
	}
	if o.MoveLimit < 0 {
		o.MoveLimit = 0
	}
	if o.MoveLimit > MaxMoveLimit {
		o.MoveLimit = MaxMoveLimit
	}
	if o.Language == "" {
		o.Language = DefaultLanguage
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	return o
}

// DefaultOptions mirrors what the web client was built against.
func DefaultOptions() Options {
	return Options{
		Lineage:     LineageTree,
		MoveLimit:   DefaultMoveLimit,
		Language:    DefaultLanguage,
		Concurrency: DefaultConcurrency,
	}
}

type Service struct {
	src    Source
	opts   Options
	logger *zap.Logger
}

func NewService(src Source, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{src: src, opts: opts.withDefaults(), logger: logger}
}

func (s *Service) Options() Options { return s.opts }
