package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pokedex/internal/pokeapi"
	"pokedex/internal/query"
	"pokedex/pkg/models"
)

// ErrNotFound reports that the requested pokemon does not exist upstream.
// A 404 on a species, chain or move document is an upstream failure and
// does not match it.
var ErrNotFound = errors.New("pokemon not found")

// Detail builds the full record for one pokemon. The pokemon, species and
// evolution chain documents are fetched in sequence, each needing a URL
// from the one before; failing any of them fails the call. The lineage
// walk and the move fetches then run side by side. Moves that fail are
// dropped; lineage nodes are dropped only on an upstream error status.
func (s *Service) Detail(ctx context.Context, id int) (models.PokemonDetail, error) {
	if id < 1 {
		return models.PokemonDetail{}, query.ErrInvalidID
	}

	p, err := s.src.Pokemon(ctx, id)
	if errors.Is(err, pokeapi.ErrNotFound) {
		return models.PokemonDetail{}, fmt.Errorf("fetch pokemon %d: %w: %w", id, ErrNotFound, err)
	}
	if err != nil {
		return models.PokemonDetail{}, fmt.Errorf("fetch pokemon %d: %w", id, err)
	}

	species, err := s.src.Species(ctx, p.Species.URL)
	if err != nil {
		return models.PokemonDetail{}, fmt.Errorf("fetch species of %s: %w", p.Name, err)
	}

	var root *pokeapi.ChainLink
	if ref := species.EvolutionChain.URL; ref != "" {
		chain, err := s.src.EvolutionChain(ctx, ref)
		if err != nil {
			return models.PokemonDetail{}, fmt.Errorf("fetch evolution chain of %s: %w", p.Name, err)
		}
		root = &chain.Chain
	}

	var (
		lineage []models.EvolutionEntry
		moves   []models.Move
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if root == nil {
			return nil
		}
		var err error
		lineage, err = s.lineage(gctx, *root)
		return err
	})
	g.Go(func() error {
		moves = s.moves(gctx, p.Moves)
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.PokemonDetail{}, fmt.Errorf("resolve evolution chain of %s: %w", p.Name, err)
	}
	if lineage == nil {
		lineage = []models.EvolutionEntry{}
	}

	return models.PokemonDetail{
		ID:     p.ID,
		Name:   p.Name,
		Types:  p.TypeNames(),
		Sprite: p.Artwork(),
		Stats: models.FullStats{
			HP:             p.Stat(pokeapi.StatHP),
			Attack:         p.Stat(pokeapi.StatAttack),
			Defense:        p.Stat(pokeapi.StatDefense),
			SpecialAttack:  p.Stat(pokeapi.StatSpecialAttack),
			SpecialDefense: p.Stat(pokeapi.StatSpecialDefense),
			Speed:          p.Stat(pokeapi.StatSpeed),
		},
		Height:         p.Height,
		Weight:         p.Weight,
		Abilities:      p.AbilityNames(),
		Description:    FlavorText(species.FlavorTextEntries, s.opts.Language),
		EvolutionChain: lineage,
		Moves:          moves,
	}, nil
}

// moves fetches the first MoveLimit moves in parallel. A move that cannot
// be fetched is left out; the rest keep their upstream order.
func (s *Service) moves(ctx context.Context, refs []pokeapi.PokemonMove) []models.Move {
	n := min(len(refs), s.opts.MoveLimit)
	fetched := make([]*models.Move, n)

	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i := range n {
		ref := refs[i].Move
		g.Go(func() error {
			m, err := s.src.Move(ctx, ref.URL)
			if err != nil {
				s.logger.Debug("dropping move", zap.String("move", ref.Name), zap.Error(err))
				return nil
			}
			fetched[i] = &models.Move{
				Name:     m.Name,
				Type:     m.Type.Name,
				Power:    m.Power,
				Accuracy: m.Accuracy,
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.Move, 0, n)
	for _, m := range fetched {
		if m != nil {
			out = append(out, *m)
		}
	}
	return out
}
