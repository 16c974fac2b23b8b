package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pokedex/internal/pokeapi"
	"pokedex/pkg/models"
)

// lineage flattens an evolution tree according to the configured strategy.
// A node whose pokemon document comes back with an error status is skipped,
// its descendants are not. Transport failures and cancellation fail the walk.
func (s *Service) lineage(ctx context.Context, root pokeapi.ChainLink) ([]models.EvolutionEntry, error) {
	if s.opts.Lineage == LineageChain {
		return s.walkChain(ctx, root)
	}
	return s.walkTree(ctx, root)
}

// walkTree emits nodes in pre-order: a node, then each child subtree in
// upstream order. Sibling subtrees are resolved concurrently.
func (s *Service) walkTree(ctx context.Context, link pokeapi.ChainLink) ([]models.EvolutionEntry, error) {
	var out []models.EvolutionEntry
	e, ok, err := s.resolveNode(ctx, link)
	if err != nil {
		return nil, err
	}
	if ok {
		out = append(out, e)
	}
	if len(link.EvolvesTo) == 0 {
		return out, ctx.Err()
	}

	branches := make([][]models.EvolutionEntry, len(link.EvolvesTo))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, child := range link.EvolvesTo {
		g.Go(func() error {
			entries, err := s.walkTree(gctx, child)
			branches[i] = entries
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, b := range branches {
		out = append(out, b...)
	}
	return out, nil
}

// walkChain follows the first child at every level and ignores branches.
func (s *Service) walkChain(ctx context.Context, root pokeapi.ChainLink) ([]models.EvolutionEntry, error) {
	var out []models.EvolutionEntry
	link := root
	for {
		e, ok, err := s.resolveNode(ctx, link)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, e)
		}
		if len(link.EvolvesTo) == 0 {
			break
		}
		link = link.EvolvesTo[0]
	}
	return out, ctx.Err()
}

func (s *Service) resolveNode(ctx context.Context, link pokeapi.ChainLink) (models.EvolutionEntry, bool, error) {
	id, ok := pokeapi.IDFromURL(link.Species.URL)
	if !ok {
		s.logger.Debug("evolution node without id", zap.String("species", link.Species.Name))
		return models.EvolutionEntry{}, false, nil
	}
	p, err := s.src.Pokemon(ctx, id)
	var se *pokeapi.StatusError
	switch {
	case errors.As(err, &se):
		s.logger.Debug("skipping evolution node",
			zap.String("species", link.Species.Name),
			zap.Int("id", id),
			zap.Int("status", se.StatusCode))
		return models.EvolutionEntry{}, false, nil
	case err != nil:
		return models.EvolutionEntry{}, false, fmt.Errorf("fetch evolution node %s: %w", link.Species.Name, err)
	}
	return models.EvolutionEntry{ID: id, Name: link.Species.Name, Sprite: p.Artwork()}, true, nil
}
