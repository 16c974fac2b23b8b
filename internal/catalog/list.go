package catalog

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"pokedex/internal/pokeapi"
	"pokedex/internal/query"
	"pokedex/pkg/models"
)

// List resolves the candidate set for q, filters and pages it, and fetches
// a summary for each pokemon on the requested page. Any upstream failure
// fails the whole listing.
func (s *Service) List(ctx context.Context, q query.ListQuery) (models.ListResult, error) {
	candidates, err := s.candidates(ctx, q.Types)
	if err != nil {
		return models.ListResult{}, err
	}

	candidates = filterSearch(candidates, q.Search)
	sortCandidates(candidates, q.Sort)

	summaries, err := s.summaries(ctx, pageSlice(candidates, q.Offset(), q.Limit))
	if err != nil {
		return models.ListResult{}, err
	}
	if q.Sort == query.SortType {
		sortByFirstType(summaries)
	}

	return models.ListResult{
		Pokemon:    summaries,
		Pagination: Paginate(len(candidates), q.Page, q.Limit),
	}, nil
}

// candidates is every pokemon when no type is requested, otherwise the
// pokemon that belong to all requested types.
func (s *Service) candidates(ctx context.Context, types []string) ([]pokeapi.NamedResource, error) {
	if len(types) == 0 {
		list, err := s.src.ListPokemon(ctx, BulkListLimit, 0)
		if err != nil {
			return nil, fmt.Errorf("fetch pokemon list: %w", err)
		}
		// sorted in place later; never reorder the source's slice
		return slices.Clone(list.Results), nil
	}

	members := make([][]pokeapi.NamedResource, len(types))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, name := range types {
		g.Go(func() error {
			doc, err := s.src.Type(gctx, name)
			if err != nil {
				return fmt.Errorf("fetch type %s: %w", name, err)
			}
			refs := make([]pokeapi.NamedResource, 0, len(doc.Pokemon))
			for _, m := range doc.Pokemon {
				refs = append(refs, m.Pokemon)
			}
			members[i] = refs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return intersect(members), nil
}

// intersect keeps the entries of the first list whose name appears in
// every other list, in first-list order.
func intersect(lists [][]pokeapi.NamedResource) []pokeapi.NamedResource {
	if len(lists) == 0 {
		return nil
	}
	out := slices.Clone(lists[0])
	for _, other := range lists[1:] {
		names := make(map[string]struct{}, len(other))
		for _, r := range other {
			names[r.Name] = struct{}{}
		}
		out = slices.DeleteFunc(out, func(r pokeapi.NamedResource) bool {
			_, ok := names[r.Name]
			return !ok
		})
	}
	return out
}

// filterSearch matches the search text case-insensitively against the
// name, or verbatim against the id segment of the reference URL.
func filterSearch(refs []pokeapi.NamedResource, search string) []pokeapi.NamedResource {
	if search == "" {
		return refs
	}
	lower := strings.ToLower(search)
	out := make([]pokeapi.NamedResource, 0, len(refs))
	for _, r := range refs {
		if strings.Contains(strings.ToLower(r.Name), lower) || strings.Contains(pokeapi.IDSegment(r.URL), search) {
			out = append(out, r)
		}
	}
	return out
}

func sortCandidates(refs []pokeapi.NamedResource, sort query.Sort) {
	switch sort {
	case query.SortName:
		slices.SortStableFunc(refs, func(a, b pokeapi.NamedResource) int {
			return strings.Compare(a.Name, b.Name)
		})
	case query.SortID:
		slices.SortStableFunc(refs, func(a, b pokeapi.NamedResource) int {
			return cmp.Compare(refID(a), refID(b))
		})
	}
}

// refID orders references without a numeric id after all others.
func refID(r pokeapi.NamedResource) int {
	if id, ok := pokeapi.IDFromURL(r.URL); ok {
		return id
	}
	return math.MaxInt
}

func sortByFirstType(items []models.PokemonSummary) {
	first := func(p models.PokemonSummary) string {
		if len(p.Types) == 0 {
			return ""
		}
		return p.Types[0]
	}
	slices.SortStableFunc(items, func(a, b models.PokemonSummary) int {
		return strings.Compare(first(a), first(b))
	})
}

func pageSlice(refs []pokeapi.NamedResource, offset, limit int) []pokeapi.NamedResource {
	if offset < 0 || offset >= len(refs) || limit <= 0 {
		return nil
	}
	return refs[offset : offset+min(limit, len(refs)-offset)]
}

// Paginate derives the pagination block. currentPage echoes the request,
// even past the last page, so the client can tell where it asked.
func Paginate(total, page, limit int) models.Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return models.Pagination{
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
		HasMore:     page < totalPages,
	}
}

// summaries fetches every reference in parallel. The result slice is in
// reference order whatever order the fetches complete in.
func (s *Service) summaries(ctx context.Context, refs []pokeapi.NamedResource) ([]models.PokemonSummary, error) {
	out := make([]models.PokemonSummary, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, ref := range refs {
		g.Go(func() error {
			p, err := s.src.PokemonByURL(gctx, ref.URL)
			if err != nil {
				return fmt.Errorf("fetch pokemon %s: %w", ref.Name, err)
			}
			out[i] = Summarize(p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Summarize projects a pokemon document onto a listing card.
func Summarize(p pokeapi.Pokemon) models.PokemonSummary {
	sprite := p.Sprites.FrontDefault
	if sprite == "" {
		sprite = p.Artwork()
	}
	return models.PokemonSummary{
		ID:     p.ID,
		Name:   p.Name,
		Types:  p.TypeNames(),
		Sprite: sprite,
		Stats: models.BaseStats{
			HP:      p.Stat(pokeapi.StatHP),
			Attack:  p.Stat(pokeapi.StatAttack),
			Defense: p.Stat(pokeapi.StatDefense),
		},
	}
}
