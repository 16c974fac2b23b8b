package mirror

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pokedex/internal/catalog"
	"pokedex/internal/pokeapi"
)

// Fetcher returns raw documents. *pokeapi.Client implements it.
type Fetcher interface {
	Raw(ctx context.Context, ref string) ([]byte, error)
}

type SnapshotOptions struct {
	MaxID       int // pokemon ids 1..MaxID are crawled
	MoveLimit   int // moves stored per pokemon
	Concurrency int
}

type SnapshotResult struct {
	Stored int
	Failed int
}

// Snapshotter copies everything the catalog reads for a range of ids into
// a Store: the listing requests, every type document, and per pokemon its
// document, species, evolution chain, the chain's members and its first
// moves.
type Snapshotter struct {
	src    Fetcher
	store  *Store
	logger *zap.Logger

	mu   sync.Mutex
	seen map[string]struct{}

	stored atomic.Int64
	failed atomic.Int64
}

func NewSnapshotter(src Fetcher, store *Store, logger *zap.Logger) *Snapshotter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Snapshotter{src: src, store: store, logger: logger}
}

// Run crawls. Individual documents that fail are logged and counted; only
// a failed listing, a store error or cancellation stop the crawl.
func (s *Snapshotter) Run(ctx context.Context, opts SnapshotOptions) (SnapshotResult, error) {
	if opts.MaxID < 1 {
		return SnapshotResult{}, fmt.Errorf("snapshot: max id must be at least 1")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = catalog.DefaultConcurrency
	}
	opts.MoveLimit = max(0, min(opts.MoveLimit, catalog.MaxMoveLimit))

	s.seen = make(map[string]struct{})
	s.stored.Store(0)
	s.failed.Store(0)

	// the exact listing requests pokeapi.Client issues
	for _, ref := range []string{
		fmt.Sprintf("pokemon?limit=%d&offset=0", catalog.BulkListLimit),
		"pokemon?limit=1&offset=0",
	} {
		if _, err := s.copy(ctx, ref, false); err != nil {
			return s.result(), fmt.Errorf("snapshot listing: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for _, name := range catalog.TypeNames() {
		g.Go(func() error {
			_, err := s.tolerate(gctx, "type/"+name)
			return err
		})
	}
	for id := 1; id <= opts.MaxID; id++ {
		g.Go(func() error {
			return s.pokemon(gctx, id, opts)
		})
	}
	if err := g.Wait(); err != nil {
		return s.result(), err
	}

	s.logger.Info("snapshot complete",
		zap.Int("stored", int(s.stored.Load())),
		zap.Int("failed", int(s.failed.Load())))
	return s.result(), nil
}

func (s *Snapshotter) result() SnapshotResult {
	return SnapshotResult{Stored: int(s.stored.Load()), Failed: int(s.failed.Load())}
}

func (s *Snapshotter) pokemon(ctx context.Context, id int, opts SnapshotOptions) error {
	body, err := s.tolerate(ctx, "pokemon/"+strconv.Itoa(id))
	if err != nil || body == nil {
		return err
	}
	var p pokeapi.Pokemon
	if err := json.Unmarshal(body, &p); err != nil {
		s.miss("pokemon/"+strconv.Itoa(id), err)
		return nil
	}

	for _, m := range p.Moves[:min(opts.MoveLimit, len(p.Moves))] {
		if _, err := s.tolerate(ctx, m.Move.URL); err != nil {
			return err
		}
	}

	body, err = s.tolerate(ctx, p.Species.URL)
	if err != nil || body == nil {
		return err
	}
	var sp pokeapi.Species
	if err := json.Unmarshal(body, &sp); err != nil {
		s.miss(p.Species.URL, err)
		return nil
	}
	if sp.EvolutionChain.URL == "" {
		return nil
	}

	body, err = s.tolerate(ctx, sp.EvolutionChain.URL)
	if err != nil || body == nil {
		return err
	}
	var chain pokeapi.EvolutionChain
	if err := json.Unmarshal(body, &chain); err != nil {
		s.miss(sp.EvolutionChain.URL, err)
		return nil
	}
	return s.members(ctx, chain.Chain, opts.MaxID)
}

// members stores the pokemon document of every chain node outside the
// crawled range; the lineage walk reads them for sprites. Nodes inside the
// range are left to their own worker.
func (s *Snapshotter) members(ctx context.Context, link pokeapi.ChainLink, maxID int) error {
	if id, ok := pokeapi.IDFromURL(link.Species.URL); ok && id > maxID {
		if _, err := s.tolerate(ctx, "pokemon/"+strconv.Itoa(id)); err != nil {
			return err
		}
	}
	for _, child := range link.EvolvesTo {
		if err := s.members(ctx, child, maxID); err != nil {
			return err
		}
	}
	return nil
}

// claim reports whether key has not been crawled yet and marks it.
func (s *Snapshotter) claim(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// copy fetches ref and stores it. A nil body with a nil error means the
// document was claimed by another worker or, when tolerant, that the
// fetch failed and was counted. Store errors and cancellation always
// abort.
func (s *Snapshotter) copy(ctx context.Context, ref string, tolerant bool) ([]byte, error) {
	key := KeyFromURL(ref)
	if !s.claim(key) {
		return nil, nil
	}
	body, err := s.src.Raw(ctx, ref)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if tolerant {
			s.miss(ref, err)
			return nil, nil
		}
		return nil, err
	}
	if err := s.store.Put(ctx, key, body); err != nil {
		return nil, fmt.Errorf("store %s: %w", key, err)
	}
	s.stored.Add(1)
	return body, nil
}

func (s *Snapshotter) tolerate(ctx context.Context, ref string) ([]byte, error) {
	return s.copy(ctx, ref, true)
}

func (s *Snapshotter) miss(ref string, err error) {
	s.failed.Add(1)
	s.logger.Warn("snapshot skipped document", zap.String("ref", ref), zap.Error(err))
}
