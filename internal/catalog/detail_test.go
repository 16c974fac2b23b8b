package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pokedex/internal/catalog/catalogtest"
	"pokedex/internal/pokeapi"
	"pokedex/internal/query"
	"pokedex/pkg/models"
)

func lineageIDs(entries []models.EvolutionEntry) []int {
	out := make([]int, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func moveNames(moves []models.Move) []string {
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.Name)
	}
	return out
}

func TestDetailAssemblesRecord(t *testing.T) {
	svc := newTestService(catalogtest.NewFake())

	d, err := svc.Detail(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, d.ID)
	assert.Equal(t, "bulbasaur", d.Name)
	assert.Equal(t, []string{"grass", "poison"}, d.Types)
	assert.Equal(t, "art/1.png", d.Sprite)
	assert.Equal(t, models.FullStats{
		HP: 11, Attack: 21, Defense: 31,
		SpecialAttack: 41, SpecialDefense: 51, Speed: 61,
	}, d.Stats)
	assert.Equal(t, 1, d.Height)
	assert.Equal(t, 10, d.Weight)
	assert.Equal(t, []string{"bulbasaur-ability"}, d.Abilities)
	assert.Equal(t, "bulbasaur is pokemon number 1.", d.Description)

	assert.Equal(t, []models.EvolutionEntry{
		{ID: 1, Name: "bulbasaur", Sprite: "art/1.png"},
		{ID: 2, Name: "ivysaur", Sprite: "art/2.png"},
		{ID: 3, Name: "venusaur", Sprite: "art/3.png"},
	}, d.EvolutionChain)

	require.Len(t, d.Moves, DefaultMoveLimit)
	assert.Equal(t, []string{"move-1", "move-2", "move-3", "move-4"}, moveNames(d.Moves))
	require.NotNil(t, d.Moves[0].Power)
	assert.Equal(t, 10, *d.Moves[0].Power)
	assert.Nil(t, d.Moves[2].Power, "status move keeps a null power")
	assert.Nil(t, d.Moves[2].Accuracy)
	assert.Equal(t, "normal", d.Moves[1].Type)
}

func TestDetailTreeLineageVisitsEveryBranch(t *testing.T) {
	svc := newTestService(catalogtest.NewFake())

	d, err := svc.Detail(context.Background(), 135)
	require.NoError(t, err)
	assert.Equal(t, []int{133, 134, 135, 136}, lineageIDs(d.EvolutionChain))
}

func TestDetailChainLineageFollowsFirstChild(t *testing.T) {
	opts := DefaultOptions()
	opts.Lineage = LineageChain
	svc := NewService(catalogtest.NewFake(), opts, nil)

	d, err := svc.Detail(context.Background(), 133)
	require.NoError(t, err)
	assert.Equal(t, []int{133, 134}, lineageIDs(d.EvolutionChain))
}

func TestDetailSingleStageLineage(t *testing.T) {
	svc := newTestService(catalogtest.NewFake())

	d, err := svc.Detail(context.Background(), 16)
	require.NoError(t, err)
	assert.Equal(t, []int{16}, lineageIDs(d.EvolutionChain))
}

func TestDetailSkipsFailedLineageNode(t *testing.T) {
	src := catalogtest.NewFake()
	src.MonErr[5] = catalogtest.Upstream500(catalogtest.PokemonURL(5))
	svc := newTestService(src)

	d, err := svc.Detail(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 6}, lineageIDs(d.EvolutionChain), "descendants of a failed node are kept")

	src = catalogtest.NewFake()
	src.MonErr[5] = catalogtest.Upstream404(catalogtest.PokemonURL(5))
	d, err = newTestService(src).Detail(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 6}, lineageIDs(d.EvolutionChain))
}

func TestDetailLineageTransportFailureFailsDetail(t *testing.T) {
	for _, strategy := range []LineageStrategy{LineageTree, LineageChain} {
		t.Run(string(strategy), func(t *testing.T) {
			src := catalogtest.NewFake()
			reset := errors.New("connection reset by peer")
			src.MonErr[2] = reset
			opts := DefaultOptions()
			opts.Lineage = strategy

			_, err := NewService(src, opts, nil).Detail(context.Background(), 1)
			require.Error(t, err)
			assert.ErrorIs(t, err, reset)
			assert.NotErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestDetailWithoutChainHasEmptyLineage(t *testing.T) {
	src := catalogtest.NewFake()
	sp := src.SpeciesDocs[catalogtest.SpeciesURL(7)]
	sp.EvolutionChain.URL = ""
	src.SpeciesDocs[catalogtest.SpeciesURL(7)] = sp
	svc := newTestService(src)

	d, err := svc.Detail(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, d.EvolutionChain)
	assert.Empty(t, d.EvolutionChain)
	for _, c := range src.Calls() {
		assert.NotContains(t, c, "chain ")
	}
}

func TestDetailDropsFailedMoves(t *testing.T) {
	src := catalogtest.NewFake()
	src.MoveErr[catalogtest.MoveURL(2)] = catalogtest.Upstream500(catalogtest.MoveURL(2))
	svc := newTestService(src)

	d, err := svc.Detail(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"move-1", "move-3", "move-4"}, moveNames(d.Moves))
}

func TestDetailMoveLimit(t *testing.T) {
	src := catalogtest.NewFake()

	opts := DefaultOptions()
	opts.MoveLimit = 0
	d, err := NewService(src, opts, nil).Detail(context.Background(), 4)
	require.NoError(t, err)
	assert.NotNil(t, d.Moves)
	assert.Empty(t, d.Moves)

	opts.MoveLimit = 100
	svc := NewService(src, opts, nil)
	assert.Equal(t, MaxMoveLimit, svc.Options().MoveLimit)
	d, err = svc.Detail(context.Background(), 4)
	require.NoError(t, err)
	assert.Len(t, d.Moves, catalogtest.MovesPerPokemon)
}

func TestDetailInvalidIDMakesNoCalls(t *testing.T) {
	src := catalogtest.NewFake()
	svc := newTestService(src)

	for _, id := range []int{0, -1} {
		_, err := svc.Detail(context.Background(), id)
		assert.ErrorIs(t, err, query.ErrInvalidID)
	}
	assert.Zero(t, src.CallCount())
}

func TestDetailUnknownPokemonIsNotFound(t *testing.T) {
	src := catalogtest.NewFake()
	svc := newTestService(src)

	_, err := svc.Detail(context.Background(), 99999)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, pokeapi.ErrNotFound)
	assert.Equal(t, []string{"pokemon 99999"}, src.Calls())
}

func TestDetailMissingDependentDocumentIsNotNotFound(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *catalogtest.Fake)
	}{
		{"species", func(f *catalogtest.Fake) { f.SpeciesErr = catalogtest.Upstream404("pokemon-species/1") }},
		{"chain", func(f *catalogtest.Fake) { f.ChainErr = catalogtest.Upstream404("evolution-chain/1") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := catalogtest.NewFake()
			tt.setup(src)

			_, err := newTestService(src).Detail(context.Background(), 1)
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, err, pokeapi.ErrUpstream)
		})
	}
}

func TestDetailSpeciesFailure(t *testing.T) {
	src := catalogtest.NewFake()
	delete(src.SpeciesDocs, catalogtest.SpeciesURL(1))
	svc := newTestService(src)

	_, err := svc.Detail(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pokeapi.ErrUpstream))
	assert.False(t, errors.Is(err, pokeapi.ErrNotFound))
	assert.Contains(t, err.Error(), "fetch species of bulbasaur")
}

func TestDetailChainFailure(t *testing.T) {
	src := catalogtest.NewFake()
	src.ChainErr = catalogtest.Upstream500("evolution-chain")
	svc := newTestService(src)

	_, err := svc.Detail(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch evolution chain of bulbasaur")
}

func TestDetailCancelledContext(t *testing.T) {
	src := catalogtest.NewFake()
	svc := newTestService(src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Detail(ctx, 1)
	// the fake does not watch ctx on the sequential steps, so cancellation
	// surfaces from the lineage walk
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetailDescriptionLanguage(t *testing.T) {
	opts := DefaultOptions()
	opts.Language = "ja"
	svc := NewService(catalogtest.NewFake(), opts, nil)

	d, err := svc.Detail(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "テスト", d.Description)

	opts.Language = "xx"
	d, err = NewService(catalogtest.NewFake(), opts, nil).Detail(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "", d.Description)
}
