package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"pokedex/internal/grpcserver"
	"pokedex/pkg/models"
)

type listParams struct {
	Page   int
	Limit  int
	Search string
	Types  []string
	Sort   string
}

// backend is the catalog as the CLI sees it, over HTTP or gRPC.
type backend interface {
	List(ctx context.Context, p listParams) (models.ListResult, error)
	Get(ctx context.Context, id int) (models.PokemonDetail, error)
	Types(ctx context.Context) ([]models.TypeInfo, error)
}

type httpBackend struct {
	baseURL string
	client  *http.Client
}

func newHTTPBackend(baseURL string, timeout time.Duration) *httpBackend {
	return &httpBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (b *httpBackend) List(ctx context.Context, p listParams) (models.ListResult, error) {
	qv := url.Values{}
	if p.Page > 0 {
		qv.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		qv.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		qv.Set("search", p.Search)
	}
	if len(p.Types) > 0 {
		qv.Set("types", strings.Join(p.Types, ","))
	}
	if p.Sort != "" {
		qv.Set("sort", p.Sort)
	}

	var out models.ListResult
	err := doJSON(ctx, b.client, http.MethodGet, b.baseURL+"/api/pokemon?"+qv.Encode(), &out)
	return out, err
}

func (b *httpBackend) Get(ctx context.Context, id int) (models.PokemonDetail, error) {
	var out models.PokemonDetail
	err := doJSON(ctx, b.client, http.MethodGet, fmt.Sprintf("%s/api/pokemon/%d", b.baseURL, id), &out)
	return out, err
}

func (b *httpBackend) Types(ctx context.Context) ([]models.TypeInfo, error) {
	var out struct {
		Types []models.TypeInfo `json:"types"`
	}
	err := doJSON(ctx, b.client, http.MethodGet, b.baseURL+"/api/types", &out)
	return out.Types, err
}

type grpcBackend struct {
	client *grpcserver.Client
}

func (b *grpcBackend) List(ctx context.Context, p listParams) (models.ListResult, error) {
	res, err := b.client.ListPokemon(ctx, &grpcserver.ListRequest{
		Page:   int32(p.Page),
		Limit:  int32(p.Limit),
		Search: p.Search,
		Types:  p.Types,
		Sort:   p.Sort,
	})
	if err != nil {
		return models.ListResult{}, err
	}
	return *res, nil
}

func (b *grpcBackend) Get(ctx context.Context, id int) (models.PokemonDetail, error) {
	res, err := b.client.GetPokemon(ctx, &grpcserver.GetRequest{ID: int32(id)})
	if err != nil {
		return models.PokemonDetail{}, err
	}
	return *res, nil
}

func (b *grpcBackend) Types(ctx context.Context) ([]models.TypeInfo, error) {
	res, err := b.client.ListTypes(ctx)
	if err != nil {
		return nil, err
	}
	return res.Types, nil
}

// apiError is a non-2xx answer from the HTTP API.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func doJSON(ctx context.Context, client *http.Client, method, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		var body struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &body) == nil && body.Error != "" {
			msg = body.Error
		}
		return &apiError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// fetchAll pages through the listing until limit entries are collected or
// the listing runs out.
func fetchAll(ctx context.Context, b backend, p listParams, limit int) ([]models.PokemonSummary, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be > 0")
	}

	var out []models.PokemonSummary
	// page size stays fixed; the server derives offsets from it
	p.Page, p.Limit = 1, min(50, limit)
	for len(out) < limit {
		res, err := b.List(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, res.Pokemon...)
		if !res.Pagination.HasMore || len(res.Pokemon) == 0 {
			break
		}
		p.Page++
	}
	return out[:min(len(out), limit)], nil
}
