package pokeapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

type Config struct {
	BaseURL      string
	Timeout      time.Duration
	Retries      int           // extra attempts after a transport error or 5xx
	RetryBackoff time.Duration // multiplied by the attempt number
	UserAgent    string
}

// Client is a read-only PokeAPI client. It keeps no state between calls
// and is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	backoff    time.Duration
	userAgent  string
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = CanonicalBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 12 * time.Second
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 250 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retries:    cfg.Retries,
		backoff:    cfg.RetryBackoff,
		userAgent:  cfg.UserAgent,
		logger:     logger,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// Resolve maps a reference onto the configured base URL. Canonical
// references are rebased so that a mirror or a test server can stand in
// for pokeapi.co; relative paths are joined onto the base; other absolute
// URLs pass through untouched.
func (c *Client) Resolve(ref string) string {
	switch {
	case strings.HasPrefix(ref, CanonicalBaseURL):
		return c.baseURL + strings.TrimPrefix(ref, CanonicalBaseURL)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref
	default:
		return c.baseURL + "/" + strings.TrimLeft(ref, "/")
	}
}

func (c *Client) ListPokemon(ctx context.Context, limit, offset int) (ResourceList, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var out ResourceList
	if err := c.getJSON(ctx, "pokemon?"+q.Encode(), &out); err != nil {
		return ResourceList{}, fmt.Errorf("list pokemon: %w", err)
	}
	return out, nil
}

func (c *Client) Pokemon(ctx context.Context, id int) (Pokemon, error) {
	var out Pokemon
	if err := c.getJSON(ctx, "pokemon/"+strconv.Itoa(id), &out); err != nil {
		return Pokemon{}, fmt.Errorf("pokemon %d: %w", id, err)
	}
	return out, nil
}

func (c *Client) PokemonByURL(ctx context.Context, ref string) (Pokemon, error) {
	var out Pokemon
	if err := c.getJSON(ctx, ref, &out); err != nil {
		return Pokemon{}, fmt.Errorf("pokemon: %w", err)
	}
	return out, nil
}

func (c *Client) Type(ctx context.Context, name string) (TypeDocument, error) {
	var out TypeDocument
	if err := c.getJSON(ctx, "type/"+url.PathEscape(name), &out); err != nil {
		return TypeDocument{}, fmt.Errorf("type %s: %w", name, err)
	}
	return out, nil
}

func (c *Client) Species(ctx context.Context, ref string) (Species, error) {
	var out Species
	if err := c.getJSON(ctx, ref, &out); err != nil {
		return Species{}, fmt.Errorf("species: %w", err)
	}
	return out, nil
}

func (c *Client) EvolutionChain(ctx context.Context, ref string) (EvolutionChain, error) {
	var out EvolutionChain
	if err := c.getJSON(ctx, ref, &out); err != nil {
		return EvolutionChain{}, fmt.Errorf("evolution chain: %w", err)
	}
	return out, nil
}

func (c *Client) Move(ctx context.Context, ref string) (Move, error) {
	var out Move
	if err := c.getJSON(ctx, ref, &out); err != nil {
		return Move{}, fmt.Errorf("move: %w", err)
	}
	return out, nil
}

// Ping issues the cheapest listing request there is.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ListPokemon(ctx, 1, 0)
	return err
}

// Raw fetches a document and returns its body unparsed.
func (c *Client) Raw(ctx context.Context, ref string) ([]byte, error) {
	endpoint := c.Resolve(ref)

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.logger.Debug("retrying upstream request",
				zap.String("url", endpoint),
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}

		body, err := c.fetchOnce(ctx, endpoint)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil || !retryable(err) {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) getJSON(ctx context.Context, ref string, out any) error {
	body, err := c.Raw(ctx, ref)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("pokeapi: decode %s: %w", ref, err)
	}
	return nil
}

func (c *Client) fetchOnce(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("pokeapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pokeapi: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("pokeapi: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: endpoint, StatusCode: resp.StatusCode, Body: snippet(body)}
	}
	return body, nil
}

// retryable reports whether another attempt could succeed: transport
// failures and 5xx, never 4xx.
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= http.StatusInternalServerError
	}
	return true
}
