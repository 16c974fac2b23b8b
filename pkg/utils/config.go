package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "POKEDEX_"

type Config struct {
	HTTPAddr    string   `yaml:"http_addr"`
	GRPCAddr    string   `yaml:"grpc_addr"` // empty disables the gRPC listener in api-server
	CORSOrigins []string `yaml:"cors_origins"`

	Upstream UpstreamConfig `yaml:"upstream"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Log      LogConfig      `yaml:"log"`

	MirrorDB string `yaml:"mirror_db"`
}

type UpstreamConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	Retries      int           `yaml:"retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	UserAgent    string        `yaml:"user_agent"`
}

type CatalogConfig struct {
	Lineage     string `yaml:"lineage"`
	MoveLimit   int    `yaml:"move_limit"`
	Language    string `yaml:"language"`
	Concurrency int    `yaml:"concurrency"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":8080",
		CORSOrigins: []string{"*"},
		Upstream: UpstreamConfig{
			BaseURL:      "https://pokeapi.co/api/v2",
			Timeout:      12 * time.Second,
			RetryBackoff: 250 * time.Millisecond,
			UserAgent:    "pokedex/1.0",
		},
		Catalog: CatalogConfig{
			Lineage:     "tree",
			MoveLimit:   4,
			Language:    "en",
			Concurrency: 16,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// LoadConfig layers, lowest first: defaults, the YAML file at path (or
// $POKEDEX_CONFIG when path is empty), a .env file in the working
// directory, and POKEDEX_* environment variables.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv(envPrefix + "CONFIG")
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", filepath.Base(path), err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := os.LookupEnv(envPrefix + key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = n
		return nil
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := os.LookupEnv(envPrefix + key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = d
		return nil
	}

	str("HTTP_ADDR", &cfg.HTTPAddr)
	str("GRPC_ADDR", &cfg.GRPCAddr)
	str("UPSTREAM_URL", &cfg.Upstream.BaseURL)
	str("USER_AGENT", &cfg.Upstream.UserAgent)
	str("LINEAGE", &cfg.Catalog.Lineage)
	str("LANGUAGE", &cfg.Catalog.Language)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("MIRROR_DB", &cfg.MirrorDB)

	if v, ok := os.LookupEnv(envPrefix + "CORS_ORIGINS"); ok {
		cfg.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	return errors.Join(
		num("UPSTREAM_RETRIES", &cfg.Upstream.Retries),
		num("MOVE_LIMIT", &cfg.Catalog.MoveLimit),
		num("CONCURRENCY", &cfg.Catalog.Concurrency),
		dur("UPSTREAM_TIMEOUT", &cfg.Upstream.Timeout),
		dur("UPSTREAM_BACKOFF", &cfg.Upstream.RetryBackoff),
	)
}
