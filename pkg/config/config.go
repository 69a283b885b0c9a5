// Package config loads burrow settings from TOML or YAML files.
//
// A file may set any subset of the sections below; everything else keeps its
// default. The format is chosen by extension (.toml, .yaml or .yml).
//
//	[puzzle]
//	depth = 4
//
//	[[puzzle.types]]
//	symbol = "A"
//	multiplier = 1
//
//	[search]
//	max_expansions = 5000000
//	timeout = "30s"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "720h"
//	render_ttl = "168h"
//
// Command-line flags override file values.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/burrow/pkg/cache"
	errs "github.com/matzehuels/burrow/pkg/errors"
	"github.com/matzehuels/burrow/pkg/search"
	"github.com/matzehuels/burrow/pkg/topology"
)

// Cache backends.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config is the complete burrow configuration.
type Config struct {
	Puzzle Puzzle `toml:"puzzle" yaml:"puzzle"`
	Search Search `toml:"search" yaml:"search"`
	Cache  Cache  `toml:"cache" yaml:"cache"`
	Server Server `toml:"server" yaml:"server"`
}

// Puzzle describes the arena for token-list input. Diagram input carries
// its own geometry and only uses Types.
type Puzzle struct {
	Depth          int     `toml:"depth" yaml:"depth"`
	CorridorLength int     `toml:"corridor_length" yaml:"corridor_length"`
	Entrances      []int   `toml:"entrances" yaml:"entrances"`
	Types          []Token `toml:"types" yaml:"types"`
}

// Token describes one token type.
type Token struct {
	Symbol     string `toml:"symbol" yaml:"symbol"`
	Name       string `toml:"name" yaml:"name"`
	Multiplier uint64 `toml:"multiplier" yaml:"multiplier"`
}

// Search bounds the search engine.
type Search struct {
	CompactEvery  int           `toml:"compact_every" yaml:"compact_every"`
	MaxExpansions int           `toml:"max_expansions" yaml:"max_expansions"`
	Timeout       time.Duration `toml:"timeout" yaml:"timeout"`
}

// Cache selects and configures the result cache.
type Cache struct {
	Backend         string        `toml:"backend" yaml:"backend"`
	Dir             string        `toml:"dir" yaml:"dir"`
	RedisURL        string        `toml:"redis_url" yaml:"redis_url"`
	MongoURI        string        `toml:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase   string        `toml:"mongo_database" yaml:"mongo_database"`
	MongoCollection string        `toml:"mongo_collection" yaml:"mongo_collection"`
	Prefix          string        `toml:"prefix" yaml:"prefix"`
	TTL             time.Duration `toml:"ttl" yaml:"ttl"`
	RenderTTL       time.Duration `toml:"render_ttl" yaml:"render_ttl"`
}

// Server configures the HTTP service.
type Server struct {
	Addr           string        `toml:"addr" yaml:"addr"`
	RequestTimeout time.Duration `toml:"request_timeout" yaml:"request_timeout"`
	MaxExpansions  int           `toml:"max_expansions" yaml:"max_expansions"`
}

// Default returns the built-in configuration: the classic four-type puzzle,
// a file cache and an unbounded search.
func Default() *Config {
	types := make([]Token, 0, 4)
	for _, tt := range topology.DefaultTypes() {
		types = append(types, Token{Symbol: string(tt.Symbol), Name: tt.Name, Multiplier: tt.Multiplier})
	}
	return &Config{
		Puzzle: Puzzle{
			Depth: topology.DefaultDepth,
			Types: types,
		},
		Search: Search{
			CompactEvery: search.DefaultCompactEvery,
		},
		Cache: Cache{
			Backend:         BackendFile,
			MongoDatabase:   "burrow",
			MongoCollection: "solutions",
			TTL:             cache.SolveTTL,
			RenderTTL:       cache.RenderTTL,
		},
		Server: Server{
			Addr:           ":8080",
			RequestTimeout: 30 * time.Second,
			MaxExpansions:  5_000_000,
		},
	}
}

// Load reads the file at path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read %s", path)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = decodeTOML(data, cfg)
	case ".yaml", ".yml":
		err = decodeYAML(data, cfg)
	default:
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unsupported config format %q (use .toml or .yaml)", ext)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeTOML(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "unknown key %q", undecoded[0].String())
	}
	return nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// An empty document leaves the defaults in place.
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks the configuration for values no component could use.
func (c *Config) Validate() error {
	if c.Puzzle.Depth <= 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "puzzle.depth must be positive, got %d", c.Puzzle.Depth)
	}
	if len(c.Puzzle.Types) == 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "puzzle.types must not be empty")
	}
	for i, tt := range c.Puzzle.Types {
		if utf8.RuneCountInString(tt.Symbol) != 1 {
			return errs.New(errs.ErrCodeInvalidConfig, "puzzle.types[%d].symbol must be one character, got %q", i, tt.Symbol)
		}
	}
	if c.Search.MaxExpansions < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "search.max_expansions must not be negative")
	}
	if c.Search.Timeout < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "search.timeout must not be negative")
	}

	if c.Cache.TTL < 0 || c.Cache.RenderTTL < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "cache.ttl and cache.render_ttl must not be negative")
	}
	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
		}
	case BackendMongo:
		if c.Cache.MongoURI == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "cache.mongo_uri is required for the mongo backend")
		}
	default:
		return errs.New(errs.ErrCodeInvalidConfig,
			"cache.backend must be one of none, file, redis, mongo; got %q", c.Cache.Backend)
	}

	if c.Server.RequestTimeout <= 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "server.request_timeout must be positive")
	}
	return nil
}

// TokenTypes converts the configured types for the topology builder.
// Symbol and multiplier rules are enforced there.
func (c *Config) TokenTypes() []topology.TokenType {
	out := make([]topology.TokenType, len(c.Puzzle.Types))
	for i, tt := range c.Puzzle.Types {
		r, _ := utf8.DecodeRuneInString(tt.Symbol)
		out[i] = topology.TokenType{Symbol: r, Name: tt.Name, Multiplier: tt.Multiplier}
	}
	return out
}

// TopologyOptions returns builder options for token-list input.
func (c *Config) TopologyOptions() []topology.Option {
	opts := []topology.Option{
		topology.WithTypes(c.TokenTypes()),
		topology.WithDepth(c.Puzzle.Depth),
	}
	if c.Puzzle.CorridorLength > 0 {
		opts = append(opts, topology.WithCorridorLength(c.Puzzle.CorridorLength))
	}
	if len(c.Puzzle.Entrances) > 0 {
		opts = append(opts, topology.WithEntrances(c.Puzzle.Entrances))
	}
	return opts
}

// SearchOptions returns engine options. Callbacks are left for the caller.
func (c *Config) SearchOptions() search.Options {
	return search.Options{
		CompactEvery:  c.Search.CompactEvery,
		MaxExpansions: c.Search.MaxExpansions,
	}
}

// OpenCache opens the configured cache backend. The file backend uses dir
// when Cache.Dir is unset and stops serving entries older than the TTL of
// their kind. The none backend returns a nil Cache.
func (c *Config) OpenCache(ctx context.Context, dir string) (cache.Cache, error) {
	var (
		cc  cache.Cache
		err error
	)
	switch c.Cache.Backend {
	case BackendFile:
		if c.Cache.Dir != "" {
			dir = c.Cache.Dir
		}
		cc, err = cache.NewFileCache(dir,
			cache.WithMaxAge(cache.KindSolve, c.Cache.TTL),
			cache.WithMaxAge(cache.KindRender, c.Cache.RenderTTL))
	case BackendRedis:
		cc, err = cache.NewRedisCache(ctx, c.Cache.RedisURL, c.Cache.Prefix)
	case BackendMongo:
		cc, err = cache.NewMongoCache(ctx, c.Cache.MongoURI, c.Cache.MongoDatabase, c.Cache.MongoCollection)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", c.Cache.Backend, err)
	}
	return cc, nil
}
