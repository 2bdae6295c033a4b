// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/AlanSynn/paperef/internal/cache"
	"github.com/AlanSynn/paperef/internal/enrich"
	"github.com/AlanSynn/paperef/internal/provider"
	"github.com/AlanSynn/paperef/internal/resolve"
	"github.com/AlanSynn/paperef/pkg/types"
)

// pipelineConfig builds the full stage configuration from viper, with
// defaults matching the documented behavior.
func pipelineConfig() types.PipelineConfig {
	viper.SetDefault("cache.backend", string(types.CacheFile))
	viper.SetDefault("cache.max_size", cache.DefaultMaxSize)
	viper.SetDefault("cache.default_ttl", cache.DefaultTTL)
	viper.SetDefault("cache.dir", defaultCacheDir())
	viper.SetDefault("openalex.max_results", 10)
	viper.SetDefault("openalex.min_score", 0.6)
	viper.SetDefault("openalex.min_interval", 200*time.Millisecond)
	viper.SetDefault("openalex.timeout", 15*time.Second)
	viper.SetDefault("scholar.headless", true)
	viper.SetDefault("enrich.min_score", 0.72)
	viper.SetDefault("enrich.min_interval", 200*time.Millisecond)
	viper.SetDefault("enrich.timeout", 15*time.Second)
	viper.SetDefault("resolve.cache_ttl", cache.DefaultTTL)
	viper.SetDefault("conversion.image", "markitdown:latest")
	viper.SetDefault("conversion.output_dir", "markdown")

	cfg := types.PipelineConfig{
		Cache: types.CacheConfig{
			Dir:        viper.GetString("cache.dir"),
			Backend:    types.CacheBackend(viper.GetString("cache.backend")),
			MaxSize:    viper.GetInt("cache.max_size"),
			DefaultTTL: viper.GetDuration("cache.default_ttl"),
		},
		OpenAlex: types.OpenAlexConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("openalex.timeout"),
				UserAgent: viper.GetString("openalex.user_agent"),
			},
			Email:       secretDefault("openalex-email", viper.GetString("openalex.email")),
			MaxResults:  viper.GetInt("openalex.max_results"),
			MinScore:    viper.GetFloat64("openalex.min_score"),
			MinInterval: viper.GetDuration("openalex.min_interval"),
		},
		Scholar: types.ScholarConfig{
			Headless:       viper.GetBool("scholar.headless"),
			WaitMin:        viper.GetDuration("scholar.wait_min"),
			WaitMax:        viper.GetDuration("scholar.wait_max"),
			ChallengeDelay: viper.GetDuration("scholar.challenge_delay"),
			ElementTimeout: viper.GetDuration("scholar.element_timeout"),
			UserAgent:      secretDefault("scholar-user-agent", viper.GetString("scholar.user_agent")),
		},
		Enrich: types.EnrichConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("enrich.timeout"),
				UserAgent: viper.GetString("enrich.user_agent"),
			},
			Email:       secretDefault("crossref-email", viper.GetString("enrich.email")),
			MinScore:    viper.GetFloat64("enrich.min_score"),
			MinInterval: viper.GetDuration("enrich.min_interval"),
		},
		Resolve: types.ResolveConfig{
			Interactive: viper.GetBool("resolve.interactive"),
			Enrich:      viper.GetBool("resolve.enrich"),
			CacheTTL:    viper.GetDuration("resolve.cache_ttl"),
		},
		Conversion: types.ConversionConfig{
			Image:     viper.GetString("conversion.image"),
			OutputDir: viper.GetString("conversion.output_dir"),
		},
	}
	return cfg
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".paperef"
	}
	return filepath.Join(home, ".paperef")
}

// openCache constructs the cache over the configured backend.
func openCache(cfg types.CacheConfig) (*cache.Cache, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case types.CacheMemory:
		c, err := cache.New(&cache.MemStore{}, cfg.MaxSize, cfg.DefaultTTL)
		return c, noop, err

	case types.CacheSQLite:
		store, err := cache.NewSQLiteStore(filepath.Join(cfg.Dir, "cache.db"))
		if err != nil {
			return nil, noop, err
		}
		c, err := cache.New(store, cfg.MaxSize, cfg.DefaultTTL)
		if err != nil {
			store.Close()
			return nil, noop, err
		}
		return c, func() { store.Close() }, nil

	case types.CacheFile, "":
		c, err := cache.New(cache.NewFileStore(filepath.Join(cfg.Dir, "cache.json")), cfg.MaxSize, cfg.DefaultTTL)
		return c, noop, err

	default:
		return nil, noop, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// newResolver assembles the resolution pipeline. The returned cleanup
// function closes the cache store and, when interactive mode started one,
// the browser session.
func newResolver(cfg types.PipelineConfig, w io.Writer) (*resolve.Resolver, func(), error) {
	c, closeCache, err := openCache(cfg.Cache)
	if err != nil {
		return nil, nil, fmt.Errorf("opening cache: %w", err)
	}

	opts := []resolve.Option{resolve.WithCacheTTL(cfg.Resolve.CacheTTL)}
	cleanup := closeCache

	if cfg.Resolve.Interactive {
		scholar, err := provider.NewScholar(cfg.Scholar)
		if err != nil {
			closeCache()
			return nil, nil, fmt.Errorf("starting fallback session: %w", err)
		}
		opts = append(opts, resolve.WithFallback(scholar))
		cleanup = func() {
			scholar.Close()
			closeCache()
		}
	}

	if cfg.Resolve.Enrich {
		opts = append(opts, resolve.WithEnricher(enrich.NewEnricher(enrich.NewClient(cfg.Enrich))))
	}

	r, err := resolve.New(c, provider.NewOpenAlex(cfg.OpenAlex), w, opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return r, cleanup, nil
}
