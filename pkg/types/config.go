// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paperef/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CacheBackend selects the persistence backend for the resolution cache.
type CacheBackend string

const (
	CacheFile   CacheBackend = "file"
	CacheSQLite CacheBackend = "sqlite"
	CacheMemory CacheBackend = "memory"
)

// CacheConfig holds settings for the resolution cache.
type CacheConfig struct {
	// Dir is the directory holding the cache store (file or SQLite database).
	Dir string `json:"dir" yaml:"dir"`

	// Backend selects the persistence backend: file, sqlite, or memory.
	Backend CacheBackend `json:"backend" yaml:"backend"`

	// MaxSize is the maximum number of entries before LRU eviction (default 1000).
	MaxSize int `json:"max_size" yaml:"max_size"`

	// DefaultTTL is the default entry lifetime (default 24h).
	DefaultTTL time.Duration `json:"default_ttl" yaml:"default_ttl"`
}

// OpenAlexConfig holds settings for the primary (structured API) provider.
type OpenAlexConfig struct {
	HTTPConfig `yaml:",inline"`

	// Email is sent as the mailto parameter for polite pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// MaxResults is the number of search results to score (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// MinScore is the acceptance threshold for the best-scoring search
	// candidate (default 0.6). Independent of EnrichConfig.MinScore.
	MinScore float64 `json:"min_score" yaml:"min_score"`

	// MinInterval is the self-imposed minimum delay between API calls
	// (default 200ms).
	MinInterval time.Duration `json:"min_interval" yaml:"min_interval"`
}

// ScholarConfig holds settings for the browser-driven fallback provider.
type ScholarConfig struct {
	// Headless controls whether the browser runs without a window.
	Headless bool `json:"headless" yaml:"headless"`

	// WaitMin and WaitMax bound the randomized delay between browser
	// actions (defaults 500ms and 1s).
	WaitMin time.Duration `json:"wait_min" yaml:"wait_min"`
	WaitMax time.Duration `json:"wait_max" yaml:"wait_max"`

	// ChallengeDelay is how long to wait before the single retry after a
	// bot-challenge page (default 5s).
	ChallengeDelay time.Duration `json:"challenge_delay" yaml:"challenge_delay"`

	// ElementTimeout bounds waits for individual page elements (default 15s).
	ElementTimeout time.Duration `json:"element_timeout" yaml:"element_timeout"`

	// UserAgent overrides the browser User-Agent string.
	UserAgent string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
}

// EnrichConfig holds settings for DOI-based enrichment.
type EnrichConfig struct {
	HTTPConfig `yaml:",inline"`

	// Email is included in the User-Agent mailto clause per the Crossref
	// etiquette guidelines.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// MinScore is the acceptance threshold for DOI search matching
	// (default 0.72). Independent of OpenAlexConfig.MinScore.
	MinScore float64 `json:"min_score" yaml:"min_score"`

	// MinInterval is the self-imposed minimum delay between API calls
	// (default 200ms).
	MinInterval time.Duration `json:"min_interval" yaml:"min_interval"`
}

// ResolveConfig holds settings for the resolution engine.
type ResolveConfig struct {
	// Interactive permits the browser-driven fallback provider. In
	// non-interactive mode the absence of a confident primary result is final.
	Interactive bool `json:"interactive" yaml:"interactive"`

	// Enrich enables DOI-based field enrichment of resolved entries.
	Enrich bool `json:"enrich" yaml:"enrich"`

	// CacheTTL is the lifetime of cached resolution outcomes, positive and
	// negative alike (default 24h).
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
}

// ConversionConfig holds settings for the document-conversion collaborator.
type ConversionConfig struct {
	// Image is the container image used for conversion (default "markitdown:latest").
	Image string `json:"image" yaml:"image"`

	// OutputDir is the directory for converted Markdown and metadata sidecars.
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Cache      CacheConfig      `json:"cache" yaml:"cache"`
	OpenAlex   OpenAlexConfig   `json:"openalex" yaml:"openalex"`
	Scholar    ScholarConfig    `json:"scholar" yaml:"scholar"`
	Enrich     EnrichConfig     `json:"enrich" yaml:"enrich"`
	Resolve    ResolveConfig    `json:"resolve" yaml:"resolve"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
}
