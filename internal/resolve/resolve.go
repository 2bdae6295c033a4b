// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve drives a query through cache, primary provider, and
// optional interactive fallback to a citation entry.
package resolve

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/AlanSynn/paperef/internal/bibtex"
	"github.com/AlanSynn/paperef/internal/cache"
	"github.com/AlanSynn/paperef/internal/enrich"
	"github.com/AlanSynn/paperef/internal/provider"
	"github.com/AlanSynn/paperef/pkg/types"
)

// Status classifies a resolution outcome.
type Status string

const (
	// StatusResolved means a citation entry was produced.
	StatusResolved Status = "resolved"
	// StatusUnresolved means no provider produced a confident result.
	StatusUnresolved Status = "unresolved"
	// StatusError means the query itself was unusable.
	StatusError Status = "error"
)

// Outcome is the result of resolving one query.
type Outcome struct {
	Status    Status
	Entry     *bibtex.Entry
	BibTeX    string
	Source    string
	FromCache bool
	Err       error
}

// Resolver resolves queries to citation entries. Provider failures are
// demoted to warnings on the output writer; only invalid queries surface as
// errors.
type Resolver struct {
	cache    *cache.Cache
	primary  provider.Provider
	fallback provider.Fallback
	enricher *enrich.Enricher
	cacheTTL time.Duration
	out      io.Writer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFallback attaches an interactive fallback provider. The resolver does
// not own it; the caller closes it.
func WithFallback(f provider.Fallback) Option {
	return func(r *Resolver) { r.fallback = f }
}

// WithEnricher enables DOI-based field enrichment of resolved entries.
func WithEnricher(e *enrich.Enricher) Option {
	return func(r *Resolver) { r.enricher = e }
}

// WithCacheTTL overrides the lifetime of cached outcomes.
func WithCacheTTL(ttl time.Duration) Option {
	return func(r *Resolver) { r.cacheTTL = ttl }
}

// New creates a resolver over the given cache and primary provider.
// Warnings and progress go to w.
func New(c *cache.Cache, primary provider.Provider, w io.Writer, opts ...Option) (*Resolver, error) {
	if primary == nil {
		return nil, fmt.Errorf("no primary provider configured")
	}
	if w == nil {
		w = io.Discard
	}

	r := &Resolver{
		cache:    c,
		primary:  primary,
		cacheTTL: cache.DefaultTTL,
		out:      w,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve runs one query through the state machine: cache, primary
// provider (DOI-direct first), then the fallback if one is attached. Every
// outcome is cached under the query's key; a negative outcome is cached as
// an empty value so known-failing lookups stay cheap.
func (r *Resolver) Resolve(ctx context.Context, q types.Query) (Outcome, error) {
	if err := q.Validate(); err != nil {
		return Outcome{Status: StatusError, Err: err}, err
	}

	key := q.CacheKey()
	if value, ok := r.cache.Get(key); ok {
		if value == "" {
			return Outcome{Status: StatusUnresolved, FromCache: true}, nil
		}
		out := Outcome{Status: StatusResolved, BibTeX: value, Source: "cache", FromCache: true}
		if entry, err := bibtex.Parse(value); err == nil {
			out.Entry = entry
		}
		return out, nil
	}

	if out, ok := r.tryPrimary(ctx, q, key); ok {
		return out, nil
	}
	if out, ok := r.tryFallback(ctx, q, key); ok {
		return out, nil
	}

	r.cache.SetWithTTL(key, "", r.cacheTTL)
	return Outcome{Status: StatusUnresolved}, nil
}

func (r *Resolver) tryPrimary(ctx context.Context, q types.Query, key string) (Outcome, bool) {
	candidate, err := r.primary.Search(ctx, q)
	if err != nil {
		fmt.Fprintf(r.out, "warning: %s: %v\n", r.primary.Name(), err)
		return Outcome{}, false
	}
	if candidate == nil {
		return Outcome{}, false
	}

	entry := bibtex.FromCandidate(*candidate)
	r.finishEntry(ctx, entry)

	formatted := entry.Format()
	r.cache.SetWithTTL(key, formatted, r.cacheTTL)
	return Outcome{
		Status: StatusResolved,
		Entry:  entry,
		BibTeX: formatted,
		Source: r.primary.Name(),
	}, true
}

func (r *Resolver) tryFallback(ctx context.Context, q types.Query, key string) (Outcome, bool) {
	if r.fallback == nil {
		return Outcome{}, false
	}

	raw, err := r.fallback.FetchBibTeX(ctx, q)
	if err != nil {
		fmt.Fprintf(r.out, "warning: %s: %v\n", r.fallback.Name(), err)
		return Outcome{}, false
	}

	entry, err := bibtex.Parse(raw)
	if err != nil {
		fmt.Fprintf(r.out, "warning: %s: %v\n", r.fallback.Name(), err)
		return Outcome{}, false
	}
	r.finishEntry(ctx, entry)

	formatted := entry.Format()
	r.cache.SetWithTTL(key, formatted, r.cacheTTL)
	return Outcome{
		Status: StatusResolved,
		Entry:  entry,
		BibTeX: formatted,
		Source: r.fallback.Name(),
	}, true
}

// finishEntry applies enrichment when enabled, falling back to bare
// normalization so serialized output is uniform either way.
func (r *Resolver) finishEntry(ctx context.Context, entry *bibtex.Entry) {
	if r.enricher != nil {
		if err := r.enricher.Enrich(ctx, entry); err != nil {
			fmt.Fprintf(r.out, "warning: enrich: %v\n", err)
			enrich.Normalize(entry)
		}
		return
	}
	enrich.Normalize(entry)
}
