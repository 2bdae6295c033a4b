// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paperef resolution
// pipeline: queries, provider candidates, document metadata, and the
// per-stage configuration structs.
package types

import (
	"fmt"
	"strings"
)

// Query is a resolution request assembled from document metadata or a parsed
// reference-list entry. Title and DOI are the lookup handles; Year and
// Authors only influence candidate scoring.
type Query struct {
	// Title is the paper title. Required unless DOI is set.
	Title string `json:"title" yaml:"title"`

	// Year is the publication year, or 0 when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// DOI is a bare DOI ("10.1145/..."), without the doi.org prefix.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Authors lists author surnames in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`
}

// Validate rejects queries that carry no lookup handle. A query with neither
// a title nor a DOI can never be resolved and must not reach a provider.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Title) == "" && strings.TrimSpace(q.DOI) == "" {
		return fmt.Errorf("query has neither title nor DOI")
	}
	return nil
}

// CacheKey returns the stable cache key for the query: the
// (title, year, doi) triple joined by "::". Author lists are deliberately
// excluded so differently-attributed lookups for the same work share a key.
func (q Query) CacheKey() string {
	year := ""
	if q.Year > 0 {
		year = fmt.Sprintf("%d", q.Year)
	}
	return q.Title + "::" + year + "::" + q.DOI
}
