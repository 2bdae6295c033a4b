// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider implements the metadata lookup backends. The structured
// API provider (OpenAlex) is the primary source; a browser-driven Google
// Scholar session serves as the interactive fallback.
package provider

import (
	"context"

	"github.com/AlanSynn/paperef/pkg/types"
)

// Provider is a structured metadata backend. Search and SearchByDOI return
// (nil, nil) when no confident candidate exists; errors are reserved for
// transport and decoding failures, which callers demote to "no result".
type Provider interface {
	Name() string
	Search(ctx context.Context, q types.Query) (*types.CandidateRecord, error)
	SearchByDOI(ctx context.Context, doi string) (*types.CandidateRecord, error)
}

// Fallback is an interactive last-resort backend that produces a formatted
// citation directly instead of a structured record. A Fallback owns mutable
// session state and must be closed when done.
type Fallback interface {
	Name() string
	FetchBibTeX(ctx context.Context, q types.Query) (string, error)
	Close() error
}
