// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"fmt"

	"github.com/AlanSynn/paperef/pkg/types"
)

// Summary counts the outcomes of a batch run. Every input query is
// accounted for in exactly one bucket.
type Summary struct {
	Resolved   int `json:"resolved"`
	Unresolved int `json:"unresolved"`
	Failed     int `json:"failed"`
}

// Total returns the number of queries processed.
func (s Summary) Total() int {
	return s.Resolved + s.Unresolved + s.Failed
}

// ResolveBatch resolves queries sequentially. A failing query never aborts
// the batch; its outcome carries the error and the summary counts it.
// Sequential processing keeps the fallback provider's single browser
// session safe.
func (r *Resolver) ResolveBatch(ctx context.Context, queries []types.Query) ([]Outcome, Summary) {
	outcomes := make([]Outcome, 0, len(queries))
	var summary Summary

	for i, q := range queries {
		fmt.Fprintf(r.out, "[%d/%d] resolving %q\n", i+1, len(queries), describe(q))

		out, err := r.Resolve(ctx, q)
		if err != nil {
			fmt.Fprintf(r.out, "warning: skipping reference: %v\n", err)
		}

		switch out.Status {
		case StatusResolved:
			summary.Resolved++
		case StatusUnresolved:
			summary.Unresolved++
		default:
			summary.Failed++
		}
		outcomes = append(outcomes, out)
	}

	return outcomes, summary
}

func describe(q types.Query) string {
	if q.Title != "" {
		return q.Title
	}
	if q.DOI != "" {
		return q.DOI
	}
	return "(empty)"
}
