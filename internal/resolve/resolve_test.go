// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/AlanSynn/paperef/internal/cache"
	"github.com/AlanSynn/paperef/pkg/types"
)

// fakeProvider returns a fixed candidate and counts calls.
type fakeProvider struct {
	candidate *types.CandidateRecord
	err       error
	calls     int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Search(_ context.Context, _ types.Query) (*types.CandidateRecord, error) {
	f.calls++
	return f.candidate, f.err
}

func (f *fakeProvider) SearchByDOI(_ context.Context, _ string) (*types.CandidateRecord, error) {
	f.calls++
	return f.candidate, f.err
}

// fakeFallback returns fixed BibTeX text and counts calls.
type fakeFallback struct {
	raw    string
	err    error
	calls  int
	closed bool
}

func (f *fakeFallback) Name() string { return "fallback" }

func (f *fakeFallback) FetchBibTeX(_ context.Context, _ types.Query) (string, error) {
	f.calls++
	return f.raw, f.err
}

func (f *fakeFallback) Close() error {
	f.closed = true
	return nil
}

func newTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.New(&cache.MemStore{}, 100, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

var exampleCandidate = types.CandidateRecord{
	DOI:     "10.1/ex",
	Title:   "Example Paper",
	Authors: []types.Author{{Given: "A", Family: "Smith"}},
	Year:    2022,
	Source:  "fake",
}

func TestResolvePrimaryHit(t *testing.T) {
	primary := &fakeProvider{candidate: &exampleCandidate}
	fallback := &fakeFallback{}
	r, err := New(newTestCache(t), primary, nil, WithFallback(fallback))
	if err != nil {
		t.Fatal(err)
	}

	out, err := r.Resolve(context.Background(), types.Query{Title: "Example Paper", Year: 2022})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if out.Status != StatusResolved {
		t.Fatalf("status = %s", out.Status)
	}
	if out.Entry.Get("doi") != "10.1/ex" {
		t.Errorf("doi = %q", out.Entry.Get("doi"))
	}
	if out.Entry.Get("author") != "Smith, A" {
		t.Errorf("author = %q", out.Entry.Get("author"))
	}
	if out.Entry.Get("year") != "2022" {
		t.Errorf("year = %q", out.Entry.Get("year"))
	}
	if out.Source != "fake" {
		t.Errorf("source = %q", out.Source)
	}
	if primary.calls != 1 {
		t.Errorf("primary calls = %d, want 1", primary.calls)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback calls = %d, want 0", fallback.calls)
	}
}

func TestResolveIdempotentViaCache(t *testing.T) {
	primary := &fakeProvider{candidate: &exampleCandidate}
	r, err := New(newTestCache(t), primary, nil)
	if err != nil {
		t.Fatal(err)
	}

	q := types.Query{Title: "Example Paper", Year: 2022}
	first, err := r.Resolve(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Resolve(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}

	if !second.FromCache {
		t.Error("second resolve did not come from cache")
	}
	if second.BibTeX != first.BibTeX {
		t.Errorf("cached output differs:\n%s\nvs\n%s", second.BibTeX, first.BibTeX)
	}
	if primary.calls != 1 {
		t.Errorf("primary calls = %d, want 1", primary.calls)
	}
}

func TestResolveNegativeCaching(t *testing.T) {
	primary := &fakeProvider{}
	r, err := New(newTestCache(t), primary, nil)
	if err != nil {
		t.Fatal(err)
	}

	q := types.Query{Title: "Nothing Findable", Year: 2020}
	first, _ := r.Resolve(context.Background(), q)
	if first.Status != StatusUnresolved {
		t.Fatalf("status = %s", first.Status)
	}

	second, _ := r.Resolve(context.Background(), q)
	if second.Status != StatusUnresolved || !second.FromCache {
		t.Errorf("second outcome = %+v, want cached unresolved", second)
	}
	if primary.calls != 1 {
		t.Errorf("primary calls = %d, want 1 (negative result not cached)", primary.calls)
	}
}

func TestResolveFallbackAfterPrimaryMiss(t *testing.T) {
	primary := &fakeProvider{}
	fallback := &fakeFallback{raw: "@inproceedings{vaswani2017attention,\n  title={Attention is all you need},\n  author={Vaswani, Ashish},\n  year={2017}\n}"}
	r, err := New(newTestCache(t), primary, nil, WithFallback(fallback))
	if err != nil {
		t.Fatal(err)
	}

	out, err := r.Resolve(context.Background(), types.Query{Title: "Attention is all you need", Year: 2017})
	if err != nil {
		t.Fatal(err)
	}

	if out.Status != StatusResolved {
		t.Fatalf("status = %s", out.Status)
	}
	if out.Source != "fallback" {
		t.Errorf("source = %q", out.Source)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Errorf("calls = primary %d fallback %d, want 1 and 1", primary.calls, fallback.calls)
	}
	if out.Entry.Get("title") != "Attention is all you need" {
		t.Errorf("title = %q", out.Entry.Get("title"))
	}
}

func TestResolveNonInteractiveSkipsFallback(t *testing.T) {
	primary := &fakeProvider{}
	r, err := New(newTestCache(t), primary, nil)
	if err != nil {
		t.Fatal(err)
	}

	out, _ := r.Resolve(context.Background(), types.Query{Title: "Anything At All"})
	if out.Status != StatusUnresolved {
		t.Errorf("status = %s, want unresolved with no fallback attached", out.Status)
	}
}

func TestResolveProviderErrorDemotedToWarning(t *testing.T) {
	primary := &fakeProvider{err: fmt.Errorf("connection refused")}
	var buf bytes.Buffer
	r, err := New(newTestCache(t), primary, &buf)
	if err != nil {
		t.Fatal(err)
	}

	out, err := r.Resolve(context.Background(), types.Query{Title: "Example Paper"})
	if err != nil {
		t.Fatalf("provider error propagated: %v", err)
	}
	if out.Status != StatusUnresolved {
		t.Errorf("status = %s", out.Status)
	}
	if !strings.Contains(buf.String(), "warning: fake: connection refused") {
		t.Errorf("warning not logged: %q", buf.String())
	}
}

func TestResolveInvalidQuery(t *testing.T) {
	primary := &fakeProvider{candidate: &exampleCandidate}
	r, err := New(newTestCache(t), primary, nil)
	if err != nil {
		t.Fatal(err)
	}

	out, err := r.Resolve(context.Background(), types.Query{Year: 2020})
	if err == nil {
		t.Fatal("expected an error for a query with no title and no DOI")
	}
	if out.Status != StatusError {
		t.Errorf("status = %s", out.Status)
	}
	if primary.calls != 0 {
		t.Errorf("provider called %d times before validation", primary.calls)
	}
}

func TestResolveUnparsableFallbackOutput(t *testing.T) {
	primary := &fakeProvider{}
	fallback := &fakeFallback{raw: "this is not a citation"}
	var buf bytes.Buffer
	r, err := New(newTestCache(t), primary, &buf, WithFallback(fallback))
	if err != nil {
		t.Fatal(err)
	}

	out, _ := r.Resolve(context.Background(), types.Query{Title: "Broken Export"})
	if out.Status != StatusUnresolved {
		t.Errorf("status = %s", out.Status)
	}
	if !strings.Contains(buf.String(), "warning: fallback:") {
		t.Errorf("warning not logged: %q", buf.String())
	}
}

func TestNewRequiresPrimary(t *testing.T) {
	if _, err := New(newTestCache(t), nil, nil); err == nil {
		t.Error("expected an error with no primary provider")
	}
}

func TestResolveBatch(t *testing.T) {
	primary := &fakeProvider{candidate: &exampleCandidate}
	var buf bytes.Buffer
	r, err := New(newTestCache(t), primary, &buf)
	if err != nil {
		t.Fatal(err)
	}

	queries := []types.Query{
		{Title: "Example Paper", Year: 2022},
		{Year: 1999}, // invalid: no title, no DOI
		{Title: "Example Paper", Year: 2022},
	}

	outcomes, summary := r.ResolveBatch(context.Background(), queries)

	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(outcomes))
	}
	if summary.Resolved != 2 || summary.Failed != 1 || summary.Unresolved != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.Total() != 3 {
		t.Errorf("total = %d", summary.Total())
	}
	// The repeat of the first query came from cache.
	if primary.calls != 1 {
		t.Errorf("primary calls = %d, want 1", primary.calls)
	}
	if !outcomes[2].FromCache {
		t.Error("third outcome not served from cache")
	}
}
