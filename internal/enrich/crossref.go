// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich fills missing citation fields from authoritative DOI
// metadata and normalizes the result for serialization.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/AlanSynn/paperef/internal/httputil"
	"github.com/AlanSynn/paperef/internal/match"
	"github.com/AlanSynn/paperef/pkg/types"
)

// crossrefBase is the Crossref works endpoint. Declared as a var so tests
// can substitute an httptest server.
var crossrefBase = "https://api.crossref.org/works"

// searchRows is how many Crossref search results are scored per lookup.
const searchRows = 5

// Client queries the Crossref REST API.
type Client struct {
	client  *http.Client
	cfg     types.EnrichConfig
	limiter *rate.Limiter
	retry   httputil.Policy
}

// NewClient creates a Crossref client. Zero config fields select defaults:
// 0.72 acceptance score and 200ms between calls.
func NewClient(cfg types.EnrichConfig) *Client {
	if cfg.MinScore <= 0 {
		cfg.MinScore = 0.72
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 200 * time.Millisecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "paperef/0.1"
	}
	if cfg.Email != "" {
		cfg.UserAgent = fmt.Sprintf("%s (mailto:%s)", cfg.UserAgent, cfg.Email)
	}

	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		retry:   httputil.DefaultPolicy,
	}
}

// FetchDOI returns the authoritative record for a DOI, or (nil, nil) when
// Crossref does not know it.
func (c *Client) FetchDOI(ctx context.Context, doi string) (*types.CandidateRecord, error) {
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	if doi == "" {
		return nil, nil
	}

	var body struct {
		Message crossrefWork `json:"message"`
	}
	status, err := c.getJSON(ctx, crossrefBase+"/"+url.PathEscape(doi), &body)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}

	rec := body.Message.toCandidate()
	if rec.Title == "" && rec.DOI == "" {
		return nil, nil
	}
	return &rec, nil
}

// SearchDOI looks a DOI up by bibliographic similarity: the top search
// results are scored against the known entry fields and the best is
// accepted only above the configured threshold.
func (c *Client) SearchDOI(ctx context.Context, title string, year int, authors []string, publisher string) (*types.CandidateRecord, error) {
	if title == "" {
		return nil, nil
	}

	params := url.Values{
		"query.title": {title},
		"rows":        {fmt.Sprintf("%d", searchRows)},
	}

	var body struct {
		Message struct {
			Items []crossrefWork `json:"items"`
		} `json:"message"`
	}
	status, err := c.getJSON(ctx, crossrefBase+"?"+params.Encode(), &body)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}

	var best *types.CandidateRecord
	bestScore := 0.0
	for _, item := range body.Message.Items {
		rec := item.toCandidate()
		if rec.DOI == "" {
			continue
		}
		if s := match.ScoreEntry(title, year, authors, publisher, rec); s > bestScore {
			r := rec
			best, bestScore = &r, s
		}
	}

	if best == nil || bestScore <= c.cfg.MinScore {
		return nil, nil
	}
	return best, nil
}

// getJSON performs a rate-limited GET with 429 retry. A 404 is returned as
// a status, not an error, since an unknown DOI is a normal outcome.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.client, req, c.retry)
	if err != nil {
		return 0, fmt.Errorf("Crossref request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return http.StatusNotFound, nil
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("Crossref returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("parsing Crossref response: %w", err)
	}
	return resp.StatusCode, nil
}

// Crossref API JSON structures.
type crossrefWork struct {
	DOI            string           `json:"DOI"`
	Type           string           `json:"type"`
	Title          []string         `json:"title"`
	ContainerTitle []string         `json:"container-title"`
	Author         []crossrefAuthor `json:"author"`
	Publisher      string           `json:"publisher"`
	Page           string           `json:"page"`
	Volume         string           `json:"volume"`
	Issue          string           `json:"issue"`
	Issued         crossrefDate     `json:"issued"`
	PublishedPrint crossrefDate     `json:"published-print"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

func (d crossrefDate) year() int {
	if len(d.DateParts) > 0 && len(d.DateParts[0]) > 0 {
		return d.DateParts[0][0]
	}
	return 0
}

// crossrefTypes maps Crossref work types to citation entry types.
var crossrefTypes = map[string]string{
	"journal-article":     types.EntryArticle,
	"proceedings-article": types.EntryInproceedings,
	"book":                types.EntryBook,
	"book-chapter":        types.EntryInbook,
	"dissertation":        types.EntryPhdThesis,
	"report":              types.EntryTechReport,
	"posted-content":      types.EntryUnpublished,
}

func (w crossrefWork) toCandidate() types.CandidateRecord {
	rec := types.CandidateRecord{
		DOI:       w.DOI,
		Publisher: w.Publisher,
		Pages:     w.Page,
		Volume:    w.Volume,
		Issue:     w.Issue,
		Source:    "crossref",
	}
	if len(w.Title) > 0 {
		rec.Title = w.Title[0]
	}
	if len(w.ContainerTitle) > 0 {
		rec.Venue = w.ContainerTitle[0]
	}
	if rec.Year = w.Issued.year(); rec.Year == 0 {
		rec.Year = w.PublishedPrint.year()
	}
	if et, ok := crossrefTypes[w.Type]; ok {
		rec.EntryType = et
	} else {
		rec.EntryType = types.EntryArticle
	}
	for _, a := range w.Author {
		rec.Authors = append(rec.Authors, types.Author{Given: a.Given, Family: a.Family})
	}
	return rec
}
