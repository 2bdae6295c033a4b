// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

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

// openAlexBase is the OpenAlex Works endpoint. Declared as a var so tests
// can substitute an httptest server.
var openAlexBase = "https://api.openalex.org/works"

// OpenAlex queries the OpenAlex Works API.
type OpenAlex struct {
	client  *http.Client
	cfg     types.OpenAlexConfig
	limiter *rate.Limiter
	retry   httputil.Policy
}

// NewOpenAlex creates the primary provider. Zero config fields select
// defaults: 10 results, 0.6 acceptance score, 200ms between calls.
func NewOpenAlex(cfg types.OpenAlexConfig) *OpenAlex {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	if cfg.MinScore <= 0 {
		cfg.MinScore = 0.6
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

	return &OpenAlex{
		client:  &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		retry:   httputil.DefaultPolicy,
	}
}

// Name returns the provider identifier.
func (p *OpenAlex) Name() string { return "openalex" }

// Search resolves a query to the best-matching work. A DOI-direct lookup
// runs first when the query carries one; otherwise a title search is scored
// and the best candidate accepted only above the configured threshold.
func (p *OpenAlex) Search(ctx context.Context, q types.Query) (*types.CandidateRecord, error) {
	if q.DOI != "" {
		if c, err := p.SearchByDOI(ctx, q.DOI); err == nil && c != nil {
			return c, nil
		}
	}

	if q.Title == "" {
		return nil, nil
	}

	params := url.Values{
		"search":   {q.Title},
		"per_page": {fmt.Sprintf("%d", p.cfg.MaxResults)},
		"page":     {"1"},
	}
	if p.cfg.Email != "" {
		params.Set("mailto", p.cfg.Email)
	}

	var body openAlexResponse
	if err := p.getJSON(ctx, openAlexBase+"?"+params.Encode(), &body); err != nil {
		return nil, err
	}

	candidates := make([]types.CandidateRecord, 0, len(body.Results))
	for _, w := range body.Results {
		candidates = append(candidates, w.toCandidate())
	}

	idx, score := match.Best(q, candidates, match.SearchWeights)
	if idx < 0 || score <= p.cfg.MinScore {
		return nil, nil
	}
	return &candidates[idx], nil
}

// SearchByDOI fetches a work directly by DOI, trying the doi.org URL form
// first and the bare DOI second since OpenAlex accepts both unevenly.
func (p *OpenAlex) SearchByDOI(ctx context.Context, doi string) (*types.CandidateRecord, error) {
	doi = strings.TrimPrefix(strings.TrimPrefix(doi, "https://doi.org/"), "doi:")
	if doi == "" {
		return nil, nil
	}

	var lastErr error
	for _, variant := range []string{"https://doi.org/" + doi, doi} {
		var w openAlexWork
		err := p.getJSON(ctx, openAlexBase+"/"+url.PathEscape(variant), &w)
		if err != nil {
			lastErr = err
			continue
		}
		if w.Title == "" {
			continue
		}
		c := w.toCandidate()
		return &c, nil
	}
	return nil, lastErr
}

// getJSON performs a rate-limited GET with 429 retry and decodes the JSON
// body. A 404 is reported as an error so DOI variants can be tried in turn.
func (p *OpenAlex) getJSON(ctx context.Context, rawURL string, out any) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, p.client, req, p.retry)
	if err != nil {
		return fmt.Errorf("OpenAlex request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("OpenAlex returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	return nil
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type openAlexWork struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	DOI             string               `json:"doi"`
	Type            string               `json:"type"`
	PublicationYear int                  `json:"publication_year"`
	Authorships     []openAlexAuthorship `json:"authorships"`
	PrimaryLocation openAlexLocation     `json:"primary_location"`
	Biblio          openAlexBiblio       `json:"biblio"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexLocation struct {
	Source openAlexSource `json:"source"`
}

type openAlexSource struct {
	DisplayName          string `json:"display_name"`
	HostOrganizationName string `json:"host_organization_name"`
}

type openAlexBiblio struct {
	Volume    string `json:"volume"`
	Issue     string `json:"issue"`
	FirstPage string `json:"first_page"`
	LastPage  string `json:"last_page"`
}

// openAlexTypes maps OpenAlex work types to citation entry types. Unlisted
// types default to article.
var openAlexTypes = map[string]string{
	"article":      types.EntryArticle,
	"book":         types.EntryBook,
	"book-chapter": types.EntryInbook,
	"dissertation": types.EntryPhdThesis,
	"report":       types.EntryTechReport,
	"preprint":     types.EntryUnpublished,
}

func (w openAlexWork) toCandidate() types.CandidateRecord {
	c := types.CandidateRecord{
		DOI:       strings.TrimPrefix(w.DOI, "https://doi.org/"),
		Title:     w.Title,
		Year:      w.PublicationYear,
		Venue:     w.PrimaryLocation.Source.DisplayName,
		Publisher: w.PrimaryLocation.Source.HostOrganizationName,
		Volume:    w.Biblio.Volume,
		Issue:     w.Biblio.Issue,
		Source:    "openalex",
	}

	if et, ok := openAlexTypes[w.Type]; ok {
		c.EntryType = et
	} else {
		c.EntryType = types.EntryArticle
	}
	// Conference papers surface as articles whose venue is a proceedings.
	if c.EntryType == types.EntryArticle && looksLikeProceedings(c.Venue) {
		c.EntryType = types.EntryInproceedings
	}

	if w.Biblio.FirstPage != "" && w.Biblio.LastPage != "" {
		c.Pages = w.Biblio.FirstPage + "--" + w.Biblio.LastPage
	} else if w.Biblio.FirstPage != "" {
		c.Pages = w.Biblio.FirstPage
	}

	for _, a := range w.Authorships {
		if a.Author.DisplayName == "" {
			continue
		}
		c.Authors = append(c.Authors, splitDisplayName(a.Author.DisplayName))
	}
	return c
}

func looksLikeProceedings(venue string) bool {
	v := strings.ToLower(venue)
	return strings.Contains(v, "proceedings") || strings.Contains(v, "conference") ||
		strings.Contains(v, "symposium") || strings.Contains(v, "workshop")
}

// splitDisplayName splits "Ashish Vaswani" into given and family parts,
// treating the last token as the family name.
func splitDisplayName(name string) types.Author {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return types.Author{}
	}
	if len(fields) == 1 {
		return types.Author{Family: fields[0]}
	}
	return types.Author{
		Given:  strings.Join(fields[:len(fields)-1], " "),
		Family: fields[len(fields)-1],
	}
}
