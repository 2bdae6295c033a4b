// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"regexp"
	"strings"

	"github.com/AlanSynn/paperef/internal/bibtex"
	"github.com/AlanSynn/paperef/internal/match"
	"github.com/AlanSynn/paperef/pkg/types"
)

// maxAuthors caps the rendered author list.
const maxAuthors = 10

// Enricher fills missing entry fields from Crossref metadata.
type Enricher struct {
	client *Client
}

// NewEnricher wraps a Crossref client.
func NewEnricher(client *Client) *Enricher {
	return &Enricher{client: client}
}

// Enrich completes the entry in place. Without a DOI it first tries to find
// one by bibliographic search; with one it fetches the authoritative record
// and fills empty fields only. Lookup failures leave the entry as it was.
func (e *Enricher) Enrich(ctx context.Context, entry *bibtex.Entry) error {
	doi := entry.Get("doi")
	if doi == "" {
		rec, err := e.client.SearchDOI(ctx,
			entry.Get("title"), entry.Year(), entry.Surnames(), entry.Get("publisher"))
		if err != nil {
			return err
		}
		if rec == nil {
			Normalize(entry)
			return nil
		}
		doi = rec.DOI
		entry.Set("doi", doi)
	}

	rec, err := e.client.FetchDOI(ctx, doi)
	if err != nil {
		return err
	}
	if rec != nil {
		Apply(entry, *rec)
	}
	Normalize(entry)
	return nil
}

// Apply copies record fields into the entry, each only if the target field
// is currently empty.
func Apply(entry *bibtex.Entry, rec types.CandidateRecord) {
	setIfEmpty(entry, "doi", rec.DOI)
	setIfEmpty(entry, "publisher", rec.Publisher)
	setIfEmpty(entry, "author", renderAuthors(rec.Authors))
	setIfEmpty(entry, containerField(entry.Type), rec.Venue)
	setIfEmpty(entry, "volume", rec.Volume)
	setIfEmpty(entry, "number", rec.Issue)
	setIfEmpty(entry, "pages", rec.Pages)
}

// Normalize rewrites fields into their final serialized form: dash variants
// in page ranges, ACM article-number pages, and publisher name plus address.
func Normalize(entry *bibtex.Entry) {
	if pages := entry.Get("pages"); pages != "" {
		pages = normalizeDashes(pages)
		if articleno, numpages, ok := SplitACMPages(pages); ok {
			entry.Set("articleno", articleno)
			entry.Set("numpages", numpages)
			delete(entry.Fields, "pages")
		} else {
			entry.Set("pages", pages)
		}
	}

	if pub := entry.Get("publisher"); pub != "" {
		canonical := match.CanonicalPublisher(pub)
		if display, ok := publisherDisplay[canonical]; ok {
			entry.Set("publisher", display)
		}
		if addr, ok := publisherAddress[canonical]; ok {
			setIfEmpty(entry, "address", addr)
		}
	}
}

func setIfEmpty(entry *bibtex.Entry, field, value string) {
	if strings.TrimSpace(entry.Get(field)) == "" {
		entry.Set(field, value)
	}
}

// containerField picks where the venue belongs for the entry type.
func containerField(entryType string) string {
	switch entryType {
	case types.EntryInproceedings, types.EntryInbook:
		return "booktitle"
	default:
		return "journal"
	}
}

// renderAuthors formats authors as "Family, Given" joined by " and ",
// capped at ten.
func renderAuthors(authors []types.Author) string {
	if len(authors) > maxAuthors {
		authors = authors[:maxAuthors]
	}
	parts := make([]string, 0, len(authors))
	for _, a := range authors {
		switch {
		case a.Family != "" && a.Given != "":
			parts = append(parts, a.Family+", "+a.Given)
		case a.Family != "":
			parts = append(parts, a.Family)
		case a.Given != "":
			parts = append(parts, a.Given)
		}
	}
	return strings.Join(parts, " and ")
}

var dashVariants = strings.NewReplacer(
	"–", "--", // en dash
	"—", "--", // em dash
	"−", "--", // minus sign
)

// normalizeDashes converts typographic dash variants to the double hyphen.
// A plain ASCII hyphen is left alone.
func normalizeDashes(pages string) string {
	return dashVariants.Replace(pages)
}

var acmPages = regexp.MustCompile(`^(\d+):(\d+)--(\d+):(\d+)$`)

// SplitACMPages recognizes the ACM article-number page form "N:1--N:M" and
// returns the article number and page count. Any other shape reports
// ok=false.
func SplitACMPages(pages string) (articleno, numpages string, ok bool) {
	m := acmPages.FindStringSubmatch(pages)
	if m == nil {
		return "", "", false
	}
	if m[1] != m[3] || m[2] != "1" {
		return "", "", false
	}
	return m[1], m[4], true
}

// publisherDisplay maps canonical publisher keys to their preferred
// rendered names.
var publisherDisplay = map[string]string{
	"association for computing machinery":                "Association for Computing Machinery",
	"institute of electrical and electronics engineers":  "IEEE",
	"springer nature":                                    "Springer",
	"elsevier":                                           "Elsevier",
	"john wiley and sons":                                "John Wiley & Sons",
	"the mit press":                                      "MIT Press",
	"usenix association":                                 "USENIX Association",
	"curran associates":                                  "Curran Associates, Inc.",
	"morgan kaufmann":                                    "Morgan Kaufmann",
	"cambridge university press":                         "Cambridge University Press",
	"oxford university press":                            "Oxford University Press",
	"association for computational linguistics":          "Association for Computational Linguistics",
	"aaai press":                                         "AAAI Press",
}

// publisherAddress is the fixed publisher-to-address table. Unknown
// publishers get no address.
var publisherAddress = map[string]string{
	"association for computing machinery":               "New York, NY, USA",
	"institute of electrical and electronics engineers": "Piscataway, NJ, USA",
	"springer nature":                                   "Cham, Switzerland",
	"elsevier":                                          "Amsterdam, The Netherlands",
	"john wiley and sons":                               "Hoboken, NJ, USA",
	"the mit press":                                     "Cambridge, MA, USA",
	"usenix association":                                "Berkeley, CA, USA",
	"curran associates":                                 "Red Hook, NY, USA",
	"morgan kaufmann":                                   "San Francisco, CA, USA",
	"cambridge university press":                        "Cambridge, UK",
	"oxford university press":                           "Oxford, UK",
	"association for computational linguistics":         "Stroudsburg, PA, USA",
	"aaai press":                                        "Palo Alto, CA, USA",
}
