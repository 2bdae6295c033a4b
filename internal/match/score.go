// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match scores how well a candidate record matches a citation
// query. Providers use it to pick the best search result and to reject
// weak matches.
package match

import (
	"strings"
	"unicode"

	"github.com/AlanSynn/paperef/pkg/types"
)

// Weights distributes scoring mass across the comparable fields. Weights for
// fields absent from the query are redistributed proportionally, so a query
// without authors is not penalized for them.
type Weights struct {
	Title     float64
	Year      float64
	Authors   float64
	Publisher float64
}

// SearchWeights scores provider search results, where only title and year
// are reliable.
var SearchWeights = Weights{Title: 0.8, Year: 0.2}

// EnrichWeights scores DOI lookups against an already-built entry, where
// authors and publisher are available for cross-checking.
var EnrichWeights = Weights{Title: 0.5, Year: 0.15, Authors: 0.2, Publisher: 0.15}

// Score returns a similarity in [0, 1] between the query and the candidate
// under the given weights.
func Score(q types.Query, c types.CandidateRecord, w Weights) float64 {
	var total, weight float64

	if q.Title != "" {
		total += w.Title * TitleSimilarity(q.Title, c.Title)
		weight += w.Title
	}
	if q.Year != 0 {
		total += w.Year * yearSimilarity(q.Year, c.Year)
		weight += w.Year
	}
	if len(q.Authors) > 0 && w.Authors > 0 {
		total += w.Authors * authorSimilarity(q.Authors, c.Surnames())
		weight += w.Authors
	}

	if weight == 0 {
		return 0
	}
	return total / weight
}

// ScoreEntry compares a candidate against known entry fields during
// enrichment, including the publisher.
func ScoreEntry(title string, year int, authors []string, publisher string, c types.CandidateRecord) float64 {
	w := EnrichWeights
	var total, weight float64

	if title != "" {
		total += w.Title * TitleSimilarity(title, c.Title)
		weight += w.Title
	}
	if year != 0 {
		total += w.Year * yearSimilarity(year, c.Year)
		weight += w.Year
	}
	if len(authors) > 0 {
		total += w.Authors * authorSimilarity(authors, c.Surnames())
		weight += w.Authors
	}
	if publisher != "" && c.Publisher != "" {
		total += w.Publisher * PublisherSimilarity(publisher, c.Publisher)
		weight += w.Publisher
	}

	if weight == 0 {
		return 0
	}
	return total / weight
}

// Best returns the index and score of the highest-scoring candidate, or
// (-1, 0) for an empty slice. Ties keep the earliest candidate, which
// preserves the provider's own relevance ranking.
func Best(q types.Query, candidates []types.CandidateRecord, w Weights) (int, float64) {
	best, bestScore := -1, 0.0
	for i, c := range candidates {
		if s := Score(q, c, w); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best, bestScore
}

// TitleSimilarity compares two titles after normalization using a
// Levenshtein ratio.
func TitleSimilarity(a, b string) float64 {
	return levenshteinRatio(NormalizeTitle(a), NormalizeTitle(b))
}

// NormalizeTitle lowercases, strips punctuation, and collapses whitespace.
func NormalizeTitle(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// yearSimilarity tolerates the off-by-one drift between preprint and
// publication years.
func yearSimilarity(a, b int) float64 {
	if b == 0 {
		return 0
	}
	d := a - b
	if d < 0 {
		d = -d
	}
	if d <= 1 {
		return 1
	}
	return 0
}

// authorSimilarity measures surname overlap over the first few authors.
// Long author lists agree on everything past the head, so capping avoids
// rewarding padded matches.
func authorSimilarity(query, candidate []string) float64 {
	if len(query) == 0 || len(candidate) == 0 {
		return 0
	}

	have := make(map[string]bool, len(candidate))
	for _, name := range candidate {
		have[normalizeName(name)] = true
	}

	matched := 0
	for _, name := range query {
		if have[normalizeName(name)] {
			matched++
		}
	}

	denom := len(query)
	if denom > 3 {
		denom = 3
	}
	if matched > denom {
		matched = denom
	}
	return float64(matched) / float64(denom)
}

func normalizeName(s string) string {
	// Keep only the surname when given "Given Family" or "Family, Given".
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexByte(s, ','); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// publisherSynonyms maps normalized publisher names to a canonical form so
// "ACM" and "Association for Computing Machinery" compare equal.
var publisherSynonyms = map[string]string{
	"acm":                                   "association for computing machinery",
	"assoc comput machinery":                "association for computing machinery",
	"ieee":                                  "institute of electrical and electronics engineers",
	"ieee computer society":                 "institute of electrical and electronics engineers",
	"springer":                              "springer nature",
	"springer verlag":                       "springer nature",
	"springer international publishing":     "springer nature",
	"elsevier bv":                           "elsevier",
	"elsevier science":                      "elsevier",
	"wiley":                                 "john wiley and sons",
	"wiley blackwell":                       "john wiley and sons",
	"mit press":                             "the mit press",
	"usenix":                                "usenix association",
	"curran":                                "curran associates",
	"curran associates inc":                 "curran associates",
	"morgan kaufmann publishers":            "morgan kaufmann",
	"cambridge univ press":                  "cambridge university press",
	"oxford univ press":                     "oxford university press",
	"acl":                                   "association for computational linguistics",
	"pmlr":                                  "proceedings of machine learning research",
	"jmlr":                                  "journal of machine learning research",
	"jmlr org":                              "journal of machine learning research",
	"aaai":                                  "aaai press",
	"association for the advancement of artificial intelligence": "aaai press",
}

// CanonicalPublisher normalizes a publisher name and folds known synonyms
// to one canonical spelling. Unlike title normalization, punctuation becomes
// a space so "Springer-Verlag" splits into words.
func CanonicalPublisher(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	norm := strings.Join(strings.Fields(b.String()), " ")
	norm = strings.TrimSuffix(norm, " inc")
	norm = strings.TrimSuffix(norm, " ltd")
	norm = strings.TrimSpace(norm)
	if canon, ok := publisherSynonyms[norm]; ok {
		return canon
	}
	return norm
}

// PublisherSimilarity compares publishers after synonym folding. Exact
// canonical matches score 1; otherwise a string ratio applies.
func PublisherSimilarity(a, b string) float64 {
	ca, cb := CanonicalPublisher(a), CanonicalPublisher(b)
	if ca == "" || cb == "" {
		return 0
	}
	if ca == cb {
		return 1
	}
	if strings.Contains(ca, cb) || strings.Contains(cb, ca) {
		return 0.9
	}
	return levenshteinRatio(ca, cb)
}

// levenshteinRatio returns 1 - dist/maxLen over runes, the conventional
// similarity form of edit distance.
func levenshteinRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	ra, rb := []rune(a), []rune(b)
	dist := levenshtein(ra, rb)
	max := len(ra)
	if len(rb) > max {
		max = len(rb)
	}
	return 1 - float64(dist)/float64(max)
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min3(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
