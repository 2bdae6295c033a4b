// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bibtex models BibTeX entries: key generation, LaTeX-safe
// formatting, and parsing of entries returned by providers.
package bibtex

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/AlanSynn/paperef/pkg/types"
)

// Entry is one BibTeX entry. Fields hold raw, unescaped values; escaping
// happens at format time.
type Entry struct {
	Type   string
	Key    string
	Fields map[string]string
}

// NewEntry creates an empty entry of the given type.
func NewEntry(entryType, key string) *Entry {
	return &Entry{Type: entryType, Key: key, Fields: make(map[string]string)}
}

// Set stores a field value. Empty values are ignored so callers can assign
// unconditionally.
func (e *Entry) Set(name, value string) {
	if value == "" {
		return
	}
	e.Fields[name] = value
}

// Get returns the field value or "".
func (e *Entry) Get(name string) string {
	return e.Fields[name]
}

// fieldOrder is the conventional output order. Fields not listed follow
// alphabetically.
var fieldOrder = []string{
	"author", "title", "booktitle", "journal", "volume", "number",
	"articleno", "numpages", "pages", "year", "publisher", "address",
	"doi", "url", "note",
}

// FromCandidate builds an entry from a provider record, generating the key
// from its metadata.
func FromCandidate(c types.CandidateRecord) *Entry {
	entryType := c.EntryType
	if entryType == "" {
		entryType = types.EntryArticle
	}

	e := NewEntry(entryType, GenerateKey(c.Surnames(), c.Year, c.Title))
	e.Set("title", c.Title)
	e.Set("author", formatAuthors(c.Authors))
	if c.Year > 0 {
		e.Set("year", fmt.Sprintf("%d", c.Year))
	}
	switch entryType {
	case types.EntryInproceedings:
		e.Set("booktitle", c.Venue)
	default:
		e.Set("journal", c.Venue)
	}
	e.Set("publisher", c.Publisher)
	e.Set("pages", c.Pages)
	e.Set("volume", c.Volume)
	e.Set("number", c.Issue)
	e.Set("doi", c.DOI)
	return e
}

func formatAuthors(authors []types.Author) string {
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

// titleStopwords are skipped when picking the key's title word.
var titleStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "on": true, "of": true,
	"for": true, "in": true, "and": true, "to": true, "with": true,
	"is": true, "are": true, "at": true, "by": true,
}

// GenerateKey builds a citation key of the form surname + year + first
// significant title word, e.g. "doe2023deep". A missing year is omitted;
// a missing surname or title word falls back to "unknown" so the key is
// never empty. The result is deterministic for the same inputs.
func GenerateKey(surnames []string, year int, title string) string {
	surname := "unknown"
	if len(surnames) > 0 {
		if s := keyToken(surnames[0]); s != "" {
			surname = s
		}
	}

	yearPart := ""
	if year > 0 {
		yearPart = fmt.Sprintf("%d", year)
	}

	word := "unknown"
	for _, w := range strings.Fields(strings.ToLower(title)) {
		tok := keyToken(w)
		if tok == "" || titleStopwords[tok] {
			continue
		}
		word = tok
		break
	}

	return surname + yearPart + word
}

// keyToken reduces a string to the lowercase [a-z0-9] characters allowed in
// citation keys.
func keyToken(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EscapeLaTeX escapes BibTeX-special characters in a field value. Already
// escaped sequences are left alone so formatting is idempotent.
func EscapeLaTeX(s string) string {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		switch r {
		case '\\':
			b.WriteRune(r)
			escaped = true
		case '&', '%', '$', '#', '_', '{', '}':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '~':
			b.WriteString(`\textasciitilde{}`)
		case '^':
			b.WriteString(`\textasciicircum{}`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Format renders the entry as BibTeX. Field values are escaped, empty
// fields dropped, and field order follows the conventional sequence with
// unlisted fields appended alphabetically.
func (e *Entry) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", e.Type, e.Key)

	written := make(map[string]bool, len(e.Fields))
	for _, name := range fieldOrder {
		if v := e.Fields[name]; v != "" {
			fmt.Fprintf(&b, "  %s = {%s},\n", name, EscapeLaTeX(v))
			written[name] = true
		}
	}

	var rest []string
	for name, v := range e.Fields {
		if v != "" && !written[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		fmt.Fprintf(&b, "  %s = {%s},\n", name, EscapeLaTeX(e.Fields[name]))
	}

	b.WriteString("}\n")
	return b.String()
}

// Surnames extracts the family names from the entry's author field,
// splitting on " and " and handling both "Family, Given" and
// "Given Family" forms.
func (e *Entry) Surnames() []string {
	author := e.Get("author")
	if author == "" {
		return nil
	}

	var surnames []string
	for _, name := range strings.Split(author, " and ") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if i := strings.IndexByte(name, ','); i >= 0 {
			surnames = append(surnames, strings.TrimSpace(name[:i]))
			continue
		}
		fields := strings.Fields(name)
		surnames = append(surnames, fields[len(fields)-1])
	}
	return surnames
}

// Year returns the entry's year field as an int, or 0.
func (e *Entry) Year() int {
	var year int
	for _, r := range e.Get("year") {
		if !unicode.IsDigit(r) {
			return 0
		}
		year = year*10 + int(r-'0')
	}
	return year
}
