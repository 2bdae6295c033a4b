// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refparse

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/AlanSynn/paperef/pkg/types"
)

var (
	doiPattern  = regexp.MustCompile(`(?:https?://)?(?:dx\.)?doi\.org/(10\.\d{4,9}(?:/|%2[Ff])\S+)|\b(10\.\d{4,9}/\S+)`)
	yearPattern = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	quotedTitle = regexp.MustCompile(`[“"]([^”"]+)[”"]`)
)

// ParseReference extracts a resolution query from one raw reference string.
// The DOI and year are pulled by pattern; text before the year is read as
// the author list and text after it as the title.
func ParseReference(raw string) types.Query {
	q := types.Query{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return q
	}

	if m := doiPattern.FindStringSubmatch(raw); m != nil {
		doi := m[1]
		if doi == "" {
			doi = m[2]
		}
		doi = strings.TrimRight(doi, ".,;)")
		// DOI URLs copied from browsers often percent-encode the suffix.
		if unescaped, err := url.PathUnescape(doi); err == nil {
			doi = unescaped
		}
		q.DOI = doi
	}

	yearLoc := yearPattern.FindStringIndex(raw)
	if yearLoc != nil {
		q.Year, _ = strconv.Atoi(raw[yearLoc[0]:yearLoc[1]])
	}

	var before, after string
	if yearLoc != nil {
		before = raw[:yearLoc[0]]
		after = raw[yearLoc[1]:]
	} else {
		after = raw
	}

	q.Authors = parseAuthors(before)
	q.Title = extractTitle(after, raw)
	return q
}

// parseAuthors splits an author-list prefix on " and " and commas, keeping
// the trailing word of each token as the surname. Initials and noise tokens
// are skipped.
func parseAuthors(s string) []string {
	s = strings.Trim(s, " .,;:()[]")
	if s == "" {
		return nil
	}

	s = strings.ReplaceAll(s, " and ", ",")
	s = strings.ReplaceAll(s, "&", ",")

	var surnames []string
	for _, token := range strings.Split(s, ",") {
		token = strings.Trim(token, " .;")
		if token == "" {
			continue
		}
		fields := strings.Fields(token)
		last := fields[len(fields)-1]
		last = strings.Trim(last, ".")
		// Initials like "J" or "J.R" are not surnames.
		if len(last) < 2 || strings.Contains(last, ".") {
			continue
		}
		if !isNameWord(last) {
			continue
		}
		surnames = append(surnames, last)
	}
	return surnames
}

func isNameWord(s string) bool {
	for _, r := range s {
		if !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r == '-' || r == '\'' || r >= 0x80) {
			return false
		}
	}
	return true
}

// extractTitle picks the title from the text following the year: a quoted
// span if present anywhere in the reference, else the first sentence after
// the year, else the first 15 words.
func extractTitle(after, full string) string {
	if m := quotedTitle.FindStringSubmatch(full); m != nil {
		return strings.TrimSpace(m[1])
	}

	after = strings.Trim(after, " .,;:()[]")
	if after == "" {
		return ""
	}

	if i := strings.IndexByte(after, '.'); i > 0 {
		candidate := strings.TrimSpace(after[:i])
		if len(strings.Fields(candidate)) >= 2 {
			return candidate
		}
	}

	fields := strings.Fields(after)
	if len(fields) > 15 {
		fields = fields[:15]
	}
	return strings.Join(fields, " ")
}
