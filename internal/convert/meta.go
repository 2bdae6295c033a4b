// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/AlanSynn/paperef/pkg/types"
)

var (
	metaDOI  = regexp.MustCompile(`(?:https?://)?(?:dx\.)?doi\.org/(10\.\d{4,9}/\S+)|\bdoi:?\s*(10\.\d{4,9}/\S+)`)
	metaYear = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
)

// headScanLines bounds how far into the document metadata is searched. The
// title block, DOI line, and abstract all sit near the top; scanning further
// picks up references instead.
const headScanLines = 120

// ExtractMeta pulls document metadata out of converted Markdown: the first
// top-level heading as the title, a DOI and year from the head of the
// document, an abstract section, and a keywords line.
func ExtractMeta(text string) types.DocMeta {
	var meta types.DocMeta

	lines := strings.Split(text, "\n")
	head := lines
	if len(head) > headScanLines {
		head = head[:headScanLines]
	}

	var inAbstract bool
	var abstract []string
	for i, line := range head {
		trimmed := strings.TrimSpace(line)

		if heading, ok := markdownHeading(trimmed); ok {
			if inAbstract {
				inAbstract = false
			}
			switch {
			case meta.Title == "":
				meta.Title = heading
			case strings.EqualFold(heading, "abstract"):
				inAbstract = true
			}
			continue
		}

		if lower := strings.ToLower(trimmed); strings.HasPrefix(lower, "keywords:") || strings.HasPrefix(lower, "**keywords:**") {
			meta.Keywords = splitKeywords(trimmed[strings.Index(lower, ":")+1:])
			inAbstract = false
			continue
		}

		if inAbstract {
			// A blank line after collected text ends the abstract.
			if trimmed == "" {
				if len(abstract) > 0 {
					inAbstract = false
				}
				continue
			}
			abstract = append(abstract, trimmed)
			continue
		}

		if meta.DOI == "" {
			if m := metaDOI.FindStringSubmatch(trimmed); m != nil {
				doi := m[1]
				if doi == "" {
					doi = m[2]
				}
				meta.DOI = strings.TrimRight(doi, ".,;)")
			}
		}

		// The author block conventionally follows the title directly.
		if meta.Title != "" && len(meta.Authors) == 0 && i < 12 && looksLikeAuthorLine(trimmed) {
			meta.Authors = splitAuthors(trimmed)
		}
	}

	meta.Abstract = strings.Join(abstract, " ")

	if meta.Year == 0 {
		for _, line := range head {
			if m := metaYear.FindString(line); m != "" {
				meta.Year, _ = strconv.Atoi(m)
				break
			}
		}
	}

	return meta
}

func markdownHeading(line string) (string, bool) {
	if !strings.HasPrefix(line, "#") {
		return "", false
	}
	rest := strings.TrimLeft(line, "#")
	if rest == line || (rest != "" && !strings.HasPrefix(rest, " ")) {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// looksLikeAuthorLine accepts short comma- or "and"-separated name lists
// and rejects sentences.
func looksLikeAuthorLine(line string) bool {
	if line == "" || len(line) > 200 {
		return false
	}
	if !strings.Contains(line, ",") && !strings.Contains(line, " and ") {
		return false
	}
	if strings.HasSuffix(line, ".") {
		return false
	}
	words := strings.Fields(line)
	if len(words) < 2 {
		return false
	}
	upper := 0
	for _, w := range words {
		r := rune(w[0])
		if r >= 'A' && r <= 'Z' {
			upper++
		}
	}
	return upper*2 >= len(words)
}

func splitAuthors(line string) []string {
	line = strings.ReplaceAll(line, " and ", ",")
	var authors []string
	for _, part := range strings.Split(line, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			authors = append(authors, part)
		}
	}
	return authors
}

func splitKeywords(s string) []string {
	s = strings.Trim(s, " *")
	var keywords []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		part = strings.TrimSpace(part)
		if part != "" {
			keywords = append(keywords, part)
		}
	}
	return keywords
}
