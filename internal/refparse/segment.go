// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refparse segments a converted document's text into individual
// reference strings and parses each into a resolution query.
package refparse

import (
	"strings"
	"unicode"
)

// minEntryLen is the shortest trimmed string accepted as a reference;
// anything shorter is conversion noise.
const minEntryLen = 50

// sectionHeadings are the heading texts recognized as a references section.
var sectionHeadings = map[string]bool{
	"references":   true,
	"bibliography": true,
	"works cited":  true,
}

// Segment scans document text for a references section and returns its
// entries as raw strings. Entries are delimited by bullet markers or blank
// lines; a long unbulleted line that opens like an author list also starts
// a new entry. The section ends at the next top-level heading. Entries
// shorter than 50 characters are dropped.
func Segment(text string) []string {
	var (
		refs      []string
		current   []string
		inSection bool
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		entry := strings.TrimSpace(strings.Join(current, " "))
		current = nil
		if len(entry) >= minEntryLen {
			refs = append(refs, entry)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if heading, ok := headingText(trimmed); ok {
			if sectionHeadings[strings.ToLower(heading)] {
				inSection = true
				continue
			}
			if inSection {
				flush()
				break
			}
			continue
		}

		if !inSection {
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}

		if body, ok := stripBullet(trimmed); ok {
			flush()
			current = []string{body}
			continue
		}

		if len(current) == 0 || looksLikeEntryStart(trimmed) {
			flush()
			current = []string{trimmed}
			continue
		}

		// Continuation of a wrapped entry.
		current = append(current, trimmed)
	}
	flush()

	return refs
}

// headingText returns the text of a markdown heading line, or ok=false.
func headingText(line string) (string, bool) {
	if !strings.HasPrefix(line, "#") {
		return "", false
	}
	rest := strings.TrimLeft(line, "#")
	if rest == line || (rest != "" && !strings.HasPrefix(rest, " ")) {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// stripBullet removes a leading bullet or enumeration marker and reports
// whether one was present. Recognized markers: "-", "*", "+", "1.", "[1]".
func stripBullet(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "+ "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):]), true
		}
	}

	if strings.HasPrefix(line, "[") {
		if end := strings.IndexByte(line, ']'); end > 1 && allDigits(line[1:end]) {
			return strings.TrimSpace(line[end+1:]), true
		}
	}

	// "12. Author, A." style enumeration.
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i < len(line) && line[i] == '.' && i+1 < len(line) && line[i+1] == ' ' {
		return strings.TrimSpace(line[i+2:]), true
	}

	return line, false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// looksLikeEntryStart reports whether an unbulleted line plausibly begins a
// new reference: long enough to be real, with an author-list shape (one of
// the first three tokens ends in a comma).
func looksLikeEntryStart(line string) bool {
	if len(line) <= 20 {
		return false
	}
	fields := strings.Fields(line)
	limit := len(fields)
	if limit > 3 {
		limit = 3
	}
	for _, f := range fields[:limit] {
		if strings.HasSuffix(f, ",") {
			return true
		}
	}
	return false
}
