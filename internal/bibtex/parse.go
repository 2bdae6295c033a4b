// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibtex

import (
	"fmt"
	"strings"
	"unicode"
)

// Parse reads the first BibTeX entry from s. It handles brace-delimited,
// quote-delimited, and bare numeric field values, with nested braces inside
// values. Field names and the entry type are lowercased.
func Parse(s string) (*Entry, error) {
	at := strings.IndexByte(s, '@')
	if at < 0 {
		return nil, fmt.Errorf("no entry found")
	}
	rest := s[at+1:]

	open := strings.IndexByte(rest, '{')
	if open < 0 {
		return nil, fmt.Errorf("malformed entry: missing '{'")
	}
	entryType := strings.ToLower(strings.TrimSpace(rest[:open]))
	if entryType == "" {
		return nil, fmt.Errorf("malformed entry: empty type")
	}
	rest = rest[open+1:]

	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed entry: missing key")
	}
	key := strings.TrimSpace(rest[:comma])
	rest = rest[comma+1:]

	e := NewEntry(entryType, key)
	for {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		if rest == "" || rest[0] == '}' {
			break
		}

		eq := strings.IndexByte(rest, '=')
		if eq < 0 {
			break
		}
		name := strings.ToLower(strings.TrimSpace(rest[:eq]))
		rest = strings.TrimLeftFunc(rest[eq+1:], unicode.IsSpace)

		value, remaining, err := parseValue(rest)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		if name != "" {
			e.Set(name, strings.TrimSpace(value))
		}
		rest = strings.TrimLeftFunc(remaining, unicode.IsSpace)
		if strings.HasPrefix(rest, ",") {
			rest = rest[1:]
		}
	}

	return e, nil
}

// parseValue consumes one field value and returns it with the unconsumed
// remainder.
func parseValue(s string) (string, string, error) {
	if s == "" {
		return "", "", fmt.Errorf("missing value")
	}

	switch s[0] {
	case '{':
		depth := 0
		for i, r := range s {
			switch r {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return s[1:i], s[i+1:], nil
				}
			}
		}
		return "", "", fmt.Errorf("unbalanced braces")

	case '"':
		for i := 1; i < len(s); i++ {
			if s[i] == '"' && s[i-1] != '\\' {
				return s[1:i], s[i+1:], nil
			}
		}
		return "", "", fmt.Errorf("unterminated quote")

	default:
		// Bare value, typically a year. Runs to the next comma or brace.
		end := strings.IndexAny(s, ",}")
		if end < 0 {
			end = len(s)
		}
		return s[:end], s[end:], nil
	}
}
