// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refparse

import (
	"strings"
	"testing"
)

func TestParseReference(t *testing.T) {
	raw := "Vaswani, A., Shazeer, N., and Parmar, N. 2017. Attention is all you need. In Advances in Neural Information Processing Systems."
	q := ParseReference(raw)

	if q.Year != 2017 {
		t.Errorf("year = %d", q.Year)
	}
	if q.Title != "Attention is all you need" {
		t.Errorf("title = %q", q.Title)
	}
	want := []string{"Vaswani", "Shazeer", "Parmar"}
	if len(q.Authors) != len(want) {
		t.Fatalf("authors = %v, want %v", q.Authors, want)
	}
	for i := range want {
		if q.Authors[i] != want[i] {
			t.Errorf("authors[%d] = %q, want %q", i, q.Authors[i], want[i])
		}
	}
}

func TestParseReferenceDOI(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"doi.org url",
			"He, K. 2016. Deep residual learning. https://doi.org/10.1109/CVPR.2016.90.",
			"10.1109/CVPR.2016.90",
		},
		{
			"bare doi",
			"He, K. 2016. Deep residual learning. doi: 10.1109/CVPR.2016.90",
			"10.1109/CVPR.2016.90",
		},
		{
			"dx.doi.org with trailing comma",
			"Smith, A. 2020. A paper. http://dx.doi.org/10.1000/xyz123,",
			"10.1000/xyz123",
		},
		{
			"percent-encoded url",
			"Lee, B. 2019. A study. https://doi.org/10.1145%2F3292500.3330701",
			"10.1145/3292500.3330701",
		},
		{
			"percent-encoded colon",
			"Lee, B. 2019. A study. https://doi.org/10.1000%2Fabc%3Adef",
			"10.1000/abc:def",
		},
		{
			"no doi",
			"Smith, A. 2020. A paper with no identifier at all.",
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if q := ParseReference(tt.raw); q.DOI != tt.want {
				t.Errorf("doi = %q, want %q", q.DOI, tt.want)
			}
		})
	}
}

func TestParseReferenceQuotedTitle(t *testing.T) {
	raw := `Devlin, J. 2019. "BERT: Pre-training of deep bidirectional transformers." In NAACL.`
	q := ParseReference(raw)
	if q.Title != "BERT: Pre-training of deep bidirectional transformers." {
		t.Errorf("title = %q", q.Title)
	}
}

func TestParseReferenceNoYear(t *testing.T) {
	q := ParseReference("An untitled technical memorandum with no obvious year marker")
	if q.Year != 0 {
		t.Errorf("year = %d", q.Year)
	}
	if q.Title == "" {
		t.Error("expected a title candidate from the full text")
	}
	if len(q.Authors) != 0 {
		t.Errorf("authors = %v, want none", q.Authors)
	}
}

func TestParseReferenceYearRange(t *testing.T) {
	// A volume number that looks nothing like a year must not be picked up.
	q := ParseReference("Doe, J. 2021. Results over 3000 trials with careful controls.")
	if q.Year != 2021 {
		t.Errorf("year = %d, want 2021", q.Year)
	}
}

func TestParseReferenceLongTitleTruncated(t *testing.T) {
	raw := "Doe, J. 2020. " + "word word word word word word word word word word word word word word word word word word"
	q := ParseReference(raw)
	if got := len(strings.Fields(q.Title)); got > 15 {
		t.Errorf("title has %d words, want <= 15", got)
	}
}

func TestParseAuthorsSkipsInitials(t *testing.T) {
	got := parseAuthors("Vaswani, A., Shazeer, N")
	want := []string{"Vaswani", "Shazeer"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
