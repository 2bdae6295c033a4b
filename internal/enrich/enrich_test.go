// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"fmt"
	"strings"
	"testing"

	"github.com/AlanSynn/paperef/internal/bibtex"
	"github.com/AlanSynn/paperef/pkg/types"
)

func TestSplitACMPages(t *testing.T) {
	tests := []struct {
		pages     string
		articleno string
		numpages  string
		ok        bool
	}{
		{"138:1--138:12", "138", "12", true},
		{"5:1--5:1", "5", "1", true},
		{"100-110", "", "", false},
		{"100--110", "", "", false},
		{"138:2--138:12", "", "", false},
		{"138:1--139:12", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		a, n, ok := SplitACMPages(tt.pages)
		if a != tt.articleno || n != tt.numpages || ok != tt.ok {
			t.Errorf("SplitACMPages(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.pages, a, n, ok, tt.articleno, tt.numpages, tt.ok)
		}
	}
}

func TestNormalizeACMPages(t *testing.T) {
	e := bibtex.NewEntry("article", "k")
	e.Set("pages", "138:1--138:12")
	Normalize(e)

	if e.Get("articleno") != "138" {
		t.Errorf("articleno = %q", e.Get("articleno"))
	}
	if e.Get("numpages") != "12" {
		t.Errorf("numpages = %q", e.Get("numpages"))
	}
	if e.Get("pages") != "" {
		t.Errorf("pages still present: %q", e.Get("pages"))
	}
}

func TestNormalizeLeavesPlainRangeAlone(t *testing.T) {
	e := bibtex.NewEntry("article", "k")
	e.Set("pages", "100-110")
	Normalize(e)

	if e.Get("pages") != "100-110" {
		t.Errorf("pages = %q, want unchanged", e.Get("pages"))
	}
	if e.Get("articleno") != "" || e.Get("numpages") != "" {
		t.Error("articleno/numpages added to a plain range")
	}
}

func TestNormalizeDashVariants(t *testing.T) {
	e := bibtex.NewEntry("article", "k")
	e.Set("pages", "100–110")
	Normalize(e)
	if e.Get("pages") != "100--110" {
		t.Errorf("pages = %q, want 100--110", e.Get("pages"))
	}
}

func TestNormalizePublisherSynonymAndAddress(t *testing.T) {
	e := bibtex.NewEntry("inproceedings", "k")
	e.Set("publisher", "ACM")
	Normalize(e)

	if e.Get("publisher") != "Association for Computing Machinery" {
		t.Errorf("publisher = %q", e.Get("publisher"))
	}
	if e.Get("address") != "New York, NY, USA" {
		t.Errorf("address = %q", e.Get("address"))
	}
}

func TestNormalizeUnknownPublisherGetsNoAddress(t *testing.T) {
	e := bibtex.NewEntry("article", "k")
	e.Set("publisher", "Obscure Regional Press")
	Normalize(e)

	if e.Get("publisher") != "Obscure Regional Press" {
		t.Errorf("publisher rewritten: %q", e.Get("publisher"))
	}
	if e.Get("address") != "" {
		t.Errorf("address = %q, want none", e.Get("address"))
	}
}

func TestNormalizeKeepsExistingAddress(t *testing.T) {
	e := bibtex.NewEntry("article", "k")
	e.Set("publisher", "ACM")
	e.Set("address", "Somewhere Else")
	Normalize(e)

	if e.Get("address") != "Somewhere Else" {
		t.Errorf("address overwritten: %q", e.Get("address"))
	}
}

func TestApplyFillsOnlyEmptyFields(t *testing.T) {
	e := bibtex.NewEntry("article", "k")
	e.Set("title", "Existing Title")
	e.Set("volume", "7")

	Apply(e, types.CandidateRecord{
		DOI:       "10.1/x",
		Publisher: "Elsevier",
		Volume:    "99",
		Issue:     "4",
		Venue:     "Journal of Testing",
		Pages:     "1-10",
		Authors:   []types.Author{{Given: "A", Family: "Smith"}},
	})

	if e.Get("volume") != "7" {
		t.Errorf("existing volume overwritten: %q", e.Get("volume"))
	}
	if e.Get("doi") != "10.1/x" {
		t.Errorf("doi = %q", e.Get("doi"))
	}
	if e.Get("number") != "4" {
		t.Errorf("number = %q", e.Get("number"))
	}
	if e.Get("journal") != "Journal of Testing" {
		t.Errorf("journal = %q", e.Get("journal"))
	}
	if e.Get("author") != "Smith, A" {
		t.Errorf("author = %q", e.Get("author"))
	}
}

func TestApplyContainerFieldByEntryType(t *testing.T) {
	conf := bibtex.NewEntry("inproceedings", "k")
	Apply(conf, types.CandidateRecord{Venue: "Proceedings of X"})
	if conf.Get("booktitle") != "Proceedings of X" {
		t.Errorf("booktitle = %q", conf.Get("booktitle"))
	}
	if conf.Get("journal") != "" {
		t.Errorf("journal set on a conference entry")
	}

	art := bibtex.NewEntry("article", "k")
	Apply(art, types.CandidateRecord{Venue: "Nature"})
	if art.Get("journal") != "Nature" {
		t.Errorf("journal = %q", art.Get("journal"))
	}
}

func TestRenderAuthorsCapped(t *testing.T) {
	var authors []types.Author
	for i := 0; i < 15; i++ {
		authors = append(authors, types.Author{Given: "A", Family: fmt.Sprintf("Name%02d", i)})
	}

	rendered := renderAuthors(authors)
	if got := strings.Count(rendered, " and ") + 1; got != maxAuthors {
		t.Errorf("rendered %d authors, want %d", got, maxAuthors)
	}
	if !strings.HasPrefix(rendered, "Name00, A") {
		t.Errorf("rendered = %q", rendered)
	}
}
