// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibtex

import (
	"strings"
	"testing"
)

const scholarEntry = `@inproceedings{vaswani2017attention,
  title={Attention is all you need},
  author={Vaswani, Ashish and Shazeer, Noam and Parmar, Niki},
  booktitle={Advances in neural information processing systems},
  pages={5998--6008},
  year={2017}
}`

func TestParseScholarEntry(t *testing.T) {
	e, err := Parse(scholarEntry)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if e.Type != "inproceedings" {
		t.Errorf("type = %q", e.Type)
	}
	if e.Key != "vaswani2017attention" {
		t.Errorf("key = %q", e.Key)
	}
	if e.Get("title") != "Attention is all you need" {
		t.Errorf("title = %q", e.Get("title"))
	}
	if e.Get("pages") != "5998--6008" {
		t.Errorf("pages = %q", e.Get("pages"))
	}
	if e.Year() != 2017 {
		t.Errorf("year = %d", e.Year())
	}
}

func TestParseNestedBraces(t *testing.T) {
	e, err := Parse(`@article{k, title={The {BERT} Model}, year={2019}}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if e.Get("title") != "The {BERT} Model" {
		t.Errorf("title = %q", e.Get("title"))
	}
}

func TestParseQuotedAndBareValues(t *testing.T) {
	e, err := Parse(`@article{k, title="Quoted Title", year=2020, volume={3}}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if e.Get("title") != "Quoted Title" {
		t.Errorf("title = %q", e.Get("title"))
	}
	if e.Get("year") != "2020" {
		t.Errorf("year = %q", e.Get("year"))
	}
	if e.Get("volume") != "3" {
		t.Errorf("volume = %q", e.Get("volume"))
	}
}

func TestParseLeadingNoise(t *testing.T) {
	input := "some page text\n" + scholarEntry + "\ntrailing noise"
	e, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if e.Key != "vaswani2017attention" {
		t.Errorf("key = %q", e.Key)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no entry", "plain text"},
		{"missing brace", "@article"},
		{"missing key", "@article{nokey}"},
		{"unbalanced value", "@article{k, title={open"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.input); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	e, err := Parse(scholarEntry)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	out := e.Format()
	if !strings.Contains(out, "@inproceedings{vaswani2017attention,") {
		t.Errorf("round trip lost header:\n%s", out)
	}

	e2, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	for _, field := range []string{"title", "author", "booktitle", "pages", "year"} {
		if e2.Get(field) != e.Get(field) {
			t.Errorf("%s changed: %q vs %q", field, e.Get(field), e2.Get(field))
		}
	}
}
