// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DocMeta holds document-level metadata extracted from a converted paper.
// It seeds the first resolution query for the document itself.
type DocMeta struct {
	// Title is the paper title, usually the first top-level heading.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Authors lists author names in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Year is the publication year, or 0 when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// DOI is the bare DOI found in the document text, if any.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Abstract is the abstract text, if an abstract section was found.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Keywords lists keyword phrases, if a keywords line was found.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// Query builds a resolution query from the document metadata.
func (m DocMeta) Query() Query {
	return Query{
		Title:   m.Title,
		Year:    m.Year,
		DOI:     m.DOI,
		Authors: m.Authors,
	}
}
