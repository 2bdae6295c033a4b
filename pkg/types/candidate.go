// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// EntryType is the BibTeX entry type of a resolved work. It is an alias so
// entry types flow freely between candidates and serialized entries.
type EntryType = string

const (
	EntryArticle       EntryType = "article"
	EntryInproceedings EntryType = "inproceedings"
	EntryBook          EntryType = "book"
	EntryInbook        EntryType = "inbook"
	EntryPhdThesis     EntryType = "phdthesis"
	EntryTechReport    EntryType = "techreport"
	EntryUnpublished   EntryType = "unpublished"
)

// Author is a structured author name as returned by metadata APIs.
type Author struct {
	Given  string `json:"given,omitempty" yaml:"given,omitempty"`
	Family string `json:"family,omitempty" yaml:"family,omitempty"`
}

// CandidateRecord is the raw metadata a provider returns for one work. A
// candidate is produced fresh per provider call and never mutated; scoring
// and enrichment operate on copies.
type CandidateRecord struct {
	// DOI is the bare DOI, or empty when the provider has none.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Title is the work title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// Authors lists structured author names in source order.
	Authors []Author `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Year is the publication year, or 0 when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Venue is the journal or proceedings title.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Publisher is the publisher display name.
	Publisher string `json:"publisher,omitempty" yaml:"publisher,omitempty"`

	// Pages, Volume, and Issue are carried verbatim from the provider.
	Pages  string `json:"pages,omitempty" yaml:"pages,omitempty"`
	Volume string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue  string `json:"issue,omitempty" yaml:"issue,omitempty"`

	// EntryType classifies the work for BibTeX output.
	EntryType EntryType `json:"entry_type" yaml:"entry_type"`

	// Source identifies which provider produced this record
	// (e.g. "openalex", "scholar").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Surnames returns the family names of the candidate's authors, in order.
// Entries without a family name fall back to the given name.
func (c CandidateRecord) Surnames() []string {
	names := make([]string, 0, len(c.Authors))
	for _, a := range c.Authors {
		switch {
		case a.Family != "":
			names = append(names, a.Family)
		case a.Given != "":
			names = append(names, a.Given)
		}
	}
	return names
}
