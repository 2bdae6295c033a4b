// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refparse

import (
	"strings"
	"testing"
)

const doc = `# An Example Paper

Some body text that mentions References casually.

## Method

More text.

## References

- Vaswani, A., Shazeer, N., and Parmar, N. 2017. Attention is all you need. In Advances in Neural Information Processing Systems.
- Devlin, J., Chang, M., Lee, K. 2019. BERT: Pre-training of deep bidirectional transformers for language understanding. In NAACL.

He, K., Zhang, X., Ren, S., and Sun, J. 2016. Deep residual learning
for image recognition. In CVPR. https://doi.org/10.1109/CVPR.2016.90

short line

## Appendix

- Not a reference, this section is past the terminator and long enough to count.
`

func TestSegment(t *testing.T) {
	refs := Segment(doc)
	if len(refs) != 3 {
		t.Fatalf("got %d refs, want 3: %#v", len(refs), refs)
	}

	if !strings.HasPrefix(refs[0], "Vaswani, A.") {
		t.Errorf("refs[0] = %q", refs[0])
	}
	if !strings.HasPrefix(refs[1], "Devlin, J.") {
		t.Errorf("refs[1] = %q", refs[1])
	}
	// The wrapped unbulleted entry is joined into one string.
	if !strings.Contains(refs[2], "learning for image recognition") {
		t.Errorf("wrapped lines not joined: %q", refs[2])
	}
}

func TestSegmentHeadingCaseInsensitive(t *testing.T) {
	text := "## REFERENCES\n\n- Doe, J. 2020. A sufficiently long reference entry for the minimum threshold.\n"
	if refs := Segment(text); len(refs) != 1 {
		t.Errorf("got %d refs, want 1", len(refs))
	}
}

func TestSegmentNoSection(t *testing.T) {
	text := "# Title\n\nBody text with no reference list at all.\n"
	if refs := Segment(text); len(refs) != 0 {
		t.Errorf("got %v, want none", refs)
	}
}

func TestSegmentDropsShortEntries(t *testing.T) {
	text := "## References\n\n- Too short.\n- Doe, J. 2020. A sufficiently long reference entry for the minimum threshold.\n"
	refs := Segment(text)
	if len(refs) != 1 {
		t.Fatalf("got %d refs, want 1: %#v", len(refs), refs)
	}
	if strings.Contains(refs[0], "Too short") {
		t.Errorf("noise entry kept: %q", refs[0])
	}
}

func TestSegmentNumberedAndBracketedBullets(t *testing.T) {
	text := `## References

1. Doe, J. 2020. The first sufficiently long numbered reference entry in the list.
[2] Roe, J. 2021. The second sufficiently long bracketed reference entry in the list.
`
	refs := Segment(text)
	if len(refs) != 2 {
		t.Fatalf("got %d refs, want 2: %#v", len(refs), refs)
	}
	if !strings.HasPrefix(refs[0], "Doe, J.") {
		t.Errorf("numbered marker not stripped: %q", refs[0])
	}
	if !strings.HasPrefix(refs[1], "Roe, J.") {
		t.Errorf("bracketed marker not stripped: %q", refs[1])
	}
}

func TestHeadingText(t *testing.T) {
	tests := []struct {
		line string
		want string
		ok   bool
	}{
		{"## References", "References", true},
		{"# Title", "Title", true},
		{"#NoSpace", "", false},
		{"plain text", "", false},
	}
	for _, tt := range tests {
		got, ok := headingText(tt.line)
		if got != tt.want || ok != tt.ok {
			t.Errorf("headingText(%q) = (%q, %v), want (%q, %v)", tt.line, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLooksLikeEntryStart(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"He, K., Zhang, X., Ren, S. 2016. Deep residual learning.", true},
		{"for image recognition. In CVPR.", false},
		{"Doe, J.", false},
	}
	for _, tt := range tests {
		if got := looksLikeEntryStart(tt.line); got != tt.want {
			t.Errorf("looksLikeEntryStart(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
