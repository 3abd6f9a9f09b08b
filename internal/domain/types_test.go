package domain

import "testing"

func TestNewIssueIDIsStableForSameInputs(t *testing.T) {
	a := NewIssueID(CategoryWCAG, "1.1.1", 3, "figure/Figure")
	b := NewIssueID(CategoryWCAG, "1.1.1", 3, "figure/Figure")
	if a != b {
		t.Fatalf("expected identical inputs to produce the same id, got %q and %q", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("expected a 16-char id, got %d chars (%q)", len(a), a)
	}
}

func TestNewIssueIDDiffersOnAnyField(t *testing.T) {
	base := NewIssueID(CategoryWCAG, "1.1.1", 3, "figure/Figure")
	cases := []string{
		NewIssueID(CategoryPDFUA, "1.1.1", 3, "figure/Figure"),
		NewIssueID(CategoryWCAG, "1.1.2", 3, "figure/Figure"),
		NewIssueID(CategoryWCAG, "1.1.1", 4, "figure/Figure"),
		NewIssueID(CategoryWCAG, "1.1.1", 3, "figure/OtherFigure"),
	}
	for i, c := range cases {
		if c == base {
			t.Fatalf("case %d: expected a different id when one field changes, both were %q", i, c)
		}
	}
}
