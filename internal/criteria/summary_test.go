package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docaccess/pdfguard/internal/domain"
)

func TestBuildPDFUAItemsRecognizesPrefixedClause(t *testing.T) {
	results := map[domain.Category][]domain.Issue{
		domain.CategoryPDFUA: {
			{
				Category:    domain.CategoryPDFUA,
				Clause:      "ISO 14289-1:7.1",
				Description: "missing document title",
				Severity:    domain.SeverityHigh,
			},
		},
	}

	summary := Build(results)
	require.NotEmpty(t, summary.PDFUA)

	var item *domain.CriterionItem
	for i := range summary.PDFUA {
		if summary.PDFUA[i].Code == "ISO 14289-1:7.1" {
			item = &summary.PDFUA[i]
		}
	}
	require.NotNil(t, item, "clause 7.1 must be recognized by its prefixed code")
	assert.Equal(t, "Document Identification", item.Name)
	assert.Equal(t, 1, item.IssueCount)
	assert.Equal(t, domain.StatusDoesNotSupport, item.Status)
}

func TestBuildPDFUAItemsUnknownClauseSortsAfterKnownOrder(t *testing.T) {
	results := map[domain.Category][]domain.Issue{
		domain.CategoryPDFUA: {
			{Category: domain.CategoryPDFUA, Clause: "ISO 14289-1:9.9", Description: "unmapped"},
		},
	}
	summary := Build(results)

	found := false
	for _, item := range summary.PDFUA {
		if item.Code == "ISO 14289-1:9.9" {
			found = true
			assert.Equal(t, "PDF/UA Requirement", item.Name)
		}
	}
	assert.True(t, found)
}

func TestBuildWCAGItemsDedupesIdenticalIssues(t *testing.T) {
	dup := domain.Issue{
		Category:    domain.CategoryWCAG,
		Criterion:   "1.1.1",
		Description: "missing alt text",
		Page:        3,
	}
	results := map[domain.Category][]domain.Issue{
		domain.CategoryWCAG: {dup, dup},
	}
	summary := Build(results)

	for _, item := range summary.WCAG {
		if item.Code == "1.1.1" {
			assert.Equal(t, 1, item.IssueCount, "identical (code, description, page, context) issues must be deduped")
		}
	}
}
