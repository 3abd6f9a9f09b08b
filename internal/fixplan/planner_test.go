package fixplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docaccess/pdfguard/internal/domain"
)

func TestPlanMissingLanguageProducesSingleAutomatedAction(t *testing.T) {
	result := &domain.ScanResult{Results: map[domain.Category][]domain.Issue{
		domain.CategoryMissingLanguage: {
			{Severity: domain.SeverityHigh, Page: 0, Description: "Catalog Lang is missing"},
		},
	}}
	plan := Plan(result)
	require.Len(t, plan.Automated, 1)
	assert.Equal(t, domain.FixAddLanguage, plan.Automated[0].FixType)
	assert.Equal(t, "fix-language-1", plan.Automated[0].ID)
}

func TestPlanAltTextGoesToSemiAutomatedWithPageCount(t *testing.T) {
	result := &domain.ScanResult{Results: map[domain.Category][]domain.Issue{
		domain.CategoryMissingAltText: {
			{Severity: domain.SeverityHigh, Pages: []int{1, 2, 3}, Description: "Image missing alt text"},
		},
	}}
	plan := Plan(result)
	require.Len(t, plan.SemiAutomated, 1)
	assert.Equal(t, domain.FixAddAltText, plan.SemiAutomated[0].FixType)
	assert.Equal(t, 3, plan.SemiAutomated[0].FixData["count"])
	assert.Equal(t, 6, plan.SemiAutomated[0].EstimatedTime)
}

func TestPlanUntaggedContentGoesToManual(t *testing.T) {
	result := &domain.ScanResult{Results: map[domain.Category][]domain.Issue{
		domain.CategoryUntaggedContent: {{Severity: domain.SeverityMedium, Description: "No tags"}},
	}}
	plan := Plan(result)
	require.Len(t, plan.Manual, 1)
	assert.Equal(t, domain.FixTagContent, plan.Manual[0].FixType)
}

func TestDedupeSemiAutomatedDropsSharedClauseSignature(t *testing.T) {
	automated := []domain.FixAction{{ID: "pdfua-7.1", FixData: map[string]any{"clause": "ISO 14289-1:7.1"}}}
	semi := []domain.FixAction{
		{ID: "pdfua-other", FixData: map[string]any{"clause": "ISO 14289-1:7.1"}},
		{ID: "pdfua-distinct", FixData: map[string]any{"clause": "ISO 14289-1:7.2"}},
	}
	out := dedupeSemiAutomated(automated, semi)
	require.Len(t, out, 1)
	assert.Equal(t, "pdfua-distinct", out[0].ID)
}

func TestApplyUniqueFixIDsForcesSuffixOnContrastAndTables(t *testing.T) {
	group := []domain.FixAction{{ID: "fix-contrast"}, {ID: "fix-tables"}}
	applyUniqueFixIDs(group)
	assert.Equal(t, "fix-contrast-1", group[0].ID)
	assert.Equal(t, "fix-tables-1", group[1].ID)
}

func TestApplyUniqueFixIDsLeavesFirstOccurrenceBareOtherwise(t *testing.T) {
	a := []domain.FixAction{{ID: "tag-content"}}
	b := []domain.FixAction{{ID: "tag-content"}}
	applyUniqueFixIDs(a, b)
	assert.Equal(t, "tag-content", a[0].ID)
	assert.Equal(t, "tag-content-2", b[0].ID)
}

func TestApplyUniqueFixIDsNormalizesSetLanguageAlias(t *testing.T) {
	group := []domain.FixAction{{ID: "set-language"}}
	applyUniqueFixIDs(group)
	assert.Equal(t, "fix-language-1", group[0].ID)
}

func TestRecalculateEstimatedTimeSumsAllGroups(t *testing.T) {
	a := []domain.FixAction{{EstimatedTime: 1}, {EstimatedTime: 2}}
	b := []domain.FixAction{{EstimatedTime: 3}}
	assert.Equal(t, 6, recalculateEstimatedTime(a, b))
}

func TestIssuePagesFallsBackToPageThenOne(t *testing.T) {
	assert.Equal(t, []int{1, 2}, issuePages(domain.Issue{Pages: []int{1, 2}}))
	assert.Equal(t, []int{5}, issuePages(domain.Issue{Page: 5}))
	assert.Equal(t, []int{1}, issuePages(domain.Issue{}))
}
