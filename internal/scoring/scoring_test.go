package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docaccess/pdfguard/internal/domain"
)

func TestDeriveWCAGScoreNoCriteriaIsPerfect(t *testing.T) {
	assert.Equal(t, 100.0, DeriveWCAGScore(nil))
	assert.Equal(t, 100.0, DeriveWCAGScore(&domain.CriteriaSummary{}))
}

func TestDeriveWCAGScorePenalizesBySeverity(t *testing.T) {
	summary := &domain.CriteriaSummary{
		WCAG: []domain.CriterionItem{
			{Code: "1.1.1", Issues: []domain.Issue{{Severity: domain.SeverityHigh}}},
			{Code: "1.3.1", Issues: nil},
		},
	}
	// one of two criteria fully penalized (weight 1.0) -> (2-1)/2*100 = 50
	assert.Equal(t, 50.0, DeriveWCAGScore(summary))
}

func TestCriterionPenaltyCapsAtOne(t *testing.T) {
	issues := []domain.Issue{
		{Severity: domain.SeverityHigh, PenaltyWeight: 10},
		{Severity: domain.SeverityCritical},
	}
	assert.Equal(t, 1.0, criterionPenalty(issues))
}

func TestIssuePenaltyInfoSeverityIsCapped(t *testing.T) {
	// info severity with no explicit penalty weight uses the info weight.
	p := issuePenalty(domain.Issue{Severity: domain.SeverityInfo})
	assert.Equal(t, severityWeights[domain.SeverityInfo], p)

	// an info issue with a large penalty weight still can't exceed the
	// info severity weight (the "manual-review advisories" special case).
	p = issuePenalty(domain.Issue{Severity: domain.SeverityInfo, PenaltyWeight: 5})
	assert.Equal(t, severityWeights[domain.SeverityInfo], p)
}

func TestDerivePDFUAScoreFloorsAtZero(t *testing.T) {
	assert.Equal(t, 100.0, DerivePDFUAScore(0))
	assert.Equal(t, 50.0, DerivePDFUAScore(5))
	assert.Equal(t, 0.0, DerivePDFUAScore(50))
}

func TestCombinedComplianceScoreIsMean(t *testing.T) {
	assert.Equal(t, 75.0, CombinedComplianceScore(100, 50))
}
