// Package scoring implements C12: deriving a WCAG percentage from the
// criteria summary using severity-weighted penalties, and combining it
// with the advisory PDF/UA score. Grounded on
// backend/utils/compliance_scoring.py, transliterated exactly
// (severity weights, penalty cap, rounding, info-severity special case).
package scoring

import (
	"math"

	"github.com/docaccess/pdfguard/internal/domain"
)

var severityWeights = map[domain.Severity]float64{
	domain.SeverityCritical: 1.0,
	domain.SeverityHigh:     1.0,
	domain.SeverityMedium:   0.75,
	domain.SeverityLow:      0.45,
	domain.SeverityInfo:     0.15,
}

// DeriveWCAGScore returns the WCAG percentage from the criteria
// summary's WCAG items, per spec §4.10. Returns 100.0 when there are
// no criteria items (nothing to penalize).
func DeriveWCAGScore(summary *domain.CriteriaSummary) float64 {
	if summary == nil || len(summary.WCAG) == 0 {
		return 100.0
	}

	total := float64(len(summary.WCAG))
	penalty := 0.0
	for _, item := range summary.WCAG {
		penalty += criterionPenalty(item.Issues)
	}

	normalized := math.Max(0.0, (total-penalty)/total) * 100
	return round2(normalized)
}

// criterionPenalty mirrors _criterion_penalty: the max single-issue
// penalty within a criterion, capped at 1.0.
func criterionPenalty(issues []domain.Issue) float64 {
	if len(issues) == 0 {
		return 0.0
	}
	penalty := 0.0
	for _, issue := range issues {
		if p := issuePenalty(issue); p > penalty {
			penalty = p
		}
	}
	if penalty > 1.0 {
		penalty = 1.0
	}
	return penalty
}

// issuePenalty mirrors _issue_penalty's severity-weight /
// penaltyWeight blend, including the info-severity special case that
// keeps manual-review advisories from tanking the score.
func issuePenalty(issue domain.Issue) float64 {
	severityWeight, ok := severityWeights[issue.Severity]
	if !ok {
		severityWeight = severityWeights[domain.SeverityMedium]
	}

	normalized := 0.0
	if issue.PenaltyWeight != 0 {
		normalized = clamp(issue.PenaltyWeight/5.0, 0.05, 1.0)
	}

	if issue.Severity == domain.SeverityInfo {
		if normalized > 0 {
			return math.Min(severityWeight, normalized)
		}
		return severityWeight
	}

	if normalized > 0 {
		return math.Max(normalized, severityWeight)
	}
	return severityWeight
}

// DerivePDFUAScore is the advisory score derived from the Matterhorn
// issue count, per spec §4.10: max(0, 100 - count*10).
func DerivePDFUAScore(pdfuaIssueCount int) float64 {
	score := 100.0 - float64(pdfuaIssueCount)*10.0
	if score < 0 {
		score = 0
	}
	return round2(score)
}

// CombinedComplianceScore is the mean of wcagCompliance (authoritative)
// and pdfuaCompliance (advisory); PDF/A is intentionally excluded.
func CombinedComplianceScore(wcag, pdfua float64) float64 {
	return round2((wcag + pdfua) / 2.0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
