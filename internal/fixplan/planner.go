// Package fixplan implements C7: turning a ScanResult's issues into a
// FixPlan split into automated/semiAutomated/manual buckets. Grounded
// on backend/fix_suggestions.py, transliterated rule-by-rule
// (description-keyword dispatch, dedup-by-signature between automated
// and semiAutomated, and the unique-id suffixing pass).
package fixplan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/docaccess/pdfguard/internal/domain"
)

// Plan builds a FixPlan from a scan's issues, in the same three-pass
// shape as generate_fix_suggestions: per-category dispatch, then
// semiAutomated dedup against automated, then id uniquification and
// estimated-time recompute.
func Plan(result *domain.ScanResult) *domain.FixPlan {
	var automated, semiAutomated, manual []domain.FixAction
	processed := map[string]struct{}{}

	automated, manual = planWCAG(result.Results[domain.CategoryWCAG], processed, automated, manual)
	automated, semiAutomated = planPDFUA(result.Results[domain.CategoryPDFUA], processed, automated, semiAutomated)
	automated = planMissingMetadata(result.Results[domain.CategoryMissingMetadata], automated)
	automated = planMissingLanguage(result.Results[domain.CategoryMissingLanguage], automated)
	semiAutomated = planMissingAltText(result.Results[domain.CategoryMissingAltText], semiAutomated)
	semiAutomated = planFormIssues(result.Results[domain.CategoryFormIssues], semiAutomated)
	manual = planUntaggedContent(result.Results[domain.CategoryUntaggedContent], manual)
	manual = planTableIssues(result.Results[domain.CategoryTableIssues], manual)
	manual = planPoorContrast(result.Results[domain.CategoryPoorContrast], manual)
	manual = planStructureIssues(result.Results[domain.CategoryStructureIssues], manual)
	manual = planReadingOrderIssues(result.Results[domain.CategoryReadingOrderIssues], manual)

	semiAutomated = dedupeSemiAutomated(automated, semiAutomated)
	applyUniqueFixIDs(automated, semiAutomated, manual)
	estimated := recalculateEstimatedTime(automated, semiAutomated, manual)

	return &domain.FixPlan{
		Automated:     automated,
		SemiAutomated: semiAutomated,
		Manual:        manual,
		EstimatedTime: estimated,
	}
}

func planWCAG(issues []domain.Issue, processed map[string]struct{}, automated, manual []domain.FixAction) ([]domain.FixAction, []domain.FixAction) {
	for _, issue := range issues {
		key := fmt.Sprintf("wcag-%s-%s", issue.Criterion, issue.Description)
		if _, seen := processed[key]; seen {
			continue
		}
		processed[key] = struct{}{}

		desc := strings.ToLower(issue.Description)
		switch {
		case strings.Contains(desc, "title") && strings.Contains(desc, "info dictionary"):
			automated = append(automated, fixAction("wcag-title-info-"+issue.Criterion, domain.FixAddTitle,
				domain.CategoryWCAG, issue.Severity, issue.Description, 1,
				map[string]any{"action": "Add document title to info dictionary", "criterion": issue.Criterion}))
		case strings.Contains(desc, "metadata") || strings.Contains(desc, "dc:title"):
			automated = append(automated, fixAction("wcag-metadata-"+issue.Criterion, domain.FixAddMetadata,
				domain.CategoryWCAG, issue.Severity, issue.Description, 1,
				map[string]any{"action": "Add document metadata and title", "criterion": issue.Criterion}))
		case strings.Contains(desc, "reading order"):
			manual = append(manual, fixAction("wcag-reading-order-"+issue.Criterion, domain.FixStructure,
				domain.CategoryWCAG, issue.Severity, issue.Description, 20,
				map[string]any{"action": "Define proper reading order", "criterion": issue.Criterion,
					"instructions": "Use a PDF editor to create a structure tree and define reading order"}))
		case issue.Criterion == "3.1.1":
			// already handled by planMissingLanguage
		default:
			manual = append(manual, fixAction("wcag-"+issue.Criterion, domain.FixStructure,
				domain.CategoryWCAG, issue.Severity, issue.Description, 10,
				map[string]any{"action": firstNonEmpty(issue.Remediation, "Review and fix WCAG compliance issue"),
					"clause": issue.Clause}))
		}
	}
	return automated, manual
}

func planPDFUA(issues []domain.Issue, processed map[string]struct{}, automated, semiAutomated []domain.FixAction) ([]domain.FixAction, []domain.FixAction) {
	for _, issue := range issues {
		key := fmt.Sprintf("pdfua-%s-%s", issue.Clause, issue.Description)
		if _, seen := processed[key]; seen {
			continue
		}
		processed[key] = struct{}{}

		desc := strings.ToLower(issue.Description)
		switch {
		case containsAny(desc, "metadata stream", "viewerpreferences", "suspects"):
			automated = append(automated, fixAction("pdfua-"+issue.Clause, domain.FixAddMetadata,
				domain.CategoryPDFUA, issue.Severity, issue.Description, 1,
				map[string]any{"action": "Add required PDF/UA metadata and structure", "clause": issue.Clause}))
		case strings.Contains(desc, "dc:title"):
			if _, already := processed["wcag-2.4.2-"+issue.Description]; !already {
				automated = append(automated, fixAction("pdfua-dctitle-"+issue.Clause, domain.FixAddMetadata,
					domain.CategoryPDFUA, issue.Severity, issue.Description, 1,
					map[string]any{"action": "Add dc:title to XMP metadata", "clause": issue.Clause}))
			}
		case strings.Contains(desc, "structure tree") && strings.Contains(desc, "no children"):
			automated = append(automated, fixAction("pdfua-structure-tree-"+issue.Clause, domain.FixStructure,
				domain.CategoryPDFUA, issue.Severity, issue.Description, 1,
				map[string]any{"action": "Create structure tree with a Document root element", "clause": issue.Clause}))
		default:
			semiAutomated = append(semiAutomated, fixAction("pdfua-"+issue.Clause, domain.FixStructure,
				domain.CategoryPDFUA, issue.Severity, issue.Description, 10,
				map[string]any{"action": firstNonEmpty(issue.Remediation, "Review and fix PDF/UA compliance issue"),
					"clause": issue.Clause}))
		}
	}
	return automated, semiAutomated
}

func planMissingMetadata(issues []domain.Issue, automated []domain.FixAction) []domain.FixAction {
	for _, issue := range issues {
		page := issue.Page
		if page == 0 {
			page = 1
		}
		automated = append(automated, fixAction(fmt.Sprintf("add-metadata-%d", page), domain.FixAddMetadata,
			domain.CategoryMissingMetadata, issue.Severity, issue.Description, 1,
			map[string]any{"action": "Add " + firstNonEmpty(issue.Description, "metadata"), "page": page}))
	}
	return automated
}

func planMissingLanguage(issues []domain.Issue, automated []domain.FixAction) []domain.FixAction {
	if len(issues) == 0 {
		return automated
	}
	issue := issues[0]
	page := issue.Page
	if page == 0 {
		page = 1
	}
	return append(automated, fixAction("fix-language", domain.FixAddLanguage,
		domain.CategoryMissingLanguage, issue.Severity, "Automatically sets the PDF document language to 'en-US' by default.", 1,
		map[string]any{"action": "Apply document language 'en-US' to the PDF catalog", "criterion": "3.1.1", "page": page}))
}

func planMissingAltText(issues []domain.Issue, semiAutomated []domain.FixAction) []domain.FixAction {
	for _, issue := range issues {
		pages := issuePages(issue)
		count := len(pages)
		if count == 0 {
			count = 1
		}
		semiAutomated = append(semiAutomated, domain.FixAction{
			ID:          "add-alt-text",
			FixType:     domain.FixAddAltText,
			Category:    domain.CategoryMissingAltText,
			Severity:    issue.Severity,
			Description: issue.Description,
			EstimatedTime: count * 2,
			FixData:     map[string]any{"action": fmt.Sprintf("Add alt text to %d image(s)", count), "pages": pages, "count": count},
		})
	}
	return semiAutomated
}

func planFormIssues(issues []domain.Issue, semiAutomated []domain.FixAction) []domain.FixAction {
	for _, issue := range issues {
		pages := issuePages(issue)
		count := len(pages)
		if count == 0 {
			count = 1
		}
		semiAutomated = append(semiAutomated, domain.FixAction{
			ID:          "fix-forms",
			FixType:     domain.FixAddFormLabel,
			Category:    domain.CategoryFormIssues,
			Severity:    issue.Severity,
			Description: issue.Description,
			EstimatedTime: count * 3,
			FixData:     map[string]any{"action": fmt.Sprintf("Add labels to %d form field(s)", count), "pages": pages, "count": count},
		})
	}
	return semiAutomated
}

func planUntaggedContent(issues []domain.Issue, manual []domain.FixAction) []domain.FixAction {
	for _, issue := range issues {
		pages := issuePages(issue)
		manual = append(manual, domain.FixAction{
			ID:          "tag-content",
			FixType:     domain.FixTagContent,
			Category:    domain.CategoryUntaggedContent,
			Severity:    issue.Severity,
			Description: issue.Description,
			EstimatedTime: 30,
			FixData: map[string]any{"action": "Tag document structure", "pages": pages,
				"instructions": "Use Adobe Acrobat or a similar tool to add heading, paragraph and list tags"},
		})
	}
	return manual
}

func planTableIssues(issues []domain.Issue, manual []domain.FixAction) []domain.FixAction {
	for _, issue := range issues {
		pages := issuePages(issue)
		count := len(pages)
		if count == 0 {
			count = 1
		}
		manual = append(manual, domain.FixAction{
			ID:          "fix-tables",
			FixType:     domain.FixStructure,
			Category:    domain.CategoryTableIssues,
			Severity:    issue.Severity,
			Description: issue.Description,
			EstimatedTime: count * 20,
			FixData: map[string]any{"action": fmt.Sprintf("Fix %d table(s) structure", count), "pages": pages, "count": count,
				"instructions": "Use a PDF editor to define table headers, data cells and table structure"},
		})
	}
	return manual
}

func planPoorContrast(issues []domain.Issue, manual []domain.FixAction) []domain.FixAction {
	for _, issue := range issues {
		pages := issuePages(issue)
		count := len(pages)
		if count == 0 {
			count = 1
		}
		manual = append(manual, domain.FixAction{
			ID:          "fix-contrast",
			FixType:     domain.FixContrast,
			Category:    domain.CategoryPoorContrast,
			Severity:    issue.Severity,
			Description: issue.Description,
			EstimatedTime: count * 5,
			FixData: map[string]any{"action": fmt.Sprintf("Fix contrast for %d element(s)", count), "pages": pages, "count": count,
				"instructions": "Modify text and background colors to achieve at least a 4.5:1 contrast ratio"},
		})
	}
	return manual
}

func planStructureIssues(issues []domain.Issue, manual []domain.FixAction) []domain.FixAction {
	for _, issue := range issues {
		pages := issuePages(issue)
		manual = append(manual, domain.FixAction{
			ID:          "fix-structure",
			FixType:     domain.FixStructure,
			Category:    domain.CategoryStructureIssues,
			Severity:    issue.Severity,
			Description: issue.Description,
			EstimatedTime: 40,
			FixData: map[string]any{"action": "Fix document structure", "pages": pages,
				"instructions": "Ensure proper heading levels (H1, H2, H3...) and a logical document structure"},
		})
	}
	return manual
}

func planReadingOrderIssues(issues []domain.Issue, manual []domain.FixAction) []domain.FixAction {
	for _, issue := range issues {
		pages := issuePages(issue)
		manual = append(manual, domain.FixAction{
			ID:          "fix-reading-order",
			FixType:     domain.FixStructure,
			Category:    domain.CategoryReadingOrderIssues,
			Severity:    issue.Severity,
			Description: issue.Description,
			EstimatedTime: 20,
			FixData: map[string]any{"action": "Fix reading order", "pages": pages,
				"instructions": "Use a PDF editor to reorder content elements for a logical reading flow"},
		})
	}
	return manual
}

func fixAction(id string, fixType domain.FixType, category domain.Category, severity domain.Severity, description string, minutes int, fixData map[string]any) domain.FixAction {
	return domain.FixAction{ID: id, FixType: fixType, Category: category, Severity: severity,
		Description: description, EstimatedTime: minutes, FixData: fixData}
}

func issuePages(issue domain.Issue) []int {
	if len(issue.Pages) > 0 {
		return issue.Pages
	}
	if issue.Page > 0 {
		return []int{issue.Page}
	}
	return []int{1}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// dedupeSemiAutomated mirrors _dedupe_semi_automated: a semiAutomated
// fix is dropped if an automated fix already shares its (criterion |
// clause | description) signature.
func dedupeSemiAutomated(automated, semiAutomated []domain.FixAction) []domain.FixAction {
	signature := func(a domain.FixAction) string {
		if c, ok := a.FixData["criterion"]; ok {
			return "criterion:" + strings.ToLower(strings.TrimSpace(fmt.Sprint(c)))
		}
		if c, ok := a.FixData["clause"]; ok {
			return "clause:" + strings.ToLower(strings.TrimSpace(fmt.Sprint(c)))
		}
		if a.Description != "" {
			return "description:" + strings.ToLower(strings.TrimSpace(a.Description))
		}
		return "id:" + a.ID
	}

	seen := map[string]struct{}{}
	for _, a := range automated {
		seen[signature(a)] = struct{}{}
	}
	var out []domain.FixAction
	for _, a := range semiAutomated {
		if _, dup := seen[signature(a)]; dup {
			continue
		}
		out = append(out, a)
	}
	return out
}

// applyUniqueFixIDs mirrors _apply_unique_fix_ids: ids are uniquified
// across all three buckets, with a fixed set of prefixes that always
// receive a numeric suffix (even on their first occurrence) because
// multiple distinct fixes legitimately share that base id.
var forceSuffixPrefixes = map[string]struct{}{
	"fix-contrast": {}, "fix-tables": {}, "fix-table": {}, "set-language": {}, "fix-language": {},
}

func applyUniqueFixIDs(groups ...[]domain.FixAction) {
	counters := map[string]int{}
	existing := map[string]struct{}{}

	for _, group := range groups {
		for i := range group {
			base := group[i].ID
			if base == "" {
				base = "fix"
			}
			normalized := base
			if base == "set-language" {
				normalized = "fix-language"
			}
			counters[normalized]++
			_, forceSuffix := forceSuffixPrefixes[normalized]
			needsSuffix := forceSuffix || counters[normalized] > 1

			candidate := normalized
			if needsSuffix {
				candidate = normalized + "-" + strconv.Itoa(counters[normalized])
			}
			for {
				if _, clash := existing[candidate]; !clash {
					break
				}
				counters[normalized]++
				candidate = normalized + "-" + strconv.Itoa(counters[normalized])
			}
			group[i].ID = candidate
			existing[candidate] = struct{}{}
		}
	}
}

func recalculateEstimatedTime(groups ...[]domain.FixAction) int {
	total := 0
	for _, group := range groups {
		for _, a := range group {
			total += a.EstimatedTime
		}
	}
	return total
}
