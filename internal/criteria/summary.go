package criteria

import (
	"fmt"
	"sort"

	"github.com/docaccess/pdfguard/internal/domain"
)

// pdfuaClauseDetail mirrors PDFUA_CLAUSE_DETAILS.
type pdfuaClauseDetail struct {
	Name    string
	Summary string
}

var pdfuaClauseDetails = map[string]pdfuaClauseDetail{
	"ISO 14289-1:7.1":      {"Document Identification", "Metadata, tagging, and document title requirements."},
	"ISO 14289-1:7.2":      {"Structure Tree", "Structure element semantics, RoleMap, and reading order."},
	"ISO 14289-1:7.3":      {"Artifacts", "Artifacts must be separate from tagged content."},
	"ISO 14289-1:7.4":      {"Headings", "Heading hierarchy and nesting rules."},
	"ISO 14289-1:7.5":      {"Tables", "Tables require header associations and structure."},
	"ISO 14289-1:7.18":     {"Forms & Alt Text", "Interactive elements need names and alternative text."},
	"ISO 14289-1:7.18.1":   {"Annotations", "Annotations require Contents text for assistive tech."},
}

var pdfuaClauseOrder = []string{
	"ISO 14289-1:7.1", "ISO 14289-1:7.2", "ISO 14289-1:7.3", "ISO 14289-1:7.4",
	"ISO 14289-1:7.5", "ISO 14289-1:7.18", "ISO 14289-1:7.18.1",
}

// dedupKey mirrors _collect_unique_issues's tuple key:
// (code, description, page, pages, context).
type dedupKey struct {
	code        string
	description string
	page        int
	pages       string
	context     string
}

// Build constructs the WCAG and PDF/UA criteria summary from a scan's
// categorized results, per spec §4.10. Deduplication and category
// fan-out happen before grouping, exactly as the reference
// implementation's _collect_all_wcag_sources does.
func Build(results map[domain.Category][]domain.Issue) *domain.CriteriaSummary {
	summary := &domain.CriteriaSummary{
		WCAG:  buildWCAGItems(results),
		PDFUA: buildPDFUAItems(results),
	}
	return summary
}

func buildWCAGItems(results map[domain.Category][]domain.Issue) []domain.CriterionItem {
	var collected []domain.Issue

	for _, issue := range results[domain.CategoryWCAG] {
		collected = append(collected, issue)
	}
	for category, codes := range CategoryCriteriaMap {
		for _, issue := range results[category] {
			for _, code := range codes {
				mapped := issue
				mapped.Criterion = code
				collected = append(collected, mapped)
			}
		}
	}

	grouped := dedupAndGroup(collected, func(i domain.Issue) string { return i.Criterion })
	return buildItems(grouped, WCAGOrder, func(code string) (string, domain.Level, string) {
		if d, ok := WCAGCriteriaDetails[code]; ok {
			return d.Name, d.Level, d.Summary
		}
		return "WCAG Criterion", "", ""
	})
}

func buildPDFUAItems(results map[domain.Category][]domain.Issue) []domain.CriterionItem {
	grouped := dedupAndGroup(results[domain.CategoryPDFUA], func(i domain.Issue) string { return i.Clause })
	return buildItems(grouped, pdfuaClauseOrder, func(code string) (string, domain.Level, string) {
		if d, ok := pdfuaClauseDetails[code]; ok {
			return d.Name, "", d.Summary
		}
		return "PDF/UA Requirement", "", ""
	})
}

func dedupAndGroup(issues []domain.Issue, codeOf func(domain.Issue) string) map[string][]domain.Issue {
	seen := map[dedupKey]struct{}{}
	grouped := map[string][]domain.Issue{}
	for _, issue := range issues {
		code := codeOf(issue)
		if code == "" {
			continue
		}
		key := dedupKey{
			code:        code,
			description: issue.Description,
			page:        issue.Page,
			pages:       fmt.Sprint(issue.Pages),
			context:     issue.Context,
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		grouped[code] = append(grouped[code], issue)
	}
	return grouped
}

func buildItems(grouped map[string][]domain.Issue, order []string, detailOf func(string) (string, domain.Level, string)) []domain.CriterionItem {
	var items []domain.CriterionItem
	seen := map[string]struct{}{}

	add := func(code string) {
		seen[code] = struct{}{}
		issues := grouped[code]
		name, level, summaryText := detailOf(code)
		status := domain.StatusSupports
		if len(issues) > 0 {
			status = domain.StatusDoesNotSupport
		}
		items = append(items, domain.CriterionItem{
			Code:       code,
			Name:       name,
			Level:      level,
			Summary:    summaryText,
			Issues:     issues,
			IssueCount: len(issues),
			Status:     status,
		})
	}

	for _, code := range order {
		add(code)
	}

	var extra []string
	for code := range grouped {
		if _, ok := seen[code]; !ok {
			extra = append(extra, code)
		}
	}
	sort.Strings(extra)
	for _, code := range extra {
		add(code)
	}

	return items
}
