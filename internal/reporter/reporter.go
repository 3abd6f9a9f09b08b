// Package reporter renders a domain.ScanResult in the output formats
// the teacher's internal/adapters/reporter package offered for its
// ValidationReport (JSON, text, markdown), adapted to this module's
// scan/fix domain instead of EPUB/PDF structural validation.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/docaccess/pdfguard/internal/domain"
)

// Format selects the rendering the teacher's --format flag offered.
type Format string

const (
	FormatJSON     Format = "json"
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// Write renders result in format to w.
func Write(w io.Writer, result *domain.ScanResult, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatMarkdown:
		return writeMarkdown(w, result)
	default:
		return writeText(w, result)
	}
}

func writeJSON(w io.Writer, result *domain.ScanResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func sortedCategories(results map[domain.Category][]domain.Issue) []domain.Category {
	cats := make([]domain.Category, 0, len(results))
	for c := range results {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}

func writeText(w io.Writer, result *domain.ScanResult) error {
	fmt.Fprintf(w, "Compliance score: %.2f (WCAG %.2f, PDF/UA %.2f)\n",
		result.Summary.ComplianceScore, result.Summary.WCAGCompliance, result.Summary.PDFUACompliance)
	fmt.Fprintf(w, "Total issues: %d (high severity: %d)\n\n", result.Summary.TotalIssues, result.Summary.HighSeverity)

	for _, cat := range sortedCategories(result.Results) {
		issues := result.Results[cat]
		if len(issues) == 0 {
			continue
		}
		fmt.Fprintf(w, "== %s (%d) ==\n", cat, len(issues))
		for _, iss := range issues {
			fmt.Fprintf(w, "  [%s] %s — %s\n", iss.Severity, locator(iss), iss.Description)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func writeMarkdown(w io.Writer, result *domain.ScanResult) error {
	fmt.Fprintf(w, "# Accessibility scan\n\n")
	fmt.Fprintf(w, "- **Compliance score:** %.2f\n", result.Summary.ComplianceScore)
	fmt.Fprintf(w, "- **WCAG:** %.2f\n", result.Summary.WCAGCompliance)
	fmt.Fprintf(w, "- **PDF/UA:** %.2f\n", result.Summary.PDFUACompliance)
	fmt.Fprintf(w, "- **Total issues:** %d (%d high severity)\n\n", result.Summary.TotalIssues, result.Summary.HighSeverity)

	for _, cat := range sortedCategories(result.Results) {
		issues := result.Results[cat]
		if len(issues) == 0 {
			continue
		}
		fmt.Fprintf(w, "## %s\n\n", cat)
		for _, iss := range issues {
			fmt.Fprintf(w, "- **[%s]** %s — %s\n", iss.Severity, locator(iss), iss.Description)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func locator(iss domain.Issue) string {
	parts := []string{}
	if iss.Criterion != "" {
		parts = append(parts, iss.Criterion)
	}
	if iss.Clause != "" {
		parts = append(parts, iss.Clause)
	}
	if iss.Page > 0 {
		parts = append(parts, fmt.Sprintf("p.%d", iss.Page))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

// ParseFormat parses the --format flag, mirroring the teacher's
// cli.ParseFormat.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(raw) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported format %q", raw)
	}
}
