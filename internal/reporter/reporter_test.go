package reporter

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docaccess/pdfguard/internal/domain"
)

func sampleResult() *domain.ScanResult {
	return &domain.ScanResult{
		Summary: domain.Summary{ComplianceScore: 82.5, WCAGCompliance: 80, PDFUACompliance: 85, TotalIssues: 1, HighSeverity: 1},
		Results: map[domain.Category][]domain.Issue{
			domain.CategoryWCAG: {
				{Criterion: "1.1.1", Page: 3, Severity: domain.SeverityHigh, Description: "missing alt text"},
			},
		},
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(), FormatJSON))

	var decoded domain.ScanResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 82.5, decoded.Summary.ComplianceScore)
}

func TestWriteTextIncludesLocatorAndScore(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(), FormatText))
	out := buf.String()
	assert.Contains(t, out, "Compliance score: 82.50")
	assert.Contains(t, out, "1.1.1 p.3")
}

func TestWriteMarkdownUsesHeadings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(), FormatMarkdown))
	out := buf.String()
	assert.Contains(t, out, "# Accessibility scan")
	assert.Contains(t, out, "## wcagIssues")
}

func TestLocatorPrefersAllAvailableParts(t *testing.T) {
	assert.Equal(t, "-", locator(domain.Issue{}))
	assert.Equal(t, "1.1.1", locator(domain.Issue{Criterion: "1.1.1"}))
	assert.Equal(t, "ISO 14289-1:7.1 p.2", locator(domain.Issue{Clause: "ISO 14289-1:7.1", Page: 2}))
}

func TestParseFormatDefaultsToText(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	f, err = ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("yaml")
	assert.Error(t, err)
}
