package pdfua

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docaccess/pdfguard/internal/domain"
)

func TestIssueForPrefixesClauseWithStandardName(t *testing.T) {
	issue := issueFor("01-001", 1, "catalog", "")

	assert.Equal(t, "ISO 14289-1:7.1", issue.Clause,
		"criteria.buildPDFUAItems keys pdfuaClauseDetails/pdfuaClauseOrder by the prefixed form")
	assert.Equal(t, domain.CategoryPDFUA, issue.Category)
	assert.Equal(t, "01-001", issue.MatterhornID)
	assert.Equal(t, ByID["01-001"].Description, issue.Description)
	assert.NotEmpty(t, issue.IssueID)
}

func TestIssueForUsesOverrideDescription(t *testing.T) {
	issue := issueFor("01-001", 2, "ctx", "custom description")
	assert.Equal(t, "custom description", issue.Description)
}
