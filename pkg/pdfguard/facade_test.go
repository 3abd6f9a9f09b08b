package pdfguard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docaccess/pdfguard/internal/domain"
	"github.com/docaccess/pdfguard/internal/progress"
)

func TestAddByCategoryGroupsIssuesByTheirOwnCategory(t *testing.T) {
	results := make(map[domain.Category][]domain.Issue)
	addByCategory(results, []domain.Issue{
		{Category: domain.CategoryWCAG, Criterion: "1.1.1"},
		{Category: domain.CategoryPDFUA, Clause: "ISO 14289-1:7.1"},
		{Category: domain.CategoryWCAG, Criterion: "2.4.2"},
	})

	assert.Len(t, results[domain.CategoryWCAG], 2)
	assert.Len(t, results[domain.CategoryPDFUA], 1)
}

func TestClassifyContextErrWrapsErrDeadline(t *testing.T) {
	err := classifyContextErr(context.DeadlineExceeded)
	assert.True(t, errors.Is(err, domain.ErrDeadline))
	assert.Contains(t, err.Error(), context.DeadlineExceeded.Error())
}

func TestNewClientDefaultsToNoopUploaderAndIndependentLocks(t *testing.T) {
	c := New(t.TempDir(), nil)
	assert.NotNil(t, c.versions)
	assert.NotNil(t, c.locks)
	assert.NotNil(t, c.progress)

	_, ok := c.GetProgress("never-ran")
	assert.False(t, ok)
}

type stubSuggester struct {
	kind, context string
	out           string
}

func (s *stubSuggester) Suggest(_ context.Context, kind, ctxText string) (string, error) {
	s.kind, s.context = kind, ctxText
	return s.out, nil
}

func TestSuggestAltTextDefaultsToNoopAndCanBeOverridden(t *testing.T) {
	c := New(t.TempDir(), nil)

	text, err := c.SuggestAltText(context.Background(), "a photo of a cat")
	assert.NoError(t, err)
	assert.Empty(t, text)

	stub := &stubSuggester{out: "a tabby cat sitting on a windowsill"}
	c.WithSuggestionProvider(stub)

	text, err = c.SuggestAltText(context.Background(), "a photo of a cat")
	assert.NoError(t, err)
	assert.Equal(t, "a tabby cat sitting on a windowsill", text)
	assert.Equal(t, "altText", stub.kind)
	assert.Equal(t, "a photo of a cat", stub.context)
}

func TestRecordStepProgressMapsEachFixResultOntoATrackerStep(t *testing.T) {
	tr := progress.New("scan-1", 0)
	recordStepProgress(tr, []domain.FixResult{
		{Type: "addLanguage", Description: "set Lang", Success: true},
		{Type: "fixRoleMap", Description: "already satisfied", Implicit: true},
		{Type: "addMetadata", Description: "boom", Success: false, Error: "boom"},
	})

	snap := tr.Progress()
	assert.Equal(t, 3, snap.TotalSteps)
	assert.Equal(t, 1, snap.CompletedSteps)
	assert.Equal(t, 1, snap.FailedSteps)
	assert.Equal(t, progress.StepSkipped, snap.Steps[1].Status)
}
