package remediate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docaccess/pdfguard/internal/domain"
)

func writeFixture(t *testing.T, name string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(minimalPDF), 0o600))
	return path
}

func TestApplyAutomatedFixesRunsMandatorySequence(t *testing.T) {
	path := writeFixture(t, "untagged.pdf")

	eng := New()
	outcome, err := eng.ApplyAutomatedFixes(path, &domain.FixPlan{})
	require.NoError(t, err)
	require.True(t, outcome.Success)
	require.NotEmpty(t, outcome.FixedTempPath)

	names := map[string]domain.FixResult{}
	for _, r := range outcome.FixesApplied {
		names[r.Type] = r
	}

	for _, step := range []string{"addLanguage", "addTitle", "addMetadata", "fixMarkInfo", "fixViewerPreferences", "fixStructure"} {
		r, ok := names[step]
		require.True(t, ok, "expected step %s to run", step)
		assert.True(t, r.Success, "step %s should apply on a document missing its post-condition", step)
	}

	// RoleMap completion is gated on the planner emitting fixRoleMap.
	_, ranRoleMap := names["fixRoleMap"]
	assert.False(t, ranRoleMap)

	out, err := os.ReadFile(outcome.FixedTempPath)
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "/Lang (en-US)")
	assert.Contains(t, text, "/Marked true")
	assert.Contains(t, text, "/StructTreeRoot")

	original, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, minimalPDF, string(original), "sourcePath must never be mutated")
}

func TestApplyAutomatedFixesRunsRoleMapWhenPlanned(t *testing.T) {
	path := writeFixture(t, "tagged.pdf")

	plan := &domain.FixPlan{
		Automated: []domain.FixAction{{FixType: domain.FixRoleMap}},
	}
	eng := New()
	outcome, err := eng.ApplyAutomatedFixes(path, plan)
	require.NoError(t, err)
	require.True(t, outcome.Success)

	found := false
	for _, r := range outcome.FixesApplied {
		if r.Type == "fixRoleMap" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestApplyAutomatedFixesSkipsAlreadySatisfiedSteps(t *testing.T) {
	path := writeFixture(t, "already-tagged.pdf")

	eng := New()
	first, err := eng.ApplyAutomatedFixes(path, &domain.FixPlan{})
	require.NoError(t, err)
	require.True(t, first.Success)

	second, err := eng.ApplyAutomatedFixes(first.FixedTempPath, &domain.FixPlan{})
	require.NoError(t, err)
	require.True(t, second.Success)

	for _, r := range second.FixesApplied {
		assert.False(t, r.Success, "step %s should be a no-op the second time through", r.Type)
		assert.True(t, r.Implicit || r.Error != "", "skipped step %s should be marked implicit", r.Type)
	}
}
