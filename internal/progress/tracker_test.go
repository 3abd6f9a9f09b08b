package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerLifecycleUpdatesSnapshotCounts(t *testing.T) {
	tr := New("scan-1", 0)
	a := tr.AddStep("addLanguage", "set catalog Lang")
	b := tr.AddStep("addTitle", "set DocInfo Title")

	tr.StartStep(a)
	tr.CompleteStep(a, "done")
	tr.StartStep(b)
	tr.FailStep(b, "boom")

	snap := tr.Progress()
	assert.Equal(t, 2, snap.TotalSteps)
	assert.Equal(t, 1, snap.CompletedSteps)
	assert.Equal(t, 1, snap.FailedSteps)
	assert.Equal(t, 50, snap.Progress)
}

func TestTrackerSkipStepDoesNotCountAsCompletedOrFailed(t *testing.T) {
	tr := New("scan-1", 0)
	id := tr.AddStep("fixRoleMap", "complete role map")
	tr.SkipStep(id, "not requested by plan")

	snap := tr.Progress()
	assert.Equal(t, StepSkipped, snap.Steps[0].Status)
	assert.Equal(t, 0, snap.CompletedSteps)
	assert.Equal(t, 0, snap.FailedSteps)
}

func TestTrackerUnknownStepIDIsANoop(t *testing.T) {
	tr := New("scan-1", 0)
	tr.StartStep(99)
	tr.CompleteStep(99, "ignored")
	assert.Empty(t, tr.Progress().Steps)
}

func TestRegistryCreateGetRemove(t *testing.T) {
	reg := NewRegistry()
	reg.Create("scan-1", 3)

	tr, ok := reg.Get("scan-1")
	require.True(t, ok)
	assert.Equal(t, "scan-1", tr.ScanID)

	reg.Remove("scan-1")
	_, ok = reg.Get("scan-1")
	assert.False(t, ok)
}
