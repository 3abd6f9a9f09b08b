package versionstore

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docaccess/pdfguard/internal/domain"
)

func writeSourcePDF(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixed.pdf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestArchiveFixedPDFVersionStartsAtOne(t *testing.T) {
	store := New(t.TempDir(), nil)
	src := writeSourcePDF(t, "%PDF-1.4 v1")

	entry, err := store.ArchiveFixedPDFVersion("scan-1", "report.pdf", src)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Version)
	assert.Equal(t, "report_v1.pdf", entry.Filename)

	data, err := os.ReadFile(entry.AbsolutePath)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 v1", string(data))
}

func TestArchiveFixedPDFVersionIncrementsAcrossCalls(t *testing.T) {
	store := New(t.TempDir(), nil)

	first, err := store.ArchiveFixedPDFVersion("scan-1", "report.pdf", writeSourcePDF(t, "v1"))
	require.NoError(t, err)
	second, err := store.ArchiveFixedPDFVersion("scan-1", "report.pdf", writeSourcePDF(t, "v2"))
	require.NoError(t, err)

	assert.Equal(t, 1, first.Version)
	assert.Equal(t, 2, second.Version)
}

func TestGetFixedVersionDefaultsToLatest(t *testing.T) {
	store := New(t.TempDir(), nil)
	_, err := store.ArchiveFixedPDFVersion("scan-1", "report.pdf", writeSourcePDF(t, "v1"))
	require.NoError(t, err)
	_, err = store.ArchiveFixedPDFVersion("scan-1", "report.pdf", writeSourcePDF(t, "v2"))
	require.NoError(t, err)

	latest, err := store.GetFixedVersion("scan-1", nil, false)
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Version)
}

func TestGetFixedVersionForbidsOlderVersionWithoutOverride(t *testing.T) {
	store := New(t.TempDir(), nil)
	_, err := store.ArchiveFixedPDFVersion("scan-1", "report.pdf", writeSourcePDF(t, "v1"))
	require.NoError(t, err)
	_, err = store.ArchiveFixedPDFVersion("scan-1", "report.pdf", writeSourcePDF(t, "v2"))
	require.NoError(t, err)

	v := 1
	_, err = store.GetFixedVersion("scan-1", &v, false)
	assert.True(t, errors.Is(err, domain.ErrForbiddenOlderVersion))

	entry, err := store.GetFixedVersion("scan-1", &v, true)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Version)
}

func TestGetVersionedFilesOnUnknownScanReturnsEmpty(t *testing.T) {
	store := New(t.TempDir(), nil)
	entries, err := store.GetVersionedFiles("never-archived")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPruneFixedVersionsKeepsOnlyLatest(t *testing.T) {
	store := New(t.TempDir(), nil)
	_, err := store.ArchiveFixedPDFVersion("scan-1", "report.pdf", writeSourcePDF(t, "v1"))
	require.NoError(t, err)
	_, err = store.ArchiveFixedPDFVersion("scan-1", "report.pdf", writeSourcePDF(t, "v2"))
	require.NoError(t, err)
	_, err = store.ArchiveFixedPDFVersion("scan-1", "report.pdf", writeSourcePDF(t, "v3"))
	require.NoError(t, err)

	require.NoError(t, store.PruneFixedVersions("scan-1", true))

	entries, err := store.GetVersionedFiles("scan-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].Version)
}

func TestPruneFixedVersionsNoopWhenKeepLatestFalse(t *testing.T) {
	store := New(t.TempDir(), nil)
	_, err := store.ArchiveFixedPDFVersion("scan-1", "report.pdf", writeSourcePDF(t, "v1"))
	require.NoError(t, err)
	_, err = store.ArchiveFixedPDFVersion("scan-1", "report.pdf", writeSourcePDF(t, "v2"))
	require.NoError(t, err)

	require.NoError(t, store.PruneFixedVersions("scan-1", false))

	entries, err := store.GetVersionedFiles("scan-1")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

type rejectingUploader struct{}

func (rejectingUploader) Upload(string, io.Reader) (string, error) {
	return "", errors.New("unreachable")
}

func TestArchiveFixedPDFVersionRemovesFileWhenUploadFails(t *testing.T) {
	store := New(t.TempDir(), rejectingUploader{})
	src := writeSourcePDF(t, "v1")

	_, err := store.ArchiveFixedPDFVersion("scan-1", "report.pdf", src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRemoteStorageUnavailable))

	entries, err := store.GetVersionedFiles("scan-1")
	require.NoError(t, err)
	assert.Empty(t, entries, "a failed upload must leave no partial version behind")
}
