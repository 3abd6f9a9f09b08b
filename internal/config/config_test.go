package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysFileOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdfguard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fixed_root: /data/fixed\nworkers: 8\ndeadline: 45s\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/fixed", cfg.FixedRoot)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "en-US", cfg.DefaultLanguage, "unset fields keep their default")

	d, err := cfg.DeadlineDuration()
	require.NoError(t, err)
	assert.Equal(t, int64(45*1e9), int64(d))
}

func TestLoadNegativeWorkersClampsToOne(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdfguard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: -3\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Workers)
}

func TestDeadlineDurationEmptyMeansNoDeadline(t *testing.T) {
	d, err := Default().DeadlineDuration()
	require.NoError(t, err)
	assert.Equal(t, int64(0), int64(d))
}
