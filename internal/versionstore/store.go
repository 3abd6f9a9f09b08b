// Package versionstore implements C9: writes each remediated PDF as
// <base>_v<N>.pdf under <fixed-root>/<scanId>/, records a JSON sidecar
// with a remote-storage key, enforces "latest is downloadable" policy,
// and supports pruning. Grounded on backend/routes/fixes.py's
// archive_fixed_pdf_version / get_fixed_version / get_versioned_files
// and on the teacher's internal/batch/discover.go directory-walk idiom
// (filepath.Glob-style matching, explicit regex over filenames).
package versionstore

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/docaccess/pdfguard/internal/domain"
)

var versionPattern = regexp.MustCompile(`_v(\d+)\.pdf$`)

// RemoteUploader mirrors the original's remote object-store mirroring
// step (multi_tier_storage.py); the core never owns the store, only
// calls it. A no-op uploader is the default in tests and in the facade
// when no remote store is configured.
type RemoteUploader interface {
	Upload(key string, r io.Reader) (remotePath string, err error)
}

// NoopUploader never mirrors to remote storage.
type NoopUploader struct{}

func (NoopUploader) Upload(string, io.Reader) (string, error) { return "", nil }

// Store is the fixed-version archive rooted at fixedRoot.
type Store struct {
	fixedRoot string
	uploader  RemoteUploader
}

// New creates a Store rooted at fixedRoot, using uploader for the
// remote-mirroring step (NoopUploader if nil).
func New(fixedRoot string, uploader RemoteUploader) *Store {
	if uploader == nil {
		uploader = NoopUploader{}
	}
	return &Store{fixedRoot: fixedRoot, uploader: uploader}
}

func (s *Store) scanDir(scanID string) string {
	return filepath.Join(s.fixedRoot, scanID)
}

// sidecar is the `{"remote_path": ...}` JSON schema from spec §6.
type sidecar struct {
	RemotePath string `json:"remote_path"`
}

// ArchiveFixedPDFVersion copies sourcePath into the next version slot
// for scanId, mirrors it to remote storage, writes the sidecar and
// returns the resulting VersionEntry. When the upload or the sidecar
// write fails, the just-written PDF is removed so no partial local
// version remains; a remote copy already uploaded before a sidecar
// failure is not deleted.
func (s *Store) ArchiveFixedPDFVersion(scanID, originalFilename, sourcePath string) (*domain.VersionEntry, error) {
	dir := s.scanDir(scanID)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec
		return nil, fmt.Errorf("%w: %v", domain.ErrIO, err)
	}

	baseName := strings.TrimSuffix(filepath.Base(originalFilename), filepath.Ext(originalFilename))
	next, err := s.nextVersion(dir)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("%s_v%d.pdf", baseName, next)
	absPath := filepath.Join(dir, filename)

	data, err := os.ReadFile(sourcePath) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIO, err)
	}
	if err := os.WriteFile(absPath, data, 0o600); err != nil { //nolint:gosec
		return nil, fmt.Errorf("%w: %v", domain.ErrIO, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIO, err)
	}

	remoteKey := fmt.Sprintf("fixed/%s/%s", scanID, filename)
	remotePath, err := s.uploader.Upload(remoteKey, strings.NewReader(string(data)))
	if err != nil {
		// Archive step fails atomically: remove the just-written file
		// so no partial version exists, per spec §4.9 and §5.
		os.Remove(absPath)
		return nil, fmt.Errorf("%w: %v", domain.ErrRemoteStorageUnavailable, err)
	}

	sc := sidecar{RemotePath: remotePath}
	scBytes, _ := json.Marshal(sc)
	if err := os.WriteFile(absPath+".json", scBytes, 0o600); err != nil { //nolint:gosec
		os.Remove(absPath)
		return nil, fmt.Errorf("%w: %v", domain.ErrIO, err)
	}

	relPath, _ := filepath.Rel(s.fixedRoot, absPath)
	return &domain.VersionEntry{
		Version:      next,
		Filename:     filename,
		RelativePath: relPath,
		AbsolutePath: absPath,
		RemotePath:   remotePath,
		Size:         info.Size(),
		CreatedAt:    info.ModTime(),
	}, nil
}

// nextVersion lists existing versions via the _v(\d+)\.pdf$ pattern and
// returns max+1, or 1 if none exist.
func (s *Store) nextVersion(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, fmt.Errorf("%w: %v", domain.ErrIO, err)
	}
	max := 0
	for _, e := range entries {
		m := versionPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max + 1, nil
}

// GetVersionedFiles returns every archived version for scanId, sorted
// ascending by version number.
func (s *Store) GetVersionedFiles(scanID string) ([]domain.VersionEntry, error) {
	dir := s.scanDir(scanID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrIO, err)
	}

	var out []domain.VersionEntry
	for _, e := range entries {
		m := versionPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		absPath := filepath.Join(dir, e.Name())
		info, err := os.Stat(absPath)
		if err != nil {
			continue
		}
		relPath, _ := filepath.Rel(s.fixedRoot, absPath)
		entry := domain.VersionEntry{
			Version: n, Filename: e.Name(), RelativePath: relPath,
			AbsolutePath: absPath, Size: info.Size(), CreatedAt: info.ModTime(),
		}
		if sc, err := readSidecar(absPath + ".json"); err == nil {
			entry.RemotePath = sc.RemotePath
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func readSidecar(path string) (sidecar, error) {
	var sc sidecar
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return sc, err
	}
	err = json.Unmarshal(data, &sc)
	return sc, err
}

// GetFixedVersion returns a specific version, or the latest when
// version is nil. Download policy: a non-latest version requires
// allowDownload=true, else domain.ErrForbiddenOlderVersion.
func (s *Store) GetFixedVersion(scanID string, version *int, allowDownload bool) (*domain.VersionEntry, error) {
	entries, err := s.GetVersionedFiles(scanID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	latest := entries[len(entries)-1]

	if version == nil {
		return &latest, nil
	}
	for i := range entries {
		if entries[i].Version == *version {
			if entries[i].Version != latest.Version && !allowDownload {
				return nil, domain.ErrForbiddenOlderVersion
			}
			return &entries[i], nil
		}
	}
	return nil, nil
}

// PruneFixedVersions removes all but the newest entry and its sidecar
// when keepLatest is true.
func (s *Store) PruneFixedVersions(scanID string, keepLatest bool) error {
	if !keepLatest {
		return nil
	}
	entries, err := s.GetVersionedFiles(scanID)
	if err != nil {
		return err
	}
	if len(entries) <= 1 {
		return nil
	}
	for _, e := range entries[:len(entries)-1] {
		os.Remove(e.AbsolutePath)
		os.Remove(e.AbsolutePath + ".json")
	}
	return nil
}
