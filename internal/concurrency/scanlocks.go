// Package concurrency implements the per-scan mutual exclusion that
// spec §5 requires: a scan holds its Document from open to close, a
// fix holds it from open to save, and orchestration serializes every
// operation on one scanId by holding a per-scan mutex for its
// duration: one lock per key rather than a single global lock.
package concurrency

import "sync"

// ScanLocks hands out one *sync.Mutex per scanId, created on first use
// and reused thereafter, so two operations on the same scanId block
// each other while operations on different scanIds run fully in
// parallel.
type ScanLocks struct {
	locks sync.Map // scanId string -> *sync.Mutex
}

// NewScanLocks returns an empty lock registry.
func NewScanLocks() *ScanLocks {
	return &ScanLocks{}
}

// Lock blocks until the caller holds scanId's mutex.
func (s *ScanLocks) Lock(scanID string) {
	s.mutexFor(scanID).Lock()
}

// Unlock releases scanId's mutex. Calling it without a prior Lock is a
// programmer error, same as sync.Mutex.
func (s *ScanLocks) Unlock(scanID string) {
	s.mutexFor(scanID).Unlock()
}

// WithLock runs fn while holding scanId's mutex.
func (s *ScanLocks) WithLock(scanID string, fn func() error) error {
	s.Lock(scanID)
	defer s.Unlock(scanID)
	return fn()
}

func (s *ScanLocks) mutexFor(scanID string) *sync.Mutex {
	actual, _ := s.locks.LoadOrStore(scanID, &sync.Mutex{})
	return actual.(*sync.Mutex)
}
