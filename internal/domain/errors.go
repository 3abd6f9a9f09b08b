// Package domain holds the core data model shared by every validator,
// the remediation engine and the version store. It has no dependency
// on unipdf: adapters translate PDF object-model state into these types.
package domain

import "errors"

// Error taxonomy. Closed set; callers classify with errors.Is, never by
// matching the error message.
var (
	ErrMalformed                = errors.New("pdf structure is malformed")
	ErrEncrypted                = errors.New("pdf is encrypted")
	ErrIO                       = errors.New("io error")
	ErrDeadline                 = errors.New("deadline exceeded")
	ErrForbiddenOlderVersion    = errors.New("older version is not downloadable without override")
	ErrRemoteStorageUnavailable = errors.New("remote storage unavailable")
	ErrInternal                 = errors.New("internal error")
)
