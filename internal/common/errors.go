// Package common contains sentinel errors and small helpers shared across
// mediavault components.
package common

import "errors"

var (

	// storage errors
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrNotFound           = errors.New("not found")
	ErrRecordNotFound     = errors.New("record not found")

	// reconciliation errors
	ErrRemoteFetchFailed = errors.New("remote fetch failed")

	// conversion errors
	ErrConversionFailed  = errors.New("conversion failed")
	ErrConversionTimeout = errors.New("conversion timed out")
	ErrWorkerInit        = errors.New("worker initialization failed")
	ErrWorkerCrashed     = errors.New("worker crashed")
	ErrWorkerDestroyed   = errors.New("conversion service destroyed")
)
