package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDatasetTooLarge signals the dedup candidate pair cap was exceeded.
	ErrDatasetTooLarge = errors.New("dataset too large for preview, narrow filters")
	// ErrStaleCluster signals a merge selection no longer matches current contact state.
	ErrStaleCluster = errors.New("cluster is stale")
	// ErrTokenExpired signals a selection token that is missing or past its TTL.
	ErrTokenExpired = errors.New("selection token expired")
)
