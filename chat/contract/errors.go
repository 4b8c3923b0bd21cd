package contract

import "errors"

var (
	// ErrValidation marks missing or malformed caller input. Always surfaced,
	// never retried.
	ErrValidation = errors.New("validation failed")

	// ErrUpstream marks a commerce platform or model provider failure. The
	// platform's own message is carried in the wrapping error.
	ErrUpstream = errors.New("upstream platform failure")

	// ErrPersistence marks a datastore read or write failure.
	ErrPersistence = errors.New("persistence failure")

	// ErrNotFound marks a product or order lookup miss, distinct from a
	// generic upstream failure.
	ErrNotFound = errors.New("not found")
)
