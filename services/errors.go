package services

import "errors"

// Sentinel errors for the service layer. Routes map these to HTTP
// responses; pipelines use them to keep "upstream broke" distinguishable
// from "upstream answered but the output was unusable".
var (
	// ErrNotFound: a referenced story/assignment/audio/book/user is absent.
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden: the requester does not own the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidLLMOutput: the model responded but the payload failed
	// schema validation. Not a transient fault; retrying blindly is wrong.
	ErrInvalidLLMOutput = errors.New("invalid model output")

	// ErrInvalidInput: the caller's payload failed validation, e.g. an
	// answer count that does not match the assignment.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstream: an external capability call failed outright.
	ErrUpstream = errors.New("upstream capability failure")

	// ErrConflict: a uniqueness constraint was violated, e.g. duplicate
	// registration email.
	ErrConflict = errors.New("resource already exists")
)
