package gallery

import "errors"

var (
	// ErrNotFound is returned when a repo root or entry directory does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTraversalRead marks a date listing that could not be read during
	// iteration. The iterator logs it and treats the date as empty.
	ErrTraversalRead = errors.New("traversal read failed")

	// ErrInvalidArgument is returned for bad counts, prompts, repo names and tokens.
	ErrInvalidArgument = errors.New("invalid argument")
)
