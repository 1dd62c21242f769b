package workspace

import "errors"

// Sentinel errors for the workspace registry.
var (
	ErrNotFound     = errors.New("workspace not found")
	ErrEmptyPurpose = errors.New("purpose must not be empty")
)
