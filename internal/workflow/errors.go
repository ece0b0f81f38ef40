package workflow

import "errors"

// Graph-level errors. Stage failures are absorbed into state; these only
// mark a corrupted or incomplete state bag.
var (
	ErrMissingState = errors.New("workflow state missing from graph state")
	ErrInvalidState = errors.New("workflow state has unexpected type")
)
