package repository

import "errors"

// Sentinel kinds for registry construction errors.
var (
	ErrDuplicateActivity = errors.New("duplicate activity name")
)
