package activity

import "errors"

// Sentinel kinds for roster operations. Callers match them with errors.Is.
var (
	ErrActivityNotFound  = errors.New("activity not found")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrAlreadyRegistered = errors.New("student is already signed up")
	ErrActivityFull      = errors.New("activity is full")
	ErrNotRegistered     = errors.New("student is not signed up for this activity")
	ErrInvalidActivity   = errors.New("invalid activity")
)
