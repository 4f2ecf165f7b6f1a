package session

import "errors"

var (
	// ErrInvalidAction indicates a user action that is not valid in the
	// current phase. The call is rejected and state is left untouched.
	ErrInvalidAction = errors.New("invalid action")
	// ErrSchedulingOverlap indicates that work for two phases was live at
	// the same time. It is a programming error.
	ErrSchedulingOverlap = errors.New("scheduling overlap")
)
