package models

import "errors"

// Domain specific errors shared across services and handlers.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrBadRequest      = errors.New("bad request")
	ErrUnavailable     = errors.New("upstream unavailable")
	ErrPollTimeout     = errors.New("job still processing after attempt budget")
)

// ValidationError carries the server-provided detail message verbatim.
// It is always surfaced to the user as-is, never swallowed.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return "validation failed"
	}
	return e.Detail
}

// AsValidation unwraps err into a *ValidationError if one is in the chain.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
