package shared

import "errors"

var (
	// ErrMissingPrincipal occurs when no authenticated user reached the handler.
	ErrMissingPrincipal = errors.New("missing principal")
	// ErrInvalidPrincipal occurs when the user header is not a valid id.
	ErrInvalidPrincipal = errors.New("invalid principal")
)
