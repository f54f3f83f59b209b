package domain

import "errors"

// Input errors: rejected before any network call, nothing is mutated.
var (
	ErrNoDepot              = errors.New("no depot found")
	ErrStopLimitExceeded    = errors.New("stop limit exceeded")
	ErrAnchorNotFound       = errors.New("insertion anchor stop not found")
	ErrAnchorNotUsed        = errors.New("insertion anchor stop is not part of the previous solution")
	ErrAnchorIsDepot        = errors.New("insertion anchor stop must not be a depot")
	ErrInvalidInsertionMode = errors.New("invalid insertion mode")
	ErrInvalidCoordinates   = errors.New("invalid coordinates")
)

// ErrUnknownStop indicates a result referencing a stop id absent from the catalog.
var ErrUnknownStop = errors.New("result references unknown stop")
