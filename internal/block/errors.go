package block

import "errors"

var (
	// ErrUnknownToggle is returned when a stored or submitted toggle state is
	// not one of the four defined states.
	ErrUnknownToggle = errors.New("unknown toggle state")
)
