package console

import "errors"

var (
	// ErrInvalidIdentifier reports a button outside the eight console buttons.
	ErrInvalidIdentifier = errors.New("console: invalid button identifier")
	// ErrInvalidSide reports an indicator side other than left or right.
	ErrInvalidSide = errors.New("console: invalid indicator side")
	// ErrInvalidFrequency reports a tone that cannot be synthesized at the
	// configured sample rate.
	ErrInvalidFrequency = errors.New("console: invalid tone frequency")
	// ErrDisplayWrite wraps a failed frame transmission.
	ErrDisplayWrite = errors.New("console: display write failed")
)
