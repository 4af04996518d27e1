package protocol

import "errors"

var (
	ErrEmptyExchange  = errors.New("exchange has neither command nor data")
	ErrLengthMismatch = errors.New("buffer presence and length disagree")
	ErrMissingCommand = errors.New("command required")
	ErrMissingData    = errors.New("data buffer required")
	ErrBusyTimeout    = errors.New("radio busy line did not release")
)
