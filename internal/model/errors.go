package model

import "errors"

var (
	// ErrInvalidInput marks malformed series, parameters or capital.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlignment marks a fine-resolution series that does not cover its coarse series.
	ErrAlignment = errors.New("alignment error")
)
