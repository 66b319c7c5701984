package model

import "errors"

var (
	// ErrInvalidBounds is returned by AddVariable when the lower bound
	// exceeds the upper bound, or when a bound is NaN.
	ErrInvalidBounds = errors.New("cnvx: variable lower bound exceeds upper bound")

	// ErrUnknownVariable is returned when a constraint or objective
	// references a variable that was not created by this model.
	ErrUnknownVariable = errors.New("cnvx: expression references a variable not owned by this model")
)
