package insights

import "errors"

var (
	// ErrPreconditionNotMet means the table lacks the column kinds or counts an insight needs.
	ErrPreconditionNotMet = errors.New("precondition not met")
	// ErrParseFailure means a candidate date column had a value that does not parse.
	ErrParseFailure = errors.New("parse failure")
	// ErrEmptyInput means an argmax would run over an empty collection.
	ErrEmptyInput = errors.New("empty input")
)
