package omml

import "errors"

// Sentinel errors for fragment reading.
var (
	ErrEmptyFragment     = errors.New("math fragment is empty")
	ErrMalformedFragment = errors.New("math fragment is malformed")
	ErrNoMath            = errors.New("no math element found")
)
