package status

import "errors"

// ErrTerminalOverall is returned when a sub-stage write arrives after the
// overall stage reached a terminal value.
var ErrTerminalOverall = errors.New("publish attempt already terminal")

// ErrNotFound is returned when no record exists for a composite key.
var ErrNotFound = errors.New("status record not found")
