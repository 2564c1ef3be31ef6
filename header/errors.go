package header

import "errors"

// ErrNotFound is returned when a source does not know the requested header.
var ErrNotFound = errors.New("header: not found")
