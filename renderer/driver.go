// Package renderer provides the display and input drivers.
package renderer

import "errors"

// ErrDisplayUnavailable is wrapped when a driver cannot open its display.
var ErrDisplayUnavailable = errors.New("display unavailable")
