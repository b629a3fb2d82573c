// Package priority raises the scheduling priority of the current process.
// Elevation is best effort: callers log the error and carry on.
package priority

import "errors"

// ErrUnsupported is returned on platforms without an elevation path.
var ErrUnsupported = errors.New("priority elevation not supported on this platform")

// Elevate raises the current process priority.
func Elevate() error {
	return elevate()
}
