package ip

import "github.com/chabad360/go-oscpack/internal/monitoring"

// SetLogger replaces the diagnostic logger used by this module. Passing nil
// silences it.
func SetLogger(f func(format string, v ...interface{})) {
	monitoring.SetLogger(f)
}
