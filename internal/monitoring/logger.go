package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf
// but may be replaced by SetLogger. Tests or production code can redirect
// or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// Verbose enables per-candidate diagnostics from the vertex search and
// the laser reconstruction. Off by default: the pairwise search visits
// O(n²) track pairs per event and would swamp the log.
var Verbose bool

// Debugf logs through Logf only when Verbose is set.
func Debugf(format string, v ...interface{}) {
	if Verbose {
		Logf(format, v...)
	}
}

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
