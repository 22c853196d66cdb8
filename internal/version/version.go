// Package version carries build metadata injected via ldflags.
package version

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns the human-readable version line.
func Info() string {
	return fmt.Sprintf("sopforge %s (commit %s, built %s)", Version, Commit, Date)
}
