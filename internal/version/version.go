// Package version exposes the build metadata stamped in via ldflags.
package version

import "fmt"

// Set by the build; plain `go build` leaves the defaults.
var (
	Commit    = "dev"
	BuildTime = ""
)

// String renders the version line shown by `aim version`. Releases are
// identified by commit, not semver.
func String() string {
	commit := Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if BuildTime == "" {
		return fmt.Sprintf("aim %s", commit)
	}
	return fmt.Sprintf("aim %s (built %s)", commit, BuildTime)
}
