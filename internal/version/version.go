// Package version holds build metadata.
package version

import "fmt"

// These variables are set at build time using -ldflags
// Example: go build -ldflags "-X github.com/piwi3910/RebarCut/internal/version.Version=1.0.0"
var (
	// Version is the semantic version of the application
	Version = "0.1.0"

	// BuildTime is the time the binary was built (set via ldflags)
	BuildTime = "unknown"

	// GitCommit is the git commit hash (set via ldflags)
	GitCommit = "unknown"
)

// String returns a one-line version description.
func String() string {
	return fmt.Sprintf("rebarcut v%s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
