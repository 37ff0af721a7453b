// Package version carries the build identity stamped in by the linker.
// Run logs lead with it so a recorded run can be traced to the binary
// that produced it.
package version

import "fmt"

var (
	// Version is the release version, "dev" for local builds.
	Version = "dev"
	// GitSHA is the git commit SHA of the build.
	GitSHA = "unknown"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// String formats the version triple for log lines.
func String() string {
	return fmt.Sprintf("%s (%s, built %s)", Version, GitSHA, BuildTime)
}
