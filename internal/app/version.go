package app

import "fmt"

// Set with -ldflags "-X github.com/hyperifyio/fleetcat/internal/app.BuildVersion=...".
var (
	BuildVersion = "0.0.0-dev"
	BuildCommit  = "unknown"
	BuildDate    = "unknown"
)

// VersionString formats the build information for -version.
func VersionString() string {
	return fmt.Sprintf("fleetcat %s (commit %s, built %s)", BuildVersion, BuildCommit, BuildDate)
}
