// Package version exposes the build metadata stamped into FleetScan binaries.
package version

// Set at release time via
// -ldflags "-X github.com/fleetscan/fleetscan/pkg/version.version=v1.2.3 ...".
// Unstamped builds report dev/none/unknown.
//
//nolint:gochecknoglobals // ldflags injection targets
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersion returns the release version.
func GetVersion() string {
	return version
}

// GetCommit returns the VCS commit the binary was built from.
func GetCommit() string {
	return commit
}

// GetFullVersion returns the version with commit and build date, as logged at
// scand startup.
func GetFullVersion() string {
	return version + " (commit: " + commit + ", built: " + date + ")"
}
