// Package version holds build metadata injected via ldflags:
//
//	go build -ldflags "-X .../internal/version.Version=v1.2.0 -X .../internal/version.Commit=$(git rev-parse --short HEAD)"
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build metadata as a single line for CLI output.
func String() string {
	return Version + " (" + Commit + ", built " + Date + ")"
}
