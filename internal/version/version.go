// Package version exposes the build version stamped in at link time.
package version

// version is set via -ldflags at build time.
var version string

// Value returns the build version, or "dev" for unstamped builds.
func Value() string {
	if version == "" {
		return "dev"
	}
	return version
}
