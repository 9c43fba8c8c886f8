// Package version reports the binder build version. Release builds set it
// with ldflags:
//
//	go build -ldflags "-X github.com/ramonehamilton/card-binder/internal/version.Version=v0.3.0" ./cmd/binder
package version

// Version defaults to "dev" for local builds.
var Version = "dev"

// GetVersion returns the current application version.
func GetVersion() string {
	return Version
}
