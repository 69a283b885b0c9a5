// Package buildinfo carries the version stamped into a build.
//
// The variables are set with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/burrow/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/burrow/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/burrow/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/burrow
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the build information, one field per line.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, Commit, Date)
}

// UserAgent identifies burrow to remote services, e.g. "burrow/v0.3.0".
func UserAgent() string {
	return "burrow/" + Version
}
