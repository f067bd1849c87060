// Package buildinfo holds version information stamped in at link time:
//
//	go build -ldflags "-X github.com/lifetree/lifetree/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/lifetree/lifetree/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/lifetree/lifetree/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/lifetree
package buildinfo

import "fmt"

var (
	Version = "dev"     // release tag
	Commit  = "none"    // git commit
	Date    = "unknown" // build time, UTC
)

// Info is the build information as served by the health endpoint.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the current build information.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
