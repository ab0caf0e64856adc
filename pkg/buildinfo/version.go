// Package buildinfo carries the version stamped into the infragraph binary.
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/infragraph/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/infragraph/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/infragraph/pkg/buildinfo.Date=$(date -u +%Y-%m-%d)" ./cmd/infragraph
//
// Local builds report "dev".
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Short returns the version with the commit appended for non-release builds.
func Short() string {
	if Version == "dev" && Commit != "none" {
		return Version + "+" + Commit
	}
	return Version
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s\ncommit %s, built %s\n", Short(), Commit, Date)
}
