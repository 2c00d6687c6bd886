// Package buildinfo reports which pageviz build is running.
//
// Release builds stamp the variables through ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/pageviz/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/pageviz/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/pageviz/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Binaries installed with go install carry no ldflags; for those the module
// version recorded by the Go toolchain is used instead.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

const unstamped = "dev"

var (
	Version = unstamped
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build of the running binary. It is printed by --version and
// returned by the server's /healthz endpoint.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the current build info.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}
	if info.Version == unstamped {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
	}
	return info
}

// ShortCommit returns the first 7 characters of the commit hash.
func (i Info) ShortCommit() string {
	if len(i.Commit) > 7 {
		return i.Commit[:7]
	}
	return i.Commit
}

func (i Info) String() string {
	return fmt.Sprintf("pageviz %s (%s, %s)", i.Version, i.ShortCommit(), i.Date)
}

// Template returns the cobra --version template.
func Template() string {
	i := Get()
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", i.Version, i.Commit, i.Date)
}
