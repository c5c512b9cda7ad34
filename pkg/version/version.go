// Package version reports how the interlog binaries were built.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Release builds set these with
// -ldflags "-X github.com/Aman-CERP/interlog/pkg/version.Version=v1.2.3".
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// Info describes one build.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	Date      string `json:"date,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

var readBuildInfo = debug.ReadBuildInfo

// Get returns the build information. Fields not set through ldflags fall
// back to the module version and VCS stamp recorded by the go tool, so
// `go install` builds report something useful too.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Date == "" {
				info.Date = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// String renders i on one line, e.g.
// "interlog v1.2.3 (0123456789ab, 2026-01-02T03:04:05Z) go1.25.5 linux/amd64".
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "interlog %s", i.Version)

	var build []string
	if i.Commit != "" {
		commit := i.Commit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		if i.Modified {
			commit += "-dirty"
		}
		build = append(build, commit)
	}
	if i.Date != "" {
		build = append(build, i.Date)
	}
	if len(build) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(build, ", "))
	}

	fmt.Fprintf(&b, " %s %s", i.GoVersion, i.Platform)
	return b.String()
}
