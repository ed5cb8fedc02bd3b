// Package version reports the build version of the pack opener.
// Both values are set at build time:
//
//	go build -ldflags "-X github.com/ramonehamilton/stccg-pack-opener/internal/version.Version=v0.3.0 -X github.com/ramonehamilton/stccg-pack-opener/internal/version.Commit=abc1234" ./cmd/pack-opener
package version

import "runtime/debug"

var (
	// Version defaults to "dev".
	Version = "dev"

	// Commit falls back to the VCS revision embedded by the go tool.
	Commit = ""
)

// String returns the version with its short commit, e.g. "v0.3.0 (abc1234)".
func String() string {
	commit := Commit
	if commit == "" {
		commit = vcsRevision()
	}
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if commit == "" {
		return Version
	}
	return Version + " (" + commit + ")"
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}
