// Package version reports the codegen build.
package version

import (
	"fmt"
	"runtime/debug"
)

// These variables are set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// String returns a formatted version string including version, git commit, and build date
func String() string {
	version, commit, date := resolved(Version, GitCommit, BuildDate)
	return fmt.Sprintf("%s (commit: %s, date: %s)", version, commit, date)
}

// resolved fills values left unset by ldflags from the module build info,
// which `go install` records.
func resolved(version, commit, date string) (string, string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version, commit, date
	}

	if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if commit == "unknown" {
				commit = s.Value[:min(12, len(s.Value))]
			}
		case "vcs.time":
			if date == "unknown" {
				date = s.Value
			}
		}
	}
	return version, commit, date
}
