// Package version carries build information, set at compile time via
// -ldflags:
//
//	go build -ldflags "-X github.com/geniuslabs/voiceapi/version.Version=1.2.0"
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version is the release version, "dev" for local builds.
	Version = "dev"
	// GitCommit is the short commit hash the binary was built from.
	GitCommit = ""
)

// String returns a human-readable version like "1.2.0 (a1b2c3d)".
func String() string {
	commit := GitCommit
	if commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
					commit = setting.Value[:7]
				}
			}
		}
	}
	if commit == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, commit)
}
