package app

import (
	"fmt"
	"runtime/debug"
)

// Release builds stamp these with -ldflags "-X .../internal/app.Version=...".
// Otherwise BuildVersion falls back to the module and VCS info that
// `go install` records in the binary.
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

// BuildVersion is the string printed by --version.
func BuildVersion() string {
	version, commit, built := Version, Commit, BuildTime

	if info, ok := debug.ReadBuildInfo(); ok {
		if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if commit == "" {
					commit = shortRevision(s.Value)
				}
			case "vcs.time":
				if built == "" {
					built = s.Value
				}
			}
		}
	}

	if commit == "" {
		return version
	}
	if built == "" {
		return fmt.Sprintf("%s (%s)", version, commit)
	}
	return fmt.Sprintf("%s (%s, %s)", version, commit, built)
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
