package version

import (
	"fmt"
	"runtime/debug"
)

var (
	tag       = "dev" // set via ldflags
	commit    = "123abc"
	buildTime = "now"
)

const template = "%s (%s) built at %s\nhttps://github.com/noot-app/ingredient-analyzer/releases/tag/%s"

// buildInfoReader is a function type that can be mocked in tests
var buildInfoReader = defaultBuildInfoReader

// defaultBuildInfoReader is the actual implementation using debug.ReadBuildInfo
func defaultBuildInfoReader() (*debug.BuildInfo, bool) {
	return debug.ReadBuildInfo()
}

// Tag returns the release tag, "dev" for local builds
func Tag() string {
	return tag
}

// String returns the tag, commit and build time with a release link.
// ldflags values win; VCS build info fills in whatever was left unset.
func String() string {
	currentCommit := commit
	currentDate := buildTime

	if info, ok := buildInfoReader(); ok {
		for _, setting := range info.Settings {
			switch {
			case setting.Key == "vcs.revision" && commit == "123abc":
				currentCommit = setting.Value
			case setting.Key == "vcs.time" && buildTime == "now":
				currentDate = setting.Value
			}
		}
	}

	return fmt.Sprintf(template, tag, currentCommit, currentDate, tag)
}
