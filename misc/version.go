// Package misc keeps build-time identification of the program.
package misc

// Values below are overwritten at link time with -ldflags "-X fxl/misc.version=...".
var (
	appName = "fxl"
	version = "dev"
	gitHash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
