// SPDX-License-Identifier: MIT
//
// Package build holds build metadata embedded at link time, for example:
//
//	go build -ldflags "-X audioprofile/pkg/build.buildVersion=v0.3.0 ..."
//
// A binary built without any flags reports itself as a development build.
// Once a version is supplied, the remaining fields are required.
package build

import "fmt"

// Flags describes the running binary.
type Flags struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

const (
	defaultName        = "audioprofile"
	defaultDescription = "Estimate tempo, spectral features and style tags of audio"
)

// Package-level variables for build information. These are populated by -ldflags
// during compilation.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = devFlags()
)

func devFlags() *Flags {
	return &Flags{
		Name:        defaultName,
		Description: defaultDescription,
		Time:        "unknown",
		Commit:      "unknown",
		Version:     "dev",
	}
}

// Initialize copies the ldflags values into the build information. Without
// a version it keeps the development defaults. With a version, a missing
// name, time or commit is an error.
func Initialize() error {
	if buildVersion == "" {
		*buildFlags = *devFlags()
		return nil
	}
	if buildName == "" {
		return fmt.Errorf("BuildName is required")
	}
	if buildTime == "" {
		return fmt.Errorf("BuildTime is required")
	}
	if buildCommit == "" {
		return fmt.Errorf("BuildCommit is required")
	}

	buildFlags.Name = buildName
	buildFlags.Time = buildTime
	buildFlags.Commit = buildCommit
	buildFlags.Version = buildVersion

	return nil
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *Flags {
	return buildFlags
}

// String formats the build information for `version` output.
func (f *Flags) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", f.Name, f.Version, f.Commit, f.Time)
}
