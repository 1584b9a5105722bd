// SPDX-License-Identifier: MIT
//
// Package build carries the application's name, build timestamp, Git
// commit and semantic version. They are injected at link time:
//
//	go build -ldflags "-X spectralizer/pkg/build.buildName=spectralizer \
//	    -X spectralizer/pkg/build.buildVersion=0.1.0 ..."
//
// A plain `go build` sets none of them; Initialize then reads what the Go
// toolchain embedded (module version, vcs.revision, vcs.time).
package build

import (
	"fmt"
	"runtime/debug"
)

const (
	defaultName        = "spectralizer"
	defaultDescription = "Real-time FFT spectrum visualizer for the terminal"
	unknown            = "unknown"
)

type ldFlags struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// Package-level variables for build information, populated by -ldflags.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = defaultFlags()

	readBuildInfo = debug.ReadBuildInfo
)

func defaultFlags() *ldFlags {
	return &ldFlags{
		Name:        defaultName,
		Description: defaultDescription,
		Time:        unknown,
		Commit:      unknown,
		Version:     unknown,
	}
}

// Initialize copies the ldflags variables into the build flags. When none
// are set it falls back to the toolchain's build info. Setting only some of
// them is an error, since it points at a broken release script.
func Initialize() error {
	if buildName == "" && buildTime == "" && buildCommit == "" && buildVersion == "" {
		fromBuildInfo(buildFlags)
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
	if buildVersion == "" {
		return fmt.Errorf("BuildVersion is required")
	}

	buildFlags.Name = buildName
	buildFlags.Time = buildTime
	buildFlags.Commit = buildCommit
	buildFlags.Version = buildVersion

	return nil
}

// fromBuildInfo fills f from runtime/debug, leaving defaults where the
// toolchain recorded nothing.
func fromBuildInfo(f *ldFlags) {
	info, ok := readBuildInfo()
	if !ok {
		return
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		f.Version = v
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			f.Commit = s.Value
		case "vcs.time":
			f.Time = s.Value
		}
	}
}

// GetBuildFlags returns the current build information. Initialize()
// must be called first for it to reflect the binary.
func GetBuildFlags() *ldFlags {
	return buildFlags
}

// String formats the flags for `--version`.
func (f *ldFlags) String() string {
	commit := f.Commit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	return fmt.Sprintf("%s (commit %s, built %s)", f.Version, commit, f.Time)
}
