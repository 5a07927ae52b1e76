// SPDX-License-Identifier: MIT
//
// Package build holds the metadata linked into the binary with -ldflags:
//
//	go build -ldflags "-X equalizer/pkg/build.buildVersion=v0.3.0 ..."
//
// Development builds carry none of it and report "dev" values instead.
package build

import (
	"errors"
	"fmt"
	"strings"
)

// Description is the one-line summary shown by the CLI.
const Description = "Audio player with synchronized waveform, spectrum and equalizer views"

// ErrMissingFlag reports a build flag that was not linked in.
var ErrMissingFlag = errors.New("missing build flag")

// Info describes the running binary.
type Info struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", i.Name, i.Version, i.Commit, i.Time)
}

// Set by -ldflags.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
)

var info = devInfo()

func devInfo() Info {
	return Info{Name: "equalizer", Time: "unknown", Commit: "unknown", Version: "dev"}
}

// Initialize copies the linked flags into Info. Missing flags keep their
// development values and are reported together in one error wrapping
// ErrMissingFlag.
func Initialize() error {
	info = devInfo()

	var missing []string
	set := func(name, value string, dst *string) {
		if value == "" {
			missing = append(missing, name)
			return
		}
		*dst = value
	}
	set("name", buildName, &info.Name)
	set("time", buildTime, &info.Time)
	set("commit", buildCommit, &info.Commit)
	set("version", buildVersion, &info.Version)

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingFlag, strings.Join(missing, ", "))
	}
	return nil
}

// Get returns the build information.
func Get() Info {
	return info
}
