// Package build holds the version stamped into the ringbuf binary.
//
//	go build -ldflags "-X github.com/haivivi/ringbuf/cmd/ringbuf/internal/build.Version=v1.0.0 \
//	  -X github.com/haivivi/ringbuf/cmd/ringbuf/internal/build.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/haivivi/ringbuf/cmd/ringbuf/internal/build.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package build

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via -ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version  string `json:"version" yaml:"version"`
	Commit   string `json:"commit" yaml:"commit"`
	Date     string `json:"date" yaml:"date"`
	Go       string `json:"go" yaml:"go"`
	Platform string `json:"platform" yaml:"platform"`
}

// Current returns the stamped values. For a plain `go install` without
// ldflags, the module version and VCS revision from the embedded build info
// fill in what is missing.
func Current() Info {
	info := Info{
		Version:  Version,
		Commit:   Commit,
		Date:     Date,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" && len(s.Value) >= 7 {
				info.Commit = s.Value[:7]
			}
		case "vcs.time":
			if info.Date == "unknown" {
				info.Date = s.Value
			}
		}
	}
	return info
}

// String formats i on one line.
func (i Info) String() string {
	return fmt.Sprintf("ringbuf %s (%s) built %s %s", i.Version, i.Commit, i.Date, i.Platform)
}

// String formats the current build info on one line.
func String() string {
	return Current().String()
}
