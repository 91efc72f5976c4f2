package gotara

import (
	"runtime"
	"runtime/debug"
	"sync"
)

const (
	// Name is the application name.
	Name = "gotara"

	// Description is a short description of the application.
	Description = "Rule-based English/Taralians translator"

	// Repository is the source code repository URL.
	Repository = "https://github.com/ZaguanLabs/gotara"
)

// Build information. Release builds set these with
//
//	go build -ldflags "-X github.com/ZaguanLabs/gotara.Version=1.0.0 -X github.com/ZaguanLabs/gotara.GitCommit=$(git rev-parse HEAD)"
//
// When GitCommit is left unset it is read from the VCS stamp Go embeds in
// binaries built inside a checkout.
var (
	Version   = "0.1.0"
	GitCommit = ""
	BuildDate = ""
)

var vcsOnce sync.Once

func commit() string {
	vcsOnce.Do(func() {
		if GitCommit != "" {
			return
		}
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				GitCommit = s.Value
			case "vcs.time":
				if BuildDate == "" {
					BuildDate = s.Value
				}
			}
		}
	})
	return GitCommit
}

// FullVersion returns the version with the short commit appended, if known.
func FullVersion() string {
	v := Version
	if c := commit(); c != "" {
		if len(c) > 7 {
			c = c[:7]
		}
		v += "+" + c
	}
	return v
}

// BuildInfo describes the running binary.
type BuildInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
}

// Build returns the BuildInfo of the running binary.
func Build() BuildInfo {
	return BuildInfo{
		Name:      Name,
		Version:   FullVersion(),
		Commit:    commit(),
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}

// UserAgent returns the value of the Server header sent by the API.
func UserAgent() string {
	return Name + "/" + Version
}
