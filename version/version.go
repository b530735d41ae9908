// Package version carries build metadata injected via -ldflags. It also
// feeds the outbound User-Agent of the provider transport.
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"
)

var (
	// gitVersion is the semantic version, vMAJOR.MINOR.PATCH[-PRERELEASE].
	gitVersion = "v0.0.0-dev"
	// buildDate is the ISO8601 build timestamp.
	buildDate = "1970-01-01T00:00:00Z"
	// gitCommit is the output of `git rev-parse HEAD`.
	gitCommit = ""
	// gitTreeState is "clean" or "dirty".
	gitTreeState = ""
)

type Info struct {
	GitVersion   string `json:"gitVersion"`
	GitCommit    string `json:"gitCommit,omitempty"`
	GitTreeState string `json:"gitTreeState,omitempty"`
	BuildDate    string `json:"buildDate"`
	GoVersion    string `json:"goVersion"`
	Platform     string `json:"platform"`
}

func (info Info) String() string {
	if info.GitTreeState == "dirty" {
		return info.GitVersion + "-dirty"
	}
	return info.GitVersion
}

func (info Info) ToJSON() (string, error) {
	s, err := json.Marshal(info)
	if err != nil {
		return "", fmt.Errorf("failed to marshal version info: %w", err)
	}
	return string(s), nil
}

func Get() Info {
	return Info{
		GitVersion:   gitVersion,
		GitCommit:    gitCommit,
		GitTreeState: gitTreeState,
		BuildDate:    buildDate,
		GoVersion:    runtime.Version(),
		Platform:     fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// Short returns the bare version number for User-Agent strings.
func Short() string {
	v := strings.TrimPrefix(gitVersion, "v")
	if i := strings.IndexAny(v, "-+"); i > 0 {
		v = v[:i]
	}
	if v == "" {
		return "0"
	}
	return v
}
