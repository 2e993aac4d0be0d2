package contracts

import (
	"fmt"
	"runtime"
)

// Stamped by build.go through -ldflags "-X workpulse/pkg/contracts.<Name>=...".
// They must stay string variables for -X to take effect.
var (
	Version   = "1.2.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

// RosterFormat names the column layout the importers accept
const RosterFormat = "v1"

// BuildInfo describes the running binary
type BuildInfo struct {
	Version      string `json:"version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GitBranch    string `json:"git_branch"`
	GoVersion    string `json:"go_version"`
	Platform     string `json:"platform"`
	RosterFormat string `json:"roster_format"`
}

// Build reports the stamped build metadata plus the runtime platform
func Build() BuildInfo {
	return BuildInfo{
		Version:      Version,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GitBranch:    GitBranch,
		GoVersion:    runtime.Version(),
		Platform:     runtime.GOOS + "/" + runtime.GOARCH,
		RosterFormat: RosterFormat,
	}
}

// String renders the one-line form printed by "workpulse version"
func (b BuildInfo) String() string {
	s := "WorkPulse v" + b.Version
	if b.GitCommit != "unknown" && b.GitCommit != "" {
		s += fmt.Sprintf(" (%s@%s)", b.GitBranch, b.GitCommit)
	}
	return fmt.Sprintf("%s %s %s", s, b.GoVersion, b.Platform)
}
