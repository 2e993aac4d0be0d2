package contracts

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildInfo_String(t *testing.T) {
	tests := []struct {
		name string
		info BuildInfo
		want string
	}{
		{
			name: "unstamped",
			info: BuildInfo{Version: "1.2.0", GitCommit: "unknown", GoVersion: "go1.23.0", Platform: "linux/amd64"},
			want: "WorkPulse v1.2.0 go1.23.0 linux/amd64",
		},
		{
			name: "stamped",
			info: BuildInfo{Version: "1.3.0", GitCommit: "a1b2c3d", GitBranch: "main", GoVersion: "go1.24.3", Platform: "darwin/arm64"},
			want: "WorkPulse v1.3.0 (main@a1b2c3d) go1.24.3 darwin/arm64",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.String())
		})
	}
}

func TestBuild(t *testing.T) {
	info := Build()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, RosterFormat, info.RosterFormat)
}
