package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// saveBuildInfo restores the package-level build variables after a test
// mutates them.
func saveBuildInfo(t *testing.T) {
	t.Helper()
	v, c, d := Version, GitCommit, BuildDate
	t.Cleanup(func() { SetBuildInfo(v, c, d) })
}

func TestGetInfo(t *testing.T) {
	saveBuildInfo(t)
	SetBuildInfo("1.2.3", "abcdef1234567890", "2026-01-15")

	info, err := GetInfo()
	require.NoError(t, err)

	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "abcdef1234567890", info.GitCommit)
	assert.Equal(t, "2026-01-15", info.BuildDate)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
	require.NotNil(t, info.SemVer)
	assert.Equal(t, uint64(1), info.SemVer.Major())
}

func TestGetInfo_InvalidVersion(t *testing.T) {
	saveBuildInfo(t)
	SetBuildInfo("not-a-version", "unknown", "unknown")

	_, err := GetInfo()
	assert.Error(t, err)
}

func TestGetFormattedVersion(t *testing.T) {
	tests := []struct {
		name      string
		version   string
		gitCommit string
		buildDate string
		want      string
	}{
		{
			name:      "development build shows only the version",
			version:   "0.1.0",
			gitCommit: "unknown",
			buildDate: "unknown",
			want:      "ocrpipe v0.1.0",
		},
		{
			name:      "release build shows short commit and date",
			version:   "0.1.0",
			gitCommit: "abcdef1234567890",
			buildDate: "2026-01-15",
			want:      "ocrpipe v0.1.0, commit abcdef1, built 2026-01-15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saveBuildInfo(t)
			SetBuildInfo(tt.version, tt.gitCommit, tt.buildDate)
			assert.Equal(t, tt.want, GetFormattedVersion())
		})
	}
}

func TestValidateVersion(t *testing.T) {
	saveBuildInfo(t)

	SetBuildInfo("1.0.0-rc.1", "unknown", "unknown")
	assert.NoError(t, ValidateVersion())
	assert.True(t, IsPrerelease())

	SetBuildInfo("1.0.0", "unknown", "unknown")
	assert.False(t, IsPrerelease())

	SetBuildInfo("garbage", "unknown", "unknown")
	assert.Error(t, ValidateVersion())
}

func TestIsDevelopment(t *testing.T) {
	saveBuildInfo(t)

	SetBuildInfo("0.1.0", "unknown", "unknown")
	assert.True(t, IsDevelopment())

	SetBuildInfo("0.1.0", "abc123", "2026-01-15")
	assert.False(t, IsDevelopment())
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		name      string
		v1        string
		v2        string
		want      int
		wantError bool
	}{
		{name: "less than", v1: "1.0.0", v2: "2.0.0", want: -1},
		{name: "equal", v1: "1.2.3", v2: "1.2.3", want: 0},
		{name: "greater than", v1: "1.10.0", v2: "1.9.9", want: 1},
		{name: "invalid first version", v1: "bogus", v2: "1.0.0", wantError: true},
		{name: "invalid second version", v1: "1.0.0", v2: "bogus", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CompareVersions(tt.v1, tt.v2)

			if tt.wantError {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
