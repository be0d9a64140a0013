package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func saveAndRestore() func() {
	v, c := Version, GitCommit
	return func() { Version, GitCommit = v, c }
}

func TestGetVersionInfo_Override(t *testing.T) {
	defer saveAndRestore()()
	Version = "v1.4.0"
	GitCommit = "abc1234"

	info := GetVersionInfo()
	if info.Version != "v1.4.0" {
		t.Errorf("expected v1.4.0, got %q", info.Version)
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("expected abc1234, got %q", info.GitCommit)
	}
	if !info.IsRelease {
		t.Error("expected a release version")
	}
}

func TestGetVersionInfo_NeverEmpty(t *testing.T) {
	defer saveAndRestore()()
	Version = ""
	if GetVersionInfo().Version == "" {
		t.Error("expected a non-empty version")
	}
}

func TestFromBuildInfo(t *testing.T) {
	tests := []struct {
		name    string
		bi      *debug.BuildInfo
		version string
		commit  string
		dirty   bool
	}{
		{
			name: "dependency",
			bi: &debug.BuildInfo{
				Main: debug.Module{Path: "example.com/app", Version: "(devel)"},
				Deps: []*debug.Module{{Path: ModulePath, Version: "v0.3.1"}},
			},
			version: "v0.3.1",
		},
		{
			name: "replaced dependency",
			bi: &debug.BuildInfo{
				Main: debug.Module{Path: "example.com/app"},
				Deps: []*debug.Module{{
					Path:    ModulePath,
					Version: "v0.3.1",
					Replace: &debug.Module{Path: "../apikit", Version: "v0.3.2"},
				}},
			},
			version: "v0.3.2",
		},
		{
			name: "main module",
			bi: &debug.BuildInfo{
				Main: debug.Module{Path: ModulePath, Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			commit: "0123456",
			dirty:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var info Info
			fromBuildInfo(&info, tt.bi)
			if info.Version != tt.version {
				t.Errorf("version: expected %q, got %q", tt.version, info.Version)
			}
			if info.GitCommit != tt.commit {
				t.Errorf("commit: expected %q, got %q", tt.commit, info.GitCommit)
			}
			if info.IsDirty != tt.dirty {
				t.Errorf("dirty: expected %v, got %v", tt.dirty, info.IsDirty)
			}
		})
	}
}

func TestIsRelease(t *testing.T) {
	tests := map[string]bool{
		"v1.0.0":                             true,
		"dev":                                false,
		"v1.1.0-rc.1":                        false,
		"v0.0.0-20240101000000-abcdef123456": false,
		"v1.0.0+dirty":                       false,
	}
	for v, want := range tests {
		if got := isRelease(v); got != want {
			t.Errorf("isRelease(%q) = %v, want %v", v, got, want)
		}
	}
}

func TestGetShortVersion(t *testing.T) {
	defer saveAndRestore()()
	Version = "v2.0.0"
	GitCommit = "deadbee"
	if got := GetShortVersion(); !strings.HasPrefix(got, "v2.0.0-deadbee") {
		t.Errorf("unexpected short version %q", got)
	}
}

func TestUserAgent(t *testing.T) {
	defer saveAndRestore()()
	Version = "v1.0.0"
	if got := UserAgent("billing"); got != "billing apikit/v1.0.0" {
		t.Errorf("unexpected user agent %q", got)
	}
	if got := UserAgent(""); got != "apikit/v1.0.0" {
		t.Errorf("unexpected user agent %q", got)
	}
}
