package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
)

// ModulePath is the import path of this module.
const ModulePath = "github.com/kbukum/apikit"

var (
	// Version overrides the detected library version when set via -ldflags.
	Version = ""
	// GitCommit overrides the detected VCS revision when set via -ldflags.
	GitCommit = ""
)

// Info describes the library version and the embedding build.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	GoVersion string `json:"go_version"`
	IsRelease bool   `json:"is_release"`
	IsDirty   bool   `json:"is_dirty"`
}

var readBuildInfo = sync.OnceValues(debug.ReadBuildInfo)

// GetVersionInfo returns the library version. Without an -ldflags override
// the version comes from the build's module graph: the main module when
// apikit is built directly, otherwise the apikit dependency entry.
func GetVersionInfo() *Info {
	info := &Info{Version: Version, GitCommit: GitCommit}
	if bi, ok := readBuildInfo(); ok {
		fromBuildInfo(info, bi)
	}
	if info.Version == "" {
		info.Version = "dev"
	}
	info.IsRelease = isRelease(info.Version) && !info.IsDirty
	return info
}

func fromBuildInfo(info *Info, bi *debug.BuildInfo) {
	info.GoVersion = bi.GoVersion
	if info.Version == "" {
		info.Version = moduleVersion(bi)
	}
	if bi.Main.Path != ModulePath {
		return
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = shortCommit(s.Value)
			}
		case "vcs.modified":
			info.IsDirty = s.Value == "true"
		}
	}
}

func moduleVersion(bi *debug.BuildInfo) string {
	if bi.Main.Path == ModulePath {
		if bi.Main.Version == "(devel)" {
			return ""
		}
		return bi.Main.Version
	}
	for _, dep := range bi.Deps {
		if dep.Path != ModulePath {
			continue
		}
		if dep.Replace != nil {
			dep = dep.Replace
		}
		return dep.Version
	}
	return ""
}

func shortCommit(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

func isRelease(v string) bool {
	return v != "dev" && !strings.Contains(v, "-") && !strings.Contains(v, "+dirty")
}

// GetShortVersion returns the version with the commit appended when known.
func GetShortVersion() string {
	info := GetVersionInfo()
	if info.GitCommit == "" {
		return info.Version
	}
	if info.IsDirty {
		return fmt.Sprintf("%s-%s-dirty", info.Version, info.GitCommit)
	}
	return fmt.Sprintf("%s-%s", info.Version, info.GitCommit)
}

// UserAgent returns "product apikit/version", or "apikit/version" for an
// empty product.
func UserAgent(product string) string {
	ua := "apikit/" + GetVersionInfo().Version
	if product == "" {
		return ua
	}
	return product + " " + ua
}
