package bootstrap

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/asdfjk123/renode/core/options"
)

// Set with -ldflags "-X github.com/asdfjk123/renode/core/bootstrap.Version=...".
var (
	Name      = "Renode"
	Version   = ""
	BuildInfo = ""
	BuildType = ""
)

// Info identifies the running binary.
type Info struct {
	Name           string
	Version        string
	Build          string
	BuildType      string
	Platform       string
	RuntimeVersion string
}

// CurrentInfo collects identification from link-time variables and the
// embedded build info. Anything unavailable is left empty.
func CurrentInfo() Info {
	info := Info{
		Name:           Name,
		Version:        Version,
		Build:          BuildInfo,
		BuildType:      BuildType,
		Platform:       runtime.GOOS + "/" + runtime.GOARCH,
		RuntimeVersion: runtime.Version(),
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		if info.Build == "" {
			info.Build = vcsBuild(bi.Settings)
		}
	}
	return info
}

func vcsBuild(settings []debug.BuildSetting) string {
	var rev, at string
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.time":
			at = s.Value
		}
	}
	if len(rev) > 9 {
		rev = rev[:9]
	}
	if rev == "" || at == "" {
		return rev
	}
	return rev + "-" + at
}

// String renders the fixed identification format.
func (i Info) String() string {
	return fmt.Sprintf("%s v%s\n  build: %s\n  build type: %s\n  runtime: %s %s",
		i.Name, i.Version, i.Build, i.BuildType, i.Platform, i.RuntimeVersion)
}

// HandleVersionQuery prints info to w when the version flag is set and reports
// whether the caller should stop.
func HandleVersionQuery(opts options.StartupOptions, w io.Writer, info Info) bool {
	if !opts.Version {
		return false
	}
	fmt.Fprintln(w, info.String())
	return true
}
