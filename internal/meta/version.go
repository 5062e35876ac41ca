package meta

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"
)

// Info describes the build context of the ola binary.
//
// It is filled in at build time by the Go linker. See the vars below for
// more information
type Info struct {
	Version   string
	Build     string
	Branch    string
	BuildTime string
	Platform  string
	GoVersion string
	GoTag     string
}

const unknown = "unknown"

// These will be filled in using the linker -X flag
var (
	// Version as an arbitrary string
	Version string

	// Build is the Git sha from when we are building
	Build string

	// Branch is the Git branch that we are building from
	Branch string

	// BuildTimeUTC is the build time in UTC (year/month/day hour:min:sec)
	BuildTimeUTC string

	// GoTag is the Go build tags, see https://pkg.go.dev/go/build#hdr-Build_Constraints
	GoTag string

	platform = fmt.Sprintf("%s %s", runtime.GOOS, runtime.GOARCH)
)

// GetInfo returns an Info struct populated with the build information.
func GetInfo() Info {
	return Info{
		GoVersion: runtime.Version(),
		Version:   Version,
		Build:     Build,
		Branch:    Branch,
		BuildTime: BuildTimeUTC,
		GoTag:     GoTag,
		Platform:  platform,
	}
}

// String is the one line summary printed by `ola version`.
func (i Info) String() string {
	return fmt.Sprintf("ola %s (%s on %s, built %s) %s %s",
		orUnknown(i.Version),
		orUnknown(i.Build),
		orUnknown(i.Branch),
		orUnknown(i.BuildTime),
		i.GoVersion,
		i.Platform)
}

// Fields is the build info as log fields.
func (i Info) Fields() []zap.Field {
	return []zap.Field{
		zap.String("version", orUnknown(i.Version)),
		zap.String("build", orUnknown(i.Build)),
		zap.String("branch", orUnknown(i.Branch)),
		zap.String("buildTime", orUnknown(i.BuildTime)),
		zap.String("goVersion", i.GoVersion),
		zap.String("goTag", i.GoTag),
		zap.String("platform", i.Platform),
	}
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}

	return s
}
