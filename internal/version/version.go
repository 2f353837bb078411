package version

import (
	"runtime"
	"time"
)

// Set through -ldflags "-X github.com/MrSnakeDoc/snote/internal/version.Version=..." at release time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = time.Now().Format(time.RFC3339)
	GoVersion = runtime.Version()
)

// String renders the build information on one line, as printed by `snotectl version`.
func String() string {
	return "snote " + Version + " (commit=" + Commit + ", built=" + BuildDate + ", go=" + GoVersion + ")"
}
