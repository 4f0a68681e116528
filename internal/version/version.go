package version

import (
	"runtime"
	"time"
)

// Set at build time with -ldflags "-X github.com/sekawan-grup/raya/internal/version.Version=...".
var (
	Version   = "dev"                           // ex: v1.2.0
	Commit    = "none"                          // ex: 9f3c2ab
	BuildDate = time.Now().Format(time.RFC3339) // ex: 2026-03-02T09:15:00Z
	GoVersion = runtime.Version()
)

// UserAgent is sent by the back office client on every API call.
func UserAgent() string {
	return "raya-admin/" + Version + " (" + runtime.GOOS + "; " + GoVersion + ")"
}
