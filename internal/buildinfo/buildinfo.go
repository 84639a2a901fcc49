// Package buildinfo carries version identifiers stamped in at link time:
//
//	go build -ldflags "-X tripnav/internal/buildinfo.Version=v1.2.0"
package buildinfo

var (
	Version = "dev"
	Commit  = ""
	BuiltAt = ""
)

// Info returns the stamped identifiers for health and diagnostics payloads.
func Info() map[string]string {
	return map[string]string{
		"version": Version,
		"commit":  Commit,
		"builtAt": BuiltAt,
	}
}
