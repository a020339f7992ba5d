// Package version provides version information for the application,
// including the on-disk index format version so a deployed binary can
// detect an incompatible lexicon/forward-index/barrel layout before
// trying to open it.
package version

import "runtime"

// These variables are set during build time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GoVersion = runtime.Version()
)

// IndexFormatVersion identifies the on-disk shape of the lexicon, forward
// index, and barrel files (field names, shard-routing scheme). Bump it
// whenever a change would make an older index directory unreadable by a
// newer binary, so operators can tell a stale data root from a corrupt one.
const IndexFormatVersion = "1"

// Info returns a map with all version information.
func Info() map[string]string {
	return map[string]string{
		"version":            Version,
		"buildTime":          BuildTime,
		"gitCommit":          GitCommit,
		"goVersion":          GoVersion,
		"indexFormatVersion": IndexFormatVersion,
	}
}
