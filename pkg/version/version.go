package version

import "fmt"

// SchurVersion is the release the binary belongs to. Set at build time
// with -ldflags "-X github.com/operator-framework/schur-solver/pkg/version.SchurVersion=...".
var SchurVersion string

// GitCommit indicates which git commit the binary was built from
var GitCommit string

// String returns a pretty string concatenation of SchurVersion and GitCommit
func String() string {
	return fmt.Sprintf("Schur Version: %s\n   Git commit: %s\n", orUnknown(SchurVersion), orUnknown(GitCommit))
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
