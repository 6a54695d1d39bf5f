//go:build !windows

package scanner

import (
	"os"
	"strings"
)

// isProtected reports whether a directory counts as hidden or system.
// Unix has no system flag; dot-prefixed names are hidden.
func isProtected(info os.FileInfo) bool {
	return strings.HasPrefix(info.Name(), ".")
}
