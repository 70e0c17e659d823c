//go:build tools

// Build-tag-guarded file pinning the stringer tool used to generate
// errkind/kind_string.go, the way tool dependencies are conventionally
// tracked without polluting the normal build.
package rotgset

import (
	_ "golang.org/x/tools/cmd/stringer"
)
