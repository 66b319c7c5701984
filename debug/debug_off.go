//go:build !debug

package debug

// Debug reports whether cnvx was built with the debug tag.
const Debug = false
