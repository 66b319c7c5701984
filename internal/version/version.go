// Package version records the cnvx module version embedded in model
// snapshot headers.
package version

import "github.com/blang/semver/v4"

// Version of the cnvx module.
var Version = semver.MustParse("0.5.0")
