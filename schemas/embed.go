// Package schemas ships the default schema bundle embedded in the library,
// so resolution works in deployed binaries regardless of working directory
// or installation layout. The tree is laid out exactly like the filesystem
// tier: {domain}/{version}/{category}/{name}.json.
package schemas

import "embed"

// Bundle is the embedded schema tree.
//
//go:embed bees
var Bundle embed.FS
