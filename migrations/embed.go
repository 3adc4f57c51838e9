// Package migrations embeds the schema migrations for every supported driver.
// Each driver reads the subdirectory named after it.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
