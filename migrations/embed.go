// Package migrations ships the schema so binaries and tests do not depend on the working directory.
package migrations

import "embed"

//go:embed *.up.sql
var FS embed.FS
