// Package migrations ships the SQL schema inside the binaries.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
