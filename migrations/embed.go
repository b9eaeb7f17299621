// Package migrations embeds the SQL schema migrations so the server and the
// migrate tool can apply them without a checkout on disk.
package migrations

import "embed"

// FS holds every *.up.sql and *.down.sql file of this directory
//
//go:embed *.sql
var FS embed.FS
