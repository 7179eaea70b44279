// Package migrations carries the goose SQL migrations, embedded so the
// server binary can apply them without a checkout on disk.
package migrations

import "embed"

// FS holds the embedded migration files.
//
//go:embed *.sql
var FS embed.FS
