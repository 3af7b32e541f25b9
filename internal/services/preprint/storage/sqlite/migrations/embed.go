package migrations

import "embed"

// FS contains embedded SQLite migrations for preprint storage.
//
//go:embed *.sql
var FS embed.FS
