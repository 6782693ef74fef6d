package migrations

import "embed"

// FS contains embedded SQLite migrations for tracker storage.
//
//go:embed *.sql
var FS embed.FS
