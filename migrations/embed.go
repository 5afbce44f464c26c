// Package migrations holds the goose schema and seed migrations.
package migrations

import "embed"

// FS exposes the SQL migrations. Go migrations register themselves on import.
//
//go:embed *.sql
var FS embed.FS
