// Package migrations embeds the SQL schema applied by cmd/migrate.
package migrations

import "embed"

// FS holds the numbered migration files in apply order
//
//go:embed *.sql
var FS embed.FS
