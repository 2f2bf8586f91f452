// Package migrations embeds the SQL schema applied on startup when POSTGRES_MIGRATE is set.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
