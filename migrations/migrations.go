// Package migrations embeds the ordered SQL migration files (NNN_description.sql).
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
