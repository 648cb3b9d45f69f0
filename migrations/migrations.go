// Package migrations embeds the SQL schema migrations for golang-migrate
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
