// Package migrations embeds the goose SQL migrations describing the backend
// schema the client binds to.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
