// Package migrations embeds the goose migration scripts for the record
// store, one directory per supported dialect.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS
