// Package migrations embeds the SQL schema migrations. The golang-migrate
// library reads them through the iofs driver when applying migrations on
// startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Version is the schema version migrations are applied up to.
const Version = 1
