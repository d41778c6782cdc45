// Package migrations embeds the SQL schema of the orphan ledger.
package migrations

import "embed"

// FS holds the *.sql files, applied in name order.
//
//go:embed *.sql
var FS embed.FS
