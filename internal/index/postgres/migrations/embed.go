// Package migrations embeds the PostgreSQL schema for the search index.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
