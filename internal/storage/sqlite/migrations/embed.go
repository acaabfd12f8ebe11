// Package migrations は SQLite ストアに同梱するマイグレーションSQLです。
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
