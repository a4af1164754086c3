// Package migrations applies the embedded archive schemas. Each backend
// keeps its own SQL directory; files run in lexical order and must stay
// idempotent so reruns against a populated archive are safe.
package migrations

import "embed"

//go:embed postgres/*.sql
var PostgresFS embed.FS

//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
