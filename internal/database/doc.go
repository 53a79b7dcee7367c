// Package database provides SQLite-based persistence for analysis history.
//
// Every successful analysis can be stored so that later invocations can
// list previously analyzed pages and compare a fresh analysis against a
// stored one. Full results are stored as JSON alongside a few indexed
// metadata columns, which keeps the schema stable while the result
// structure evolves.
package database
