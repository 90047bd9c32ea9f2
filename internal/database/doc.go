// Package database stores screen snapshots in SQL databases: PostgreSQL through pgx with tern
// migrations, and SQLite through database/sql for single-node installs.
package database
