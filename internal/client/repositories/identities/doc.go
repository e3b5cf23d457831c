// Package identities provides the Postgres persistence layer for user
// identities (the "users" table).
//
// The Repository interface is implemented by PostgresRepository over a
// dbx.DBTX, so the same code runs against *sql.DB or inside a transaction
// started with dbx.WithTx. A missing row is reported as common.ErrorNotFound.
package identities
