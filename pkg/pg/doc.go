// Package pg bootstraps the PostgreSQL layer for the notifier: a pgx/v5
// connection pool with startup retries, goose schema migrations routed
// through the application logger, and a health check closure for the HTTP
// server. The heavy lifting happens in pgx and goose; this package
// only wires them to the service configuration.
package pg
