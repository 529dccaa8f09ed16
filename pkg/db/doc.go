// Package db opens the PostgreSQL pool used by the job and applies its
// schema migrations.
//
// It wraps [github.com/jackc/pgx/v5/pgxpool] with retrying startup and
// runs migrations with [github.com/pressly/goose/v3] over an embedded
// filesystem.
//
// # Configuration
//
//	DATABASE_CONN_URL           - PostgreSQL connection URL (required)
//	DATABASE_MAX_OPEN_CONNS     - Maximum open connections (default: 10)
//	DATABASE_MIN_CONNS          - Minimum idle connections (default: 0)
//	DATABASE_HEALTHCHECK_PERIOD - Health check interval (default: 1m)
//	DATABASE_MAX_CONN_IDLE_TIME - Maximum connection idle time (default: 5m)
//	DATABASE_MAX_CONN_LIFETIME  - Maximum connection lifetime (default: 30m)
//	DATABASE_RETRY_ATTEMPTS     - Connection attempts (default: 3)
//	DATABASE_RETRY_INTERVAL     - Base retry interval (default: 2s)
//	DATABASE_MIGRATIONS_TABLE   - goose version table (default: emaild_migrations)
//
// # Usage
//
//	pool, err := db.Connect(ctx, cfg.DB, log)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := db.Migrate(ctx, pool, store.Migrations(), cfg.DB.MigrationsTable, log); err != nil {
//		return err
//	}
//
// [WithTx] runs a function inside a transaction that is rolled back on
// error or panic:
//
//	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
//		_, err := tx.Exec(ctx, "UPDATE articles SET send_email = true WHERE id = $1", id)
//		return err
//	})
//
// Errors are wrapped with [errors.Join] around the sentinels
// [ErrFailedToParseDBConfig], [ErrFailedToOpenDBConnection],
// [ErrHealthcheckFailed], [ErrSetDialect] and [ErrApplyMigrations].
package db
