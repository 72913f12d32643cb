package tracker

// createLedgerSQL is the DDL for the migration ledger. The filename is
// the primary key and applied_at is set once at insert time, never
// updated; the runner only ever inserts rows.
const createLedgerSQL = `CREATE TABLE IF NOT EXISTS schema_migrations (
    filename    VARCHAR(255) NOT NULL PRIMARY KEY,
    applied_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
