package journal

import (
	"database/sql"

	"codeberg.org/mutker/qosprobe/internal/errors"
	"codeberg.org/mutker/qosprobe/internal/logger"
)

const (
	SchemaVersion = 1

	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS records (
	       id          INTEGER PRIMARY KEY AUTOINCREMENT,
	       recorded_at INTEGER NOT NULL CHECK (typeof(recorded_at) = 'integer'),
	       name        TEXT NOT NULL,
	       value       TEXT NOT NULL,
	       comment     TEXT
	   );
	   CREATE INDEX IF NOT EXISTS records_name_idx ON records (name, recorded_at);`

	recordVersionSQL = `INSERT INTO schema_versions (version, applied_at) VALUES (?, datetime('now'))`

	latestVersionSQL = `SELECT version FROM schema_versions ORDER BY version DESC LIMIT 1`

	tableExistsSQL = `SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?)`

	insertRecordSQL = `INSERT INTO records (recorded_at, name, value, comment) VALUES (?, ?, ?, ?)`

	countRecordsSQL = `SELECT COUNT(*) FROM records`
)

// inTx runs fn in a transaction that is rolled back unless fn succeeds.
func inTx(db *sql.DB, log logger.Logger, code errors.ErrorCode, fn func(*sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.New().Wrap(code, err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Debug().Err(rbErr).Msg("Failed to roll back journal transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.New().Wrap(code, err)
	}
	return nil
}

// InitSchema creates the tables and stamps them with SchemaVersion.
func InitSchema(db *sql.DB, log logger.Logger) error {
	log.Debug().Msg("Creating journal database...")

	err := inTx(db, log, ErrSchemaInitFailed, func(tx *sql.Tx) error {
		if _, err := tx.Exec(createTablesSQL); err != nil {
			return phaseError(ErrSchemaInitFailed, "create_tables", "", err)
		}
		if _, err := tx.Exec(recordVersionSQL, SchemaVersion); err != nil {
			return phaseError(ErrSchemaInitFailed, "record_version", "", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Int("version", SchemaVersion).Msg("Journal schema initialized")
	return nil
}

// GetSchemaVersion returns the stamped schema version, 0 for a new database
func GetSchemaVersion(db *sql.DB) (int, error) {
	exists, err := TableExists(db, "schema_versions")
	if err != nil || !exists {
		return 0, err
	}

	var version int
	err = db.QueryRow(latestVersionSQL).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, nil
	case err != nil:
		return 0, phaseError(ErrSchemaValidationFailed, "get_version", "", err)
	}
	return version, nil
}

func TableExists(db *sql.DB, table string) (bool, error) {
	var exists bool
	if err := db.QueryRow(tableExistsSQL, table).Scan(&exists); err != nil {
		return false, phaseError(ErrSchemaValidationFailed, "check_table_exists", table, err)
	}
	return exists, nil
}
