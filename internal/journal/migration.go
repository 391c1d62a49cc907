package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/mutker/qosprobe/internal/errors"
	"codeberg.org/mutker/qosprobe/internal/logger"
)

// backupDatabase copies the live database into dir with VACUUM INTO.
func backupDatabase(db *sql.DB, dir string, version int, log logger.Logger) (string, error) {
	if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
		return "", phaseError(ErrSchemaMigrationFailed, "create_backup_dir", dir, err)
	}

	stamp := time.Now().UTC().Format("20060102T150405Z")
	path := filepath.Join(dir, fmt.Sprintf("journal_v%d_%s.db", version, stamp))

	if _, err := db.Exec("VACUUM INTO ?", path); err != nil {
		return "", phaseError(ErrSchemaMigrationFailed, "create_backup", path, err)
	}

	log.Info().Str("path", path).Int("version", version).Msg("Journal backup created")
	return path, nil
}

// ValidateAndUpdateSchema recreates the schema when its version differs from
// SchemaVersion. Records of an older version are backed up, not migrated.
func ValidateAndUpdateSchema(db *sql.DB, backupDir string, log logger.Logger) error {
	version, err := GetSchemaVersion(db)
	if err != nil {
		return errors.New().Wrap(ErrSchemaValidationFailed, err)
	}

	log.Debug().
		Int("version", version).
		Bool("init_db", version == 0).
		Msg("Current journal schema version")

	if version == SchemaVersion {
		return nil
	}

	if version != 0 {
		if _, err := backupDatabase(db, backupDir, version, log); err != nil {
			return err
		}
	}

	err = inTx(db, log, ErrSchemaMigrationFailed, func(tx *sql.Tx) error {
		for _, table := range []string{"records", "schema_versions"} {
			if _, err := tx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
				return phaseError(ErrSchemaMigrationFailed, "drop_table", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return InitSchema(db, log)
}
