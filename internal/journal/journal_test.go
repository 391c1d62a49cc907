package journal_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/qosprobe/internal/errors"
	"codeberg.org/mutker/qosprobe/internal/journal"
	"codeberg.org/mutker/qosprobe/internal/logger"
	"codeberg.org/mutker/qosprobe/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) journal.Config {
	t.Helper()

	dir := t.TempDir()
	return journal.Config{
		DBPath:       filepath.Join(dir, "journal.db"),
		BackupDir:    filepath.Join(dir, "backups"),
		BatchSize:    4,
		BatchTimeout: 60,
		Enabled:      true,
	}
}

func TestDisabledJournalIsNoop(t *testing.T) {
	cfg := testConfig(t)
	cfg.Enabled = false

	j, err := journal.NewService(cfg, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, j.Write(context.Background(), record.New("Latency", "23.4", "")))
	n, err := j.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, j.Close())

	_, err = os.Stat(cfg.DBPath)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteAndCount(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	j, err := journal.NewService(cfg, logger.Nop())
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		require.NoError(t, j.Write(ctx, record.New("Jitter", "2.0", "")))
	}
	require.NoError(t, j.Write(ctx, record.New("UserScore", "4", "slow page")))

	// Count flushes the partially filled batch
	n, err := j.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	require.NoError(t, j.Close())

	// Records survive a reopen
	j, err = journal.NewService(cfg, logger.Nop())
	require.NoError(t, err)
	defer j.Close()

	n, err = j.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestUnbatchedWrite(t *testing.T) {
	cfg := testConfig(t)
	cfg.BatchSize = 1
	cfg.BatchTimeout = 0

	j, err := journal.NewService(cfg, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, j.Write(context.Background(), record.New("Latency", "-1.0", "")))
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", cfg.DBPath)
	require.NoError(t, err)
	defer db.Close()

	var name, value string
	var comment sql.NullString
	require.NoError(t, db.QueryRow(`SELECT name, value, comment FROM records`).Scan(&name, &value, &comment))
	assert.Equal(t, "Latency", name)
	assert.Equal(t, "-1.0", value)
	assert.False(t, comment.Valid)
}

func TestWriteRejectsUnnamedRecord(t *testing.T) {
	j, err := journal.NewService(testConfig(t), logger.Nop())
	require.NoError(t, err)
	defer j.Close()

	err = j.Write(context.Background(), record.MetricRecord{Timestamp: time.Now(), Value: "1"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, journal.ErrInvalidEntry))
}

func TestWriteHonoursCancelledContext(t *testing.T) {
	j, err := journal.NewService(testConfig(t), logger.Nop())
	require.NoError(t, err)
	defer j.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = j.Write(ctx, record.New("Latency", "1.0", ""))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSchemaMismatchBacksUpAndRecreates(t *testing.T) {
	cfg := testConfig(t)

	db, err := sql.Open("sqlite3", cfg.DBPath)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE schema_versions (version INTEGER PRIMARY KEY, applied_at TEXT NOT NULL);
		INSERT INTO schema_versions (version, applied_at) VALUES (99, datetime('now'));
		CREATE TABLE records (legacy TEXT);`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	j, err := journal.NewService(cfg, logger.Nop())
	require.NoError(t, err)

	backups, err := filepath.Glob(filepath.Join(cfg.BackupDir, "journal_v99_*.db"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)

	require.NoError(t, j.Write(context.Background(), record.New("Latency", "12.0", "")))
	n, err := j.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, j.Close())

	db, err = sql.Open("sqlite3", cfg.DBPath)
	require.NoError(t, err)
	defer db.Close()

	version, err := journal.GetSchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, journal.SchemaVersion, version)
}

func TestFailingFlushesDropBacklog(t *testing.T) {
	cfg := testConfig(t)
	cfg.BatchSize = 2
	cfg.BatchTimeout = 0
	ctx := context.Background()

	j, err := journal.NewService(cfg, logger.Nop())
	require.NoError(t, err)
	defer j.Close()

	db, err := sql.Open("sqlite3", cfg.DBPath)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`DROP TABLE records`)
	require.NoError(t, err)

	var failed int
	for range 20 {
		if err := j.Write(ctx, record.New("Latency", "1.0", "")); err != nil {
			failed++
		}
	}
	assert.Equal(t, 10, failed)

	_, err = db.Exec(`CREATE TABLE records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		recorded_at INTEGER NOT NULL,
		name TEXT NOT NULL,
		value TEXT NOT NULL,
		comment TEXT)`)
	require.NoError(t, err)

	// Two backlogs of eight were dropped, the last four are still pending
	n, err := j.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, journal.DefaultConfig().Validate())
	assert.Error(t, journal.Config{Enabled: true}.Validate())
	assert.Error(t, journal.Config{BatchSize: -1}.Validate())
}
