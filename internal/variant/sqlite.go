package variant

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteStore is a durable allocation table so variant assignments survive
// process restarts. The partial unique index is the mutual-exclusion contract.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the allocation database at the given path and
// configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "variant: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "variant: exec %s", pragma)
		}
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS variant_usages (
	id          TEXT PRIMARY KEY,
	field_key   TEXT NOT NULL,
	variant_id  TEXT NOT NULL,
	worker_id   TEXT NOT NULL,
	assigned_at DATETIME NOT NULL DEFAULT (datetime('now')),
	status      TEXT NOT NULL DEFAULT 'assigned'
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_usages_active
	ON variant_usages(field_key, variant_id) WHERE status = 'assigned';
CREATE INDEX IF NOT EXISTS idx_usages_worker ON variant_usages(worker_id);
CREATE INDEX IF NOT EXISTS idx_usages_field ON variant_usages(field_key);
`

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(sqliteMigration)
	return eris.Wrap(err, "variant: migrate")
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Assign(fieldKey, variantID, workerID string) bool {
	// Same contract as MemoryStore: the worker's prior holding is released
	// up front and stays released even when the requested variant turns out
	// to be taken.
	if _, err := s.db.Exec(
		`UPDATE variant_usages SET status = 'released' WHERE worker_id = ? AND status = 'assigned'`,
		workerID,
	); err != nil {
		zap.L().Error("variant: release prior", zap.Error(err))
		return false
	}

	if _, err := s.db.Exec(
		`INSERT INTO variant_usages (id, field_key, variant_id, worker_id, assigned_at, status)
		 VALUES (?, ?, ?, ?, ?, 'assigned')`,
		uuid.New().String(), fieldKey, variantID, workerID, time.Now().UTC(),
	); err != nil {
		// The partial unique index rejects the insert while another worker
		// holds the variant.
		return false
	}
	return true
}

func (s *SQLiteStore) Release(fieldKey, workerID string) {
	if _, err := s.db.Exec(
		`UPDATE variant_usages SET status = 'released'
		 WHERE worker_id = ? AND field_key = ? AND status = 'assigned'`,
		workerID, fieldKey,
	); err != nil {
		zap.L().Error("variant: release", zap.Error(err))
	}
}

func (s *SQLiteStore) InUseBy(fieldKey, variantID string) string {
	var holder string
	err := s.db.QueryRow(
		`SELECT worker_id FROM variant_usages WHERE field_key = ? AND variant_id = ? AND status = 'assigned'`,
		fieldKey, variantID,
	).Scan(&holder)
	if err != nil {
		if err != sql.ErrNoRows {
			zap.L().Error("variant: in_use_by", zap.Error(err))
		}
		return ""
	}
	return holder
}

func (s *SQLiteStore) ListAssigned(fieldKey string) []Usage {
	rows, err := s.db.Query(
		`SELECT field_key, variant_id, worker_id, assigned_at, status
		 FROM variant_usages WHERE field_key = ? AND status = 'assigned'`,
		fieldKey,
	)
	if err != nil {
		zap.L().Error("variant: list assigned", zap.Error(err))
		return nil
	}
	defer rows.Close()

	var out []Usage
	for rows.Next() {
		var u Usage
		if err := rows.Scan(&u.FieldKey, &u.VariantID, &u.WorkerID, &u.AssignedAt, &u.Status); err != nil {
			zap.L().Error("variant: scan usage", zap.Error(err))
			continue
		}
		out = append(out, u)
	}
	return out
}
