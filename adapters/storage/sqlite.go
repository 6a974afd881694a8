package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"catering-finance/core/determinism"
	"catering-finance/core/rules"
	"catering-finance/core/types"
	"catering-finance/internal/errors"
)

const schemaV1 = `
CREATE TABLE IF NOT EXISTS rule_snapshots (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	hash       TEXT NOT NULL UNIQUE,
	rules_json TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_created ON rule_snapshots(created_at);

CREATE TABLE IF NOT EXISTS financial_records (
	id          TEXT PRIMARY KEY,
	snapshot_id TEXT NOT NULL REFERENCES rule_snapshots(id),
	event_ref   TEXT NOT NULL DEFAULT '',
	input_json  TEXT NOT NULL,
	result_json TEXT NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_snapshot ON financial_records(snapshot_id, created_at);
`

// NewDB opens a SQLite database at the given path with recommended pragmas
// and runs the schema migration.
func NewDB(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Storage("open database", err)
	}

	// single writer
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, errors.Storage("migrate schema", err)
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	_, err := db.ExecContext(context.Background(), schemaV1)
	return err
}

// SQLiteStore is the durable storage backend
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) a store at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := NewDB(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Open returns the store for a backend
func Open(backend Backend, path string) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite, "":
		return NewSQLiteStore(path)
	default:
		return nil, errors.Newf(errors.TypeNotSupported, "unknown storage backend %q", backend)
	}
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, name string, cfg *rules.Configuration) (*Snapshot, error) {
	if cfg == nil {
		return nil, errors.Input("snapshot has no rule document")
	}
	data, err := determinism.CanonicalJSON(cfg)
	if err != nil {
		return nil, errors.Internal("failed to encode rule document", err)
	}
	hash := determinism.ComputeHash(data).Hex()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Storage("begin snapshot", err)
	}
	defer tx.Rollback()

	existing, err := scanSnapshot(tx.QueryRowContext(ctx, selectSnapshot+` WHERE hash = ?`, hash))
	if err == nil {
		return existing, nil
	}
	if !errors.IsType(err, errors.TypeNotFound) {
		return nil, err
	}

	snap := &Snapshot{
		ID:        uuid.New().String(),
		Name:      name,
		Hash:      hash,
		Rules:     cfg.Clone(),
		CreatedAt: time.Now().UTC(),
	}
	const q = `INSERT INTO rule_snapshots (id, name, hash, rules_json, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q, snap.ID, snap.Name, snap.Hash, string(data), snap.CreatedAt.UnixNano()); err != nil {
		return nil, errors.Storage("save snapshot", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Storage("commit snapshot", err)
	}
	return snap, nil
}

const selectSnapshot = `SELECT id, name, hash, rules_json, created_at FROM rule_snapshots`

func (s *SQLiteStore) GetSnapshot(ctx context.Context, id string) (*Snapshot, error) {
	snap, err := scanSnapshot(s.db.QueryRowContext(ctx, selectSnapshot+` WHERE id = ?`, id))
	if errors.IsType(err, errors.TypeNotFound) {
		return nil, errors.NotFound("snapshot", id)
	}
	return snap, err
}

func (s *SQLiteStore) LatestSnapshot(ctx context.Context) (*Snapshot, error) {
	snap, err := scanSnapshot(s.db.QueryRowContext(ctx, selectSnapshot+` ORDER BY created_at DESC, rowid DESC LIMIT 1`))
	if errors.IsType(err, errors.TypeNotFound) {
		return nil, errors.NotFound("snapshot", "latest")
	}
	return snap, err
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context, filter *ListFilter) ([]*Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, selectSnapshot+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, filter.limit())
	if err != nil {
		return nil, errors.Storage("list snapshots", err)
	}
	defer rows.Close()

	var list []*Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("list snapshots", err)
	}
	return list, nil
}

func (s *SQLiteStore) SaveRecord(ctx context.Context, rec *Record) error {
	if err := prepareRecord(rec); err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	input, err := json.Marshal(rec.Input)
	if err != nil {
		return errors.Internal("failed to encode event input", err)
	}
	result, err := json.Marshal(rec.Result)
	if err != nil {
		return errors.Internal("failed to encode result", err)
	}

	const q = `INSERT INTO financial_records (id, snapshot_id, event_ref, input_json, result_json, created_at)
VALUES (?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, q, rec.ID, rec.SnapshotID, rec.EventRef, string(input), string(result), rec.CreatedAt.UnixNano())
	if err != nil {
		if _, lookup := s.GetSnapshot(ctx, rec.SnapshotID); errors.IsType(lookup, errors.TypeNotFound) {
			return lookup
		}
		return errors.Storage("save record", err)
	}
	return nil
}

const selectRecord = `SELECT id, snapshot_id, event_ref, input_json, result_json, created_at FROM financial_records`

func (s *SQLiteStore) GetRecord(ctx context.Context, id string) (*Record, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx, selectRecord+` WHERE id = ?`, id))
	if errors.IsType(err, errors.TypeNotFound) {
		return nil, errors.NotFound("record", id)
	}
	return rec, err
}

func (s *SQLiteStore) ListRecords(ctx context.Context, snapshotID string, filter *ListFilter) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, selectRecord+` WHERE snapshot_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		snapshotID, filter.limit())
	if err != nil {
		return nil, errors.Storage("list records", err)
	}
	defer rows.Close()

	var list []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("list records", err)
	}
	return list, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*Snapshot, error) {
	var (
		snap    Snapshot
		data    string
		created int64
	)
	if err := row.Scan(&snap.ID, &snap.Name, &snap.Hash, &data, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("snapshot", "")
		}
		return nil, errors.Storage("read snapshot", err)
	}

	var cfg rules.Configuration
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return nil, errors.Storage("decode snapshot "+snap.ID, err)
	}
	snap.Rules = &cfg
	snap.CreatedAt = time.Unix(0, created).UTC()
	return &snap, nil
}

func scanRecord(row scanner) (*Record, error) {
	var (
		rec           Record
		input, result string
		created       int64
	)
	if err := row.Scan(&rec.ID, &rec.SnapshotID, &rec.EventRef, &input, &result, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("record", "")
		}
		return nil, errors.Storage("read record", err)
	}

	if err := json.Unmarshal([]byte(input), &rec.Input); err != nil {
		return nil, errors.Storage("decode record input "+rec.ID, err)
	}
	rec.Result = new(types.EventFinancials)
	if err := json.Unmarshal([]byte(result), rec.Result); err != nil {
		return nil, errors.Storage("decode record result "+rec.ID, err)
	}
	rec.CreatedAt = time.Unix(0, created).UTC()
	return &rec, nil
}
