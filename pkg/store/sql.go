package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harrisonrobin/gravity/pkg/model"
)

const createSlots = `CREATE TABLE IF NOT EXISTS slots (
	name TEXT PRIMARY KEY,
	data TEXT NOT NULL,
	updated_at BIGINT NOT NULL
)`

// Both SQLite (3.24+) and PostgreSQL accept this upsert form.
const (
	selectSlot = `SELECT data FROM slots WHERE name = $1`
	upsertSlot = `INSERT INTO slots (name, data, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`
)

// SQLStore keeps the collection as a JSON document in a one-row-per-slot table.
type SQLStore struct {
	db   *sql.DB
	slot string
}

// OpenSQLite opens (creating if needed) a SQLite database at path.
func OpenSQLite(path, slot string) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return newSQLStore(db, slot)
}

// OpenPostgres connects to a PostgreSQL database.
func OpenPostgres(dsn, slot string) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres store requires a dsn")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return newSQLStore(db, slot)
}

func newSQLStore(db *sql.DB, slot string) (*SQLStore, error) {
	if _, err := db.Exec(createSlots); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLStore{db: db, slot: slot}, nil
}

func (s *SQLStore) Load(ctx context.Context) ([]model.Task, error) {
	var data string
	err := s.db.QueryRowContext(ctx, selectSlot, s.slot).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return []model.Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %s: %w", s.slot, err)
	}

	tasks, err := decodeTasks([]byte(data))
	if err != nil {
		return tasks, fmt.Errorf("slot %s: %w", s.slot, err)
	}
	return tasks, nil
}

func (s *SQLStore) Save(ctx context.Context, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, upsertSlot, s.slot, string(data), time.Now().Unix()); err != nil {
		return fmt.Errorf("save slot %s: %w", s.slot, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
