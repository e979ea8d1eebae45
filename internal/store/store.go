// Package store keeps a local journal of executed operations so the history
// command can reconstruct what the plugin did on-chain and with what outcome.
package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// Entry is one journaled operation. Payload holds the operation's full result
// record as JSON.
type Entry struct {
	ID        string          `json:"id"`
	Operation string          `json:"operation"`
	Pool      string          `json:"pool,omitempty"`
	Success   bool            `json:"success"`
	TxHash    string          `json:"tx_hash,omitempty"`
	ChainID   int64           `json:"chain_id"`
	CreatedAt string          `json:"created_at"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type Journal struct {
	db   *sql.DB
	lock *flock.Flock
}

func Open(path, lockPath string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create journal lock directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal sqlite: %w", err)
	}

	queries := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		`CREATE TABLE IF NOT EXISTS operations (
			id TEXT PRIMARY KEY,
			operation TEXT NOT NULL,
			pool TEXT NOT NULL DEFAULT '',
			success INTEGER NOT NULL,
			tx_hash TEXT NOT NULL DEFAULT '',
			chain_id INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			payload BLOB
		);`,
		"CREATE INDEX IF NOT EXISTS idx_operations_created ON operations(created_at DESC);",
		"CREATE INDEX IF NOT EXISTS idx_operations_op_created ON operations(operation, created_at DESC);",
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init journal schema: %w", err)
		}
	}
	return &Journal{db: db, lock: flock.New(lockPath)}, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record journals one operation outcome. The result is marshaled into the
// payload column; a missing ID is generated.
func (j *Journal) Record(operation, pool string, chainID int64, success bool, txHash string, result any) error {
	if strings.TrimSpace(operation) == "" {
		return fmt.Errorf("record operation: missing operation name")
	}
	locked, err := j.lock.TryLockContext(context.Background(), 5*time.Second)
	if err != nil {
		return fmt.Errorf("lock journal: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock journal: timeout acquiring lock")
	}
	defer func() { _ = j.lock.Unlock() }()

	var payload []byte
	if result != nil {
		payload, err = json.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshal operation result: %w", err)
		}
	}
	_, err = j.db.Exec(`
		INSERT INTO operations (id, operation, pool, success, tx_hash, chain_id, created_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, newEntryID(), operation, pool, boolInt(success), txHash, chainID, time.Now().UTC().Unix(), payload)
	if err != nil {
		return fmt.Errorf("record operation: %w", err)
	}
	return nil
}

// List returns the most recent entries, optionally filtered by operation name.
func (j *Journal) List(operation string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	var (
		rows *sql.Rows
		err  error
	)
	if strings.TrimSpace(operation) == "" {
		rows, err = j.db.Query(`
			SELECT id, operation, pool, success, tx_hash, chain_id, created_at, payload
			FROM operations ORDER BY created_at DESC, id LIMIT ?`, limit)
	} else {
		rows, err = j.db.Query(`
			SELECT id, operation, pool, success, tx_hash, chain_id, created_at, payload
			FROM operations WHERE operation = ? ORDER BY created_at DESC, id LIMIT ?`, operation, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			entry   Entry
			success int
			created int64
			payload []byte
		)
		if err := rows.Scan(&entry.ID, &entry.Operation, &entry.Pool, &success, &entry.TxHash, &entry.ChainID, &created, &payload); err != nil {
			return nil, fmt.Errorf("scan operation row: %w", err)
		}
		entry.Success = success != 0
		entry.CreatedAt = time.Unix(created, 0).UTC().Format(time.RFC3339)
		entry.Payload = payload
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operation rows: %w", err)
	}
	return entries, nil
}

// Get returns one entry by ID.
func (j *Journal) Get(id string) (Entry, error) {
	row := j.db.QueryRow(`
		SELECT id, operation, pool, success, tx_hash, chain_id, created_at, payload
		FROM operations WHERE id = ?`, id)
	var (
		entry   Entry
		success int
		created int64
		payload []byte
	)
	err := row.Scan(&entry.ID, &entry.Operation, &entry.Pool, &success, &entry.TxHash, &entry.ChainID, &created, &payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, fmt.Errorf("operation not found: %s", id)
		}
		return Entry{}, fmt.Errorf("read operation: %w", err)
	}
	entry.Success = success != 0
	entry.CreatedAt = time.Unix(created, 0).UTC().Format(time.RFC3339)
	entry.Payload = payload
	return entry, nil
}

func newEntryID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("op-%d", time.Now().UnixNano())
	}
	return "op-" + hex.EncodeToString(buf)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
