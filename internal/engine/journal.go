package engine

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

// Attempt is the persisted record of one swap pipeline run. On-chain writes
// are irreversible, so the journal keeps every attempt with its terminal
// state and transaction hash for later inspection.
type Attempt struct {
	AttemptID       string `json:"attempt_id"`
	State           string `json:"state"`
	ChainID         int64  `json:"chain_id"`
	Contract        string `json:"contract"`
	TokenIn         string `json:"token_in"`
	TokenOut        string `json:"token_out"`
	AmountDecimal   string `json:"amount_decimal"`
	AmountBaseUnits string `json:"amount_base_units,omitempty"`
	PoolID          string `json:"pool_id,omitempty"`
	EstimatedOut    string `json:"estimated_out,omitempty"`
	TxHash          string `json:"tx_hash,omitempty"`
	Error           string `json:"error,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

func NewAttempt(chainID int64, contract, tokenIn, tokenOut, amountDecimal string) Attempt {
	now := time.Now().UTC().Format(time.RFC3339)
	return Attempt{
		AttemptID:     NewAttemptID(),
		State:         string(StateIdle),
		ChainID:       chainID,
		Contract:      contract,
		TokenIn:       tokenIn,
		TokenOut:      tokenOut,
		AmountDecimal: amountDecimal,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (a *Attempt) Touch() {
	a.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}

func NewAttemptID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// Journal is the sqlite-backed attempt store, file-locked so concurrent CLI
// invocations do not corrupt each other's writes.
type Journal struct {
	db   *sql.DB
	lock *flock.Flock
}

func OpenJournal(path, lockPath string) (*Journal, error) {
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
		`CREATE TABLE IF NOT EXISTS attempts (
			attempt_id TEXT PRIMARY KEY,
			state TEXT NOT NULL,
			chain_id INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			payload BLOB NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS idx_attempts_state_updated ON attempts(state, updated_at DESC);",
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

func (j *Journal) Save(attempt Attempt) error {
	if j == nil || j.db == nil {
		return nil
	}
	if strings.TrimSpace(attempt.AttemptID) == "" {
		return fmt.Errorf("save attempt: missing attempt id")
	}
	locked, err := j.lock.TryLockContext(context.Background(), 5*time.Second)
	if err != nil {
		return fmt.Errorf("lock journal: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock journal: timeout acquiring lock")
	}
	defer func() { _ = j.lock.Unlock() }()

	payload, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	createdUnix := parseRFC3339Unix(attempt.CreatedAt)
	updatedUnix := parseRFC3339Unix(attempt.UpdatedAt)

	_, err = j.db.Exec(`
		INSERT INTO attempts (attempt_id, state, chain_id, created_at, updated_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(attempt_id) DO UPDATE SET
			state=excluded.state,
			chain_id=excluded.chain_id,
			updated_at=excluded.updated_at,
			payload=excluded.payload
	`, attempt.AttemptID, attempt.State, attempt.ChainID, createdUnix, updatedUnix, payload)
	if err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}

func (j *Journal) Get(attemptID string) (Attempt, error) {
	var payload []byte
	err := j.db.QueryRow("SELECT payload FROM attempts WHERE attempt_id = ?", attemptID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, fmt.Errorf("attempt %s not found", attemptID)
		}
		return Attempt{}, fmt.Errorf("read attempt: %w", err)
	}
	var attempt Attempt
	if err := json.Unmarshal(payload, &attempt); err != nil {
		return Attempt{}, fmt.Errorf("decode attempt: %w", err)
	}
	return attempt, nil
}

func (j *Journal) List(limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.Query("SELECT payload FROM attempts ORDER BY updated_at DESC, attempt_id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	out := []Attempt{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		var attempt Attempt
		if err := json.Unmarshal(payload, &attempt); err != nil {
			return nil, fmt.Errorf("decode attempt: %w", err)
		}
		out = append(out, attempt)
	}
	return out, rows.Err()
}

func parseRFC3339Unix(v string) int64 {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Now().UTC().Unix()
	}
	return t.Unix()
}
