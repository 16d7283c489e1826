package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"btcchart/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder keeps the fetch cycle journal in a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fetch_cycles (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			generation  INTEGER NOT NULL,
			currencies  TEXT,
			range_days  INTEGER,
			status      TEXT NOT NULL,
			error       TEXT,
			points      INTEGER,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_ts ON fetch_cycles(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", truncate(s, 40), err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordCycle(evt *CycleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := evt.At
	if at.IsZero() {
		at = time.Now()
	}
	codes := make([]string, len(evt.Currencies))
	for i, c := range evt.Currencies {
		codes[i] = string(c)
	}

	_, err := r.db.Exec(`INSERT INTO fetch_cycles
		(timestamp, generation, currencies, range_days, status, error, points, duration_ms)
		VALUES (?,?,?,?,?,?,?,?)`,
		at.UnixMilli(), int64(evt.Generation), strings.Join(codes, ","), int(evt.Range),
		string(evt.Status), evt.Error, evt.Points, evt.Duration.Milliseconds(),
	)
	return err
}

// RecentCycles returns the newest events first.
func (r *SQLiteRecorder) RecentCycles(limit int) ([]CycleEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, generation, currencies, range_days, status, error, points, duration_ms
		FROM fetch_cycles ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var out []CycleEvent
	for rows.Next() {
		var (
			ts, gen, durMs int64
			codes, errMsg  string
			days, points   int
			status         string
		)
		if err := rows.Scan(&ts, &gen, &codes, &days, &status, &errMsg, &points, &durMs); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		evt := CycleEvent{
			Generation: uint64(gen),
			Range:      model.TimeRange(days),
			Status:     CycleStatus(status),
			Error:      errMsg,
			Points:     points,
			Duration:   time.Duration(durMs) * time.Millisecond,
			At:         time.UnixMilli(ts),
		}
		if codes != "" {
			for _, c := range strings.Split(codes, ",") {
				evt.Currencies = append(evt.Currencies, model.Currency(c))
			}
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
