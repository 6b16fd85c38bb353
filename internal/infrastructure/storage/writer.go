// Package storage - sqlite-архив сессий моста: одна строка на запуск и по
// строке на каждую выполненную команду.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var ErrArchiveClosed = errors.New("archive closed")

// Session - запись о запуске моста.
type Session struct {
	ID        string     `json:"id"`
	PID       int        `json:"pid"`
	StartedAt time.Time  `json:"started_at"`
	StartTick uint64     `json:"start_tick"`
	Version   string     `json:"version"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	EndTick   *uint64    `json:"end_tick,omitempty"`
}

// CommandEntry - одна выполненная команда.
type CommandEntry struct {
	SessionID string    `json:"session_id"`
	Seq       int64     `json:"seq"`
	Tick      uint64    `json:"tick"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Failure   bool      `json:"failure"`
	Debug     string    `json:"debug"`
	Args      string    `json:"args,omitempty"` // JSON
	CreatedAt time.Time `json:"created_at"`
}

type Archive struct {
	db  *sql.DB
	seq map[string]int64
}

// Open открывает (или создаёт) архив и прогоняет миграции.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	// Писатель в sqlite всегда один.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	a := &Archive{db: db, seq: make(map[string]int64)}
	if err := a.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	return a, nil
}

func (a *Archive) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		pid INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		start_tick INTEGER NOT NULL,
		version TEXT NOT NULL,
		ended_at DATETIME,
		end_tick INTEGER
	);

	CREATE TABLE IF NOT EXISTS commands (
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		tick INTEGER NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		failure INTEGER NOT NULL,
		debug TEXT,
		args TEXT,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (session_id, seq),
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_commands_type ON commands(session_id, type);
	`
	_, err := a.db.Exec(schema)
	return err
}

func (a *Archive) Close() error {
	if a.db == nil {
		return ErrArchiveClosed
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// BeginSession регистрирует запуск.
func (a *Archive) BeginSession(s Session) error {
	if a.db == nil {
		return ErrArchiveClosed
	}
	_, err := a.db.Exec(
		`INSERT INTO sessions (id, pid, started_at, start_tick, version) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.PID, s.StartedAt.UTC(), int64(s.StartTick), s.Version,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	a.seq[s.ID] = 0
	return nil
}

// EndSession проставляет время и тик завершения.
func (a *Archive) EndSession(id string, endTick uint64, at time.Time) error {
	if a.db == nil {
		return ErrArchiveClosed
	}
	res, err := a.db.Exec(
		`UPDATE sessions SET ended_at = ?, end_tick = ? WHERE id = ?`,
		at.UTC(), int64(endTick), id,
	)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("end session %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

// RecordCommand дописывает команду. Seq назначается по порядку внутри сессии.
func (a *Archive) RecordCommand(c CommandEntry) (int64, error) {
	if a.db == nil {
		return 0, ErrArchiveClosed
	}
	seq := a.seq[c.SessionID] + 1

	var args sql.NullString
	if c.Args != "" {
		args = sql.NullString{String: c.Args, Valid: true}
	}
	_, err := a.db.Exec(
		`INSERT INTO commands (session_id, seq, tick, type, status, failure, debug, args, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.SessionID, seq, int64(c.Tick), c.Type, c.Status, c.Failure, c.Debug, args, c.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert command: %w", err)
	}
	a.seq[c.SessionID] = seq
	return seq, nil
}
