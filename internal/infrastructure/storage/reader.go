package storage

import (
	"database/sql"
	"fmt"
)

// FailureStat - сводка по типу команды за сессию.
type FailureStat struct {
	Type     string `json:"type"`
	Total    int    `json:"total"`
	Failures int    `json:"failures"`
}

// Sessions - все сессии, новые первыми.
func (a *Archive) Sessions() ([]Session, error) {
	if a.db == nil {
		return nil, ErrArchiveClosed
	}
	rows, err := a.db.Query(
		`SELECT id, pid, started_at, start_tick, version, ended_at, end_tick FROM sessions ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var s Session
		var startTick int64
		var endedAt sql.NullTime
		var endTick sql.NullInt64

		if err := rows.Scan(&s.ID, &s.PID, &s.StartedAt, &startTick, &s.Version, &endedAt, &endTick); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.StartTick = uint64(startTick)
		if endedAt.Valid {
			t := endedAt.Time
			s.EndedAt = &t
		}
		if endTick.Valid {
			n := uint64(endTick.Int64)
			s.EndTick = &n
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Commands - команды сессии в порядке выполнения.
func (a *Archive) Commands(sessionID string) ([]CommandEntry, error) {
	if a.db == nil {
		return nil, ErrArchiveClosed
	}
	rows, err := a.db.Query(
		`SELECT session_id, seq, tick, type, status, failure, debug, args, created_at
		 FROM commands WHERE session_id = ? ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query commands: %w", err)
	}
	defer rows.Close()

	var out []CommandEntry
	for rows.Next() {
		var c CommandEntry
		var tick int64
		var debug, args sql.NullString

		if err := rows.Scan(&c.SessionID, &c.Seq, &tick, &c.Type, &c.Status, &c.Failure, &debug, &args, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan command: %w", err)
		}
		c.Tick = uint64(tick)
		c.Debug = debug.String
		c.Args = args.String
		out = append(out, c)
	}
	return out, rows.Err()
}

// FailureSummary - сколько раз выполнялся и сколько раз не удался каждый тип.
func (a *Archive) FailureSummary(sessionID string) ([]FailureStat, error) {
	if a.db == nil {
		return nil, ErrArchiveClosed
	}
	rows, err := a.db.Query(
		`SELECT type, COUNT(*), SUM(failure) FROM commands
		 WHERE session_id = ? GROUP BY type ORDER BY SUM(failure) DESC, type`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query failure summary: %w", err)
	}
	defer rows.Close()

	var out []FailureStat
	for rows.Next() {
		var f FailureStat
		if err := rows.Scan(&f.Type, &f.Total, &f.Failures); err != nil {
			return nil, fmt.Errorf("scan failure summary: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
