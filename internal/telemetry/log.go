// Package telemetry пишет отладочные логи моста: журнал команд, журнал
// изменений состояния и дескриптор сессии.
package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Log - NDJSON-файл с жёстким пределом записей. При открытии прошлый
// файл становится <name>.prev.ndjson, так что хранятся два поколения.
type Log struct {
	path    string
	max     int
	f       *os.File
	enc     *json.Encoder
	written int
	dropped int
}

func OpenLog(dir, name string, limit int) (*Log, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("telemetry dir: %w", err)
	}

	path := filepath.Join(dir, name+".ndjson")
	prev := filepath.Join(dir, name+".prev.ndjson")
	if err := os.Rename(path, prev); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("rotate %s: %w", name, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return &Log{path: path, max: limit, f: f, enc: json.NewEncoder(f)}, nil
}

// Write добавляет запись. После предела записи молча отбрасываются.
func (l *Log) Write(rec any) error {
	if l.written >= l.max {
		l.dropped++
		return nil
	}
	if err := l.enc.Encode(rec); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(l.path), err)
	}
	l.written++
	return nil
}

func (l *Log) Path() string { return l.path }
func (l *Log) Written() int { return l.written }
func (l *Log) Dropped() int { return l.dropped }

func (l *Log) Close() error {
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
