// Package transport - файловый обмен между мостом и внешним агентом.
//
// Агент пишет батч команд во временный файл и переименовывает его в
// agent_cmd.json; мост забирает файл, удаляет его до разбора и каждый тик
// атомарно переписывает agent_state.json тем же приёмом tmp + rename.
package transport

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	CommandFile    = "agent_cmd.json"
	CommandTmpFile = "agent_cmd.tmp"
	StateFile      = "agent_state.json"
	StateTmpFile   = "agent_state.tmp"
)

// Channel владеет двумя парами путей внутри базового каталога.
type Channel struct {
	dir string
}

func NewChannel(dir string) *Channel {
	if dir == "" {
		dir = "."
	}
	return &Channel{dir: dir}
}

func (c *Channel) Dir() string { return c.dir }

func (c *Channel) CommandPath() string { return filepath.Join(c.dir, CommandFile) }

func (c *Channel) StatePath() string { return filepath.Join(c.dir, StateFile) }

func (c *Channel) commandTmp() string { return filepath.Join(c.dir, CommandTmpFile) }

func (c *Channel) stateTmp() string { return filepath.Join(c.dir, StateTmpFile) }

// PollCommands забирает файл команд, если он есть.
//
// Файл удаляется сразу после чтения, до любого разбора: батч потребляется
// ровно один раз, даже если он окажется битым.
func (c *Channel) PollCommands() ([]byte, bool, error) {
	path := c.CommandPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read commands: %w", err)
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return data, true, fmt.Errorf("remove consumed commands: %w", err)
	}
	return data, true, nil
}

// PeekCommands читает файл команд, не удаляя его.
func (c *Channel) PeekCommands() ([]byte, bool, error) {
	data, err := os.ReadFile(c.CommandPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("peek commands: %w", err)
	}
	return data, true, nil
}

// DiscardCommands удаляет файл команд без чтения.
func (c *Channel) DiscardCommands() error {
	if err := os.Remove(c.CommandPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// WriteState атомарно заменяет файл состояния.
func (c *Channel) WriteState(doc []byte) error {
	return writeAtomic(c.stateTmp(), c.StatePath(), doc)
}

// WriteCommands - сторона агента: атомарно публикует батч команд.
func (c *Channel) WriteCommands(doc []byte) error {
	return writeAtomic(c.commandTmp(), c.CommandPath(), doc)
}

// PendingCommands сообщает, лежит ли ещё не забранный батч.
func (c *Channel) PendingCommands() bool {
	_, err := os.Stat(c.CommandPath())
	return err == nil
}

// ReadState - сторона агента: последнее опубликованное состояние.
func (c *Channel) ReadState() ([]byte, bool, error) {
	data, err := os.ReadFile(c.StatePath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read state: %w", err)
	}
	return data, true, nil
}

// Clean удаляет канонические и временные файлы обоих каналов.
func (c *Channel) Clean() error {
	var errs []error
	for _, p := range []string{c.CommandPath(), c.commandTmp(), c.StatePath(), c.stateTmp()} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func writeAtomic(tmp, final string, doc []byte) error {
	if err := os.WriteFile(tmp, doc, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(tmp), err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", filepath.Base(final), err)
	}
	return nil
}
