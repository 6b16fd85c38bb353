package telemetry

import (
	"errors"
	"fmt"
	"time"
)

// Имена логов в каталоге телеметрии.
const (
	CommandLogName = "commands"
	StateLogName   = "state_changes"
)

// Recorder - набор логов одной сессии моста.
type Recorder struct {
	dir      string
	session  Descriptor
	commands *Log
	changes  *Log
}

// Open ротирует логи, начинает новые и записывает session.json.
func Open(dir string, limit int, tick uint64, now time.Time) (*Recorder, error) {
	commands, err := OpenLog(dir, CommandLogName, limit)
	if err != nil {
		return nil, err
	}
	changes, err := OpenLog(dir, StateLogName, limit)
	if err != nil {
		_ = commands.Close()
		return nil, err
	}

	r := &Recorder{dir: dir, session: NewDescriptor(tick, now), commands: commands, changes: changes}
	if err := WriteDescriptor(dir, r.session); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("session descriptor: %w", err)
	}
	return r, nil
}

func (r *Recorder) Session() Descriptor { return r.session }

func (r *Recorder) Command(rec CommandRecord) error { return r.commands.Write(rec) }

func (r *Recorder) Changes(recs []DeltaRecord) error {
	for _, rec := range recs {
		if err := r.changes.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Dropped - сколько записей отброшено по пределу, суммарно по логам.
func (r *Recorder) Dropped() int { return r.commands.Dropped() + r.changes.Dropped() }

func (r *Recorder) Close() error {
	return errors.Join(r.commands.Close(), r.changes.Close())
}
