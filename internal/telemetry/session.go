package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"agent-bridge/internal/version"
)

// DescriptorFile - дескриптор сессии в каталоге телеметрии.
const DescriptorFile = "session.json"

// Descriptor - одна запись на запуск моста.
type Descriptor struct {
	SessionID string    `json:"session_id"`
	PID       int       `json:"pid"`
	StartTick uint64    `json:"start_tick"`
	StartTime time.Time `json:"start_time"`
	Version   string    `json:"version"`
}

func NewDescriptor(tick uint64, now time.Time) Descriptor {
	return Descriptor{
		SessionID: uuid.NewString(),
		PID:       os.Getpid(),
		StartTick: tick,
		StartTime: now.UTC(),
		Version:   version.String(),
	}
}

// WriteDescriptor пишет session.json через временный файл.
func WriteDescriptor(dir string, d Descriptor) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode descriptor: %w", err)
	}
	final := filepath.Join(dir, DescriptorFile)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write descriptor: %w", err)
	}
	return os.Rename(tmp, final)
}

func ReadDescriptor(dir string) (Descriptor, error) {
	var d Descriptor
	data, err := os.ReadFile(filepath.Join(dir, DescriptorFile))
	if err != nil {
		return d, err
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return d, fmt.Errorf("decode descriptor: %w", err)
	}
	return d, nil
}
