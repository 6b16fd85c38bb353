package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config хранит параметры запуска моста.
// Значения по умолчанию совпадают с поведением хоста, которое ожидают агенты.
type Config struct {
	// Dir - каталог обмена файлами команд и состояния.
	Dir string
	// TelemetryDir - каталог NDJSON-логов и дескриптора сессии.
	// Относительный путь считается от Dir.
	TelemetryDir string
	// MaxLogRecords - жёсткий предел записей в каждом логе телеметрии.
	MaxLogRecords int

	// ObjectEnumInterval - раз во сколько тиков пересчитывается список объектов.
	ObjectEnumInterval int
	// SegmentCap - максимальная длина одного шага движения.
	SegmentCap int
	// WaypointCap - максимальное число точек маршрута в очереди.
	WaypointCap int
	// FindPathSpacing - шаг точек маршрута в ответе find_path.
	FindPathSpacing int
	// MaxPathSteps - бюджет шагов для поиска пути.
	MaxPathSteps int
	// AttackRepeatCap - верхняя граница count у attack.
	AttackRepeatCap int
	// DialogueDwell - сколько тиков подсвеченный вариант висит до выбора.
	DialogueDwell uint64
	// LookAtTTL - сколько тиков результат look_at/запросов остаётся в состоянии.
	LookAtTTL uint64
	// StatusTTL - через сколько тиков status-оверлей гаснет сам.
	StatusTTL uint64
	// SaveSlots - сколько слотов сохранений проверяется в главном меню.
	SaveSlots int

	// ArchivePath - путь к sqlite-архиву сессий. Пусто - архив выключен.
	ArchivePath string
	// MonitorAddr - адрес HTTP/WebSocket монитора. Пусто - монитор выключен.
	MonitorAddr string
	// TestMode - начальное значение тестового режима.
	TestMode bool
}

// New создает конфиг по умолчанию.
func New() Config {
	return Config{
		Dir:                ".",
		TelemetryDir:       "agent_logs",
		MaxLogRecords:      5000,
		ObjectEnumInterval: 10,
		SegmentCap:         16,
		WaypointCap:        40,
		FindPathSpacing:    15,
		MaxPathSteps:       2000,
		AttackRepeatCap:    10,
		DialogueDwell:      30,
		LookAtTTL:          300,
		StatusTTL:          1800,
		SaveSlots:          10,
	}
}

// FromEnv накладывает переменные окружения AGENT_BRIDGE_* поверх базового конфига.
func FromEnv(base Config) (Config, error) {
	cfg := base

	strVars := map[string]*string{
		"AGENT_BRIDGE_DIR":           &cfg.Dir,
		"AGENT_BRIDGE_TELEMETRY_DIR": &cfg.TelemetryDir,
		"AGENT_BRIDGE_ARCHIVE":       &cfg.ArchivePath,
		"AGENT_BRIDGE_MONITOR":       &cfg.MonitorAddr,
	}
	for name, dst := range strVars {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}

	intVars := map[string]*int{
		"AGENT_BRIDGE_MAX_LOG_RECORDS":      &cfg.MaxLogRecords,
		"AGENT_BRIDGE_OBJECT_ENUM_INTERVAL": &cfg.ObjectEnumInterval,
		"AGENT_BRIDGE_SEGMENT_CAP":          &cfg.SegmentCap,
		"AGENT_BRIDGE_WAYPOINT_CAP":         &cfg.WaypointCap,
	}
	for name, dst := range intVars {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return base, fmt.Errorf("%s: %w", name, err)
		}
		*dst = n
	}

	if v, ok := os.LookupEnv("AGENT_BRIDGE_TEST_MODE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return base, fmt.Errorf("AGENT_BRIDGE_TEST_MODE: %w", err)
		}
		cfg.TestMode = b
	}

	return cfg, nil
}

// Validate проверяет, что пределы и интервалы положительные.
func (c Config) Validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"max log records", c.MaxLogRecords},
		{"object enum interval", c.ObjectEnumInterval},
		{"segment cap", c.SegmentCap},
		{"waypoint cap", c.WaypointCap},
		{"find path spacing", c.FindPathSpacing},
		{"max path steps", c.MaxPathSteps},
		{"attack repeat cap", c.AttackRepeatCap},
		{"save slots", c.SaveSlots},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("config: %s must be positive, got %d", p.name, p.value)
		}
	}
	if c.Dir == "" {
		return fmt.Errorf("config: exchange dir is empty")
	}
	return nil
}

// TelemetryPath возвращает абсолютный (относительно Dir) каталог телеметрии.
func (c Config) TelemetryPath() string {
	if filepath.IsAbs(c.TelemetryDir) {
		return c.TelemetryDir
	}
	return filepath.Join(c.Dir, c.TelemetryDir)
}
