package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsValid(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 16, cfg.SegmentCap)
	assert.Equal(t, 40, cfg.WaypointCap)
	assert.Equal(t, 10, cfg.ObjectEnumInterval)
	assert.Equal(t, uint64(30), cfg.DialogueDwell)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("AGENT_BRIDGE_DIR", "/tmp/exchange")
	t.Setenv("AGENT_BRIDGE_SEGMENT_CAP", "8")
	t.Setenv("AGENT_BRIDGE_TEST_MODE", "true")

	cfg, err := FromEnv(New())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/exchange", cfg.Dir)
	assert.Equal(t, 8, cfg.SegmentCap)
	assert.True(t, cfg.TestMode)
	assert.Equal(t, filepath.Join("/tmp/exchange", "agent_logs"), cfg.TelemetryPath())
}

func TestFromEnvRejectsGarbage(t *testing.T) {
	t.Setenv("AGENT_BRIDGE_WAYPOINT_CAP", "many")

	base := New()
	cfg, err := FromEnv(base)
	require.Error(t, err)
	assert.Equal(t, base, cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero interval", func(c *Config) { c.ObjectEnumInterval = 0 }},
		{"negative segment", func(c *Config) { c.SegmentCap = -1 }},
		{"empty dir", func(c *Config) { c.Dir = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate() = nil, want error")
			}
		})
	}
}

func TestTelemetryPathAbsolute(t *testing.T) {
	cfg := New()
	cfg.TelemetryDir = "/var/log/bridge"
	assert.Equal(t, "/var/log/bridge", cfg.TelemetryPath())
}
