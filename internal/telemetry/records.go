package telemetry

import (
	"encoding/json"
	"time"

	"agent-bridge/internal/engine/handlers"
	"agent-bridge/pkg/api"
)

// loggedArgs - поля payload, которые попадают в журнал команд.
// Свободный текст обрезается, остальное пишется как есть.
var loggedArgs = []string{
	"tile", "to", "from", "radius", "map", "elevation", "rotation",
	"object_id", "target_id", "item_pid", "ammo_pid", "pid", "quantity", "count",
	"hit_mode", "hit_location", "hand", "skill", "stat", "direction", "trait", "perk_id",
	"key", "key_code", "x", "y", "button",
	"index", "area_id", "entrance", "slot", "hours", "timer_seconds",
	"action", "option", "enabled", "name", "text", "description",
}

// MaxLoggedText - сколько байт свободного текста пишется в журнал.
const MaxLoggedText = 80

// CommandRecord - строка commands.ndjson.
type CommandRecord struct {
	TS                  int64                      `json:"ts"`
	Tick                uint64                     `json:"tick"`
	Type                string                     `json:"type"`
	Args                map[string]json.RawMessage `json:"args,omitempty"`
	Result              string                     `json:"result"`
	Status              string                     `json:"status"`
	Failure             bool                       `json:"failure"`
	ConsecutiveFailures int                        `json:"consecutive_failures"`
}

func NewCommandRecord(now time.Time, tick uint64, cmd api.Command, res handlers.Result, consecutive int) CommandRecord {
	return CommandRecord{
		TS:                  now.UnixMilli(),
		Tick:                tick,
		Type:                cmd.Type,
		Args:                filterArgs(cmd.Raw),
		Result:              res.Debug,
		Status:              res.Status.String(),
		Failure:             res.Status.IsFailure() || res.Status == handlers.StatusUnknownCommand,
		ConsecutiveFailures: consecutive,
	}
}

func filterArgs(raw json.RawMessage) map[string]json.RawMessage {
	var all map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &all) != nil {
		return nil
	}

	out := make(map[string]json.RawMessage)
	for _, key := range loggedArgs {
		v, ok := all[key]
		if !ok {
			continue
		}
		if key == "text" || key == "description" || key == "name" {
			v = clipText(v)
		}
		out[key] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func clipText(v json.RawMessage) json.RawMessage {
	var s string
	if json.Unmarshal(v, &s) != nil || len(s) <= MaxLoggedText {
		return v
	}
	clipped, _ := json.Marshal(s[:MaxLoggedText] + "...")
	return clipped
}

// DeltaRecord - строка state_changes.ndjson.
type DeltaRecord struct {
	TS     int64  `json:"ts"`
	Tick   uint64 `json:"tick"`
	Event  string `json:"event"`
	From   any    `json:"from,omitempty"`
	To     any    `json:"to,omitempty"`
	Detail string `json:"detail,omitempty"`
}
