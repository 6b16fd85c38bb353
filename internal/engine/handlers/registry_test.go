package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"agent-bridge/internal/sim"
	"agent-bridge/pkg/api"
	"agent-bridge/pkg/logger"
)

func init() {
	logger.Discard()
}

// overlaySim перекрывает только HideStatus; остальные методы не вызываются.
type overlaySim struct {
	sim.Simulation
	hidden int
}

func (s *overlaySim) HideStatus() { s.hidden++ }

func mustBatch(t *testing.T, doc string) api.CommandBatch {
	t.Helper()
	b, err := api.ParseBatch([]byte(doc))
	if err != nil {
		t.Fatalf("ParseBatch: %v", err)
	}
	return b
}

func recordingRegistry(order *[]string, types ...string) *Registry {
	r := NewRegistry(CharacterCreationPhases)
	for _, typ := range types {
		typ := typ
		r.Register(typ, WithEmptyPayload(func(Context) (Result, error) {
			*order = append(*order, typ)
			return Ok("%s done", typ)
		}))
	}
	return r
}

func TestExecutePhaseOrder(t *testing.T) {
	var order []string
	r := recordingRegistry(&order,
		"set_special", "select_traits", "tag_skills", "set_name", "finish_character_creation", "skip", "set_status")

	batch := mustBatch(t, `{"commands":[
		{"type":"skip"},
		{"type":"finish_character_creation"},
		{"type":"set_name","name":"A"},
		{"type":"tag_skills"},
		{"type":"set_status"},
		{"type":"select_traits"},
		{"type":"set_special"},
		{"type":"set_name","name":"B"}
	]}`)

	var indices []int
	r.Execute(Context{Session: NewSession(false)}, batch, func(o Outcome) {
		indices = append(indices, o.Index)
	})

	want := []string{"set_special", "select_traits", "tag_skills", "set_name", "set_name", "finish_character_creation", "skip", "set_status"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v\nwant    %v", order, want)
	}
	wantIdx := []int{6, 5, 3, 2, 7, 1, 0, 4}
	if !reflect.DeepEqual(indices, wantIdx) {
		t.Errorf("indices = %v, want %v", indices, wantIdx)
	}
}

func TestExecuteWithoutPhasesKeepsBatchOrder(t *testing.T) {
	var order []string
	r := recordingRegistry(&order, "a", "b", "c")

	r.Execute(Context{Session: NewSession(false)}, mustBatch(t, `{"commands":[{"type":"c"},{"type":"a"},{"type":"b"},{"type":"a"}]}`), nil)

	if want := []string{"c", "a", "b", "a"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestExecuteSkipsTypelessEntries(t *testing.T) {
	var order []string
	r := recordingRegistry(&order, "skip")

	var outcomes []Outcome
	r.Execute(Context{Session: NewSession(false)}, mustBatch(t, `{"commands":[{"tile":1},{"type":"skip"},7]}`), func(o Outcome) {
		outcomes = append(outcomes, o)
	})

	if len(outcomes) != 1 || outcomes[0].Index != 1 {
		t.Fatalf("outcomes = %+v", outcomes)
	}
}

func TestExecuteHidesStatusOverlay(t *testing.T) {
	var order []string
	r := recordingRegistry(&order, "set_status", "clear_status", "skip")

	s := &overlaySim{}
	sess := NewSession(false)
	sess.StatusShown(1)
	ctx := Context{Sim: s, Session: sess}

	r.Execute(ctx, mustBatch(t, `{"commands":[{"type":"set_status"},{"type":"clear_status"}]}`), nil)
	if s.hidden != 0 || !sess.StatusVisible() {
		t.Fatalf("status commands hid the overlay (hidden=%d)", s.hidden)
	}

	r.Execute(ctx, mustBatch(t, `{"commands":[{"type":"skip"},{"type":"skip"}]}`), nil)
	if s.hidden != 1 {
		t.Errorf("HideStatus called %d times, want 1", s.hidden)
	}
	if sess.StatusVisible() {
		t.Error("overlay still marked visible")
	}

	// Неизвестный тип тоже считается "агент что-то делает".
	sess.StatusShown(2)
	r.Execute(ctx, mustBatch(t, `{"commands":[{"type":"dance"}]}`), nil)
	if s.hidden != 2 {
		t.Errorf("unknown command did not hide overlay: hidden=%d", s.hidden)
	}
}

func TestDispatchStatuses(t *testing.T) {
	r := NewRegistry(nil)
	r.Register("ok", WithEmptyPayload(func(Context) (Result, error) { return Ok("fine") }))
	r.Register("blocked", WithEmptyPayload(func(Context) (Result, error) {
		return Result{}, fmt.Errorf("%w: busy", sim.ErrBlocked)
	}))
	r.Register("invalid", WithEmptyPayload(func(Context) (Result, error) {
		return Result{}, fmt.Errorf("%w: index", sim.ErrInvalid)
	}))
	r.Register("failed", WithEmptyPayload(func(Context) (Result, error) {
		return Result{}, errors.New("no path")
	}))
	r.Register("panics", WithEmptyPayload(func(Context) (Result, error) {
		var m map[string]int
		m["x"] = 1
		return Ok("unreachable")
	}))
	r.Register("tile", WithPayload(func(_ Context, p api.TilePayload) (Result, error) {
		return Ok("tile=%d", *p.Tile)
	}))

	tests := []struct {
		doc  string
		want Status
	}{
		{`{"type":"ok"}`, StatusOk},
		{`{"type":"blocked"}`, StatusBlocked},
		{`{"type":"invalid"}`, StatusBadArgs},
		{`{"type":"failed"}`, StatusFailed},
		{`{"type":"panics"}`, StatusFailed},
		{`{"type":"tile","tile":12}`, StatusOk},
		{`{"type":"tile"}`, StatusBadArgs},
		{`{"type":"tile","tile":"twelve"}`, StatusBadArgs},
		{`{"type":"nope"}`, StatusUnknownCommand},
	}

	for _, tt := range tests {
		t.Run(tt.doc, func(t *testing.T) {
			var cmd api.Command
			if err := json.Unmarshal([]byte(tt.doc), &cmd); err != nil {
				t.Fatal(err)
			}
			got := r.Dispatch(Context{}, cmd)
			if got.Status != tt.want {
				t.Errorf("status = %s (%q), want %s", got.Status, got.Debug, tt.want)
			}
			if got.Debug == "" {
				t.Error("empty debug text")
			}
		})
	}
}

func TestUnknownCommandDebug(t *testing.T) {
	r := NewRegistry(nil)
	got := r.Dispatch(Context{}, api.Command{Type: "teleport_home"})
	if got.Debug != "unknown_cmd: teleport_home" {
		t.Errorf("debug = %q", got.Debug)
	}
	if got.Status.IsFailure() {
		t.Error("UnknownCommand must not count as failure")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	r := NewRegistry(nil)
	h := WithEmptyPayload(func(Context) (Result, error) { return Ok("") })
	r.Register("x", h)

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register did not panic")
		}
	}()
	r.Register("x", h)
}

func TestWithPayloadRejectsBeforeHandler(t *testing.T) {
	calls := 0
	h := WithPayload(func(_ Context, p api.TilePayload) (Result, error) {
		calls++
		return Ok("tile=%d", *p.Tile)
	})

	if _, err := h(Context{}, json.RawMessage(`{"type":"move_to"}`)); !errors.Is(err, ErrBadArgs) {
		t.Errorf("missing tile: err = %v, want ErrBadArgs", err)
	}
	if _, err := h(Context{}, json.RawMessage(`[1,2]`)); !errors.Is(err, ErrBadArgs) {
		t.Errorf("non-object: err = %v, want ErrBadArgs", err)
	}
	if calls != 0 {
		t.Fatalf("handler ran %d times on bad args", calls)
	}

	res, err := h(Context{}, json.RawMessage(`{"type":"move_to","tile":7,"note":"extra"}`))
	if err != nil || res.Debug != "tile=7" {
		t.Errorf("extra fields: (%+v, %v)", res, err)
	}
}
