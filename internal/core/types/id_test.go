package types

import (
	"encoding/json"
	"testing"
)

func TestEntityID_Generation(t *testing.T) {
	tests := []struct {
		name string
		id   EntityID
		want uint32
	}{
		{name: "Generation zero", id: EntityID(0), want: 0},
		{name: "Generation simple", id: EntityID(uint64(1) << shiftGen), want: 1},
		{name: "Generation max", id: EntityID(uint64(maskGen) << shiftGen), want: maskGen},
		{name: "Generation masked correctly", id: EntityID(uint64(0xFFFFFFFF) << shiftGen), want: maskGen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.Generation(); got != tt.want {
				t.Errorf("Generation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntityID_Index(t *testing.T) {
	tests := []struct {
		name string
		id   EntityID
		want uint32
	}{
		{name: "Index zero", id: EntityID(0), want: 0},
		{name: "Index simple", id: EntityID(42), want: 42},
		{name: "Index max", id: EntityID(maskIndex), want: maskIndex},
		{name: "Index masked correctly", id: EntityID(uint64(maskIndex) | (1 << shiftGen)), want: maskIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.Index(); got != tt.want {
				t.Errorf("Index() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntityID_Kind(t *testing.T) {
	tests := []struct {
		name string
		id   EntityID
		want uint8
	}{
		{name: "Kind zero", id: EntityID(0), want: 0},
		{name: "Kind simple", id: EntityID(uint64(3) << shiftKind), want: 3},
		{name: "Kind max", id: EntityID(uint64(maskKind) << shiftKind), want: maskKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.Kind(); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntityID_IsNil(t *testing.T) {
	if !NilEntityID.IsNil() {
		t.Error("NilEntityID.IsNil() = false")
	}
	if PackEntityID(0, 1, 0).IsNil() {
		t.Error("generation 1 slot 0 must not be nil")
	}
}

func TestEntityID_String(t *testing.T) {
	tests := []struct {
		id   EntityID
		want string
	}{
		{NilEntityID, "<nil>"},
		{PackEntityID(2, 7, 11), "[kind=2 gen=7 idx=11]"},
	}

	for _, tt := range tests {
		if got := tt.id.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestPackEntityID(t *testing.T) {
	tests := []struct {
		name  string
		kind  uint8
		gen   uint32
		index uint32
	}{
		{"all zero", 0, 0, 0},
		{"simple", 1, 2, 3},
		{"max values", maskKind, maskGen, maskIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := PackEntityID(tt.kind, tt.gen, tt.index)
			if id.Kind() != tt.kind || id.Generation() != tt.gen || id.Index() != tt.index {
				t.Errorf("PackEntityID(%d,%d,%d) unpacked to (%d,%d,%d)",
					tt.kind, tt.gen, tt.index, id.Kind(), id.Generation(), id.Index())
			}
		})
	}

	// Поколение шире 24 бит обрезается и не задевает Kind.
	id := PackEntityID(5, 0x1FFFFFF, 9)
	if id.Kind() != 5 {
		t.Errorf("generation overflow leaked into kind: %d", id.Kind())
	}
}

func TestEntityID_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(EntityID(123))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"123"` {
		t.Errorf("Marshal = %s, want \"123\"", data)
	}
}

func TestEntityID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    EntityID
		wantErr bool
	}{
		{name: "string", input: `"123"`, want: 123},
		{name: "number", input: `456`, want: 456},
		{name: "empty string", input: `""`, want: NilEntityID},
		{name: "null", input: `null`, want: NilEntityID},
		{name: "garbage", input: `"abc"`, wantErr: true},
		{name: "negative", input: `-1`, wantErr: true},
		{name: "float", input: `1.5`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id EntityID
			err := json.Unmarshal([]byte(tt.input), &id)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s, got id %d", tt.input, id)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id != tt.want {
				t.Errorf("got %d, want %d", id, tt.want)
			}
		})
	}
}

func TestEntityID_InStruct(t *testing.T) {
	type payload struct {
		TargetID EntityID `json:"target_id"`
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"target_id": 77}`), &p); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if p.TargetID != 77 {
		t.Errorf("TargetID = %d, want 77", p.TargetID)
	}
}

// FuzzPackEntityID проверяет инвариант:
// PackEntityID → извлечение полей → равенство исходным значениям.
func FuzzPackEntityID(f *testing.F) {
	f.Add(uint8(0), uint32(0), uint32(0))
	f.Add(uint8(1), uint32(2), uint32(3))
	f.Add(uint8(255), uint32(maskGen), uint32(4294967295))

	f.Fuzz(func(t *testing.T, kind uint8, gen uint32, index uint32) {
		id := PackEntityID(kind, gen, index)

		if got := id.Kind(); got != kind {
			t.Fatalf("Kind mismatch: got %d, want %d", got, kind)
		}
		if got := id.Generation(); got != gen&maskGen {
			t.Fatalf("Generation mismatch: got %d, want %d", got, gen&maskGen)
		}
		if got := id.Index(); got != index {
			t.Fatalf("Index mismatch: got %d, want %d", got, index)
		}
	})
}

func FuzzEntityID_JSONRoundTrip(f *testing.F) {
	f.Add(uint64(0))
	f.Add(uint64(1))
	f.Add(uint64(123456789))
	f.Add(^uint64(0))

	f.Fuzz(func(t *testing.T, raw uint64) {
		original := EntityID(raw)

		data, err := json.Marshal(original)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}

		var decoded EntityID
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}

		if decoded != original {
			t.Fatalf("JSON round-trip mismatch: got %d, want %d", decoded, original)
		}
	})
}

func FuzzEntityID_UnmarshalJSON(f *testing.F) {
	f.Add([]byte(`"123"`))
	f.Add([]byte(`123`))
	f.Add([]byte(`""`))
	f.Add([]byte(`"`))
	f.Add([]byte(`{}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		var id EntityID
		_ = id.UnmarshalJSON(data)
		// Единственное требование: отсутствие panic
	})
}
