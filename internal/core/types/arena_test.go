package types

import (
	"errors"
	"testing"
)

func TestArena_InsertResolve(t *testing.T) {
	a := NewArena[string](4)

	id, err := a.Insert(1, "rat")
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if id.IsNil() {
		t.Fatal("Insert returned nil id")
	}
	if id.Kind() != 1 {
		t.Errorf("Kind = %d, want 1", id.Kind())
	}

	got, ok := a.Resolve(id)
	if !ok || got != "rat" {
		t.Errorf("Resolve = (%q, %v), want (rat, true)", got, ok)
	}
	if a.Len() != 1 {
		t.Errorf("Len = %d, want 1", a.Len())
	}
}

func TestArena_StaleReferenceAfterReuse(t *testing.T) {
	a := NewArena[string](1)

	old, _ := a.Insert(1, "first")
	if err := a.Remove(old); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	fresh, _ := a.Insert(1, "second")
	if fresh.Index() != old.Index() {
		t.Fatalf("slot was not reused: %d vs %d", fresh.Index(), old.Index())
	}
	if fresh.Generation() == old.Generation() {
		t.Fatal("generation did not advance on reuse")
	}

	if _, ok := a.Resolve(old); ok {
		t.Error("stale id resolved to the new occupant")
	}
	if got, ok := a.Resolve(fresh); !ok || got != "second" {
		t.Errorf("Resolve(fresh) = (%q, %v)", got, ok)
	}
}

func TestArena_RejectsForeignIDs(t *testing.T) {
	a := NewArena[int](2)
	id, _ := a.Insert(2, 10)

	tests := []struct {
		name string
		id   EntityID
	}{
		{"nil", NilEntityID},
		{"out of bounds", PackEntityID(2, 1, 99)},
		{"wrong kind", PackEntityID(3, id.Generation(), id.Index())},
		{"wrong generation", PackEntityID(2, id.Generation()+1, id.Index())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if a.Contains(tt.id) {
				t.Errorf("Contains(%v) = true", tt.id)
			}
		})
	}
}

func TestArena_RemoveTwice(t *testing.T) {
	a := NewArena[int](1)
	id, _ := a.Insert(0, 1)

	if err := a.Remove(id); err != nil {
		t.Fatalf("first Remove: %v", err)
	}
	if err := a.Remove(id); !errors.Is(err, ErrStaleEntity) {
		t.Errorf("second Remove = %v, want ErrStaleEntity", err)
	}
	if a.Len() != 0 {
		t.Errorf("Len = %d, want 0", a.Len())
	}
}

func TestArena_ReplaceAndEach(t *testing.T) {
	a := NewArena[int](3)
	first, _ := a.Insert(0, 1)
	second, _ := a.Insert(0, 2)
	third, _ := a.Insert(0, 3)
	_ = a.Remove(second)

	if err := a.Replace(third, 30); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := a.Replace(second, 20); !errors.Is(err, ErrStaleEntity) {
		t.Errorf("Replace(removed) = %v, want ErrStaleEntity", err)
	}

	var seen []EntityID
	sum := 0
	a.Each(func(id EntityID, v int) bool {
		seen = append(seen, id)
		sum += v
		return true
	})

	if len(seen) != 2 || seen[0] != first || seen[1] != third {
		t.Errorf("Each visited %v, want [%v %v]", seen, first, third)
	}
	if sum != 31 {
		t.Errorf("sum = %d, want 31", sum)
	}

	visits := 0
	a.Each(func(EntityID, int) bool {
		visits++
		return false
	})
	if visits != 1 {
		t.Errorf("Each did not stop early: %d visits", visits)
	}
}

func BenchmarkArena_Resolve(b *testing.B) {
	a := NewArena[int](1024)
	ids := make([]EntityID, 0, 1024)
	for i := 0; i < 1024; i++ {
		id, _ := a.Insert(1, i)
		ids = append(ids, id)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = a.Resolve(ids[i&1023])
	}
}
