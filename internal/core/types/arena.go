package types

import "errors"

var (
	// ErrStaleEntity - ссылка указывает на уничтоженную или чужую сущность.
	ErrStaleEntity = errors.New("stale entity reference")
	// ErrArenaFull - закончились индексы слотов.
	ErrArenaFull = errors.New("entity arena is full")
)

type slot[T any] struct {
	gen   uint32
	kind  uint8
	alive bool
	value T
}

// Arena хранит сущности в слотах с поколениями.
//
// Insert выдаёт EntityID, Resolve проверяет границы, поколение и вид,
// поэтому ссылка на удалённую сущность никогда не разрешится в новую,
// занявшую тот же слот. Поиск O(1), без линейного обхода живого множества.
//
// Arena не потокобезопасна: ею владеет тик симуляции.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

// NewArena создает арену с заранее выделенной ёмкостью.
func NewArena[T any](capacity int) *Arena[T] {
	return &Arena[T]{slots: make([]slot[T], 0, capacity)}
}

// Insert кладёт значение в свободный слот и возвращает ссылку на него.
func (a *Arena[T]) Insert(kind uint8, value T) (EntityID, error) {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		if uint64(len(a.slots)) > maskIndex {
			return NilEntityID, ErrArenaFull
		}
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot[T]{})
	}

	s := &a.slots[idx]
	s.gen = (s.gen + 1) & maskGen
	if s.gen == 0 {
		// Поколение 0 зарезервировано, иначе слот 0 выдал бы NilEntityID.
		s.gen = 1
	}
	s.kind = kind
	s.alive = true
	s.value = value
	a.live++

	return PackEntityID(kind, s.gen, idx), nil
}

// Resolve возвращает значение по ссылке, если сущность жива.
func (a *Arena[T]) Resolve(id EntityID) (T, bool) {
	var zero T
	s, ok := a.lookup(id)
	if !ok {
		return zero, false
	}
	return s.value, true
}

// Contains - проверка членства без извлечения значения.
func (a *Arena[T]) Contains(id EntityID) bool {
	_, ok := a.lookup(id)
	return ok
}

// Remove освобождает слот. Повторное удаление возвращает ErrStaleEntity.
func (a *Arena[T]) Remove(id EntityID) error {
	s, ok := a.lookup(id)
	if !ok {
		return ErrStaleEntity
	}
	var zero T
	s.alive = false
	s.value = zero
	a.free = append(a.free, id.Index())
	a.live--
	return nil
}

// Replace заменяет значение живой сущности, сохраняя её ссылку.
func (a *Arena[T]) Replace(id EntityID, value T) error {
	s, ok := a.lookup(id)
	if !ok {
		return ErrStaleEntity
	}
	s.value = value
	return nil
}

// Len возвращает количество живых сущностей.
func (a *Arena[T]) Len() int {
	return a.live
}

// Each обходит живые сущности в порядке индексов слотов.
// Если fn возвращает false, обход прекращается.
func (a *Arena[T]) Each(fn func(id EntityID, value T) bool) {
	for i := range a.slots {
		s := &a.slots[i]
		if !s.alive {
			continue
		}
		if !fn(PackEntityID(s.kind, s.gen, uint32(i)), s.value) {
			return
		}
	}
}

func (a *Arena[T]) lookup(id EntityID) (*slot[T], bool) {
	if id.IsNil() {
		return nil, false
	}
	idx := id.Index()
	if uint64(idx) >= uint64(len(a.slots)) {
		return nil, false
	}
	s := &a.slots[idx]
	if !s.alive || s.gen != id.Generation() || s.kind != id.Kind() {
		return nil, false
	}
	return s, true
}
