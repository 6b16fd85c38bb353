package enums

import (
	"sort"
	"strings"
)

// registry - двусторонняя таблица "стабильное имя <-> код симуляции".
// Имена в протоколе всегда в нижнем регистре, разбор нечувствителен к регистру.
type registry[T comparable] struct {
	toName map[T]string
	toCode map[string]T
}

func newRegistry[T comparable](names map[T]string) registry[T] {
	r := registry[T]{
		toName: names,
		toCode: make(map[string]T, len(names)),
	}
	for code, name := range names {
		r.toCode[name] = code
	}
	return r
}

// alias добавляет дополнительное входное имя (например, "enter" для return).
// Обратное отображение не меняется.
func (r registry[T]) alias(name string, code T) registry[T] {
	r.toCode[name] = code
	return r
}

func (r registry[T]) name(code T) (string, bool) {
	n, ok := r.toName[code]
	return n, ok
}

func (r registry[T]) parse(s string) (T, bool) {
	code, ok := r.toCode[strings.ToLower(strings.TrimSpace(s))]
	return code, ok
}

// names возвращает отсортированный список канонических имён.
func (r registry[T]) names() []string {
	out := make([]string, 0, len(r.toName))
	for _, n := range r.toName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
