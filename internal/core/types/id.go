package types

import (
	"fmt"
	"strconv"
)

// EntityID - 64-битная ссылка на живую сущность симуляции.
//
// Агент получает EntityID в файле состояния и возвращает его в командах.
// Это непрозрачный value-type: агент не должен разбирать биты, а мост
// обязан проверять ссылку через Arena.Resolve перед каждым использованием,
// потому что сущность могла быть уничтожена после выдачи идентификатора.
//
// Формат битов (от старших к младшим):
//
//	[ Kind (8) | Generation (24) | Index (32) ]
//
// Где:
//   - Kind - вид объекта (Critter, Item, Scenery и т.д.)
//   - Generation - версия слота арены (защита от устаревших ссылок)
//   - Index - индекс слота в арене
type EntityID uint64

// NilEntityID - нулевой идентификатор. Арена никогда не выдаёт его,
// так как поколение живого слота начинается с 1.
const NilEntityID EntityID = 0

// Конфигурация битов EntityID.
const (
	// bitsIndex - до ~4.29 миллиарда слотов.
	bitsIndex = 32

	// bitsGen - 16 миллионов переиспользований одного слота до переполнения.
	bitsGen = 24

	// bitsKind - до 256 видов объектов.
	bitsKind = 8

	shiftGen  = bitsIndex
	shiftKind = bitsIndex + bitsGen

	maskIndex = (1 << bitsIndex) - 1
	maskGen   = (1 << bitsGen) - 1
	maskKind  = (1 << bitsKind) - 1
)

// PackEntityID собирает EntityID из составных частей.
//
// Поколение обрезается до 24 бит. Проверок диапазонов нет.
func PackEntityID(kind uint8, gen uint32, index uint32) EntityID {
	return EntityID(
		(uint64(kind) << shiftKind) |
			(uint64(gen&maskGen) << shiftGen) |
			uint64(index),
	)
}

// Index возвращает индекс слота в арене.
func (id EntityID) Index() uint32 {
	return uint32(id & maskIndex)
}

// Generation возвращает поколение слота.
func (id EntityID) Generation() uint32 {
	return uint32((id >> shiftGen) & maskGen)
}

// Kind возвращает вид объекта.
func (id EntityID) Kind() uint8 {
	return uint8((id >> shiftKind) & maskKind)
}

// IsNil проверяет, является ли идентификатор нулевым.
func (id EntityID) IsNil() bool {
	return id == NilEntityID
}

// String возвращает строковое представление для логов.
func (id EntityID) String() string {
	if id.IsNil() {
		return "<nil>"
	}

	return fmt.Sprintf("[kind=%d gen=%d idx=%d]", id.Kind(), id.Generation(), id.Index())
}

// MarshalJSON сериализует EntityID как строку с десятичным числом:
// JavaScript и Python-агенты не теряют точность uint64.
func (id EntityID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(id), 10) + `"`), nil
}

// UnmarshalJSON принимает и строку, и число.
// Агенты на Python часто присылают target_id числом.
func (id *EntityID) UnmarshalJSON(data []byte) error {
	s := string(data)

	if s == "null" {
		*id = NilEntityID
		return nil
	}

	if len(s) > 1 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	if s == "" {
		*id = NilEntityID
		return nil
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("entity id %q: %w", s, err)
	}

	*id = EntityID(v)
	return nil
}
