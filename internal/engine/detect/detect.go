// Package detect классифицирует, где сейчас находится агент.
//
// Контекст вычисляется заново каждый тик из флагов хоста. Единственный
// хранимый вход - грубая ручная подсказка, которую хост ставит во время
// меню и создания персонажа.
package detect

import (
	"fmt"

	"agent-bridge/internal/core/types/enums"
)

// Context - взаимоисключающая классификация экрана.
type Context uint8

const (
	Unknown Context = iota
	DeathScreen
	Movie
	CharacterEditor
	MainMenu
	CharacterSelector
	GameplayWorldmap
	GameplayInventory
	GameplayLoot
	GameplayBarter
	GameplayDialogue
	GameplayCombat
	GameplayCombatWait
	GameplayExploration
)

var contextNames = [...]string{
	Unknown:             "unknown",
	DeathScreen:         "death_screen",
	Movie:               "movie",
	CharacterEditor:     "character_editor",
	MainMenu:            "main_menu",
	CharacterSelector:   "character_selector",
	GameplayWorldmap:    "gameplay_worldmap",
	GameplayInventory:   "gameplay_inventory",
	GameplayLoot:        "gameplay_loot",
	GameplayBarter:      "gameplay_barter",
	GameplayDialogue:    "gameplay_dialogue",
	GameplayCombat:      "gameplay_combat",
	GameplayCombatWait:  "gameplay_combat_wait",
	GameplayExploration: "gameplay_exploration",
}

func (c Context) String() string {
	if int(c) < len(contextNames) {
		return contextNames[c]
	}
	return fmt.Sprintf("context(%d)", c)
}

// IsGameplay - любой из gameplay_* контекстов.
func (c Context) IsGameplay() bool {
	return c >= GameplayWorldmap && c <= GameplayExploration
}

// IsCombat - ход игрока или ожидание противников.
func (c Context) IsCombat() bool {
	return c == GameplayCombat || c == GameplayCombatWait
}

// Manual - ручная подсказка хоста.
type Manual uint8

const (
	ManualNone Manual = iota
	ManualMainMenu
	ManualCharacterSelector
	ManualCharacterEditor
	ManualGameplay
)

var manualNames = map[string]Manual{
	"":                   ManualNone,
	"none":               ManualNone,
	"unknown":            ManualNone,
	"main_menu":          ManualMainMenu,
	"character_selector": ManualCharacterSelector,
	"character_editor":   ManualCharacterEditor,
	"gameplay":           ManualGameplay,
}

// ParseManual разбирает имя подсказки, как его передаёт хост.
func ParseManual(s string) (Manual, bool) {
	m, ok := manualNames[s]
	return m, ok
}

// Inputs - всё, из чего выводится контекст.
type Inputs struct {
	DeathScreen bool
	Movie       bool
	Mode        enums.GameMode
	Manual      Manual
}

// Detect - чистая функция со строгим приоритетом сверху вниз.
// То, на что агент смотрит, важнее того, что происходит под этим.
func Detect(in Inputs) Context {
	switch {
	case in.DeathScreen:
		return DeathScreen
	case in.Movie:
		return Movie
	case in.Mode.Has(enums.ModeEditor) || in.Manual == ManualCharacterEditor:
		return CharacterEditor
	case in.Manual == ManualMainMenu:
		return MainMenu
	case in.Manual == ManualCharacterSelector:
		return CharacterSelector
	case in.Manual == ManualGameplay:
		return gameplay(in.Mode)
	}
	return Unknown
}

func gameplay(mode enums.GameMode) Context {
	switch {
	case mode.Has(enums.ModeWorldmap):
		return GameplayWorldmap
	case mode.Has(enums.ModeInventory):
		return GameplayInventory
	case mode.Has(enums.ModeLoot):
		return GameplayLoot
	case mode.Has(enums.ModeBarter):
		return GameplayBarter
	case mode.Has(enums.ModeDialog):
		return GameplayDialogue
	case mode.Has(enums.ModeCombat):
		if mode.Has(enums.ModePlayerTurn) {
			return GameplayCombat
		}
		return GameplayCombatWait
	}
	return GameplayExploration
}

// Tracker помнит предыдущий контекст только ради хука выхода из диалога.
type Tracker struct {
	prev    Context
	started bool
}

// Transition описывает смену контекста между тиками.
type Transition struct {
	From Context
	To   Context
}

// LeftDialogue - выход из диалога, после которого гасится оверлей мысли.
func (t Transition) LeftDialogue() bool {
	return t.From == GameplayDialogue && t.To != GameplayDialogue
}

// Observe запоминает текущий контекст. ok=false - контекст не изменился,
// либо это первое наблюдение.
func (t *Tracker) Observe(c Context) (Transition, bool) {
	if !t.started {
		t.started = true
		t.prev = c
		return Transition{}, false
	}
	if c == t.prev {
		return Transition{}, false
	}
	tr := Transition{From: t.prev, To: c}
	t.prev = c
	return tr, true
}

// Current - последний наблюдённый контекст.
func (t *Tracker) Current() Context {
	return t.prev
}
