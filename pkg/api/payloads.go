package api

import (
	"agent-bridge/internal/core/types"
)

// --- Payloads ---
//
// Обязательные числовые поля - указатели: так отсутствие поля отличается
// от нуля. Значения по умолчанию подставляют методы-аксессоры.

// --- Ввод ---

type MouseMovePayload struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

type MouseClickPayload struct {
	X      *int   `json:"x"`
	Y      *int   `json:"y"`
	Button string `json:"button,omitempty"` // "left" (по умолчанию) или "right"
}

type KeyPayload struct {
	Key string `json:"key"`
}

type InputEventPayload struct {
	KeyCode *int `json:"key_code"`
}

// --- Создание персонажа ---

// SpecialPayload задаёт все семь первичных характеристик сразу.
type SpecialPayload struct {
	Strength     *int `json:"strength"`
	Perception   *int `json:"perception"`
	Endurance    *int `json:"endurance"`
	Charisma     *int `json:"charisma"`
	Intelligence *int `json:"intelligence"`
	Agility      *int `json:"agility"`
	Luck         *int `json:"luck"`
}

// Values возвращает значения в порядке enums.PrimaryStats.
// Вызывать только после Validate.
func (p SpecialPayload) Values() [7]int {
	return [7]int{
		*p.Strength, *p.Perception, *p.Endurance, *p.Charisma,
		*p.Intelligence, *p.Agility, *p.Luck,
	}
}

type TraitsPayload struct {
	Traits []string `json:"traits"`
}

type SkillsPayload struct {
	Skills []string `json:"skills"`
}

type NamePayload struct {
	Name string `json:"name"`
}

type StatAdjustPayload struct {
	Stat      string `json:"stat"`
	Direction string `json:"direction"` // "up" | "down"
}

type TraitPayload struct {
	Trait string `json:"trait"`
}

type SkillPayload struct {
	Skill string `json:"skill"`
}

type PerkPayload struct {
	PerkID *int `json:"perk_id"`
}

// --- Меню ---

type MainMenuPayload struct {
	Action string `json:"action"`
	Slot   *int   `json:"slot,omitempty"`
}

type OptionPayload struct {
	Option string `json:"option"`
}

// --- Перемещение и навигация ---

// TilePayload используется для move_to, run_to, combat_move, nudge.
type TilePayload struct {
	Tile *int `json:"tile"`
}

type TeleportPayload struct {
	Tile      *int `json:"tile"`
	Elevation *int `json:"elevation,omitempty"`
}

type MapTransitionPayload struct {
	Map       *int `json:"map"`
	Elevation *int `json:"elevation"`
	Tile      *int `json:"tile"`
	Rotation  int  `json:"rotation,omitempty"`
}

type DetonatePayload struct {
	Tile *int `json:"tile"`
	PID  *int `json:"pid,omitempty"`
}

// DefaultExplosivePID - динамит, если pid не указан.
const DefaultExplosivePID = 85

func (p DetonatePayload) ExplosivePID() int {
	if p.PID == nil {
		return DefaultExplosivePID
	}
	return *p.PID
}

// CameraPayload: без tile камера центрируется на игроке.
type CameraPayload struct {
	Tile *int `json:"tile,omitempty"`
}

type FindPathPayload struct {
	To   *int `json:"to"`
	From *int `json:"from,omitempty"`
}

type TileObjectsPayload struct {
	Tile   *int `json:"tile"`
	Radius *int `json:"radius,omitempty"`
}

func (p TileObjectsPayload) RadiusOrDefault() int {
	if p.Radius == nil {
		return 2
	}
	return *p.Radius
}

type FindItemPayload struct {
	PID *int `json:"pid"`
}

// --- Взаимодействие ---

// ObjectPayload используется для действий над объектом карты
// (use_object, open_door, pick_up, talk_to, look_at, open_container).
type ObjectPayload struct {
	ObjectID types.EntityID `json:"object_id"`
}

type UseSkillPayload struct {
	Skill    string         `json:"skill"`
	ObjectID types.EntityID `json:"object_id,omitempty"` // нулевой - на себя
}

type UseItemOnPayload struct {
	ItemPID  *int           `json:"item_pid"`
	ObjectID types.EntityID `json:"object_id"`
}

type HolodiskPayload struct {
	Index *int `json:"index"`
}

// --- Инвентарь ---

// ItemPayload используется для drop_item, give_item, loot_take и barter_*.
type ItemPayload struct {
	ItemPID  *int `json:"item_pid"`
	Quantity *int `json:"quantity,omitempty"`
}

func (p ItemPayload) QuantityOrDefault() int {
	if p.Quantity == nil {
		return 1
	}
	return *p.Quantity
}

// PIDPayload - команды, которым нужен только pid предмета (use_item, use_combat_item).
type PIDPayload struct {
	ItemPID *int `json:"item_pid"`
}

type EquipPayload struct {
	ItemPID *int   `json:"item_pid"`
	Hand    string `json:"hand,omitempty"`
}

// HandPayload используется для unequip_item и reload_weapon.
type HandPayload struct {
	Hand    string `json:"hand,omitempty"`
	AmmoPID *int   `json:"ammo_pid,omitempty"`
}

type UseEquippedPayload struct {
	TimerSeconds *int `json:"timer_seconds,omitempty"`
}

// Timer нормализует таймер взрывчатки: 10..180 секунд, кратно 10.
func (p UseEquippedPayload) Timer() int {
	seconds := 30
	if p.TimerSeconds != nil {
		seconds = *p.TimerSeconds
	}
	seconds = max(10, min(seconds, 180))
	return seconds / 10 * 10
}

// --- Бой ---

type AttackPayload struct {
	TargetID    types.EntityID `json:"target_id"`
	HitMode     string         `json:"hit_mode,omitempty"`
	HitLocation string         `json:"hit_location,omitempty"`
	Count       *int           `json:"count,omitempty"`
}

// Repeats - count, зажатый в 1..limit.
func (p AttackPayload) Repeats(limit int) int {
	if p.Count == nil {
		return 1
	}
	return max(1, min(*p.Count, limit))
}

// CombatAIPayload - настройки боевого ИИ игрока. Неизвестные значения
// молча пропускаются, как и в оригинальном интерфейсе настроек.
type CombatAIPayload struct {
	AttackWho      string `json:"attack_who,omitempty"`
	Distance       string `json:"distance,omitempty"`
	BestWeapon     string `json:"best_weapon,omitempty"`
	ChemUse        string `json:"chem_use,omitempty"`
	RunAwayMode    string `json:"run_away_mode,omitempty"`
	AreaAttackMode string `json:"area_attack_mode,omitempty"`
	Disposition    string `json:"disposition,omitempty"`
}

// --- Диалог ---

type DialoguePayload struct {
	Index *int `json:"index"`
}

type TextPayload struct {
	Text string `json:"text"`
}

// --- Карта мира ---

type AreaPayload struct {
	AreaID   *int `json:"area_id"`
	Entrance int  `json:"entrance,omitempty"`
}

// --- Система ---

type SaveSlotPayload struct {
	Slot        *int   `json:"slot"`
	Description string `json:"description,omitempty"`
}

type QuicksavePayload struct {
	Description string `json:"description,omitempty"`
}

// DefaultSaveDescription подставляется, если описание не передано.
const DefaultSaveDescription = "Agent Save"

func (p SaveSlotPayload) DescriptionOrDefault() string {
	if p.Description == "" {
		return DefaultSaveDescription
	}
	return p.Description
}

func (p QuicksavePayload) DescriptionOrDefault() string {
	if p.Description == "" {
		return DefaultSaveDescription
	}
	return p.Description
}

type RestPayload struct {
	Hours *int `json:"hours,omitempty"`
}

// HoursClamped - часы отдыха в 1..24, по умолчанию 1.
func (p RestPayload) HoursClamped() int {
	if p.Hours == nil {
		return 1
	}
	return max(1, min(*p.Hours, 24))
}

type EnabledPayload struct {
	Enabled bool `json:"enabled"`
}
