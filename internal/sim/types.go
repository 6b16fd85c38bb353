package sim

import (
	"errors"

	"agent-bridge/internal/core/types"
	"agent-bridge/internal/core/types/enums"
)

// Ошибки коллабораторов. Обработчики команд переводят их в статусы:
// ErrInvalid -> BadArgs, ErrBlocked -> Blocked, всё остальное -> Failed.
var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid argument")
	ErrBlocked  = errors.New("blocked")
)

type Screen struct {
	Width  int
	Height int
}

type Mouse struct {
	X       int
	Y       int
	Buttons int
	Visible bool
}

// Player - снимок активного персонажа игрока.
type Player struct {
	ID        types.EntityID
	Tile      int
	Elevation int
	Rotation  int
	HP        int
	MaxHP     int
	AP        int
	MaxAP     int
	Sneaking  bool
	Dead      bool
}

type MapInfo struct {
	Index     int
	Name      string
	Elevation int
}

// ExitGrid - куда ведёт выходная сетка.
type ExitGrid struct {
	Map       int
	MapName   string
	Tile      int
	Elevation int
}

// Object - объект карты. Поля заполнены по виду объекта.
type Object struct {
	ID        types.EntityID
	Kind      enums.ObjectKind
	PID       int
	Name      string
	Tile      int
	Elevation int

	// Существа.
	HP          int
	MaxHP       int
	Dead        bool
	Hostile     bool
	Team        int
	PartyMember bool

	// Предметы на земле.
	ItemType enums.ItemType
	Quantity int

	// Декорации: двери, контейнеры.
	SceneryType enums.SceneryType
	Open        bool
	Locked      bool
	ItemCount   int
	Scripted    bool

	Exit *ExitGrid
}

// ObjectQuery выбирает объекты текущего уровня.
// Пустой Kinds - все виды; Radius < 0 - вся карта.
type ObjectQuery struct {
	Kinds  []enums.ObjectKind
	Center int
	Radius int
}

// WeaponStats есть только у оружия.
type WeaponStats struct {
	AmmoCount    int
	AmmoCapacity int
	AmmoPID      int
	DamageMin    int
	DamageMax    int
	DamageType   enums.DamageType
	Range        int
	APCost       int
}

type Item struct {
	ID       types.EntityID
	PID      int
	Name     string
	Type     enums.ItemType
	Quantity int
	Weight   int
	Cost     int
	Weapon   *WeaponStats
}

type Inventory struct {
	Items         []Item
	LeftHand      *Item
	RightHand     *Item
	Armor         *Item
	TotalWeight   int
	CarryCapacity int
}

type CombatState struct {
	Round      int
	PlayerTurn bool
	FreeMove   int
}

type DialogueState struct {
	Speaker     types.EntityID
	SpeakerName string
	Reply       string
	Options     []string
}

type LootState struct {
	Target     types.EntityID
	TargetName string
	Items      []Item
}

// BarterOp - перенос предмета между столами торговли.
type BarterOp uint8

const (
	BarterOffer BarterOp = iota
	BarterRemoveOffer
	BarterRequest
	BarterRemoveRequest
)

func (op BarterOp) String() string {
	switch op {
	case BarterOffer:
		return "offer"
	case BarterRemoveOffer:
		return "remove_offer"
	case BarterRequest:
		return "request"
	case BarterRemoveRequest:
		return "remove_request"
	}
	return "unknown"
}

type BarterState struct {
	Merchant           types.EntityID
	MerchantName       string
	PlayerOffer        []Item
	MerchantOffer      []Item
	MerchantInventory  []Item
	PlayerOfferValue   int
	MerchantOfferValue int
	PlayerCaps         int
	MerchantCaps       int
	WillSucceed        bool
}

type Entrance struct {
	Map       int
	Elevation int
	Tile      int
	Known     bool
}

type Location struct {
	AreaID    int
	Name      string
	Known     bool
	Visited   bool
	Entrances []Entrance
}

type WorldMapState struct {
	CurrentArea     int
	CurrentAreaName string
	X               int
	Y               int
	Walking         bool
	Locations       []Location
}

type Derived struct {
	MaxHP          int
	CurrentHP      int
	MaxAP          int
	ArmorClass     int
	MeleeDamage    int
	CarryWeight    int
	Sequence       int
	HealingRate    int
	CriticalChance int
}

type Perk struct {
	ID   int
	Name string
	Rank int
}

// CharacterSheet - лист персонажа игрока.
type CharacterSheet struct {
	Name               string
	Level              int
	Experience         int
	XPForNextLevel     int
	CanLevelUp         bool
	UnspentSkillPoints int
	Special            [7]int
	Derived            Derived
	Traits             []enums.Trait
	TaggedSkills       []enums.Skill
	Skills             [enums.SkillCount]int
	Perks              []Perk
}

// EditorState - то, что есть только в открытом редакторе персонажа.
type EditorState struct {
	RemainingPoints       int
	TaggedSkillsRemaining int
	AvailablePerks        []Perk
}

type SaveSlotInfo struct {
	Exists        bool
	CharacterName string
	Description   string
}

type Premade struct {
	Name        string
	Description string
}

type GameTime struct {
	Year  int
	Month int
	Day   int
	Hour  int
	Ticks uint64
}

type Settings struct {
	GameDifficulty   string
	CombatDifficulty string
}

type Quest struct {
	Location    string
	Description string
	Completed   bool
}

type Holodisk struct {
	Name     string
	Text     string
	Acquired bool
}
