package api

import (
	"encoding/json"

	"agent-bridge/internal/core/types"
)

// --- МОСТ -> АГЕНТ ---

// StateSnapshot - корневой объект файла состояния. Переписывается каждый тик.
//
// Блок полей до Pending присутствует всегда. Остальное зависит от контекста:
// меню дают AvailableActions и списки, игровой контекст разворачивает
// встроенный *GameplayView прямо в корень документа.
type StateSnapshot struct {
	Tick             uint64         `json:"tick"`
	TimestampMs      int64          `json:"timestamp_ms"`
	GameMode         uint32         `json:"game_mode"`
	GameModeFlags    []string       `json:"game_mode_flags"`
	GameState        int            `json:"game_state"`
	TestMode         bool           `json:"test_mode"`
	Mouse            MouseView      `json:"mouse"`
	Screen           ScreenView     `json:"screen"`
	Context          string         `json:"context"`
	LastCommandDebug string         `json:"last_command_debug,omitempty"`
	CommandFailures  map[string]int `json:"command_failures"`
	Pending          PendingView    `json:"pending"`

	PlayerDead        bool                   `json:"player_dead,omitempty"`
	LookAtResult      string                 `json:"look_at_result,omitempty"`
	QueryResult       json.RawMessage        `json:"query_result,omitempty"`
	DialogueSelection *DialogueSelectionView `json:"dialogue_selection,omitempty"`
	Error             string                 `json:"error,omitempty"`

	AvailableActions  []string       `json:"available_actions,omitempty"`
	SaveGames         []SaveGameView `json:"save_games,omitempty"`
	PremadeCharacters []PremadeView  `json:"premade_characters,omitempty"`
	Character         *CharacterView `json:"character,omitempty"`

	*GameplayView
}

type MouseView struct {
	X       int  `json:"x"`
	Y       int  `json:"y"`
	Buttons int  `json:"buttons"`
	Visible bool `json:"visible"`
}

type ScreenView struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PendingView - что осталось в отложенных очередях.
type PendingView struct {
	MovementWaypointsRemaining int  `json:"movement_waypoints_remaining"`
	PendingAttacks             int  `json:"pending_attacks"`
	DialogueSelection          bool `json:"dialogue_selection"`
}

// DialogueSelectionView - судьба последнего отложенного выбора реплики.
type DialogueSelectionView struct {
	Index   int    `json:"index"`
	Outcome string `json:"outcome"` // committed | discarded | failed
	Tick    uint64 `json:"tick"`
	Error   string `json:"error,omitempty"`
}

// --- Меню ---

type SaveGameView struct {
	Slot          int    `json:"slot"`
	Exists        bool   `json:"exists"`
	CharacterName string `json:"character_name,omitempty"`
	Description   string `json:"description,omitempty"`
}

type PremadeView struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// --- Персонаж ---

type CharacterView struct {
	Name               string         `json:"name"`
	Level              int            `json:"level"`
	Experience         int            `json:"experience"`
	XPForNextLevel     int            `json:"xp_for_next_level"`
	CanLevelUp         bool           `json:"can_level_up"`
	UnspentSkillPoints int            `json:"unspent_skill_points"`
	Special            map[string]int `json:"special"`
	DerivedStats       DerivedView    `json:"derived_stats"`
	Traits             []string       `json:"traits"`
	TaggedSkills       []string       `json:"tagged_skills"`
	Skills             map[string]int `json:"skills"`
	Perks              []PerkView     `json:"perks"`

	// Только в редакторе персонажа.
	RemainingPoints       *int       `json:"remaining_points,omitempty"`
	TaggedSkillsRemaining *int       `json:"tagged_skills_remaining,omitempty"`
	AvailableTraits       []string   `json:"available_traits,omitempty"`
	AvailablePerks        []PerkView `json:"available_perks,omitempty"`
}

type DerivedView struct {
	MaxHP          int `json:"max_hp"`
	CurrentHP      int `json:"current_hp"`
	MaxAP          int `json:"max_ap"`
	ArmorClass     int `json:"armor_class"`
	MeleeDamage    int `json:"melee_damage"`
	CarryWeight    int `json:"carry_weight"`
	Sequence       int `json:"sequence"`
	HealingRate    int `json:"healing_rate"`
	CriticalChance int `json:"critical_chance"`
}

type PerkView struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Rank int    `json:"rank,omitempty"`
}

// --- Игровой процесс ---

// GameplayView - поля gameplay-контекстов. Каждый указатель заполняет
// отдельный под-писатель; если он упал, поле отсутствует.
type GameplayView struct {
	GameTime     *GameTimeView  `json:"game_time,omitempty"`
	Settings     *SettingsView  `json:"settings,omitempty"`
	Inventory    *InventoryView `json:"inventory,omitempty"`
	PartyMembers *[]ObjectView  `json:"party_members,omitempty"`
	MessageLog   *[]string      `json:"message_log,omitempty"`
	Quests       *[]QuestView   `json:"quests,omitempty"`
	Map          *MapView       `json:"map,omitempty"`
	Player       *PlayerView    `json:"player,omitempty"`
	Objects      *ObjectsView   `json:"objects,omitempty"`
	Combat       *CombatView    `json:"combat,omitempty"`
	Dialogue     *DialogueView  `json:"dialogue,omitempty"`
	Loot         *LootView      `json:"loot,omitempty"`
	Barter       *BarterView    `json:"barter,omitempty"`
	Worldmap     *WorldmapView  `json:"worldmap,omitempty"`
}

type GameTimeView struct {
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Day        int    `json:"day"`
	Hour       int    `json:"hour"`
	Ticks      uint64 `json:"ticks"`
	TimeString string `json:"time_string"`
}

type SettingsView struct {
	GameDifficulty   string `json:"game_difficulty"`
	CombatDifficulty string `json:"combat_difficulty"`
	AutoCombat       bool   `json:"auto_combat"`
}

type QuestView struct {
	Location    string `json:"location"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

type MapView struct {
	MapIndex  int    `json:"map_index"`
	MapName   string `json:"map_name"`
	Elevation int    `json:"elevation"`
}

type PlayerView struct {
	ID         types.EntityID `json:"id"`
	Tile       int            `json:"tile"`
	Elevation  int            `json:"elevation"`
	Rotation   int            `json:"rotation"`
	HP         int            `json:"hp"`
	MaxHP      int            `json:"max_hp"`
	AP         int            `json:"current_ap"`
	MaxAP      int            `json:"max_ap"`
	Busy       bool           `json:"animation_busy"`
	IsSneaking bool           `json:"is_sneaking"`
	Dead       bool           `json:"dead"`
	Neighbors  []int          `json:"neighbors,omitempty"`
}

// ObjectView - объект карты. Вложенные блоки заполнены по виду объекта.
type ObjectView struct {
	ID       types.EntityID `json:"id"`
	Type     string         `json:"type"`
	PID      int            `json:"pid"`
	Name     string         `json:"name"`
	Tile     int            `json:"tile"`
	Distance int            `json:"distance"`

	HP              *int   `json:"hp,omitempty"`
	MaxHP           *int   `json:"max_hp,omitempty"`
	Dead            *bool  `json:"dead,omitempty"`
	Hostile         *bool  `json:"hostile,omitempty"`
	Team            *int   `json:"team,omitempty"`
	IsPartyMember   bool   `json:"is_party_member,omitempty"`
	ItemType        string `json:"item_type,omitempty"`
	Quantity        int    `json:"quantity,omitempty"`
	SceneryType     string `json:"scenery_type,omitempty"`
	Open            *bool  `json:"open,omitempty"`
	Locked          *bool  `json:"locked,omitempty"`
	ItemCount       *int   `json:"item_count,omitempty"`
	DestinationMap  *int   `json:"destination_map,omitempty"`
	DestinationName string `json:"destination_map_name,omitempty"`
	DestinationTile *int   `json:"destination_tile,omitempty"`
	DestinationElev *int   `json:"destination_elevation,omitempty"`
}

type ObjectsView struct {
	Critters    []ObjectView `json:"critters"`
	GroundItems []ObjectView `json:"ground_items"`
	Scenery     []ObjectView `json:"scenery"`
	ExitGrids   []ObjectView `json:"exit_grids"`
}

type ItemView struct {
	ID       types.EntityID `json:"id"`
	PID      int            `json:"pid"`
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Quantity int            `json:"quantity"`
	Weight   int            `json:"weight,omitempty"`
	Cost     int            `json:"cost,omitempty"`

	AmmoCount    *int   `json:"ammo_count,omitempty"`
	AmmoCapacity *int   `json:"ammo_capacity,omitempty"`
	DamageMin    *int   `json:"damage_min,omitempty"`
	DamageMax    *int   `json:"damage_max,omitempty"`
	DamageType   string `json:"damage_type,omitempty"`
	Range        *int   `json:"range,omitempty"`
	APCost       *int   `json:"ap_cost,omitempty"`
}

type EquippedView struct {
	LeftHand  *ItemView `json:"left_hand,omitempty"`
	RightHand *ItemView `json:"right_hand,omitempty"`
	Armor     *ItemView `json:"armor,omitempty"`
}

type InventoryView struct {
	Items              []ItemView   `json:"items"`
	Equipped           EquippedView `json:"equipped"`
	TotalWeight        int          `json:"total_weight"`
	CarryCapacity      int          `json:"carry_capacity"`
	ActiveHand         string       `json:"active_hand"`
	CurrentHitMode     int          `json:"current_hit_mode"`
	CurrentHitModeName string       `json:"current_hit_mode_name"`
}

type CombatantView struct {
	ObjectView
	HitChances map[string]int `json:"hit_chances,omitempty"`
}

type CombatView struct {
	Round      int             `json:"combat_round"`
	PlayerTurn bool            `json:"player_turn"`
	CurrentAP  int             `json:"current_ap"`
	MaxAP      int             `json:"max_ap"`
	FreeMove   int             `json:"free_move"`
	Hostiles   []CombatantView `json:"hostiles"`
}

type DialogueView struct {
	SpeakerID   types.EntityID       `json:"speaker_id"`
	SpeakerName string               `json:"speaker_name"`
	ReplyText   string               `json:"reply_text"`
	Options     []DialogueOptionView `json:"options"`
}

type DialogueOptionView struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type LootView struct {
	TargetID   types.EntityID `json:"target_id"`
	TargetName string         `json:"target_name"`
	Items      []ItemView     `json:"container_items"`
}

type BarterView struct {
	MerchantID         types.EntityID `json:"merchant_id"`
	MerchantName       string         `json:"merchant_name"`
	PlayerOffer        []ItemView     `json:"player_offer"`
	MerchantOffer      []ItemView     `json:"merchant_offer"`
	MerchantInventory  []ItemView     `json:"merchant_inventory"`
	PlayerOfferValue   int            `json:"player_offer_value"`
	MerchantOfferValue int            `json:"merchant_offer_value"`
	PlayerCaps         int            `json:"player_caps"`
	MerchantCaps       int            `json:"merchant_caps"`
	TradeWillSucceed   bool           `json:"trade_will_succeed"`
}

type WorldmapView struct {
	CurrentAreaID   int            `json:"current_area_id"`
	CurrentAreaName string         `json:"current_area_name,omitempty"`
	WorldPosX       int            `json:"world_pos_x"`
	WorldPosY       int            `json:"world_pos_y"`
	IsWalking       bool           `json:"is_walking"`
	Locations       []LocationView `json:"locations"`
}

type LocationView struct {
	AreaID    int            `json:"area_id"`
	Name      string         `json:"name"`
	Known     bool           `json:"known"`
	Visited   bool           `json:"visited"`
	Entrances []EntranceView `json:"entrances,omitempty"`
}

type EntranceView struct {
	Index     int  `json:"index"`
	MapIndex  int  `json:"map_index"`
	Elevation int  `json:"elevation"`
	Tile      int  `json:"tile"`
	Known     bool `json:"known"`
}
