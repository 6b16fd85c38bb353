// Package sim описывает узкие интерфейсы симуляции, через которые мост
// читает мир и отдаёт ему действия.
//
// Мост не знает правил боя, поиска пути или торговли: всё это делает
// хост. Каждая роль - отдельный интерфейс, Simulation их объединяет.
// Методы вызываются только из тика моста, синхронизация не нужна.
package sim

import (
	"agent-bridge/internal/core/types"
	"agent-bridge/internal/core/types/enums"
)

// Modes - грубые флаги режима хоста.
type Modes interface {
	GameMode() enums.GameMode
	GameState() int
	MoviePlaying() bool
	Screen() Screen
	Mouse() Mouse
}

// Actors - игрок и объекты текущей карты.
type Actors interface {
	// Player возвращает false, если активного персонажа нет (меню, загрузка).
	Player() (Player, bool)
	// Resolve проверяет ссылку по живому набору объектов.
	Resolve(id types.EntityID) (Object, bool)
	Objects(q ObjectQuery) []Object
	PartyMembers() []Object
	Map() (MapInfo, bool)
	// IsAnimating - игрок в середине анимации и не примет новое действие.
	IsAnimating() bool
	ForceIdle()
}

type Pathing interface {
	// FindPath возвращает клетки пути без стартовой; пусто - пути нет.
	FindPath(from, to, elevation, maxSteps int) []int
	// MoveTo ставит игроку одно атомарное перемещение.
	// apLimit < 0 - без ограничения по очкам действия.
	MoveTo(tile int, run bool, apLimit int) error
	TileDistance(a, b int) int
	Neighbors(tile int) []int
	CenterCamera(tile int) error
	ToggleSneak() bool
}

type Combat interface {
	InCombat() bool
	RequestCombat() error
	CombatState() CombatState
	ActiveHand() enums.Hand
	HasWeapon(hand enums.Hand) bool
	CurrentHitMode() enums.HitMode
	// CheckShot - проверка выполнимости атаки до постановки в очередь.
	CheckShot(target types.EntityID, mode enums.HitMode, aimed bool) enums.ShotVerdict
	HitChance(target types.EntityID, mode enums.HitMode, loc enums.HitLocation) int
	Attack(target types.EntityID, mode enums.HitMode, loc enums.HitLocation) error
	EndTurn() error
	SwitchHand() enums.Hand
	CycleAttackMode() enums.HitMode
	ForceEndCombat()
	SetAutoCombat(enabled bool)
	ConfigureAI(settings map[string]string) error
}

type Inventories interface {
	Inventory() Inventory
	// DropItem бросает одну единицу предмета. ErrNotFound - больше нечего бросать.
	DropItem(pid int) error
	GiveItem(pid, quantity int) error
	EquipItem(pid int, hand enums.Hand) error
	// UnequipItem возвращает false, если рука и так пуста.
	UnequipItem(hand enums.Hand) (bool, error)
	UseItem(pid int) error
	UseEquippedItem(timerSeconds int) error
	// ReloadWeapon возвращает full=true, если магазин уже полон.
	// ammoPID == 0 - любые подходящие патроны.
	ReloadWeapon(hand enums.Hand, ammoPID int) (full bool, err error)
	UseCombatItem(pid int) error
}

type Interaction interface {
	UseObject(id types.EntityID) error
	OpenDoor(id types.EntityID) error
	PickUp(id types.EntityID) error
	UseSkill(skill enums.Skill, target types.EntityID) error
	TalkTo(id types.EntityID) error
	UseItemOn(pid int, target types.EntityID) error
	LookAt(id types.EntityID) (string, error)
	OpenContainer(id types.EntityID) error
	// Contents - содержимое контейнера или предмета-контейнера.
	Contents(id types.EntityID) ([]Item, bool)
	Holodisks() []Holodisk
}

type Conversation interface {
	Dialogue() (DialogueState, bool)
	HighlightDialogueOption(index int) error
	SelectDialogueOption(index int) error
}

type Looting interface {
	Loot() (LootState, bool)
	// LootTake возвращает, сколько единиц реально перенесено.
	LootTake(pid, quantity int) (int, error)
	LootTakeAll() (int, error)
	LootClose() error
}

type Trading interface {
	Barter() (BarterState, bool)
	BarterMove(op BarterOp, pid, quantity int) error
	BarterConfirm() error
}

type WorldTravel interface {
	WorldMap() (WorldMapState, bool)
	Travel(areaID int) error
	EnterLocation(areaID, entrance int) error
}

type CharacterEditor interface {
	Character() CharacterSheet
	// Editor возвращает false, если редактор не открыт.
	Editor() (EditorState, bool)
	SetPrimaryStats(values [7]int) error
	AdjustStat(stat enums.Stat, up bool) error
	SetTraits(traits []enums.Trait) error
	ToggleTrait(trait enums.Trait) error
	SetTaggedSkills(skills []enums.Skill) error
	ToggleSkillTag(skill enums.Skill) error
	SkillAdd(skill enums.Skill) error
	SkillSub(skill enums.Skill) error
	PerkAdd(perkID int) error
	SetName(name string) error
}

type Menus interface {
	PremadeCharacters() []Premade
}

// Persistence - слоты сохранений, нумерация с 1.
type Persistence interface {
	ProbeSaveSlot(slot int) SaveSlotInfo
	SaveSlot(slot int, description string) error
	LoadSlot(slot int) error
	QuickSave(description string) error
	QuickLoad() error
}

type Input interface {
	MouseMove(x, y int)
	MouseClick(x, y int, right bool)
	SimulateKey(key enums.Key, down bool)
	EnqueueKey(code int)
}

type Overlay interface {
	ShowStatus(text string)
	HideStatus()
	ShowDialogueThought(text string)
	HideDialogueThought()
	FloatText(target types.EntityID, text string)
}

type Clock interface {
	GameTime() GameTime
	// Rest возвращает interrupted=true, если отдых прервали.
	Rest(hours int) (interrupted bool, err error)
}

type Journal interface {
	Settings() Settings
	Quests() []Quest
	MessageLog(limit int) []string
}

// Debug - читы тестового режима.
type Debug interface {
	MapTransition(mapIndex, elevation, tile, rotation int) error
	Teleport(tile, elevation int) error
	Detonate(tile, pid int) error
	Nudge(tile int) error
}

type Catalog interface {
	ItemName(pid int) string
}

// Simulation - всё, что мост требует от хоста.
type Simulation interface {
	Modes
	Actors
	Pathing
	Combat
	Inventories
	Interaction
	Conversation
	Looting
	Trading
	WorldTravel
	CharacterEditor
	Menus
	Persistence
	Input
	Overlay
	Clock
	Journal
	Debug
	Catalog
}
