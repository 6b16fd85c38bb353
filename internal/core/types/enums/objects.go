package enums

// ObjectKind - вид объекта карты. Совпадает с полем Kind в EntityID.
type ObjectKind uint8

const (
	KindItem ObjectKind = iota
	KindCritter
	KindScenery
	KindWall
	KindTile
	KindMisc
)

var objectKinds = newRegistry(map[ObjectKind]string{
	KindItem:    "item",
	KindCritter: "critter",
	KindScenery: "scenery",
	KindWall:    "wall",
	KindTile:    "tile",
	KindMisc:    "misc",
})

func (k ObjectKind) String() string {
	if n, ok := objectKinds.name(k); ok {
		return n
	}
	return "unknown"
}

func ParseObjectKind(s string) (ObjectKind, bool) { return objectKinds.parse(s) }

// ItemType - тип предмета.
type ItemType uint8

const (
	ItemArmor ItemType = iota
	ItemContainer
	ItemDrug
	ItemWeapon
	ItemAmmo
	ItemMisc
	ItemKey
)

var itemTypes = newRegistry(map[ItemType]string{
	ItemArmor:     "armor",
	ItemContainer: "container",
	ItemDrug:      "drug",
	ItemWeapon:    "weapon",
	ItemAmmo:      "ammo",
	ItemMisc:      "misc",
	ItemKey:       "key",
})

func (t ItemType) String() string {
	if n, ok := itemTypes.name(t); ok {
		return n
	}
	return "unknown"
}

func ParseItemType(s string) (ItemType, bool) { return itemTypes.parse(s) }

// SceneryType - подтип декорации.
type SceneryType uint8

const (
	SceneryDoor SceneryType = iota
	SceneryStairs
	SceneryElevator
	SceneryLadderUp
	SceneryLadderDown
	SceneryGeneric
	SceneryContainer
)

var sceneryTypes = newRegistry(map[SceneryType]string{
	SceneryDoor:       "door",
	SceneryStairs:     "stairs",
	SceneryElevator:   "elevator",
	SceneryLadderUp:   "ladder_up",
	SceneryLadderDown: "ladder_down",
	SceneryGeneric:    "generic",
	SceneryContainer:  "container",
})

func (t SceneryType) String() string {
	if n, ok := sceneryTypes.name(t); ok {
		return n
	}
	return "unknown"
}
