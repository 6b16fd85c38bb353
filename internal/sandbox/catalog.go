package sandbox

import (
	"fmt"

	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/sim"
)

// PID предметов и объектов песочницы.
const (
	PIDKnife      = 4
	PIDPistol     = 8
	PIDBag        = 9
	PIDAmmo10mm   = 29
	PIDStimpak    = 40
	PIDCaps       = 41
	PIDDynamite   = 51
	PIDLeather    = 74
	PIDDoorKey    = 85
	PIDRock       = 19
	PIDPlayer     = 16777216
	PIDDoor       = 33554433
	PIDFootlocker = 33554434
	PIDStairs     = 33554435
	PIDShrine     = 33554436
	PIDExitGrid   = 83886080
)

// Proto - неизменяемое описание предмета.
type Proto struct {
	PID         int
	Name        string
	Type        enums.ItemType
	Weight      int
	Cost        int
	Description string
	Weapon      *sim.WeaponStats
	// Heal - сколько HP восстанавливает использование.
	Heal int
}

// DefaultCatalog - небольшой набор предметов, которого хватает всем сценам.
func DefaultCatalog() map[int]Proto {
	list := []Proto{
		{PID: PIDKnife, Name: "Knife", Type: enums.ItemWeapon, Weight: 1, Cost: 40,
			Description: "A short blade.",
			Weapon:      &sim.WeaponStats{DamageMin: 1, DamageMax: 6, DamageType: enums.DamageNormal, Range: 1, APCost: 3}},
		{PID: PIDPistol, Name: "10mm Pistol", Type: enums.ItemWeapon, Weight: 3, Cost: 250,
			Description: "A semi-automatic pistol chambered for 10mm.",
			Weapon: &sim.WeaponStats{AmmoCapacity: 12, AmmoPID: PIDAmmo10mm, DamageMin: 5, DamageMax: 12,
				DamageType: enums.DamageNormal, Range: 20, APCost: 5}},
		{PID: PIDBag, Name: "Bag", Type: enums.ItemContainer, Weight: 1, Cost: 5, Description: "A leather bag."},
		{PID: PIDAmmo10mm, Name: "10mm JHP", Type: enums.ItemAmmo, Weight: 0, Cost: 2, Description: "Hollow point rounds."},
		{PID: PIDStimpak, Name: "Stimpak", Type: enums.ItemDrug, Weight: 0, Cost: 175, Heal: 12,
			Description: "A healing chemical."},
		{PID: PIDCaps, Name: "Bottle Caps", Type: enums.ItemMisc, Weight: 0, Cost: 1, Description: "Currency."},
		{PID: PIDDynamite, Name: "Dynamite", Type: enums.ItemWeapon, Weight: 1, Cost: 150,
			Description: "Set the timer and run.",
			Weapon:      &sim.WeaponStats{DamageMin: 20, DamageMax: 40, DamageType: enums.DamageExplosion, Range: 0, APCost: 4}},
		{PID: PIDLeather, Name: "Leather Armor", Type: enums.ItemArmor, Weight: 8, Cost: 700, Description: "Tanned hides."},
		{PID: PIDDoorKey, Name: "Door Key", Type: enums.ItemKey, Weight: 0, Cost: 0, Description: "Opens a door somewhere."},
		{PID: PIDRock, Name: "Rock", Type: enums.ItemMisc, Weight: 1, Cost: 0, Description: "Just a rock."},
	}
	out := make(map[int]Proto, len(list))
	for _, p := range list {
		out[p.PID] = p
	}
	return out
}

func (w *World) proto(pid int) Proto {
	if p, ok := w.catalog[pid]; ok {
		return p
	}
	return Proto{PID: pid, Name: fmt.Sprintf("pid %d", pid), Type: enums.ItemMisc}
}

// ItemName - имя предмета по PID; для неизвестного - пустая строка.
func (w *World) ItemName(pid int) string {
	if p, ok := w.catalog[pid]; ok {
		return p.Name
	}
	return ""
}
