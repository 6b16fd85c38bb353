package sandbox

import (
	"fmt"

	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/sim"
)

// Стоимость действий с инвентарём в бою.
const (
	UseItemAP = 2
	ReloadAP  = 2
)

// fuse - взведённая взрывчатка на земле.
type fuse struct {
	pid       int
	tile      int
	elevation int
	mapIndex  int
	ticks     int
}

func (w *World) Inventory() sim.Inventory {
	inv := sim.Inventory{
		Items:         w.items(w.inv),
		CarryCapacity: w.sheet.derived().CarryWeight,
	}
	for _, it := range inv.Items {
		inv.TotalWeight += it.Weight
	}
	equipped := func(s *stack) *sim.Item {
		if s == nil {
			return nil
		}
		it := w.item(*s)
		inv.TotalWeight += it.Weight
		return &it
	}
	inv.LeftHand = equipped(w.left)
	inv.RightHand = equipped(w.right)
	inv.Armor = equipped(w.armor)
	return inv
}

// carried - количество предмета в инвентаре, без экипированного.
func (w *World) carried(pid int) int {
	if i := findStack(w.inv, pid); i >= 0 {
		return w.inv[i].qty
	}
	return 0
}

// stow кладёт одну пачку в инвентарь. Оружие сохраняет патроны.
func (w *World) stow(s stack) {
	if w.proto(s.pid).Weapon != nil {
		w.inv = append(w.inv, s)
		return
	}
	if i := findStack(w.inv, s.pid); i >= 0 {
		w.inv[i].qty += s.qty
		return
	}
	w.inv = append(w.inv, s)
}

// unstow снимает одну единицу предмета вместе с состоянием магазина.
func (w *World) unstow(pid int) (stack, bool) {
	i := findStack(w.inv, pid)
	if i < 0 {
		return stack{}, false
	}
	one := stack{pid: pid, qty: 1, ammo: w.inv[i].ammo}
	if w.inv[i].qty > 1 {
		w.inv[i].qty--
	} else {
		w.inv = append(w.inv[:i], w.inv[i+1:]...)
	}
	return one, true
}

// DropItem кладёт одну единицу на клетку игрока, сливая с лежащей пачкой.
func (w *World) DropItem(pid int) error {
	if w.screen != screenGameplay {
		return fmt.Errorf("%w: not in gameplay", sim.ErrBlocked)
	}
	if _, ok := w.unstow(pid); !ok {
		return fmt.Errorf("pid %d: %w", pid, sim.ErrNotFound)
	}
	p := w.me()
	for _, o := range w.Objects(sim.ObjectQuery{Kinds: []enums.ObjectKind{enums.KindItem}, Center: p.tile, Radius: 0}) {
		if o.PID == pid && o.Elevation == p.elevation && w.proto(pid).Weapon == nil {
			e, _ := w.get(o.ID)
			e.quantity++
			return nil
		}
	}
	w.PlaceItem(pid, 1, p.tile)
	return nil
}

func (w *World) GiveItem(pid, quantity int) error {
	if _, ok := w.catalog[pid]; !ok {
		return fmt.Errorf("%w: unknown pid %d", sim.ErrInvalid, pid)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity %d", sim.ErrInvalid, quantity)
	}
	w.inv = w.addStack(w.inv, pid, quantity)
	w.log.WithField("pid", pid).WithField("quantity", quantity).Debug("Item given")
	return nil
}

func (w *World) EquipItem(pid int, hand enums.Hand) error {
	if w.carried(pid) == 0 {
		return fmt.Errorf("pid %d: %w", pid, sim.ErrNotFound)
	}
	p := w.proto(pid)
	var slot **stack
	switch {
	case p.Type == enums.ItemArmor:
		slot = &w.armor
	case p.Weapon != nil:
		slot = w.handSlot(hand)
	default:
		return fmt.Errorf("%w: %s cannot be equipped", sim.ErrInvalid, p.Name)
	}
	s, _ := w.unstow(pid)
	if old := *slot; old != nil {
		w.stow(*old)
	}
	*slot = &s
	return nil
}

func (w *World) UnequipItem(hand enums.Hand) (bool, error) {
	slot := w.handSlot(hand)
	if *slot == nil {
		return false, nil
	}
	w.stow(**slot)
	*slot = nil
	return true, nil
}

func (w *World) UseItem(pid int) error {
	if w.carried(pid) == 0 {
		return fmt.Errorf("pid %d: %w", pid, sim.ErrNotFound)
	}
	if p := w.proto(pid); p.Type != enums.ItemDrug {
		return fmt.Errorf("%w: %s cannot be used", sim.ErrInvalid, p.Name)
	}
	if err := w.spendAP(UseItemAP); err != nil {
		return err
	}
	return w.consume(pid)
}

// consume применяет лекарство из инвентаря.
func (w *World) consume(pid int) error {
	p := w.proto(pid)
	if p.Type != enums.ItemDrug {
		return fmt.Errorf("%w: %s cannot be used", sim.ErrInvalid, p.Name)
	}
	w.unstow(pid)
	me := w.me()
	before := me.hp
	me.hp = min(me.hp+p.Heal, me.maxHP)
	w.message("You use %s and heal %d HP.", p.Name, me.hp-before)
	return nil
}

// spendAP списывает очки действия игрока в его ход.
func (w *World) spendAP(cost int) error {
	if w.combat == nil {
		return nil
	}
	if !w.combat.playerTurn() {
		return fmt.Errorf("%w: not your turn", sim.ErrBlocked)
	}
	me := w.me()
	if me.ap < cost {
		return fmt.Errorf("%w: need %d AP, have %d", sim.ErrBlocked, cost, me.ap)
	}
	me.ap -= cost
	return nil
}

// UseEquippedItem: взрывчатка в активной руке взводится и кладётся под ноги.
func (w *World) UseEquippedItem(timerSeconds int) error {
	slot := w.handSlot(w.hand)
	s := *slot
	if s == nil {
		return fmt.Errorf("%w: %s hand is empty", sim.ErrBlocked, w.hand)
	}
	p := w.proto(s.pid)
	switch {
	case p.Weapon != nil && p.Weapon.DamageType == enums.DamageExplosion:
		me := w.me()
		w.fuses = append(w.fuses, fuse{
			pid:       s.pid,
			tile:      me.tile,
			elevation: me.elevation,
			mapIndex:  w.mapIndex,
			ticks:     timerSeconds * TicksPerSecond,
		})
		if s.qty > 1 {
			s.qty--
		} else {
			*slot = nil
		}
		w.message("You set the timer for %d seconds.", timerSeconds)
		return nil
	case p.Type == enums.ItemDrug:
		*slot = nil
		w.stow(*s)
		return w.consume(s.pid)
	}
	return fmt.Errorf("%w: %s cannot be used", sim.ErrInvalid, p.Name)
}

// burnFuses отсчитывает таймеры и взрывает сработавшие.
func (w *World) burnFuses() {
	kept := w.fuses[:0]
	for _, f := range w.fuses {
		f.ticks--
		if f.ticks > 0 {
			kept = append(kept, f)
			continue
		}
		if f.mapIndex == w.mapIndex {
			w.explode(f.pid, f.elevation, f.tile)
		}
	}
	w.fuses = kept
}

func (w *World) ReloadWeapon(hand enums.Hand, ammoPID int) (bool, error) {
	s, wp := w.weapon(hand)
	if wp == nil {
		return false, fmt.Errorf("%w: no weapon in %s hand", sim.ErrInvalid, hand)
	}
	if wp.AmmoCapacity == 0 {
		return false, fmt.Errorf("%w: %s takes no ammo", sim.ErrInvalid, w.proto(s.pid).Name)
	}
	if ammoPID != 0 && ammoPID != wp.AmmoPID {
		return false, fmt.Errorf("%w: pid %d does not fit %s", sim.ErrInvalid, ammoPID, w.proto(s.pid).Name)
	}
	if s.ammo >= wp.AmmoCapacity {
		return true, nil
	}
	if w.carried(wp.AmmoPID) == 0 {
		return false, fmt.Errorf("ammo pid %d: %w", wp.AmmoPID, sim.ErrNotFound)
	}
	if err := w.spendAP(ReloadAP); err != nil {
		return false, err
	}
	var n int
	w.inv, n = takeStack(w.inv, wp.AmmoPID, wp.AmmoCapacity-s.ammo)
	s.ammo += n
	w.message("You reload with %d rounds.", n)
	return false, nil
}

func (w *World) UseCombatItem(pid int) error {
	if w.combat == nil {
		return fmt.Errorf("%w: not in combat", sim.ErrBlocked)
	}
	return w.UseItem(pid)
}
