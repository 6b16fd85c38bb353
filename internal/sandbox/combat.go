package sandbox

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"agent-bridge/internal/core/types"
	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/sim"
)

const (
	// AggroRadius - дальше этого противник не преследует.
	AggroRadius = 15
	// FleeRadius - end combat невозможен, пока враг ближе.
	FleeRadius = 10
	// NPCActionTicks - пауза между действиями противника.
	NPCActionTicks = 2
	// DefaultNPCAP - очки действия существ песочницы.
	DefaultNPCAP = 6
)

// Штраф к шансу попадания по прицельным зонам.
var locationPenalty = map[enums.HitLocation]int{
	enums.HitLocationUncalled: 0,
	enums.HitLocationTorso:    0,
	enums.HitLocationLeftLeg:  20,
	enums.HitLocationRightLeg: 20,
	enums.HitLocationLeftArm:  30,
	enums.HitLocationRightArm: 30,
	enums.HitLocationGroin:    30,
	enums.HitLocationHead:     40,
	enums.HitLocationEyes:     60,
}

// Ключи настроек боевого ИИ и допустимые значения.
var aiOptions = map[string][]string{
	"attack_who":       {"whomever_attacking_me", "strongest", "weakest", "whomever", "closest"},
	"distance":         {"stay_close", "charge", "snipe", "on_your_own", "stay"},
	"best_weapon":      {"no_pref", "melee", "melee_over_ranged", "ranged_over_melee", "ranged", "unarmed"},
	"chem_use":         {"clean", "stims_when_hurt_little", "stims_when_hurt_lots", "sometimes", "anytime", "always"},
	"run_away_mode":    {"none", "coward", "finger_hurts", "bleeding", "not_feeling_good", "tourniquet", "never"},
	"area_attack_mode": {"always", "sometimes", "be_sure", "be_careful", "be_absolutely_sure"},
	"disposition":      {"none", "custom", "coward", "defensive", "aggressive", "berserk"},
}

type combat struct {
	round    int
	player   types.EntityID
	current  types.EntityID
	order    *turnOrder
	npcDelay int
}

func (c *combat) playerTurn() bool { return c.current == c.player }

func (w *World) InCombat() bool { return w.combat != nil }

func (w *World) hostiles() []*entity {
	p := w.me()
	var out []*entity
	w.ents.Each(func(_ types.EntityID, e *entity) bool {
		if e.alive() && e.hostile && e.mapIndex == w.mapIndex && e.elevation == p.elevation {
			out = append(out, e)
		}
		return true
	})
	return out
}

func (w *World) RequestCombat() error {
	if w.combat != nil {
		return nil
	}
	if w.screen != screenGameplay {
		return fmt.Errorf("%w: not in gameplay", sim.ErrBlocked)
	}
	if len(w.hostiles()) == 0 {
		return fmt.Errorf("no hostiles around")
	}
	w.startCombat()
	return nil
}

func (w *World) startCombat() {
	w.path = nil
	w.combat = &combat{player: w.player, order: newTurnOrder()}
	w.emit(sim.EventCombatStart, true)
	w.message("Combat begins.")
	w.log.WithField("hostiles", len(w.hostiles())).Info("Combat started")
	w.nextRound()
}

// nextRound заполняет очередь ходов по Sequence, больший ходит раньше.
func (w *World) nextRound() {
	c := w.combat
	c.round++
	c.order.Add(w.player, -w.me().sequence)
	for _, e := range w.hostiles() {
		c.order.Add(e.id, -e.sequence)
	}
	w.ents.Each(func(_ types.EntityID, e *entity) bool {
		if e.party && e.alive() && e.mapIndex == w.mapIndex {
			c.order.Add(e.id, -e.sequence)
		}
		return true
	})
	w.nextTurn()
}

func (w *World) nextTurn() {
	c := w.combat
	for {
		id, ok := c.order.Next()
		if !ok {
			w.nextRound()
			return
		}
		e, ok := w.get(id)
		if !ok || !e.alive() {
			continue
		}
		c.current = id
		c.npcDelay = NPCActionTicks
		if id == w.player {
			w.resetAP()
		} else {
			if e.maxAP == 0 {
				e.maxAP = DefaultNPCAP
			}
			e.ap = e.maxAP
		}
		return
	}
}

func (w *World) endCombat(reason string) {
	if w.combat == nil {
		return
	}
	w.combat = nil
	w.resetAP()
	w.message("Combat ends.")
	w.log.WithField("reason", reason).Info("Combat ended")
}

func (w *World) resetAP() {
	p := w.me()
	p.maxAP = w.sheet.derived().MaxAP
	p.ap = p.maxAP
}

func (w *World) CombatState() sim.CombatState {
	if w.combat == nil {
		return sim.CombatState{}
	}
	return sim.CombatState{Round: w.combat.round, PlayerTurn: w.combat.playerTurn()}
}

// --- Оружие и режимы ---

func (w *World) ActiveHand() enums.Hand { return w.hand }

func (w *World) handSlot(h enums.Hand) **stack {
	if h == enums.HandLeft {
		return &w.left
	}
	return &w.right
}

func (w *World) weapon(h enums.Hand) (*stack, *sim.WeaponStats) {
	s := *w.handSlot(h)
	if s == nil {
		return nil, nil
	}
	return s, w.proto(s.pid).Weapon
}

func (w *World) HasWeapon(h enums.Hand) bool {
	_, wp := w.weapon(h)
	return wp != nil
}

func (w *World) CurrentHitMode() enums.HitMode {
	name := "primary"
	if w.secondary {
		name = "secondary"
	}
	return enums.ResolveHitMode(name, w.HasWeapon(w.hand), w.hand)
}

func (w *World) SwitchHand() enums.Hand {
	if w.hand == enums.HandLeft {
		w.hand = enums.HandRight
	} else {
		w.hand = enums.HandLeft
	}
	w.secondary = false
	return w.hand
}

func (w *World) CycleAttackMode() enums.HitMode {
	w.secondary = !w.secondary
	return w.CurrentHitMode()
}

func modeHand(m enums.HitMode) enums.Hand {
	if m == enums.HitModeLeftPrimary || m == enums.HitModeLeftSecondary {
		return enums.HandLeft
	}
	return enums.HandRight
}

// attackProfile - дальность и стоимость атаки выбранным режимом.
func (w *World) attackProfile(m enums.HitMode, aimed bool) (rng, cost int, wp *sim.WeaponStats, s *stack) {
	rng, cost = 1, 3
	if m == enums.HitModeKick {
		cost = 4
	}
	if m.IsWeapon() {
		s, wp = w.weapon(modeHand(m))
		if wp != nil {
			rng, cost = max(wp.Range, 1), wp.APCost
			if m == enums.HitModeLeftSecondary || m == enums.HitModeRightSecondary {
				cost++
			}
		}
	}
	if aimed {
		cost++
	}
	return rng, cost, wp, s
}

func (w *World) CheckShot(target types.EntityID, mode enums.HitMode, aimed bool) enums.ShotVerdict {
	e, ok := w.get(target)
	if !ok || e.dead {
		return enums.ShotTargetDead
	}
	p := w.me()
	rng, cost, wp, s := w.attackProfile(mode, aimed)
	switch {
	case wp != nil && wp.AmmoCapacity > 0 && s.ammo == 0:
		return enums.ShotNoAmmo
	case w.TileDistance(p.tile, e.tile) > rng:
		return enums.ShotOutOfRange
	case w.combat != nil && p.ap < cost:
		return enums.ShotNotEnoughAP
	case !w.lineOfSight(p.elevation, p.tile, e.tile):
		return enums.ShotAimBlocked
	}
	return enums.ShotOK
}

func (w *World) HitChance(target types.EntityID, mode enums.HitMode, loc enums.HitLocation) int {
	e, ok := w.get(target)
	if !ok || e.dead {
		return -1
	}
	skill := enums.SkillUnarmed
	if _, wp := w.weapon(modeHand(mode)); mode.IsWeapon() && wp != nil {
		skill = enums.SkillSmallGuns
		if wp.Range <= 1 {
			skill = enums.SkillMeleeWeapons
		}
	}
	chance := 50 + w.sheet.skill(skill)/2 - 2*w.TileDistance(w.me().tile, e.tile) - locationPenalty[loc]
	return min(max(chance, 5), 95)
}

// Attack - одна атака игрока в его ход.
func (w *World) Attack(target types.EntityID, mode enums.HitMode, loc enums.HitLocation) error {
	if w.combat == nil {
		return fmt.Errorf("%w: not in combat", sim.ErrBlocked)
	}
	if !w.combat.playerTurn() {
		return fmt.Errorf("%w: not your turn", sim.ErrBlocked)
	}
	if w.IsAnimating() {
		return fmt.Errorf("%w: player is busy", sim.ErrBlocked)
	}
	aimed := loc != enums.HitLocationUncalled
	if v := w.CheckShot(target, mode, aimed); v != enums.ShotOK {
		return fmt.Errorf("%w: %s", sim.ErrBlocked, v.Reason())
	}

	e, _ := w.get(target)
	p := w.me()
	_, cost, wp, s := w.attackProfile(mode, aimed)
	p.ap -= cost
	if wp != nil && wp.AmmoCapacity > 0 {
		s.ammo--
	}
	w.anim = AttackTicks
	p.rotation = w.rotation(p.tile, e.tile)

	if !e.hostile {
		e.hostile = true
		if e.team == 0 {
			e.team = 1
		}
	}

	if w.rng.Intn(100) >= w.HitChance(target, mode, loc) {
		w.message("You miss %s.", e.name)
		return nil
	}
	dmg := w.rollDamage(p.strength, wp)
	w.message("You hit %s for %d damage.", e.name, dmg)
	w.hurt(p, e, dmg)
	return nil
}

func (w *World) rollDamage(strength int, wp *sim.WeaponStats) int {
	if wp == nil {
		return 1 + w.rng.Intn(max(strength/2, 1))
	}
	return wp.DamageMin + w.rng.Intn(wp.DamageMax-wp.DamageMin+1)
}

// hurt применяет урон с учётом брони. Минимум одна единица.
func (w *World) hurt(attacker, target *entity, amount int) {
	if target.dead {
		return
	}
	if target.id == w.player && w.armor != nil && attacker != nil {
		amount -= 2
	}
	amount = max(amount, 1)
	target.hp -= amount

	fields := logrus.Fields{"target": target.name, "damage": amount, "hp_after": target.hp}
	if attacker != nil {
		fields["attacker"] = attacker.name
	}
	w.log.WithFields(fields).Debug("Damage applied")

	if target.hp > 0 {
		return
	}
	target.hp = 0
	target.dead = true
	target.hostile = false

	if target.id == w.player {
		w.message("You have died.")
		w.endCombat("player died")
		w.path = nil
		w.screen = screenDeath
		w.emit(sim.EventDeathScreen, true)
		return
	}

	w.message("%s dies.", target.name)
	if attacker != nil && attacker.id == w.player {
		w.gainXP(KillXP)
	}
	if w.combat != nil {
		w.combat.order.Remove(target.id)
		if len(w.hostiles()) == 0 {
			w.endCombat("all hostiles dead")
		}
	}
}

func (w *World) EndTurn() error {
	if w.combat == nil {
		return fmt.Errorf("%w: not in combat", sim.ErrBlocked)
	}
	if !w.combat.playerTurn() {
		return fmt.Errorf("%w: not your turn", sim.ErrBlocked)
	}
	w.path = nil
	w.nextTurn()
	return nil
}

func (w *World) ForceEndCombat() { w.endCombat("forced") }

// tryFlee - Enter в бою: выйти можно, если рядом нет видимых врагов.
func (w *World) tryFlee() {
	if w.combat == nil {
		return
	}
	p := w.me()
	for _, e := range w.hostiles() {
		if w.TileDistance(p.tile, e.tile) <= FleeRadius && w.lineOfSight(p.elevation, e.tile, p.tile) {
			w.message("You cannot end combat with enemies nearby.")
			return
		}
	}
	w.endCombat("fled")
}

func (w *World) SetAutoCombat(enabled bool) { w.autoCombat = enabled }

// ConfigureAI принимает только известные ключи и значения.
func (w *World) ConfigureAI(settings map[string]string) error {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		allowed, ok := aiOptions[k]
		if !ok {
			return fmt.Errorf("%w: unknown AI setting %q", sim.ErrInvalid, k)
		}
		if !contains(allowed, settings[k]) {
			return fmt.Errorf("%w: %s=%q (allowed: %v)", sim.ErrInvalid, k, settings[k], allowed)
		}
	}
	for _, k := range keys {
		w.aiSettings[k] = settings[k]
	}
	return nil
}

// AISettings - текущие настройки боевого ИИ игрока.
func (w *World) AISettings() map[string]string {
	out := make(map[string]string, len(w.aiSettings))
	for k, v := range w.aiSettings {
		out[k] = v
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// --- Ход противника ---

// combatTick выполняет одно действие того, чей сейчас ход, если это не
// игрок под ручным управлением.
func (w *World) combatTick() {
	c := w.combat
	if c == nil || w.anim > 0 || len(w.path) > 0 {
		return
	}
	if c.playerTurn() && !w.autoCombat {
		return
	}
	if c.npcDelay > 0 {
		c.npcDelay--
		return
	}
	c.npcDelay = NPCActionTicks

	actor, ok := w.ents.Resolve(c.current)
	if !ok || !actor.alive() {
		w.nextTurn()
		return
	}

	var target *entity
	if c.playerTurn() {
		target = w.nearestHostile(actor)
	} else {
		target = w.me()
	}
	if target == nil || !w.npcAct(actor, target) {
		if c.playerTurn() {
			w.path = nil
		}
		if w.combat != nil && w.combat.current == actor.id {
			w.nextTurn()
		}
	}
}

func (w *World) nearestHostile(from *entity) *entity {
	var best *entity
	for _, e := range w.hostiles() {
		if best == nil || w.TileDistance(from.tile, e.tile) < w.TileDistance(from.tile, best.tile) {
			best = e
		}
	}
	return best
}

// npcAct - одно решение: атаковать соседа, подойти ближе или закончить ход.
// Возвращает false, если действовать больше нечем.
func (w *World) npcAct(actor, target *entity) bool {
	dist := w.TileDistance(actor.tile, target.tile)
	log := w.log.WithFields(logrus.Fields{"actor": actor.name, "target": target.name, "distance": dist, "ap": actor.ap})

	if !w.lineOfSight(actor.elevation, actor.tile, target.tile) || dist > AggroRadius {
		log.Debug("Target not reachable, ending turn")
		return false
	}

	if dist <= 1 {
		if actor.ap < 3 {
			return false
		}
		actor.ap -= 3
		actor.rotation = w.rotation(actor.tile, target.tile)
		if w.rng.Intn(100) < 60 {
			dmg := 1 + w.rng.Intn(max(actor.strength/2, 1))
			w.message("%s hits %s for %d damage.", actor.name, target.name, dmg)
			w.hurt(actor, target, dmg)
		} else {
			w.message("%s misses %s.", actor.name, target.name)
		}
		log.Debug("Attacked")
		return true
	}

	if actor.ap < 1 {
		return false
	}
	next, ok := w.towards(actor, target.tile)
	if !ok {
		log.Debug("Path blocked, ending turn")
		return false
	}
	actor.ap--
	actor.rotation = w.rotation(actor.tile, next)
	actor.tile = next
	return true
}
