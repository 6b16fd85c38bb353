package sandbox

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"agent-bridge/internal/core/types"
	"agent-bridge/internal/sim"
)

// DialogueNode - реплика собеседника и варианты ответа.
type DialogueNode struct {
	Reply   string
	Options []DialogueOption
}

// DialogueOption: Next < 0 завершает разговор, Barter открывает торговлю.
type DialogueOption struct {
	Text   string
	Next   int
	Barter bool
}

type conversation struct {
	speaker   types.EntityID
	node      int
	highlight int
}

type lootSession struct {
	target types.EntityID
}

type barterSession struct {
	merchant      types.EntityID
	playerOffer   []stack
	merchantOffer []stack
}

// --- Диалог ---

func (w *World) startDialogue(e *entity) {
	w.path = nil
	w.dialogue = &conversation{speaker: e.id, highlight: -1}
	w.log.WithField("speaker", e.name).Debug("Dialogue started")
}

func (w *World) speaker() (*entity, *DialogueNode, bool) {
	if w.dialogue == nil {
		return nil, nil, false
	}
	e, ok := w.get(w.dialogue.speaker)
	if !ok || e.dead || w.dialogue.node >= len(e.talk) {
		w.dialogue = nil
		return nil, nil, false
	}
	return e, &e.talk[w.dialogue.node], true
}

func (w *World) Dialogue() (sim.DialogueState, bool) {
	e, node, ok := w.speaker()
	if !ok {
		return sim.DialogueState{}, false
	}
	st := sim.DialogueState{Speaker: e.id, SpeakerName: e.name, Reply: node.Reply}
	for _, o := range node.Options {
		st.Options = append(st.Options, o.Text)
	}
	return st, true
}

func (w *World) HighlightDialogueOption(index int) error {
	_, node, ok := w.speaker()
	if !ok {
		return fmt.Errorf("%w: not in dialogue", sim.ErrBlocked)
	}
	if index < 0 || index >= len(node.Options) {
		return fmt.Errorf("%w: option %d of %d", sim.ErrInvalid, index, len(node.Options))
	}
	w.dialogue.highlight = index
	return nil
}

func (w *World) SelectDialogueOption(index int) error {
	e, node, ok := w.speaker()
	if !ok {
		return fmt.Errorf("%w: not in dialogue", sim.ErrBlocked)
	}
	if index < 0 || index >= len(node.Options) {
		return fmt.Errorf("%w: option %d of %d", sim.ErrInvalid, index, len(node.Options))
	}
	opt := node.Options[index]
	w.log.WithFields(logrus.Fields{"speaker": e.name, "option": opt.Text}).Debug("Dialogue option chosen")

	switch {
	case opt.Barter:
		w.barter = &barterSession{merchant: e.id}
	case opt.Next < 0 || opt.Next >= len(e.talk):
		w.dialogue = nil
	default:
		w.dialogue.node = opt.Next
		w.dialogue.highlight = -1
	}
	w.thought = ""
	return nil
}

// --- Обыск ---

func (w *World) openLoot(e *entity) error {
	w.path = nil
	w.loot = &lootSession{target: e.id}
	return nil
}

func (w *World) lootTarget() (*entity, bool) {
	if w.loot == nil {
		return nil, false
	}
	e, ok := w.get(w.loot.target)
	if !ok {
		w.loot = nil
		return nil, false
	}
	return e, true
}

func (w *World) Loot() (sim.LootState, bool) {
	e, ok := w.lootTarget()
	if !ok {
		return sim.LootState{}, false
	}
	return sim.LootState{Target: e.id, TargetName: e.name, Items: w.items(e.items)}, true
}

func (w *World) LootTake(pid, quantity int) (int, error) {
	e, ok := w.lootTarget()
	if !ok {
		return 0, fmt.Errorf("%w: not looting", sim.ErrBlocked)
	}
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: quantity %d", sim.ErrInvalid, quantity)
	}
	moved := 0
	for moved < quantity {
		i := findStack(e.items, pid)
		if i < 0 {
			break
		}
		s := e.items[i]
		take := min(s.qty, quantity-moved)
		if take == s.qty {
			e.items = append(e.items[:i], e.items[i+1:]...)
		} else {
			e.items[i].qty -= take
		}
		s.qty = take
		w.stow(s)
		moved += take
	}
	if moved == 0 {
		return 0, fmt.Errorf("pid %d in %s: %w", pid, e.name, sim.ErrNotFound)
	}
	w.emit(sim.EventContainerChange, true)
	return moved, nil
}

func (w *World) LootTakeAll() (int, error) {
	e, ok := w.lootTarget()
	if !ok {
		return 0, fmt.Errorf("%w: not looting", sim.ErrBlocked)
	}
	n := countItems(e.items)
	for _, s := range e.items {
		w.stow(s)
	}
	e.items = nil
	if n > 0 {
		w.emit(sim.EventContainerChange, true)
	}
	return n, nil
}

func (w *World) LootClose() error {
	if w.loot == nil {
		return fmt.Errorf("%w: not looting", sim.ErrBlocked)
	}
	w.loot = nil
	return nil
}

// --- Торговля ---

func (w *World) merchant() (*entity, bool) {
	if w.barter == nil {
		return nil, false
	}
	e, ok := w.get(w.barter.merchant)
	if !ok || e.dead {
		w.barter = nil
		return nil, false
	}
	return e, true
}

func (w *World) Barter() (sim.BarterState, bool) {
	e, ok := w.merchant()
	if !ok {
		return sim.BarterState{}, false
	}
	b := w.barter
	st := sim.BarterState{
		Merchant:           e.id,
		MerchantName:       e.name,
		PlayerOffer:        w.items(b.playerOffer),
		MerchantOffer:      w.items(b.merchantOffer),
		MerchantInventory:  w.items(e.items),
		PlayerOfferValue:   w.value(b.playerOffer),
		MerchantOfferValue: w.value(b.merchantOffer),
		PlayerCaps:         w.carried(PIDCaps),
		MerchantCaps:       e.caps,
	}
	st.WillSucceed = st.PlayerOfferValue >= st.MerchantOfferValue
	return st, true
}

// move переносит до qty единиц между двумя столами.
func move(from, to []stack, pid, qty int) ([]stack, []stack, int) {
	moved := 0
	for moved < qty {
		i := findStack(from, pid)
		if i < 0 {
			break
		}
		s := from[i]
		take := min(s.qty, qty-moved)
		if take == s.qty {
			from = append(from[:i], from[i+1:]...)
		} else {
			from[i].qty -= take
		}
		s.qty = take
		if j := findStack(to, pid); j >= 0 && s.ammo == 0 {
			to[j].qty += take
		} else {
			to = append(to, s)
		}
		moved += take
	}
	return from, to, moved
}

func (w *World) BarterMove(op sim.BarterOp, pid, quantity int) error {
	e, ok := w.merchant()
	if !ok {
		return fmt.Errorf("%w: not in barter", sim.ErrBlocked)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity %d", sim.ErrInvalid, quantity)
	}
	b := w.barter
	var n int
	switch op {
	case sim.BarterOffer:
		w.inv, b.playerOffer, n = move(w.inv, b.playerOffer, pid, quantity)
	case sim.BarterRemoveOffer:
		b.playerOffer, w.inv, n = move(b.playerOffer, w.inv, pid, quantity)
	case sim.BarterRequest:
		e.items, b.merchantOffer, n = move(e.items, b.merchantOffer, pid, quantity)
	case sim.BarterRemoveRequest:
		b.merchantOffer, e.items, n = move(b.merchantOffer, e.items, pid, quantity)
	default:
		return fmt.Errorf("%w: barter op %d", sim.ErrInvalid, op)
	}
	if n == 0 {
		return fmt.Errorf("pid %d for %s: %w", pid, op, sim.ErrNotFound)
	}
	return nil
}

// BarterConfirm меняет столы местами, если предложение игрока не дешевле.
func (w *World) BarterConfirm() error {
	e, ok := w.merchant()
	if !ok {
		return fmt.Errorf("%w: not in barter", sim.ErrBlocked)
	}
	b := w.barter
	give, want := w.value(b.playerOffer), w.value(b.merchantOffer)
	if give < want {
		return fmt.Errorf("%w: offer %d is less than %d", sim.ErrBlocked, give, want)
	}
	for _, s := range b.merchantOffer {
		w.stow(s)
	}
	e.items = append(e.items, b.playerOffer...)
	b.playerOffer, b.merchantOffer = nil, nil
	w.message("%s accepts the deal.", e.name)
	w.log.WithFields(logrus.Fields{"merchant": e.name, "offered": give, "received": want}).Info("Barter completed")
	return nil
}

// closeBarter возвращает предметы со столов владельцам.
func (w *World) closeBarter() {
	b := w.barter
	if b == nil {
		return
	}
	for _, s := range b.playerOffer {
		w.stow(s)
	}
	if e, ok := w.get(b.merchant); ok {
		e.items = append(e.items, b.merchantOffer...)
	}
	w.barter = nil
}
