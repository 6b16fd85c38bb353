package sandbox

import (
	"fmt"

	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/sim"
)

// SightRadius - враг в прямой видимости ближе этого начинает бой.
const SightRadius = 8

func keyOf(c rune) enums.Key {
	k, _ := enums.KeyForChar(c)
	return k
}

func (w *World) SimulateKey(key enums.Key, down bool) {
	if down {
		w.keys = append(w.keys, key)
	}
}

func (w *World) EnqueueKey(code int) { w.keys = append(w.keys, enums.Key(code)) }

func (w *World) MouseMove(x, y int) {
	w.mouse.X, w.mouse.Y, w.mouse.Visible = x, y, true
}

// MouseClick: левый клик по полю игры ведёт игрока в клетку под курсором.
func (w *World) MouseClick(x, y int, right bool) {
	w.MouseMove(x, y)
	w.mouse.Buttons = 1
	if right {
		w.mouse.Buttons = 2
		return
	}
	if w.screen != screenGameplay || w.mode != 0 {
		return
	}
	tile := w.Tile(x*w.width/640, y*w.height/480)
	if err := w.MoveTo(tile, false, -1); err != nil {
		w.log.WithError(err).Debug("Click move rejected")
	}
}

// Advance - один тик хоста.
func (w *World) Advance() {
	w.ticks++
	w.mouse.Buttons = 0
	keys := w.keys
	w.keys = nil
	for _, k := range keys {
		w.press(k)
	}

	switch w.screen {
	case screenMovie:
		w.movieTicks--
		if w.movieTicks <= 0 {
			w.SkipMovie()
		}
	case screenGameplay:
		if w.anim > 0 {
			w.anim--
		} else {
			w.walk()
		}
		w.noticeHostiles()
		w.combatTick()
		w.travel()
		w.burnFuses()
	}
}

// noticeHostiles начинает бой, когда враг замечает игрока.
func (w *World) noticeHostiles() {
	if w.combat != nil || w.world.active || w.dialogue != nil || w.barter != nil {
		return
	}
	p := w.me()
	if p.dead {
		return
	}
	for _, e := range w.hostiles() {
		if w.TileDistance(p.tile, e.tile) <= SightRadius && w.lineOfSight(p.elevation, e.tile, p.tile) {
			w.startCombat()
			return
		}
	}
}

func (w *World) press(k enums.Key) {
	switch w.screen {
	case screenMovie:
		if k == enums.KeyEscape || k == enums.KeySpace || k == enums.KeyReturn {
			w.SkipMovie()
		}
	case screenMainMenu:
		switch k {
		case keyOf('i'):
			w.StartAtMovie(30)
		case keyOf('c'):
			w.message("Credits roll by.")
		case keyOf('n'):
			w.screen = screenSelector
		case enums.KeyEscape:
			w.quit = true
		}
	case screenSelector:
		w.pressSelector(k)
	case screenEditor:
		w.pressEditor(k)
	case screenDeath:
		if k == enums.KeyEscape || k == enums.KeyReturn || k == enums.KeySpace {
			w.screen = screenMainMenu
		}
	case screenGameplay:
		if w.editor != nil {
			w.pressEditor(k)
			return
		}
		w.pressGameplay(k)
	}
}

func (w *World) pressSelector(k enums.Key) {
	n := len(w.premades)
	switch k {
	case enums.SelectorCreateCustom.Key():
		w.sheet = defaultSheet("None")
		w.openEditor(true)
	case enums.SelectorTakePremade.Key():
		w.sheet = w.premades[w.selected].sheet.clone()
		w.startGame()
	case enums.SelectorModifyPremade.Key():
		w.sheet = w.premades[w.selected].sheet.clone()
		w.openEditor(true)
	case enums.SelectorNext.Key():
		w.selected = (w.selected + 1) % n
	case enums.SelectorPrevious.Key():
		w.selected = (w.selected + n - 1) % n
	case enums.SelectorBack.Key(), enums.KeyEscape:
		w.screen = screenMainMenu
	}
}

func (w *World) pressEditor(k enums.Key) {
	ed := w.editor
	switch k {
	case enums.KeyReturn:
		if ed.creation {
			if err := w.validSheet(); err != nil {
				w.message("%v", err)
				return
			}
		}
		w.closeEditor(true)
		if ed.creation {
			w.startGame()
		}
	case enums.KeyEscape:
		w.closeEditor(false)
		if ed.creation {
			w.screen = screenSelector
		}
	}
}

func (w *World) validSheet() error {
	if t := w.sheet.total(); t != enums.PrimaryStatTotal {
		return fmt.Errorf("%d character points left", enums.PrimaryStatTotal-t)
	}
	if len(w.sheet.tagged) != enums.TaggedSkillCount {
		return fmt.Errorf("tag %d more skills", enums.TaggedSkillCount-len(w.sheet.tagged))
	}
	return nil
}

// toggles - клавиши режимов, которые открываются и закрываются одной кнопкой.
var toggles = map[rune]enums.GameMode{
	'i': enums.ModeInventory,
	'p': enums.ModePipboy,
	's': enums.ModeSkilldex,
	'o': enums.ModeOptions,
	'h': enums.ModeHelp,
	'm': enums.ModeAutomap,
}

func (w *World) pressGameplay(k enums.Key) {
	switch {
	case k == enums.KeyEscape:
		w.closeTop()
		return
	case k == keyOf('t') && w.barter != nil:
		w.closeBarter()
		return
	case w.barter != nil || w.dialogue != nil || w.loot != nil || w.world.active:
		return
	case k == keyOf('a'):
		if err := w.RequestCombat(); err != nil {
			w.message("%v", err)
		}
	case k == enums.KeyReturn:
		w.tryFlee()
	case k == enums.KeySpace:
		if err := w.EndTurn(); err != nil {
			w.log.WithError(err).Debug("End turn key ignored")
		}
	case k == keyOf('c'):
		w.openEditor(false)
	}
	for c, bit := range toggles {
		if k == keyOf(c) {
			w.mode ^= bit
		}
	}
}

// closeTop закрывает верхний слой интерфейса.
func (w *World) closeTop() {
	switch {
	case w.barter != nil:
		w.closeBarter()
	case w.loot != nil:
		w.loot = nil
	case w.dialogue != nil:
		w.dialogue = nil
		w.thought = ""
	case w.mode != 0:
		w.mode = 0
	}
}

// SkipMovie обрывает ролик и открывает главное меню.
func (w *World) SkipMovie() {
	if w.screen != screenMovie {
		return
	}
	w.movieTicks = 0
	w.screen = screenMainMenu
}

// MainMenu выполняет пункт главного меню, который хост забрал у моста.
func (w *World) MainMenu(a enums.MenuAction, slot int) error {
	if w.screen != screenMainMenu {
		return fmt.Errorf("%w: not in main menu", sim.ErrBlocked)
	}
	w.log.WithField("action", a.String()).WithField("slot", slot).Info("Main menu action")
	switch a {
	case enums.MenuNewGame:
		w.screen = screenSelector
		w.selected = 0
	case enums.MenuLoadGame:
		if slot <= 0 {
			slot = w.lastSave
		}
		return w.LoadSlot(slot)
	case enums.MenuOptions:
		w.mode ^= enums.ModePreferences
	case enums.MenuExit:
		w.quit = true
	case enums.MenuIntro:
		w.StartAtMovie(30)
	case enums.MenuCredits:
		w.message("Credits roll by.")
	default:
		return fmt.Errorf("%w: menu action %d", sim.ErrInvalid, a)
	}
	return nil
}

// startGame выводит созданного персонажа на карту.
func (w *World) startGame() {
	w.screen = screenGameplay
	w.mode = 0
	p := w.me()
	d := w.sheet.derived()
	p.name = w.sheet.name
	p.dead = false
	p.maxHP, p.hp = d.MaxHP, d.MaxHP
	p.strength = w.sheet.special[enums.StatStrength]
	p.sequence = d.Sequence
	w.resetAP()
	w.emit(sim.EventMapChange, true)
	w.message("Welcome to %s, %s.", w.mapName, w.sheet.name)
	w.log.WithField("name", w.sheet.name).Info("New game started")
}
