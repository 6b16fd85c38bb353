// Package actions - игровые команды агента.
package actions

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"agent-bridge/internal/core/types"
	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/engine/handlers"
	"agent-bridge/internal/sim"
	"agent-bridge/pkg/logger"
)

// Register регистрирует все игровые команды. Тестовые читы живут в
// пакете admin.
func Register(r *handlers.Registry) {
	// Ввод
	r.Register("mouse_move", handlers.WithPayload(HandleMouseMove))
	r.Register("mouse_click", handlers.WithPayload(HandleMouseClick))
	r.Register("key_press", handlers.WithPayload(HandleKeyPress))
	r.Register("key_release", handlers.WithPayload(HandleKeyRelease))
	r.Register("input_event", handlers.WithPayload(HandleInputEvent))

	// Создание персонажа
	r.Register("set_special", handlers.WithPayload(HandleSetSpecial))
	r.Register("select_traits", handlers.WithPayload(HandleSelectTraits))
	r.Register("tag_skills", handlers.WithPayload(HandleTagSkills))
	r.Register("set_name", handlers.WithPayload(HandleSetName))
	r.Register("finish_character_creation", handlers.WithEmptyPayload(HandleFinishCreation))
	r.Register("editor_done", handlers.WithEmptyPayload(HandleFinishCreation))
	r.Register("adjust_stat", handlers.WithPayload(HandleAdjustStat))
	r.Register("toggle_trait", handlers.WithPayload(HandleToggleTrait))
	r.Register("toggle_skill_tag", handlers.WithPayload(HandleToggleSkillTag))
	r.Register("skill_add", handlers.WithPayload(HandleSkillAdd))
	r.Register("skill_sub", handlers.WithPayload(HandleSkillSub))
	r.Register("perk_add", handlers.WithPayload(HandlePerkAdd))

	// Меню
	r.Register("main_menu", handlers.WithPayload(HandleMainMenu))
	r.Register("main_menu_select", handlers.WithPayload(HandleMainMenuSelect))
	r.Register("char_selector_select", handlers.WithPayload(HandleSelectorSelect))
	r.Register("skip", handlers.WithEmptyPayload(HandleSkip))

	// Перемещение
	r.Register("move_to", handlers.WithPayload(HandleMoveTo))
	r.Register("run_to", handlers.WithPayload(HandleRunTo))
	r.Register("combat_move", handlers.WithPayload(HandleCombatMove))
	r.Register("find_path", handlers.WithPayload(HandleFindPath))
	r.Register("center_camera", handlers.WithPayload(HandleCenterCamera))
	r.Register("toggle_sneak", handlers.WithEmptyPayload(HandleToggleSneak))

	// Взаимодействие
	r.Register("use_object", handlers.WithPayload(HandleUseObject))
	r.Register("pick_up", handlers.WithPayload(HandlePickUp))
	r.Register("use_skill", handlers.WithPayload(HandleUseSkill))
	r.Register("talk_to", handlers.WithPayload(HandleTalkTo))
	r.Register("use_item_on", handlers.WithPayload(HandleUseItemOn))
	r.Register("look_at", handlers.WithPayload(HandleLookAt))
	r.Register("open_container", handlers.WithPayload(HandleOpenContainer))
	r.Register("read_holodisk", handlers.WithPayload(HandleReadHolodisk))

	// Инвентарь
	r.Register("drop_item", handlers.WithPayload(HandleDrop))
	r.Register("equip_item", handlers.WithPayload(HandleEquip))
	r.Register("unequip_item", handlers.WithPayload(HandleUnequip))
	r.Register("use_item", handlers.WithPayload(HandleUseItem))
	r.Register("use_equipped_item", handlers.WithPayload(HandleUseEquipped))
	r.Register("reload_weapon", handlers.WithPayload(HandleReload))
	r.Register("reload_weapon_with", handlers.WithPayload(HandleReload))
	r.Register("switch_hand", handlers.WithEmptyPayload(HandleSwitchHand))
	r.Register("cycle_attack_mode", handlers.WithEmptyPayload(HandleCycleAttackMode))

	// Бой
	r.Register("attack", handlers.WithPayload(HandleAttack))
	r.Register("end_turn", handlers.WithEmptyPayload(HandleEndTurn))
	r.Register("use_combat_item", handlers.WithPayload(HandleUseCombatItem))
	r.Register("enter_combat", handlers.WithEmptyPayload(HandleEnterCombat))
	r.Register("flee_combat", handlers.WithEmptyPayload(HandleFleeCombat))
	r.Register("auto_combat", handlers.WithPayload(HandleAutoCombat))
	r.Register("configure_combat_ai", handlers.WithPayload(HandleConfigureAI))

	// Лут и торговля
	r.Register("loot_take", handlers.WithPayload(HandleLootTake))
	r.Register("loot_take_all", handlers.WithEmptyPayload(HandleLootTakeAll))
	r.Register("loot_close", handlers.WithEmptyPayload(HandleLootClose))
	r.Register("barter_offer", handlers.WithPayload(barterMove(sim.BarterOffer)))
	r.Register("barter_remove_offer", handlers.WithPayload(barterMove(sim.BarterRemoveOffer)))
	r.Register("barter_request", handlers.WithPayload(barterMove(sim.BarterRequest)))
	r.Register("barter_remove_request", handlers.WithPayload(barterMove(sim.BarterRemoveRequest)))
	r.Register("barter_confirm", handlers.WithEmptyPayload(HandleBarterConfirm))
	r.Register("barter_talk", handlers.WithEmptyPayload(HandleBarterTalk))
	r.Register("barter_cancel", handlers.WithEmptyPayload(HandleBarterCancel))

	// Диалог
	r.Register("select_dialogue", handlers.WithPayload(HandleSelectDialogue))
	r.Register("float_thought", handlers.WithPayload(HandleFloatThought))

	// Карта мира
	r.Register("worldmap_travel", handlers.WithPayload(HandleWorldmapTravel))
	r.Register("worldmap_enter_location", handlers.WithPayload(HandleEnterLocation))

	// Запросы
	r.Register("tile_objects", handlers.WithPayload(HandleTileObjects))
	r.Register("find_item", handlers.WithPayload(HandleFindItem))
	r.Register("list_all_items", handlers.WithEmptyPayload(HandleListAllItems))

	// Система
	r.Register("rest", handlers.WithPayload(HandleRest))
	r.Register("pip_boy", pressKey('p'))
	r.Register("character_screen", pressKey('c'))
	r.Register("inventory_open", pressKey('i'))
	r.Register("skilldex", pressKey('s'))
	r.Register("quicksave", handlers.WithPayload(HandleQuickSave))
	r.Register("quickload", handlers.WithEmptyPayload(HandleQuickLoad))
	r.Register("save_slot", handlers.WithPayload(HandleSaveSlot))
	r.Register("load_slot", handlers.WithPayload(HandleLoadSlot))
	r.Register("set_status", handlers.WithPayload(HandleSetStatus))
	r.Register("clear_status", handlers.WithEmptyPayload(HandleClearStatus))
	r.Register("force_idle", handlers.WithEmptyPayload(HandleForceIdle))
}

func handlerLog(name string, ctx handlers.Context) *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{
		"component": name + "_handler",
		"tick":      ctx.Tick,
		"context":   ctx.Where.String(),
	})
}

// inject имитирует нажатие клавиши: экран хоста обработает его на
// следующем опросе ввода.
func inject(ctx handlers.Context, k enums.Key) {
	ctx.Sim.SimulateKey(k, true)
}

func pressKey(c rune) handlers.HandlerFunc {
	return handlers.WithEmptyPayload(func(ctx handlers.Context) (handlers.Result, error) {
		k, _ := enums.KeyForChar(c)
		inject(ctx, k)
		return handlers.Ok("key '%c' injected", c)
	})
}

func player(ctx handlers.Context) (sim.Player, error) {
	p, ok := ctx.Sim.Player()
	if !ok {
		return p, fmt.Errorf("%w: no player", sim.ErrBlocked)
	}
	return p, nil
}

// resolve проверяет, что объект ещё жив. Устаревший id - обычная
// ситуация: объект мог исчезнуть после выдачи состояния.
func resolve(ctx handlers.Context, id types.EntityID) (sim.Object, error) {
	o, ok := ctx.Sim.Resolve(id)
	if !ok {
		return o, fmt.Errorf("%w: object %s", sim.ErrNotFound, id)
	}
	return o, nil
}

// idle - взаимодействие с миром невозможно, пока игрок анимирован.
func idle(ctx handlers.Context, what string) error {
	if ctx.Sim.IsAnimating() {
		return fmt.Errorf("%w: %s: player is busy", sim.ErrBlocked, what)
	}
	return nil
}

func inGameplay(ctx handlers.Context) bool { return ctx.Where.IsGameplay() }
