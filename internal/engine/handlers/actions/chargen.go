package actions

import (
	"fmt"

	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/engine/handlers"
	"agent-bridge/pkg/api"
)

// Команды редактора персонажа. Порядок внутри батча задаёт PhaseTable,
// поэтому агент может прислать всё создание персонажа одним файлом.

func HandleSetSpecial(ctx handlers.Context, p api.SpecialPayload) (handlers.Result, error) {
	v := p.Values()
	if err := ctx.Sim.SetPrimaryStats(v); err != nil {
		return handlers.Result{}, fmt.Errorf("set_special: %w", err)
	}
	return handlers.Ok("set_special: S%d P%d E%d C%d I%d A%d L%d", v[0], v[1], v[2], v[3], v[4], v[5], v[6])
}

func HandleSelectTraits(ctx handlers.Context, p api.TraitsPayload) (handlers.Result, error) {
	traits, _ := p.Parsed()
	if err := ctx.Sim.SetTraits(traits); err != nil {
		return handlers.Result{}, fmt.Errorf("select_traits: %w", err)
	}
	return handlers.Ok("select_traits: %v", p.Traits)
}

func HandleTagSkills(ctx handlers.Context, p api.SkillsPayload) (handlers.Result, error) {
	skills, _ := p.Parsed()
	if err := ctx.Sim.SetTaggedSkills(skills); err != nil {
		return handlers.Result{}, fmt.Errorf("tag_skills: %w", err)
	}
	return handlers.Ok("tag_skills: %v", p.Skills)
}

func HandleSetName(ctx handlers.Context, p api.NamePayload) (handlers.Result, error) {
	if err := ctx.Sim.SetName(p.Name); err != nil {
		return handlers.Result{}, fmt.Errorf("set_name: %w", err)
	}
	return handlers.Ok("set_name: '%s'", p.Name)
}

// HandleFinishCreation подтверждает экран редактора через Enter.
func HandleFinishCreation(ctx handlers.Context) (handlers.Result, error) {
	inject(ctx, enums.KeyReturn)
	return handlers.Ok("finish_character_creation: injected RETURN")
}

func HandleAdjustStat(ctx handlers.Context, p api.StatAdjustPayload) (handlers.Result, error) {
	stat, up := p.Parsed()
	if err := ctx.Sim.AdjustStat(stat, up); err != nil {
		return handlers.Result{}, fmt.Errorf("adjust_stat %s: %w", stat, err)
	}
	return handlers.Ok("adjust_stat: %s %s", stat, p.Direction)
}

func HandleToggleTrait(ctx handlers.Context, p api.TraitPayload) (handlers.Result, error) {
	t := p.Parsed()
	if err := ctx.Sim.ToggleTrait(t); err != nil {
		return handlers.Result{}, fmt.Errorf("toggle_trait %s: %w", t, err)
	}
	return handlers.Ok("toggle_trait: %s", t)
}

func HandleToggleSkillTag(ctx handlers.Context, p api.SkillPayload) (handlers.Result, error) {
	sk := p.Parsed()
	if err := ctx.Sim.ToggleSkillTag(sk); err != nil {
		return handlers.Result{}, fmt.Errorf("toggle_skill_tag %s: %w", sk, err)
	}
	return handlers.Ok("toggle_skill_tag: %s", sk)
}

func HandleSkillAdd(ctx handlers.Context, p api.SkillPayload) (handlers.Result, error) {
	sk := p.Parsed()
	if err := ctx.Sim.SkillAdd(sk); err != nil {
		return handlers.Result{}, fmt.Errorf("skill_add %s: %w", sk, err)
	}
	return handlers.Ok("skill_add: %s (sp=%d)", sk, ctx.Sim.Character().UnspentSkillPoints)
}

func HandleSkillSub(ctx handlers.Context, p api.SkillPayload) (handlers.Result, error) {
	sk := p.Parsed()
	if err := ctx.Sim.SkillSub(sk); err != nil {
		return handlers.Result{}, fmt.Errorf("skill_sub %s: %w", sk, err)
	}
	return handlers.Ok("skill_sub: %s (sp=%d)", sk, ctx.Sim.Character().UnspentSkillPoints)
}

// HandlePerkAdd работает только при открытом выборе перка.
func HandlePerkAdd(ctx handlers.Context, p api.PerkPayload) (handlers.Result, error) {
	ed, ok := ctx.Sim.Editor()
	if !ok || len(ed.AvailablePerks) == 0 {
		return handlers.Blocked("perk_add: no free perk available (is perk dialog open?)")
	}

	id := *p.PerkID
	for _, perk := range ed.AvailablePerks {
		if perk.ID != id {
			continue
		}
		if err := ctx.Sim.PerkAdd(id); err != nil {
			return handlers.Result{}, fmt.Errorf("perk_add %s: %w", perk.Name, err)
		}
		return handlers.Ok("perk_add: %s (id=%d)", perk.Name, id)
	}
	return handlers.Failed("perk_add: perk id=%d not available in dialog", id)
}
