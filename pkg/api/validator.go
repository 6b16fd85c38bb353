package api

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"agent-bridge/internal/core/types/enums"
)

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

// MaxNameLength - предел длины имени персонажа в символах.
const MaxNameLength = 32

func required(field string, v *int) error {
	if v == nil {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func requireTile(field string, v *int) error {
	if err := required(field, v); err != nil {
		return err
	}
	if *v < 0 {
		return fmt.Errorf("%s must be non-negative", field)
	}
	return nil
}

func (p MouseMovePayload) Validate() error {
	if p.X == nil || p.Y == nil {
		return errors.New("missing x/y")
	}
	return nil
}

func (p MouseClickPayload) Validate() error {
	if p.X == nil || p.Y == nil {
		return errors.New("missing x/y")
	}
	switch p.Button {
	case "", "left", "right":
		return nil
	}
	return fmt.Errorf("unknown button %q", p.Button)
}

func (p KeyPayload) Validate() error {
	if p.Key == "" {
		return errors.New("missing key")
	}
	if _, ok := enums.ParseKey(p.Key); !ok {
		return fmt.Errorf("unknown key '%s'", p.Key)
	}
	return nil
}

func (p InputEventPayload) Validate() error {
	return required("key_code", p.KeyCode)
}

func (p SpecialPayload) Validate() error {
	fields := []struct {
		name string
		v    *int
	}{
		{"strength", p.Strength}, {"perception", p.Perception}, {"endurance", p.Endurance},
		{"charisma", p.Charisma}, {"intelligence", p.Intelligence}, {"agility", p.Agility},
		{"luck", p.Luck},
	}

	total := 0
	for _, f := range fields {
		if f.v == nil {
			return fmt.Errorf("missing %s", f.name)
		}
		if *f.v < enums.PrimaryStatMin || *f.v > enums.PrimaryStatMax {
			return fmt.Errorf("%s=%d out of range %d..%d", f.name, *f.v, enums.PrimaryStatMin, enums.PrimaryStatMax)
		}
		total += *f.v
	}
	if total != enums.PrimaryStatTotal {
		return fmt.Errorf("total %d, must be %d", total, enums.PrimaryStatTotal)
	}
	return nil
}

func (p TraitsPayload) Validate() error {
	_, err := p.Parsed()
	return err
}

// Parsed конвертирует имена черт в коды, проверяя лимит и дубликаты.
func (p TraitsPayload) Parsed() ([]enums.Trait, error) {
	if len(p.Traits) > enums.MaxSelectedTraits {
		return nil, fmt.Errorf("at most %d traits, got %d", enums.MaxSelectedTraits, len(p.Traits))
	}
	out := make([]enums.Trait, 0, len(p.Traits))
	seen := make(map[enums.Trait]bool, len(p.Traits))
	for _, name := range p.Traits {
		t, ok := enums.ParseTrait(name)
		if !ok {
			return nil, fmt.Errorf("unknown trait '%s'", name)
		}
		if seen[t] {
			return nil, fmt.Errorf("duplicate trait '%s'", name)
		}
		seen[t] = true
		out = append(out, t)
	}
	return out, nil
}

func (p SkillsPayload) Validate() error {
	_, err := p.Parsed()
	return err
}

func (p SkillsPayload) Parsed() ([]enums.Skill, error) {
	if len(p.Skills) != enums.TaggedSkillCount {
		return nil, fmt.Errorf("exactly %d skills required, got %d", enums.TaggedSkillCount, len(p.Skills))
	}
	out := make([]enums.Skill, 0, len(p.Skills))
	seen := make(map[enums.Skill]bool, len(p.Skills))
	for _, name := range p.Skills {
		s, ok := enums.ParseSkill(name)
		if !ok {
			return nil, fmt.Errorf("unknown skill '%s'", name)
		}
		if seen[s] {
			return nil, fmt.Errorf("duplicate skill '%s'", name)
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, nil
}

func (p NamePayload) Validate() error {
	n := utf8.RuneCountInString(p.Name)
	if n == 0 || n > MaxNameLength {
		return fmt.Errorf("invalid name length (%d)", n)
	}
	return nil
}

func (p StatAdjustPayload) Validate() error {
	if _, ok := enums.ParseStat(p.Stat); !ok {
		return fmt.Errorf("unknown stat '%s'", p.Stat)
	}
	if p.Direction != "up" && p.Direction != "down" {
		return fmt.Errorf("direction must be up or down, got %q", p.Direction)
	}
	return nil
}

func (p StatAdjustPayload) Parsed() (enums.Stat, bool) {
	s, _ := enums.ParseStat(p.Stat)
	return s, p.Direction == "up"
}

func (p TraitPayload) Validate() error {
	if _, ok := enums.ParseTrait(p.Trait); !ok {
		return fmt.Errorf("unknown trait '%s'", p.Trait)
	}
	return nil
}

func (p TraitPayload) Parsed() enums.Trait {
	t, _ := enums.ParseTrait(p.Trait)
	return t
}

func (p SkillPayload) Validate() error {
	if _, ok := enums.ParseSkill(p.Skill); !ok {
		return fmt.Errorf("unknown skill '%s'", p.Skill)
	}
	return nil
}

func (p SkillPayload) Parsed() enums.Skill {
	s, _ := enums.ParseSkill(p.Skill)
	return s
}

func (p PerkPayload) Validate() error {
	if err := required("perk_id", p.PerkID); err != nil {
		return err
	}
	if *p.PerkID < 0 {
		return fmt.Errorf("invalid perk_id %d", *p.PerkID)
	}
	return nil
}

func (p MainMenuPayload) Validate() error {
	if p.Action == "" {
		return errors.New("missing 'action'")
	}
	if _, ok := enums.ParseMenuAction(p.Action); !ok {
		return fmt.Errorf("unknown action '%s'", p.Action)
	}
	return nil
}

func (p OptionPayload) Validate() error {
	if p.Option == "" {
		return errors.New("missing 'option'")
	}
	return nil
}

func (p TilePayload) Validate() error { return requireTile("tile", p.Tile) }

func (p TeleportPayload) Validate() error { return requireTile("tile", p.Tile) }

func (p MapTransitionPayload) Validate() error {
	if p.Map == nil || p.Elevation == nil || p.Tile == nil {
		return errors.New("missing map/elevation/tile")
	}
	return nil
}

func (p DetonatePayload) Validate() error { return requireTile("tile", p.Tile) }

func (p FindPathPayload) Validate() error {
	if err := requireTile("to", p.To); err != nil {
		return err
	}
	if p.From != nil && *p.From < 0 {
		return errors.New("from must be non-negative")
	}
	return nil
}

func (p TileObjectsPayload) Validate() error {
	if err := requireTile("tile", p.Tile); err != nil {
		return err
	}
	if p.Radius != nil && *p.Radius < 0 {
		return errors.New("radius must be non-negative")
	}
	return nil
}

func (p FindItemPayload) Validate() error { return required("pid", p.PID) }

func (p ObjectPayload) Validate() error {
	if p.ObjectID.IsNil() {
		return errors.New("missing 'object_id'")
	}
	return nil
}

func (p UseSkillPayload) Validate() error {
	if _, ok := enums.ParseSkill(p.Skill); !ok {
		return fmt.Errorf("unknown skill '%s'", p.Skill)
	}
	return nil
}

func (p UseSkillPayload) Parsed() enums.Skill {
	s, _ := enums.ParseSkill(p.Skill)
	return s
}

func (p UseItemOnPayload) Validate() error {
	if p.ItemPID == nil || p.ObjectID.IsNil() {
		return errors.New("missing item_pid/object_id")
	}
	return nil
}

func (p HolodiskPayload) Validate() error { return required("index", p.Index) }

func (p ItemPayload) Validate() error {
	if err := required("item_pid", p.ItemPID); err != nil {
		return err
	}
	if p.Quantity != nil && *p.Quantity < 1 {
		return errors.New("quantity must be >= 1")
	}
	return nil
}

func (p PIDPayload) Validate() error { return required("item_pid", p.ItemPID) }

func parseHand(s string) error {
	if s == "" {
		return nil
	}
	if _, ok := enums.ParseHand(s); !ok {
		return fmt.Errorf("unknown hand %q", s)
	}
	return nil
}

func (p EquipPayload) Validate() error {
	if err := required("item_pid", p.ItemPID); err != nil {
		return err
	}
	return parseHand(p.Hand)
}

// HandOrDefault - рука из команды или fallback, если не указана.
func (p EquipPayload) HandOrDefault(fallback enums.Hand) enums.Hand {
	if h, ok := enums.ParseHand(p.Hand); ok {
		return h
	}
	return fallback
}

func (p HandPayload) Validate() error { return parseHand(p.Hand) }

func (p HandPayload) HandOrDefault(fallback enums.Hand) enums.Hand {
	if h, ok := enums.ParseHand(p.Hand); ok {
		return h
	}
	return fallback
}

func (p AttackPayload) Validate() error {
	if p.TargetID.IsNil() {
		return errors.New("missing target_id")
	}
	return nil
}

func (p DialoguePayload) Validate() error { return required("index", p.Index) }

func (p TextPayload) Validate() error {
	if p.Text == "" {
		return errors.New("missing text")
	}
	return nil
}

func (p AreaPayload) Validate() error { return required("area_id", p.AreaID) }

func (p SaveSlotPayload) Validate() error {
	if err := required("slot", p.Slot); err != nil {
		return err
	}
	if *p.Slot < 1 {
		return fmt.Errorf("slot %d out of range", *p.Slot)
	}
	return nil
}
