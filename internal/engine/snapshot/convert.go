package snapshot

import (
	"fmt"

	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/sim"
	"agent-bridge/pkg/api"
)

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }

func baseView(o sim.Object, dist int) api.ObjectView {
	return api.ObjectView{
		ID:       o.ID,
		Type:     o.Kind.String(),
		PID:      o.PID,
		Name:     o.Name,
		Tile:     o.Tile,
		Distance: dist,
	}
}

func critterView(o sim.Object, dist int) api.ObjectView {
	v := baseView(o, dist)
	v.HP = intp(o.HP)
	v.MaxHP = intp(o.MaxHP)
	v.Dead = boolp(o.Dead)
	v.Hostile = boolp(o.Hostile)
	v.Team = intp(o.Team)
	v.IsPartyMember = o.PartyMember
	return v
}

func groundItemView(o sim.Object, dist int) api.ObjectView {
	v := baseView(o, dist)
	v.ItemType = o.ItemType.String()
	v.Quantity = o.Quantity
	return v
}

func sceneryView(o sim.Object, dist int) api.ObjectView {
	v := baseView(o, dist)
	v.SceneryType = o.SceneryType.String()
	switch o.SceneryType {
	case enums.SceneryDoor:
		v.Open = boolp(o.Open)
		v.Locked = boolp(o.Locked)
	case enums.SceneryContainer:
		v.Open = boolp(o.Open)
		v.Locked = boolp(o.Locked)
		v.ItemCount = intp(o.ItemCount)
	}
	return v
}

func exitGridView(o sim.Object, dist int) api.ObjectView {
	v := baseView(o, dist)
	v.Type = "exit_grid"
	v.DestinationMap = intp(o.Exit.Map)
	v.DestinationName = o.Exit.MapName
	v.DestinationTile = intp(o.Exit.Tile)
	v.DestinationElev = intp(o.Exit.Elevation)
	return v
}

func itemView(it sim.Item) api.ItemView {
	v := api.ItemView{
		ID:       it.ID,
		PID:      it.PID,
		Name:     it.Name,
		Type:     it.Type.String(),
		Quantity: it.Quantity,
		Weight:   it.Weight,
		Cost:     it.Cost,
	}
	if w := it.Weapon; w != nil {
		v.AmmoCount = intp(w.AmmoCount)
		v.AmmoCapacity = intp(w.AmmoCapacity)
		v.DamageMin = intp(w.DamageMin)
		v.DamageMax = intp(w.DamageMax)
		v.DamageType = w.DamageType.String()
		v.Range = intp(w.Range)
		v.APCost = intp(w.APCost)
	}
	return v
}

func itemViews(items []sim.Item) []api.ItemView {
	out := make([]api.ItemView, 0, len(items))
	for _, it := range items {
		out = append(out, itemView(it))
	}
	return out
}

func itemPtr(it *sim.Item) *api.ItemView {
	if it == nil {
		return nil
	}
	v := itemView(*it)
	return &v
}

func inventoryView(s sim.Simulation) *api.InventoryView {
	inv := s.Inventory()
	mode := s.CurrentHitMode()
	return &api.InventoryView{
		Items: itemViews(inv.Items),
		Equipped: api.EquippedView{
			LeftHand:  itemPtr(inv.LeftHand),
			RightHand: itemPtr(inv.RightHand),
			Armor:     itemPtr(inv.Armor),
		},
		TotalWeight:        inv.TotalWeight,
		CarryCapacity:      inv.CarryCapacity,
		ActiveHand:         s.ActiveHand().String(),
		CurrentHitMode:     int(mode),
		CurrentHitModeName: mode.String(),
	}
}

func perkViews(perks []sim.Perk) []api.PerkView {
	out := make([]api.PerkView, 0, len(perks))
	for _, p := range perks {
		out = append(out, api.PerkView{ID: p.ID, Name: p.Name, Rank: p.Rank})
	}
	return out
}

func characterView(c sim.CharacterSheet) *api.CharacterView {
	v := &api.CharacterView{
		Name:               c.Name,
		Level:              c.Level,
		Experience:         c.Experience,
		XPForNextLevel:     c.XPForNextLevel,
		CanLevelUp:         c.CanLevelUp,
		UnspentSkillPoints: c.UnspentSkillPoints,
		Special:            make(map[string]int, len(enums.PrimaryStats)),
		DerivedStats: api.DerivedView{
			MaxHP:          c.Derived.MaxHP,
			CurrentHP:      c.Derived.CurrentHP,
			MaxAP:          c.Derived.MaxAP,
			ArmorClass:     c.Derived.ArmorClass,
			MeleeDamage:    c.Derived.MeleeDamage,
			CarryWeight:    c.Derived.CarryWeight,
			Sequence:       c.Derived.Sequence,
			HealingRate:    c.Derived.HealingRate,
			CriticalChance: c.Derived.CriticalChance,
		},
		Traits:       make([]string, 0, len(c.Traits)),
		TaggedSkills: make([]string, 0, len(c.TaggedSkills)),
		Skills:       make(map[string]int, int(enums.SkillCount)),
		Perks:        perkViews(c.Perks),
	}
	for i, st := range enums.PrimaryStats {
		v.Special[st.String()] = c.Special[i]
	}
	for _, t := range c.Traits {
		v.Traits = append(v.Traits, t.String())
	}
	for _, sk := range c.TaggedSkills {
		v.TaggedSkills = append(v.TaggedSkills, sk.String())
	}
	for sk := enums.Skill(0); sk < enums.SkillCount; sk++ {
		v.Skills[sk.String()] = c.Skills[sk]
	}
	return v
}

func withEditor(v *api.CharacterView, e sim.EditorState) {
	v.RemainingPoints = intp(e.RemainingPoints)
	v.TaggedSkillsRemaining = intp(e.TaggedSkillsRemaining)
	v.AvailableTraits = enums.TraitNames()
	v.AvailablePerks = perkViews(e.AvailablePerks)
}

func gameTimeView(t sim.GameTime) *api.GameTimeView {
	return &api.GameTimeView{
		Year:       t.Year,
		Month:      t.Month,
		Day:        t.Day,
		Hour:       t.Hour,
		Ticks:      t.Ticks,
		TimeString: fmt.Sprintf("%04d-%02d-%02d %02d:00", t.Year, t.Month, t.Day, t.Hour),
	}
}

func partyViews(s sim.Simulation, p sim.Player) *[]api.ObjectView {
	out := []api.ObjectView{}
	for _, m := range s.PartyMembers() {
		if m.ID == p.ID {
			continue
		}
		out = append(out, critterView(m, s.TileDistance(p.Tile, m.Tile)))
	}
	return &out
}

func questViews(qs []sim.Quest) *[]api.QuestView {
	out := make([]api.QuestView, 0, len(qs))
	for _, q := range qs {
		out = append(out, api.QuestView{Location: q.Location, Description: q.Description, Completed: q.Completed})
	}
	return &out
}

func dialogueView(d sim.DialogueState) *api.DialogueView {
	v := &api.DialogueView{
		SpeakerID:   d.Speaker,
		SpeakerName: d.SpeakerName,
		ReplyText:   d.Reply,
		Options:     make([]api.DialogueOptionView, 0, len(d.Options)),
	}
	for i, text := range d.Options {
		v.Options = append(v.Options, api.DialogueOptionView{Index: i, Text: text})
	}
	return v
}

func lootView(l sim.LootState) *api.LootView {
	return &api.LootView{
		TargetID:   l.Target,
		TargetName: l.TargetName,
		Items:      itemViews(l.Items),
	}
}

func barterView(b sim.BarterState) *api.BarterView {
	return &api.BarterView{
		MerchantID:         b.Merchant,
		MerchantName:       b.MerchantName,
		PlayerOffer:        itemViews(b.PlayerOffer),
		MerchantOffer:      itemViews(b.MerchantOffer),
		MerchantInventory:  itemViews(b.MerchantInventory),
		PlayerOfferValue:   b.PlayerOfferValue,
		MerchantOfferValue: b.MerchantOfferValue,
		PlayerCaps:         b.PlayerCaps,
		MerchantCaps:       b.MerchantCaps,
		TradeWillSucceed:   b.WillSucceed,
	}
}

func worldmapView(w sim.WorldMapState) *api.WorldmapView {
	v := &api.WorldmapView{
		CurrentAreaID:   w.CurrentArea,
		CurrentAreaName: w.CurrentAreaName,
		WorldPosX:       w.X,
		WorldPosY:       w.Y,
		IsWalking:       w.Walking,
		Locations:       make([]api.LocationView, 0, len(w.Locations)),
	}
	for _, loc := range w.Locations {
		lv := api.LocationView{AreaID: loc.AreaID, Name: loc.Name, Known: loc.Known, Visited: loc.Visited}
		for i, e := range loc.Entrances {
			lv.Entrances = append(lv.Entrances, api.EntranceView{
				Index:     i,
				MapIndex:  e.Map,
				Elevation: e.Elevation,
				Tile:      e.Tile,
				Known:     e.Known,
			})
		}
		v.Locations = append(v.Locations, lv)
	}
	return v
}

// hostiles - живые враждебные существа с шансами попадания по зонам для
// основного режима активной руки.
func hostiles(s sim.Simulation, objs api.ObjectsView) []api.CombatantView {
	hand := s.ActiveHand()
	mode := enums.ResolveHitMode("", s.HasWeapon(hand), hand)

	out := []api.CombatantView{}
	for _, c := range objs.Critters {
		if c.Dead != nil && *c.Dead {
			continue
		}
		if c.Hostile == nil || !*c.Hostile {
			continue
		}
		chances := make(map[string]int, len(enums.HitLocations))
		for _, loc := range enums.HitLocations {
			chances[loc.String()] = s.HitChance(c.ID, mode, loc)
		}
		out = append(out, api.CombatantView{ObjectView: c, HitChances: chances})
	}
	return out
}
