package sandbox

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/sim"
)

const (
	// TagBonus - прибавка отмеченного навыка.
	TagBonus = 20
	// MaxNameLength - предел имени в рунах.
	MaxNameLength = 32
	// KillXP - опыт за убитого противника.
	KillXP = 100
	// PerkEvery - перк выдаётся раз в столько уровней.
	PerkEvery = 3
)

// Базовые значения навыков от S.P.E.C.I.A.L.: ST PE EN CH IN AG LK.
var skillBase = [enums.SkillCount]func(s [7]int) int{
	enums.SkillSmallGuns:     func(s [7]int) int { return 5 + 4*s[5] },
	enums.SkillBigGuns:       func(s [7]int) int { return 2 * s[5] },
	enums.SkillEnergyWeapons: func(s [7]int) int { return 2 * s[5] },
	enums.SkillUnarmed:       func(s [7]int) int { return 30 + 2*(s[5]+s[0]) },
	enums.SkillMeleeWeapons:  func(s [7]int) int { return 20 + 2*(s[5]+s[0]) },
	enums.SkillThrowing:      func(s [7]int) int { return 4 * s[5] },
	enums.SkillFirstAid:      func(s [7]int) int { return 2 * (s[1] + s[4]) },
	enums.SkillDoctor:        func(s [7]int) int { return 5 + s[1] + s[4] },
	enums.SkillSneak:         func(s [7]int) int { return 5 + 3*s[5] },
	enums.SkillLockpick:      func(s [7]int) int { return 10 + s[1] + s[5] },
	enums.SkillSteal:         func(s [7]int) int { return 3 * s[5] },
	enums.SkillTraps:         func(s [7]int) int { return 10 + s[1] + s[5] },
	enums.SkillScience:       func(s [7]int) int { return 4 * s[4] },
	enums.SkillRepair:        func(s [7]int) int { return 3 * s[4] },
	enums.SkillSpeech:        func(s [7]int) int { return 5 * s[3] },
	enums.SkillBarter:        func(s [7]int) int { return 4 * s[3] },
	enums.SkillGambling:      func(s [7]int) int { return 5 * s[6] },
	enums.SkillOutdoorsman:   func(s [7]int) int { return 2 * (s[2] + s[4]) },
}

// Перки, которые предлагает окно выбора.
var perkCatalog = []sim.Perk{
	{ID: 0, Name: "Awareness", Rank: 1},
	{ID: 7, Name: "Toughness", Rank: 3},
	{ID: 13, Name: "Action Boy", Rank: 2},
	{ID: 17, Name: "Bonus Move", Rank: 2},
	{ID: 39, Name: "Swift Learner", Rank: 3},
}

type sheet struct {
	name    string
	special [7]int
	traits  []enums.Trait
	tagged  []enums.Skill
	added   [enums.SkillCount]int
	perks   []sim.Perk

	level       int
	xp          int
	skillPoints int
	perkPending bool
}

func defaultSheet(name string) sheet {
	return sheet{
		name:    name,
		special: [7]int{6, 6, 6, 5, 6, 6, 5},
		tagged:  []enums.Skill{enums.SkillSmallGuns, enums.SkillLockpick, enums.SkillSpeech},
		level:   1,
	}
}

func (s sheet) clone() sheet {
	s.traits = slices.Clone(s.traits)
	s.tagged = slices.Clone(s.tagged)
	s.perks = slices.Clone(s.perks)
	return s
}

func (s *sheet) skill(sk enums.Skill) int {
	if sk >= enums.SkillCount {
		return 0
	}
	v := skillBase[sk](s.special) + s.added[sk]
	if slices.Contains(s.tagged, sk) {
		v += TagBonus + s.added[sk]
	}
	return v
}

func (s *sheet) derived() sim.Derived {
	st, pe, en, ag, lk := s.special[0], s.special[1], s.special[2], s.special[5], s.special[6]
	return sim.Derived{
		MaxHP:          15 + st + 2*en,
		MaxAP:          5 + ag/2,
		ArmorClass:     ag,
		MeleeDamage:    max(1, st-5),
		CarryWeight:    25 + 25*st,
		Sequence:       2 * pe,
		HealingRate:    max(1, en/3),
		CriticalChance: lk,
	}
}

func (s *sheet) total() int {
	n := 0
	for _, v := range s.special {
		n += v
	}
	return n
}

func xpForLevel(level int) int { return level * (level + 1) / 2 * 1000 }

// gainXP поднимает уровни, пока хватает опыта.
func (w *World) gainXP(n int) {
	s := &w.sheet
	s.xp += n
	for s.xp >= xpForLevel(s.level) {
		s.level++
		s.skillPoints += 5 + 2*s.special[enums.StatIntelligence]
		if s.level%PerkEvery == 0 {
			s.perkPending = true
		}
		w.message("You have reached level %d.", s.level)
		w.log.WithField("level", s.level).Info("Player levelled up")
	}
}

type premade struct {
	name  string
	desc  string
	sheet sheet
}

func defaultPremades() []premade {
	narg := defaultSheet("Narg")
	narg.special = [7]int{8, 5, 9, 3, 4, 7, 4}
	narg.tagged = []enums.Skill{enums.SkillUnarmed, enums.SkillMeleeWeapons, enums.SkillThrowing}
	narg.traits = []enums.Trait{enums.TraitHeavyHanded, enums.TraitGifted}

	chitsa := defaultSheet("Chitsa")
	chitsa.special = [7]int{4, 5, 4, 10, 7, 6, 4}
	chitsa.tagged = []enums.Skill{enums.SkillSpeech, enums.SkillBarter, enums.SkillFirstAid}
	chitsa.traits = []enums.Trait{enums.TraitSexAppeal}

	mingun := defaultSheet("Mingun")
	mingun.special = [7]int{5, 8, 4, 4, 6, 8, 5}
	mingun.tagged = []enums.Skill{enums.SkillSneak, enums.SkillLockpick, enums.SkillSteal}
	mingun.traits = []enums.Trait{enums.TraitSmallFrame, enums.TraitSkilled}

	return []premade{
		{name: "Narg", desc: "A mighty warrior of the tribe.", sheet: narg},
		{name: "Chitsa", desc: "A diplomat with a quick tongue.", sheet: chitsa},
		{name: "Mingun", desc: "A thief who moves unseen.", sheet: mingun},
	}
}

func (w *World) PremadeCharacters() []sim.Premade {
	out := make([]sim.Premade, 0, len(w.premades))
	for _, p := range w.premades {
		out = append(out, sim.Premade{Name: p.name, Description: p.desc})
	}
	return out
}

// editorSession - открытый редактор. backup восстанавливается по Escape.
type editorSession struct {
	creation bool
	backup   sheet
	// spent - очки навыков, вложенные за эту сессию: их можно вернуть.
	spent [enums.SkillCount]int
}

func (w *World) openEditor(creation bool) {
	w.editor = &editorSession{creation: creation, backup: w.sheet.clone()}
	if creation {
		w.screen = screenEditor
	} else {
		w.mode |= enums.ModeEditor
	}
}

// closeEditor закрывает редактор. Отказ откатывает изменения.
func (w *World) closeEditor(accept bool) {
	ed := w.editor
	if ed == nil {
		return
	}
	if !accept {
		w.sheet = ed.backup
	}
	w.editor = nil
	w.mode &^= enums.ModeEditor
	p := w.me()
	p.name = w.sheet.name
	p.strength = w.sheet.special[enums.StatStrength]
	p.sequence = w.sheet.derived().Sequence
	p.maxHP = w.sheet.derived().MaxHP
	if ed.creation {
		p.hp = p.maxHP
	} else {
		p.hp = min(p.hp, p.maxHP)
	}
	if w.combat == nil {
		w.resetAP()
	}
}

func (w *World) Character() sim.CharacterSheet {
	s := &w.sheet
	cs := sim.CharacterSheet{
		Name:               s.name,
		Level:              s.level,
		Experience:         s.xp,
		XPForNextLevel:     xpForLevel(s.level),
		CanLevelUp:         s.skillPoints > 0 || s.perkPending,
		UnspentSkillPoints: s.skillPoints,
		Special:            s.special,
		Derived:            s.derived(),
		Traits:             slices.Clone(s.traits),
		TaggedSkills:       slices.Clone(s.tagged),
		Perks:              slices.Clone(s.perks),
	}
	cs.Derived.CurrentHP = w.me().hp
	for i := range cs.Skills {
		cs.Skills[i] = s.skill(enums.Skill(i))
	}
	return cs
}

func (w *World) Editor() (sim.EditorState, bool) {
	if w.editor == nil {
		return sim.EditorState{}, false
	}
	st := sim.EditorState{}
	if w.editor.creation {
		st.RemainingPoints = enums.PrimaryStatTotal - w.sheet.total()
		st.TaggedSkillsRemaining = enums.TaggedSkillCount - len(w.sheet.tagged)
	}
	if w.sheet.perkPending {
		st.AvailablePerks = w.availablePerks()
	}
	return st, true
}

func (w *World) availablePerks() []sim.Perk {
	var out []sim.Perk
	for _, p := range perkCatalog {
		taken := 0
		for _, have := range w.sheet.perks {
			if have.ID == p.ID {
				taken = have.Rank
			}
		}
		if taken < p.Rank {
			out = append(out, p)
		}
	}
	return out
}

// creating - редактор открыт на создании персонажа.
func (w *World) creating() error {
	if w.editor == nil || !w.editor.creation {
		return fmt.Errorf("%w: character creation is not open", sim.ErrBlocked)
	}
	return nil
}

func (w *World) SetPrimaryStats(values [7]int) error {
	if err := w.creating(); err != nil {
		return err
	}
	sum := 0
	for i, v := range values {
		if v < enums.PrimaryStatMin || v > enums.PrimaryStatMax {
			return fmt.Errorf("%w: %s=%d outside %d..%d", sim.ErrInvalid,
				enums.Stat(i), v, enums.PrimaryStatMin, enums.PrimaryStatMax)
		}
		sum += v
	}
	if sum != enums.PrimaryStatTotal {
		return fmt.Errorf("%w: stats sum to %d, need %d", sim.ErrInvalid, sum, enums.PrimaryStatTotal)
	}
	w.sheet.special = values
	return nil
}

func (w *World) AdjustStat(stat enums.Stat, up bool) error {
	if err := w.creating(); err != nil {
		return err
	}
	if int(stat) >= len(w.sheet.special) {
		return fmt.Errorf("%w: stat %d", sim.ErrInvalid, stat)
	}
	v := &w.sheet.special[stat]
	switch {
	case up && *v >= enums.PrimaryStatMax:
		return fmt.Errorf("%w: %s already at %d", sim.ErrBlocked, stat, *v)
	case up && w.sheet.total() >= enums.PrimaryStatTotal:
		return fmt.Errorf("%w: no points left", sim.ErrBlocked)
	case !up && *v <= enums.PrimaryStatMin:
		return fmt.Errorf("%w: %s already at %d", sim.ErrBlocked, stat, *v)
	}
	if up {
		*v++
	} else {
		*v--
	}
	return nil
}

func (w *World) SetTraits(traits []enums.Trait) error {
	if err := w.creating(); err != nil {
		return err
	}
	if len(traits) > enums.MaxSelectedTraits {
		return fmt.Errorf("%w: at most %d traits", sim.ErrInvalid, enums.MaxSelectedTraits)
	}
	for i, t := range traits {
		if t >= enums.TraitCount {
			return fmt.Errorf("%w: trait %d", sim.ErrInvalid, t)
		}
		if slices.Contains(traits[:i], t) {
			return fmt.Errorf("%w: duplicate trait %s", sim.ErrInvalid, t)
		}
	}
	w.sheet.traits = slices.Clone(traits)
	return nil
}

func (w *World) ToggleTrait(trait enums.Trait) error {
	if err := w.creating(); err != nil {
		return err
	}
	if i := slices.Index(w.sheet.traits, trait); i >= 0 {
		w.sheet.traits = slices.Delete(w.sheet.traits, i, i+1)
		return nil
	}
	if len(w.sheet.traits) >= enums.MaxSelectedTraits {
		return fmt.Errorf("%w: already %d traits", sim.ErrBlocked, enums.MaxSelectedTraits)
	}
	w.sheet.traits = append(w.sheet.traits, trait)
	return nil
}

func (w *World) SetTaggedSkills(skills []enums.Skill) error {
	if err := w.creating(); err != nil {
		return err
	}
	if len(skills) != enums.TaggedSkillCount {
		return fmt.Errorf("%w: need exactly %d skills, got %d", sim.ErrInvalid, enums.TaggedSkillCount, len(skills))
	}
	for i, sk := range skills {
		if sk >= enums.SkillCount {
			return fmt.Errorf("%w: skill %d", sim.ErrInvalid, sk)
		}
		if slices.Contains(skills[:i], sk) {
			return fmt.Errorf("%w: duplicate skill %s", sim.ErrInvalid, sk)
		}
	}
	w.sheet.tagged = slices.Clone(skills)
	return nil
}

func (w *World) ToggleSkillTag(skill enums.Skill) error {
	if err := w.creating(); err != nil {
		return err
	}
	if i := slices.Index(w.sheet.tagged, skill); i >= 0 {
		w.sheet.tagged = slices.Delete(w.sheet.tagged, i, i+1)
		return nil
	}
	if len(w.sheet.tagged) >= enums.TaggedSkillCount {
		return fmt.Errorf("%w: already %d tagged skills", sim.ErrBlocked, enums.TaggedSkillCount)
	}
	w.sheet.tagged = append(w.sheet.tagged, skill)
	return nil
}

func (w *World) SkillAdd(skill enums.Skill) error {
	if w.editor == nil {
		return fmt.Errorf("%w: character screen is not open", sim.ErrBlocked)
	}
	if skill >= enums.SkillCount {
		return fmt.Errorf("%w: skill %d", sim.ErrInvalid, skill)
	}
	if w.sheet.skillPoints <= 0 {
		return fmt.Errorf("%w: no skill points", sim.ErrBlocked)
	}
	w.sheet.skillPoints--
	w.sheet.added[skill]++
	w.editor.spent[skill]++
	return nil
}

// SkillSub возвращает только очки, вложенные в этой сессии редактора.
func (w *World) SkillSub(skill enums.Skill) error {
	if w.editor == nil {
		return fmt.Errorf("%w: character screen is not open", sim.ErrBlocked)
	}
	if skill >= enums.SkillCount {
		return fmt.Errorf("%w: skill %d", sim.ErrInvalid, skill)
	}
	if w.editor.spent[skill] == 0 {
		return fmt.Errorf("%w: nothing to remove from %s", sim.ErrBlocked, skill)
	}
	w.editor.spent[skill]--
	w.sheet.added[skill]--
	w.sheet.skillPoints++
	return nil
}

func (w *World) PerkAdd(perkID int) error {
	if w.editor == nil || !w.sheet.perkPending {
		return fmt.Errorf("%w: no perk to choose", sim.ErrBlocked)
	}
	for _, p := range w.availablePerks() {
		if p.ID != perkID {
			continue
		}
		for i := range w.sheet.perks {
			if w.sheet.perks[i].ID == perkID {
				w.sheet.perks[i].Rank++
				w.sheet.perkPending = false
				return nil
			}
		}
		w.sheet.perks = append(w.sheet.perks, sim.Perk{ID: p.ID, Name: p.Name, Rank: 1})
		w.sheet.perkPending = false
		return nil
	}
	return fmt.Errorf("%w: perk %d", sim.ErrInvalid, perkID)
}

func (w *World) SetName(name string) error {
	if err := w.creating(); err != nil {
		return err
	}
	n := utf8.RuneCountInString(name)
	if n == 0 || n > MaxNameLength {
		return fmt.Errorf("%w: name must be 1..%d characters", sim.ErrInvalid, MaxNameLength)
	}
	w.sheet.name = name
	return nil
}
