package enums

// Stat - код первичной характеристики (S.P.E.C.I.A.L.).
type Stat uint8

const (
	StatStrength Stat = iota
	StatPerception
	StatEndurance
	StatCharisma
	StatIntelligence
	StatAgility
	StatLuck
)

// Пределы первичных характеристик при создании персонажа.
const (
	PrimaryStatMin   = 1
	PrimaryStatMax   = 10
	PrimaryStatTotal = 40
)

// PrimaryStats - канонический порядок для вывода в состояние.
var PrimaryStats = []Stat{
	StatStrength, StatPerception, StatEndurance, StatCharisma,
	StatIntelligence, StatAgility, StatLuck,
}

var stats = newRegistry(map[Stat]string{
	StatStrength:     "strength",
	StatPerception:   "perception",
	StatEndurance:    "endurance",
	StatCharisma:     "charisma",
	StatIntelligence: "intelligence",
	StatAgility:      "agility",
	StatLuck:         "luck",
})

func (s Stat) String() string {
	if n, ok := stats.name(s); ok {
		return n
	}
	return "unknown"
}

// ParseStat конвертирует имя из команды в код.
func ParseStat(s string) (Stat, bool) { return stats.parse(s) }

// Skill - код навыка.
type Skill uint8

const (
	SkillSmallGuns Skill = iota
	SkillBigGuns
	SkillEnergyWeapons
	SkillUnarmed
	SkillMeleeWeapons
	SkillThrowing
	SkillFirstAid
	SkillDoctor
	SkillSneak
	SkillLockpick
	SkillSteal
	SkillTraps
	SkillScience
	SkillRepair
	SkillSpeech
	SkillBarter
	SkillGambling
	SkillOutdoorsman
	SkillCount
)

// TaggedSkillCount - сколько навыков отмечается при создании персонажа.
const TaggedSkillCount = 3

var skills = newRegistry(map[Skill]string{
	SkillSmallGuns:     "small_guns",
	SkillBigGuns:       "big_guns",
	SkillEnergyWeapons: "energy_weapons",
	SkillUnarmed:       "unarmed",
	SkillMeleeWeapons:  "melee_weapons",
	SkillThrowing:      "throwing",
	SkillFirstAid:      "first_aid",
	SkillDoctor:        "doctor",
	SkillSneak:         "sneak",
	SkillLockpick:      "lockpick",
	SkillSteal:         "steal",
	SkillTraps:         "traps",
	SkillScience:       "science",
	SkillRepair:        "repair",
	SkillSpeech:        "speech",
	SkillBarter:        "barter",
	SkillGambling:      "gambling",
	SkillOutdoorsman:   "outdoorsman",
})

func (s Skill) String() string {
	if n, ok := skills.name(s); ok {
		return n
	}
	return "unknown"
}

func ParseSkill(s string) (Skill, bool) { return skills.parse(s) }

// Trait - код черты характера.
type Trait uint8

const (
	TraitFastMetabolism Trait = iota
	TraitBruiser
	TraitSmallFrame
	TraitOneHander
	TraitFinesse
	TraitKamikaze
	TraitHeavyHanded
	TraitFastShot
	TraitBloodyMess
	TraitJinxed
	TraitGoodNatured
	TraitChemReliant
	TraitChemResistant
	TraitSexAppeal
	TraitSkilled
	TraitGifted
	TraitCount
)

// MaxSelectedTraits - сколько черт можно взять одновременно.
const MaxSelectedTraits = 2

var traits = newRegistry(map[Trait]string{
	TraitFastMetabolism: "fast_metabolism",
	TraitBruiser:        "bruiser",
	TraitSmallFrame:     "small_frame",
	TraitOneHander:      "one_hander",
	TraitFinesse:        "finesse",
	TraitKamikaze:       "kamikaze",
	TraitHeavyHanded:    "heavy_handed",
	TraitFastShot:       "fast_shot",
	TraitBloodyMess:     "bloody_mess",
	TraitJinxed:         "jinxed",
	TraitGoodNatured:    "good_natured",
	TraitChemReliant:    "chem_reliant",
	TraitChemResistant:  "chem_resistant",
	TraitSexAppeal:      "sex_appeal",
	TraitSkilled:        "skilled",
	TraitGifted:         "gifted",
})

func (t Trait) String() string {
	if n, ok := traits.name(t); ok {
		return n
	}
	return "unknown"
}

func ParseTrait(s string) (Trait, bool) { return traits.parse(s) }

// TraitNames - имена всех черт для available_traits.
func TraitNames() []string { return traits.names() }
