package enums

// HitMode - режим атаки в кодах симуляции.
type HitMode uint8

const (
	HitModeLeftPrimary HitMode = iota
	HitModeLeftSecondary
	HitModeRightPrimary
	HitModeRightSecondary
	HitModePunch
	HitModeKick
)

var hitModes = newRegistry(map[HitMode]string{
	HitModeLeftPrimary:    "left_primary",
	HitModeLeftSecondary:  "left_secondary",
	HitModeRightPrimary:   "right_primary",
	HitModeRightSecondary: "right_secondary",
	HitModePunch:          "punch",
	HitModeKick:           "kick",
})

func (m HitMode) String() string {
	if n, ok := hitModes.name(m); ok {
		return n
	}
	return "unknown"
}

// IsWeapon - true для режимов, использующих предмет в руке.
func (m HitMode) IsWeapon() bool {
	return m <= HitModeRightSecondary
}

// ResolveHitMode переводит имя режима из команды ("primary", "secondary",
// "punch", "kick") в код с учётом того, есть ли оружие в активной руке.
// Неизвестное имя даёт основной режим.
func ResolveHitMode(name string, hasWeapon bool, hand Hand) HitMode {
	if m, ok := hitModes.parse(name); ok {
		return m
	}
	primary, secondary := HitModeRightPrimary, HitModeRightSecondary
	if hand == HandLeft {
		primary, secondary = HitModeLeftPrimary, HitModeLeftSecondary
	}
	switch name {
	case "secondary":
		if hasWeapon {
			return secondary
		}
		return HitModeKick
	default:
		if hasWeapon {
			return primary
		}
		return HitModePunch
	}
}

// HitLocation - прицельная зона.
type HitLocation uint8

const (
	HitLocationHead HitLocation = iota
	HitLocationLeftArm
	HitLocationRightArm
	HitLocationTorso
	HitLocationRightLeg
	HitLocationLeftLeg
	HitLocationEyes
	HitLocationGroin
	HitLocationUncalled
)

// HitLocations - порядок вывода шансов попадания.
var HitLocations = []HitLocation{
	HitLocationUncalled, HitLocationTorso, HitLocationHead, HitLocationEyes, HitLocationGroin,
	HitLocationLeftArm, HitLocationRightArm, HitLocationLeftLeg, HitLocationRightLeg,
}

var hitLocations = newRegistry(map[HitLocation]string{
	HitLocationHead:     "head",
	HitLocationLeftArm:  "left_arm",
	HitLocationRightArm: "right_arm",
	HitLocationTorso:    "torso",
	HitLocationRightLeg: "right_leg",
	HitLocationLeftLeg:  "left_leg",
	HitLocationEyes:     "eyes",
	HitLocationGroin:    "groin",
	HitLocationUncalled: "uncalled",
})

func (l HitLocation) String() string {
	if n, ok := hitLocations.name(l); ok {
		return n
	}
	return "unknown"
}

// ParseHitLocation: неизвестное имя - это неприцельный выстрел.
func ParseHitLocation(s string) HitLocation {
	if l, ok := hitLocations.parse(s); ok {
		return l
	}
	return HitLocationUncalled
}

// Hand - рука, в которой предмет.
type Hand uint8

const (
	HandLeft Hand = iota
	HandRight
)

var hands = newRegistry(map[Hand]string{
	HandLeft:  "left",
	HandRight: "right",
})

func (h Hand) String() string {
	if n, ok := hands.name(h); ok {
		return n
	}
	return "unknown"
}

func ParseHand(s string) (Hand, bool) { return hands.parse(s) }

// ShotVerdict - результат предварительной проверки выстрела.
type ShotVerdict uint8

const (
	ShotOK ShotVerdict = iota
	ShotNoAmmo
	ShotOutOfRange
	ShotNotEnoughAP
	ShotTargetDead
	ShotAimBlocked
	ShotArmCrippled
	ShotBothArmsCrippled
)

var shotReasons = map[ShotVerdict]string{
	ShotOK:               "ok",
	ShotNoAmmo:           "no ammo",
	ShotOutOfRange:       "out of range",
	ShotNotEnoughAP:      "not enough AP",
	ShotTargetDead:       "target already dead",
	ShotAimBlocked:       "aim blocked",
	ShotArmCrippled:      "arm crippled",
	ShotBothArmsCrippled: "both arms crippled",
}

// Reason - человекочитаемая причина отказа для last_command_debug.
func (v ShotVerdict) Reason() string {
	if r, ok := shotReasons[v]; ok {
		return r
	}
	return "unknown"
}

// DamageType - тип урона оружия.
type DamageType uint8

const (
	DamageNormal DamageType = iota
	DamageLaser
	DamageFire
	DamagePlasma
	DamageElectrical
	DamageEMP
	DamageExplosion
)

var damageTypes = newRegistry(map[DamageType]string{
	DamageNormal:     "normal",
	DamageLaser:      "laser",
	DamageFire:       "fire",
	DamagePlasma:     "plasma",
	DamageElectrical: "electrical",
	DamageEMP:        "emp",
	DamageExplosion:  "explosion",
})

func (d DamageType) String() string {
	if n, ok := damageTypes.name(d); ok {
		return n
	}
	return "unknown"
}
