package sim

// EventKind - уведомление хоста "мир изменился без участия моста".
type EventKind uint8

const (
	EventTeleport EventKind = iota + 1
	EventMapChange
	EventElevationChange
	EventContainerChange
	EventDeathScreen
	EventCombatStart
)

var eventNames = map[EventKind]string{
	EventTeleport:        "teleport",
	EventMapChange:       "map_change",
	EventElevationChange: "elevation_change",
	EventContainerChange: "container_change",
	EventDeathScreen:     "death_screen",
	EventCombatStart:     "combat_start",
}

func (k EventKind) String() string {
	if n, ok := eventNames[k]; ok {
		return n
	}
	return "unknown"
}

// Event - одно уведомление. Active имеет смысл только для EventDeathScreen.
type Event struct {
	Kind   EventKind
	Active bool
}
