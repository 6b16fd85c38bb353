package engine

import "agent-bridge/internal/sim"

// Event - уведомление хоста. Тип общий с симуляцией: песочница копит
// их и отдаёт хосту, хост передаёт мосту через Notify.
type Event = sim.Event

const (
	EventTeleport        = sim.EventTeleport
	EventMapChange       = sim.EventMapChange
	EventElevationChange = sim.EventElevationChange
	EventContainerChange = sim.EventContainerChange
	EventDeathScreen     = sim.EventDeathScreen
	EventCombatStart     = sim.EventCombatStart
)

// Notify сообщает мосту, что мир изменился без его участия.
func (b *Bridge) Notify(e Event) {
	b.log.WithField("event", e.Kind.String()).Debug("Host event")

	switch e.Kind {
	case EventTeleport:
		b.movement.Cancel()
		b.assembler.Cache().ForceRefresh()
	case EventMapChange, EventElevationChange:
		b.movement.Cancel()
		b.attacks.Clear()
		b.assembler.Cache().ForceRefresh()
	case EventContainerChange:
		b.assembler.Cache().ForceRefresh()
	case EventCombatStart:
		b.movement.Cancel()
		b.assembler.Cache().ForceRefresh()
	case EventDeathScreen:
		b.deathScreen = e.Active
		if e.Active {
			b.movement.Cancel()
			b.attacks.Clear()
			b.selection.Cancel()
		}
	}
}
