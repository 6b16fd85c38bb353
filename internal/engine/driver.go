package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/engine/detect"
	"agent-bridge/internal/sim"
	"agent-bridge/pkg/logger"
)

// Host - то, что мосту нужно от процесса игры кроме самой симуляции:
// продвижение кадра, подсказка экрана, уведомления и главное меню.
type Host interface {
	sim.Simulation

	Advance()
	ManualContext() string
	TakeEvents() []sim.Event
	SkipMovie()
	MainMenu(a enums.MenuAction, slot int) error
	Quit() bool
}

// Driver крутит мост и хост в одном потоке, как это делает игровой цикл:
// на каждый кадр сначала тик моста, потом кадр игры.
type Driver struct {
	Bridge *Bridge
	Host   Host

	log *logrus.Entry
}

func NewDriver(b *Bridge, h Host) *Driver {
	return &Driver{Bridge: b, Host: h, log: logger.Component("driver")}
}

// Step - один кадр хоста.
func (d *Driver) Step() {
	// Во время ролика skip подглядывается до тика, иначе ролик отыграет
	// ещё кадр.
	if d.Host.MoviePlaying() && d.Bridge.CheckMovieSkip() {
		d.Host.SkipMovie()
	}

	m, ok := detect.ParseManual(d.Host.ManualContext())
	if !ok {
		m = detect.ManualNone
	}
	d.Bridge.SetManualContext(m)

	d.Bridge.Tick()
	d.mainMenu()

	d.Host.Advance()
	d.notify()
}

func (d *Driver) mainMenu() {
	a, ok := d.Bridge.TakeMainMenuAction()
	if !ok {
		return
	}
	slot, _ := d.Bridge.TakePendingLoadSlot()
	if err := d.Host.MainMenu(a, slot); err != nil {
		d.log.WithFields(logrus.Fields{"action": a.String(), "slot": slot}).WithError(err).Warn("Main menu action rejected")
	}
}

func (d *Driver) notify() {
	for _, e := range d.Host.TakeEvents() {
		d.Bridge.Notify(e)
	}
}

// Run шагает с заданным периодом, пока не отменят контекст или хост
// не попросит выход.
func (d *Driver) Run(ctx context.Context, period time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	d.log.WithField("period", period.String()).Info("Host loop started")
	for {
		select {
		case <-ctx.Done():
			d.log.Info("Host loop stopped")
			return ctx.Err()
		case <-ticker.C:
			d.Step()
			if d.Host.Quit() {
				d.log.WithField("tick", d.Bridge.CurrentTick()).Info("Host requested exit")
				return nil
			}
		}
	}
}
