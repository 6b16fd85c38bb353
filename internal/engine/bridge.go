// Package engine - мост между агентом и симуляцией: один тик хоста
// забирает команды, обслуживает отложенные очереди и пишет состояние.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"agent-bridge/internal/config"
	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/engine/detect"
	"agent-bridge/internal/engine/handlers"
	"agent-bridge/internal/engine/handlers/actions"
	"agent-bridge/internal/engine/handlers/admin"
	"agent-bridge/internal/engine/queue"
	"agent-bridge/internal/engine/snapshot"
	"agent-bridge/internal/infrastructure/storage"
	"agent-bridge/internal/sim"
	"agent-bridge/internal/telemetry"
	"agent-bridge/internal/transport"
	"agent-bridge/pkg/api"
	"agent-bridge/pkg/logger"
)

// Publisher получает каждый записанный кадр состояния. Монитор.
type Publisher interface {
	Publish(frame []byte)
}

// Option настраивает мост при создании.
type Option func(*Bridge)

// WithArchive дублирует журнал команд в sqlite-архив.
func WithArchive(a *storage.Archive) Option {
	return func(b *Bridge) { b.archive = a }
}

// WithPublisher отдаёт кадры состояния монитору.
func WithPublisher(p Publisher) Option {
	return func(b *Bridge) { b.publisher = p }
}

// WithClock подменяет часы, используется в тестах.
func WithClock(now func() time.Time) Option {
	return func(b *Bridge) { b.now = now }
}

// Bridge - единственный экземпляр моста на процесс хоста.
// Все методы вызываются из потока тиков хоста.
type Bridge struct {
	cfg     config.Config
	sim     sim.Simulation
	channel *transport.Channel

	registry *handlers.Registry
	session  *handlers.Session

	movement  *queue.Movement
	attacks   *queue.Attacks
	selection *queue.Selection

	assembler *snapshot.Assembler
	tracker   detect.Tracker
	manual    detect.Manual
	where     detect.Context

	failures *telemetry.FailureCounters
	deltas   *telemetry.DeltaTracker
	recorder *telemetry.Recorder
	archive  *storage.Archive

	publisher Publisher

	tick        uint64
	deathScreen bool
	lastDebug   string

	now func() time.Time
	log *logrus.Entry
}

// New собирает мост. Файлы не трогаются до Init.
func New(cfg config.Config, s sim.Simulation, opts ...Option) *Bridge {
	reg := handlers.NewRegistry(handlers.CharacterCreationPhases)
	actions.Register(reg)
	admin.Register(reg)

	b := &Bridge{
		cfg:       cfg,
		sim:       s,
		channel:   transport.NewChannel(cfg.Dir),
		registry:  reg,
		session:   handlers.NewSession(cfg.TestMode),
		movement:  queue.NewMovement(cfg.SegmentCap, cfg.WaypointCap, cfg.MaxPathSteps),
		attacks:   queue.NewAttacks(),
		selection: queue.NewSelection(cfg.DialogueDwell),
		assembler: snapshot.NewAssembler(s, cfg),
		failures:  telemetry.NewFailureCounters(),
		deltas:    telemetry.NewDeltaTracker(),
		now:       time.Now,
		log:       logger.Component("bridge"),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.assembler.Now = b.now
	return b
}

// Init убирает файлы прошлого запуска и открывает телеметрию.
// Ошибка телеметрии не фатальна: мост работает без логов.
func (b *Bridge) Init() error {
	if err := b.channel.Clean(); err != nil {
		return fmt.Errorf("clean exchange files: %w", err)
	}

	rec, err := telemetry.Open(b.cfg.TelemetryPath(), b.cfg.MaxLogRecords, b.tick, b.now())
	if err != nil {
		b.log.WithError(err).Warn("Telemetry disabled")
	} else {
		b.recorder = rec
		b.beginArchive(rec.Session())
	}

	b.log.WithFields(logrus.Fields{
		"dir":       b.cfg.Dir,
		"test_mode": b.session.TestMode,
		"commands":  len(b.registry.Types()),
	}).Info("Agent bridge initialized")
	return nil
}

func (b *Bridge) beginArchive(d telemetry.Descriptor) {
	if b.archive == nil {
		return
	}
	err := b.archive.BeginSession(storage.Session{
		ID:        d.SessionID,
		PID:       d.PID,
		StartedAt: d.StartTime,
		StartTick: d.StartTick,
		Version:   d.Version,
	})
	if err != nil {
		b.log.WithError(err).Warn("Archive session not started")
		b.archive = nil
	}
}

// Exit закрывает телеметрию и убирает файлы обмена.
func (b *Bridge) Exit() error {
	var errs []error
	if b.recorder != nil {
		if b.archive != nil {
			if err := b.archive.EndSession(b.recorder.Session().SessionID, b.tick, b.now()); err != nil {
				errs = append(errs, fmt.Errorf("end archive session: %w", err))
			}
		}
		if err := b.recorder.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close telemetry: %w", err))
		}
		b.recorder = nil
	}
	if err := b.channel.Clean(); err != nil {
		errs = append(errs, fmt.Errorf("clean exchange files: %w", err))
	}
	b.log.WithField("tick", b.tick).Info("Agent bridge shut down")
	return errors.Join(errs...)
}

// SetManualContext - грубая подсказка хоста о текущем экране.
func (b *Bridge) SetManualContext(m detect.Manual) {
	if m != b.manual {
		b.log.WithField("manual", m).Debug("Manual context set")
	}
	b.manual = m
}

// Tick - один кадр хоста. Ничего не возвращает: ошибки ввода-вывода
// пишутся в лог и не прерывают тик.
func (b *Bridge) Tick() {
	b.tick++
	b.where = b.detect()

	b.processCommands()
	b.serviceQueues()
	b.expire()

	if b.session.TakeRefresh() {
		b.assembler.Cache().ForceRefresh()
	}

	b.where = b.detect()
	if tr, ok := b.tracker.Observe(b.where); ok {
		b.log.WithFields(logrus.Fields{"from": tr.From.String(), "to": tr.To.String(), "tick": b.tick}).Debug("Context changed")
		if tr.LeftDialogue() {
			b.sim.HideDialogueThought()
		}
	}

	b.writeState()
	b.recordChanges()
}

func (b *Bridge) detect() detect.Context {
	return detect.Detect(detect.Inputs{
		DeathScreen: b.deathScreen,
		Movie:       b.sim.MoviePlaying(),
		Mode:        b.sim.GameMode(),
		Manual:      b.manual,
	})
}

func (b *Bridge) handlerContext() handlers.Context {
	return handlers.Context{
		Sim:       b.sim,
		Tick:      b.tick,
		Config:    b.cfg,
		Where:     b.where,
		Session:   b.session,
		Movement:  b.movement,
		Attacks:   b.attacks,
		Selection: b.selection,
	}
}

func (b *Bridge) processCommands() {
	data, ok, err := b.channel.PollCommands()
	if err != nil {
		b.log.WithError(err).Warn("Command poll failed")
	}
	if !ok {
		return
	}

	batch, err := api.ParseBatch(data)
	if err != nil {
		b.log.WithFields(logrus.Fields{"tick": b.tick, "bytes": len(data)}).WithError(err).Warn("Command batch discarded")
		b.lastDebug = "batch discarded: " + err.Error()
		return
	}

	b.registry.Execute(b.handlerContext(), batch, b.observe)
}

// observe - исход одной команды: счётчики, журнал, архив.
func (b *Bridge) observe(o handlers.Outcome) {
	consecutive := b.failures.Record(o.Command.Type, o.Result.Status)
	b.lastDebug = o.Result.Debug

	fields := logrus.Fields{
		"tick":   b.tick,
		"type":   o.Command.Type,
		"status": o.Result.Status.String(),
	}
	switch {
	case o.Result.Status == handlers.StatusUnknownCommand:
		b.log.WithFields(fields).WithField("failure", true).Warn(o.Result.Debug)
	case o.Result.Status.IsFailure():
		b.log.WithFields(fields).WithFields(logrus.Fields{"failure": true, "consecutive": consecutive}).Info(o.Result.Debug)
	default:
		b.log.WithFields(fields).Debug(o.Result.Debug)
	}

	if b.recorder == nil {
		return
	}
	rec := telemetry.NewCommandRecord(b.now(), b.tick, o.Command, o.Result, consecutive)
	if err := b.recorder.Command(rec); err != nil {
		b.log.WithError(err).Warn("Command log write failed")
	}
	b.archiveCommand(rec)
}

func (b *Bridge) archiveCommand(rec telemetry.CommandRecord) {
	if b.archive == nil {
		return
	}
	args := "{}"
	if len(rec.Args) > 0 {
		if data, err := json.Marshal(rec.Args); err == nil {
			args = string(data)
		}
	}
	_, err := b.archive.RecordCommand(storage.CommandEntry{
		SessionID: b.recorder.Session().SessionID,
		Tick:      rec.Tick,
		Type:      rec.Type,
		Status:    rec.Status,
		Failure:   rec.Failure,
		Debug:     rec.Result,
		Args:      args,
		CreatedAt: b.now(),
	})
	if err != nil {
		b.log.WithError(err).Warn("Archive write failed")
	}
}

// serviceQueues продвигает отложенные механизмы, по одному шагу каждый.
func (b *Bridge) serviceQueues() {
	if msg := b.movement.Service(b.sim); msg != "" {
		b.log.WithField("tick", b.tick).Debug(msg)
		b.lastDebug = msg
	}
	if msg := b.attacks.Service(b.sim); msg != "" {
		b.log.WithField("tick", b.tick).Debug(msg)
		b.lastDebug = msg
	}
	if out, ok := b.selection.Service(b.sim, b.tick, b.detect()); ok {
		b.log.WithFields(logrus.Fields{"tick": b.tick, "index": out.Index, "outcome": out.Outcome}).Info("Dialogue selection resolved")
	}
}

// expire гасит оверлей статуса и устаревшие результаты запросов.
func (b *Bridge) expire() {
	if b.session.StatusExpired(b.tick, b.cfg.StatusTTL) {
		b.sim.HideStatus()
		b.session.StatusHidden()
	}
	b.session.ExpireResults(b.tick, b.cfg.LookAtTTL)
}

func (b *Bridge) frame() snapshot.Frame {
	f := snapshot.Frame{
		Tick:       b.tick,
		Context:    b.where,
		TestMode:   b.session.TestMode,
		AutoCombat: b.session.AutoCombat,
		LastDebug:  b.lastDebug,
		Failures:   b.failures.Snapshot(),
		Pending: api.PendingView{
			MovementWaypointsRemaining: b.movement.Remaining(),
			PendingAttacks:             b.attacks.Len(),
			DialogueSelection:          b.selection.Pending(),
		},
		LookAt: b.session.LookAt(),
		Query:  b.session.Query(),
	}
	if out, ok := b.selection.Last(); ok {
		f.Selection = &api.DialogueSelectionView{Index: out.Index, Outcome: out.Outcome, Tick: out.Tick, Error: out.Err}
	}
	return f
}

func (b *Bridge) writeState() {
	st := b.assembler.Build(b.frame())
	doc, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		b.log.WithError(err).Error("State encode failed")
		return
	}
	if err := b.channel.WriteState(doc); err != nil {
		b.log.WithError(err).Warn("State write failed")
	}
	if b.publisher != nil {
		b.publisher.Publish(doc)
	}
}

func (b *Bridge) recordChanges() {
	if b.recorder == nil {
		return
	}
	o := telemetry.Observation{
		Tick:     b.tick,
		Context:  b.where,
		InCombat: b.sim.InCombat(),
		Dead:     b.deathScreen,
	}
	if p, ok := b.sim.Player(); ok {
		o.HasPlayer = true
		o.HP, o.Tile, o.Elevation = p.HP, p.Tile, p.Elevation
		o.Dead = o.Dead || p.Dead
		if m, ok := b.sim.Map(); ok {
			o.Map = m.Index
		}
	}
	if recs := b.deltas.Observe(b.now(), o); len(recs) > 0 {
		if err := b.recorder.Changes(recs); err != nil {
			b.log.WithError(err).Warn("State change log write failed")
		}
	}
}

// --- Опросы хоста ---

// CheckMovieSkip подглядывает в файл команд во время ролика. Если там есть
// skip, файл потребляется целиком и хост обрывает ролик.
func (b *Bridge) CheckMovieSkip() bool {
	data, ok, err := b.channel.PeekCommands()
	if err != nil {
		b.log.WithError(err).Warn("Command peek failed")
		return false
	}
	if !ok {
		return false
	}
	batch, err := api.ParseBatch(data)
	if err != nil || !batch.ContainsType("skip") {
		return false
	}
	if err := b.channel.DiscardCommands(); err != nil {
		b.log.WithError(err).Warn("Command discard failed")
	}
	b.lastDebug = "skip: movie skipped"
	b.log.WithField("tick", b.tick).Info("Movie skipped by agent")
	return true
}

// TakeMainMenuAction - одноразовый запрос пункта главного меню.
func (b *Bridge) TakeMainMenuAction() (enums.MenuAction, bool) {
	return b.session.TakeMenuAction()
}

// TakePendingLoadSlot - слот для загрузки прямо из главного меню.
func (b *Bridge) TakePendingLoadSlot() (int, bool) {
	return b.session.TakePendingLoadSlot()
}

func (b *Bridge) AutoCombat() bool { return b.session.AutoCombat }

func (b *Bridge) TestMode() bool { return b.session.TestMode }

// Context - контекст, выведенный на последнем тике.
func (b *Bridge) Context() detect.Context { return b.where }

func (b *Bridge) CurrentTick() uint64 { return b.tick }

// Failures - копия счётчиков неудач.
func (b *Bridge) Failures() map[string]int { return b.failures.Snapshot() }

// Session - дескриптор текущей сессии телеметрии, если она открыта.
func (b *Bridge) Session() (telemetry.Descriptor, bool) {
	if b.recorder == nil {
		return telemetry.Descriptor{}, false
	}
	return b.recorder.Session(), true
}
