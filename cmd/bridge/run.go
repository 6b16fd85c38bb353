package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"agent-bridge/internal/agent"
	"agent-bridge/internal/config"
	"agent-bridge/internal/engine"
	"agent-bridge/internal/infrastructure/storage"
	"agent-bridge/internal/network"
	"agent-bridge/internal/sandbox"
	"agent-bridge/internal/server"
	"agent-bridge/internal/version"
	"agent-bridge/pkg/logger"
)

var (
	ticksPerSecond int
	telemetryDir   string
	archivePath    string
	monitorAddr    string
	autopilot      bool
	testMode       bool
	seed           int64
	startAt        string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bridge over the sandbox simulation",
	Long: `Builds a sandbox world, attaches the bridge to it and runs the host tick loop
until SIGINT/SIGTERM. Flags override AGENT_BRIDGE_* environment variables.`,
	RunE: runBridge,
}

func init() {
	runCmd.Flags().IntVar(&ticksPerSecond, "ticks-per-second", 30, "Host frame rate")
	runCmd.Flags().StringVar(&telemetryDir, "telemetry-dir", "", "Telemetry directory (relative to --dir)")
	runCmd.Flags().StringVar(&archivePath, "archive", "", "SQLite session archive path (empty disables)")
	runCmd.Flags().StringVar(&monitorAddr, "monitor", "", "Monitor listen address, e.g. 127.0.0.1:7480 (empty disables)")
	runCmd.Flags().BoolVar(&autopilot, "autopilot", false, "Drive the bridge with the built-in scripted agent")
	runCmd.Flags().BoolVar(&testMode, "test-mode", false, "Start with test-mode cheats enabled")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "Sandbox world seed (0 for time-based)")
	runCmd.Flags().StringVar(&startAt, "start", "movie", "Where the host starts: movie, menu or gameplay")
}

// loadConfig: умолчания, поверх окружение, поверх явно заданные флаги.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.FromEnv(config.New())
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.Dir = exchangeDir
	}
	if flags.Changed("telemetry-dir") {
		cfg.TelemetryDir = telemetryDir
	}
	if flags.Changed("archive") {
		cfg.ArchivePath = archivePath
	}
	if flags.Changed("monitor") {
		cfg.MonitorAddr = monitorAddr
	}
	if flags.Changed("test-mode") {
		cfg.TestMode = testMode
	}
	return cfg, cfg.Validate()
}

func buildWorld() (*sandbox.World, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	w := sandbox.Generate(seed)

	switch startAt {
	case "movie":
		w.StartAtMovie(90)
	case "menu":
		w.StartAtMainMenu()
	case "gameplay":
	default:
		return nil, fmt.Errorf("unknown --start %q (want movie, menu or gameplay)", startAt)
	}
	return w, nil
}

func runBridge(cmd *cobra.Command, args []string) error {
	log := logger.Component("cli")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if ticksPerSecond <= 0 {
		return fmt.Errorf("--ticks-per-second must be positive, got %d", ticksPerSecond)
	}
	period := time.Second / time.Duration(ticksPerSecond)

	world, err := buildWorld()
	if err != nil {
		return err
	}

	var opts []engine.Option
	var archive *storage.Archive
	if cfg.ArchivePath != "" {
		archive, err = storage.Open(cfg.ArchivePath)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer archive.Close()
		opts = append(opts, engine.WithArchive(archive))
	}

	var hub *network.Broadcaster
	if cfg.MonitorAddr != "" {
		hub = network.NewBroadcaster()
		opts = append(opts, engine.WithPublisher(hub))
	}

	bridge := engine.New(cfg, world, opts...)
	if err := bridge.Init(); err != nil {
		return err
	}
	defer func() {
		if err := bridge.Exit(); err != nil {
			log.WithError(err).Warn("Bridge shutdown incomplete")
		}
	}()

	log.WithFields(logrus.Fields{
		"dir":       cfg.Dir,
		"seed":      seed,
		"start":     startAt,
		"tps":       ticksPerSecond,
		"archive":   cfg.ArchivePath,
		"monitor":   cfg.MonitorAddr,
		"autopilot": autopilot,
	}).Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	monitorDone := make(chan struct{})
	if hub != nil {
		srv := server.New(cfg.MonitorAddr, hub, archive)
		go func() {
			defer close(monitorDone)
			if err := srv.Run(ctx); err != nil {
				log.WithError(err).Error("Monitor stopped with error")
			}
		}()
	} else {
		close(monitorDone)
	}

	if autopilot {
		bot := agent.NewBot(agent.NewClient(cfg.Dir))
		go func() { _ = bot.Run(ctx, period) }()
	}

	err = engine.NewDriver(bridge, world).Run(ctx, period)
	stop()
	<-monitorDone

	if errors.Is(err, context.Canceled) {
		log.Info("Shutting down...")
		return nil
	}
	return err
}
