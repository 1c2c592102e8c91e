package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/AaronLay10/TowerEngine/internal/api"
	"github.com/AaronLay10/TowerEngine/internal/config"
	"github.com/AaronLay10/TowerEngine/internal/events"
	"github.com/AaronLay10/TowerEngine/internal/logger"
	"github.com/AaronLay10/TowerEngine/internal/mqtt"
	"github.com/AaronLay10/TowerEngine/internal/notice"
	"github.com/AaronLay10/TowerEngine/internal/session"
	"github.com/AaronLay10/TowerEngine/internal/storage/postgres"
	"github.com/AaronLay10/TowerEngine/internal/version"
)

func main() {
	logger.Initialize()
	defer zap.L().Sync()
	log := logger.For("main")

	path := config.Path()
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		log.Fatalw("failed to load config", "path", path, "error", err)
	}

	if err := api.InitAuth(); err != nil {
		log.Fatalw("failed to load credentials", "error", err)
	}
	api.InitTLS()

	ctrl, err := session.New(session.Options{
		Disks:    cfg.Puzzle.DiskCount,
		MaxDisks: cfg.Puzzle.MaxDisks,
		Delay:    cfg.Timing.AutoMoveDelay,
	})
	if err != nil {
		log.Fatalw("failed to create session", "error", err)
	}
	api.SetController(ctrl)
	api.SetNoticeBuilder(notice.Builder{
		DisplayFor: cfg.Timing.MessageDuration,
		WinDelay:   cfg.Timing.WinMessageDelay,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.Enabled {
		pg, err := postgres.New(cfg.Room.ID)
		if err != nil {
			log.Warnw("postgres unavailable, journal disabled", "error", err)
			api.SetPostgresState(false, true)
		} else {
			defer pg.Close()
			events.SetJournal(pg)
			api.SetHistory(pg)
			api.SetPostgresState(true, true)
			go watchPostgres(ctx, pg)
		}
	}

	if cfg.MQTT.Enabled {
		client := mqtt.NewClient("hanoi-"+cfg.Room.ID, cfg.MQTT.URL)
		if err := client.Connect(); err != nil {
			log.Warnw("mqtt connect failed, retrying in background", "broker", cfg.MQTT.URL, "error", err)
		}
		defer client.Disconnect()

		monitor := mqtt.NewMonitor(client, func(connected bool) {
			api.SetMQTTState(connected, true)
		})
		monitor.Start(5 * time.Second)
		defer monitor.Stop()

		sub := events.Subscribe()
		go mqtt.NewForwarder(client, cfg.MQTT.TopicPrefix, cfg.Room.ID).Run(ctx, sub)
	}

	hostname, _ := os.Hostname()
	events.Emit("info", "system.startup", "hanoi starting", map[string]interface{}{
		"service":  "hanoi",
		"version":  version.Version,
		"room_id":  cfg.Room.ID,
		"hostname": hostname,
		"pid":      os.Getpid(),
	})

	srv := api.NewServer(cfg.Network.UIPort)
	errCh := make(chan error, 1)
	go func() {
		errCh <- api.Serve(srv)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			log.Errorw("api server failed", "error", err)
		}
	}

	events.Emit("info", "system.shutdown", "hanoi stopping", nil)
	ctrl.CancelAutoSolve()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ctrl.Wait(shutdownCtx); err != nil {
		log.Warnw("auto-solve did not stop in time", "error", err)
	}
	events.CloseAllSubscribers()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnw("api shutdown", "error", err)
	}
}

// watchPostgres keeps the /ready postgres check current.
func watchPostgres(ctx context.Context, pg *postgres.Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			api.SetPostgresState(pg.Ping() == nil, true)
		}
	}
}
