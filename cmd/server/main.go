// embervale server: the authoritative world server. One game loop goroutine
// owns all world state; per-connection goroutines only move bytes.
//
// Usage:
//
//	go run ./cmd/server/ [-config config.toml]
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/embervale/server/internal/config"
	"github.com/embervale/server/internal/core/event"
	coresys "github.com/embervale/server/internal/core/system"
	"github.com/embervale/server/internal/data"
	"github.com/embervale/server/internal/handler"
	"github.com/embervale/server/internal/metrics"
	gamenet "github.com/embervale/server/internal/net"
	"github.com/embervale/server/internal/persist"
	gamesys "github.com/embervale/server/internal/system"
	"github.com/embervale/server/internal/world"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the toml config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	log, err := buildLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", zap.Error(err))
		os.Exit(1)
	}
}

// loadConfig reads the toml file, or falls back to defaults when the path
// does not exist so a fresh checkout starts without any setup.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Defaults(), nil
	}
	return config.Load(path)
}

func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}
	var zcfg zap.Config
	if cfg.Format == "json" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("server starting", zap.String("name", cfg.Server.Name))

	// Content tables.
	objectTable, err := data.LoadObjectTable(filepath.Join(cfg.Server.DataDir, "object_templates.yaml"))
	if err != nil {
		return err
	}
	spellTable, err := data.LoadSpellTable(filepath.Join(cfg.Server.DataDir, "spell_templates.yaml"))
	if err != nil {
		return err
	}
	itemTable, err := data.LoadItemTable(filepath.Join(cfg.Server.DataDir, "item_templates.yaml"))
	if err != nil {
		return err
	}
	spawnTable, err := data.LoadSpawnTable(filepath.Join(cfg.Server.DataDir, "spawns.yaml"))
	if err != nil {
		return err
	}
	log.Info("content tables loaded",
		zap.Int("objects", objectTable.Count()),
		zap.Int("spells", spellTable.Count()),
		zap.Int("items", itemTable.Count()),
		zap.Int("spawns", spawnTable.Count()))

	// Persistence is best-effort: an unreachable database downgrades the
	// server to memory-only rather than refusing to start.
	var store handler.PlayerStore
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := persist.Open(dbCtx, cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.ConnMaxLifetime)
	dbCancel()
	if err != nil {
		log.Warn("database unavailable, running memory-only", zap.Error(err))
	} else {
		defer db.Close()
		store = persist.NewPlayerRepo(db)
		log.Info("database connected")
	}

	// World state and managers.
	sessions := gamenet.NewSessionStore()
	worldState := world.NewState(world.Bounds{
		MinX: cfg.World.MinX, MinY: cfg.World.MinY,
		MaxX: cfg.World.MaxX, MaxY: cfg.World.MaxY,
	}, sessions, log)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	objects := world.NewObjectManager(worldState, objectTable, rng)
	spells := world.NewSpellManager(spellTable)
	effects := world.NewEffectManager()
	bus := event.NewBus()
	bus.Subscribe(func(ev any) {
		switch e := ev.(type) {
		case event.PlayerJoined:
			log.Debug("event: player joined",
				zap.Int32("char", e.CharID), zap.Bool("rejoined", e.Rejoined))
		case event.PlayerLeft:
			log.Debug("event: player left", zap.Int32("char", e.CharID))
		case event.ObjectDepleted:
			log.Debug("event: object depleted",
				zap.Int32("object", e.ObjectID),
				zap.String("template", e.TemplateID),
				zap.Bool("removed", e.Removed))
		}
	})

	m := metrics.New()
	if cfg.Metrics.Enabled {
		go m.Serve(ctx, cfg.Metrics.BindAddress, log)
	}

	deps := handler.NewDeps(handler.Deps{
		Log:     log,
		Config:  cfg,
		World:   worldState,
		Objects: objects,
		Spells:  spells,
		Effects: effects,
		Items:   itemTable,
		Players: store,
		Bus:     bus,
		Metrics: m,
	})

	registry := gamenet.NewRegistry(log)
	handler.RegisterAll(registry, deps)

	// Boot spawns.
	for _, sp := range spawnTable.All() {
		if _, err := objects.Spawn(sp.TemplateID, sp.X, sp.Y, sp.Z); err != nil {
			log.Warn("spawn point skipped", zap.String("template", sp.TemplateID), zap.Error(err))
		}
	}
	log.Info("world populated", zap.Int("objects", objects.Count()))

	// Tick pipeline. The spell system doubles as the cast queue.
	spellSys := gamesys.NewSpellSystem(deps)
	deps.Casts = spellSys
	pending := make(chan *gamenet.Session, 64)
	pipeline := coresys.NewPipeline(
		gamesys.NewInputSystem(deps, registry, pending, cfg.Network.MaxPacketsPerTick),
		gamesys.NewEventDispatchSystem(bus),
		gamesys.NewMovementSystem(deps),
		spellSys,
		gamesys.NewRespawnSystem(deps),
		gamesys.NewEffectExpirySystem(deps),
		gamesys.NewIdleSystem(deps, cfg.Network.IdleTimeout),
		gamesys.NewAutosaveSystem(deps, cfg.World.AutosaveIntervalTicks),
		gamesys.NewOutputSystem(deps),
	)

	// Listeners.
	opts := gamenet.Options{
		InQueueSize:  cfg.Network.InQueueSize,
		OutQueueSize: cfg.Network.OutQueueSize,
		WriteTimeout: cfg.Network.WriteTimeout,
	}
	listenErr := make(chan error, 2)
	go func() {
		listenErr <- gamenet.NewTCPListener(cfg.Network.TCPBindAddress, opts, pending, log).Start(ctx)
	}()
	if cfg.Network.WSBindAddress != "" {
		go func() {
			listenErr <- gamenet.NewWSListener(cfg.Network.WSBindAddress, opts, pending, log).Start(ctx)
		}()
	}

	// Game loop.
	ticker := time.NewTicker(cfg.Network.TickRate)
	defer ticker.Stop()
	log.Info("game loop started", zap.Duration("tick", cfg.Network.TickRate))

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return shutdown(deps, store, log)
		case err := <-listenErr:
			if err != nil {
				return err
			}
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			pipeline.Tick(dt)
			m.TickDuration.Observe(time.Since(now).Seconds())
		}
	}
}

// shutdown persists every player synchronously, then drops all sessions.
// Runs on the game loop goroutine after the ticker stops.
func shutdown(deps *handler.Deps, store handler.PlayerStore, log *zap.Logger) error {
	log.Info("shutting down")

	if store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		deps.World.AllPlayers(func(p *world.PlayerInfo) {
			if p.DBID == 0 {
				return
			}
			rec := handler.RecordFromPlayer(p, deps)
			if err := store.Update(ctx, p.DBID, rec); err != nil {
				log.Error("shutdown save failed", zap.String("name", p.Name), zap.Error(err))
			}
		})
	}

	deps.World.Sessions().ForEach(func(s *gamenet.Session) {
		s.Close()
	})
	log.Info("shutdown complete")
	return nil
}
