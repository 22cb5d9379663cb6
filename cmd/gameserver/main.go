// Package main provides the Integration Quest server binary. It loads the
// YAML content tables, wires the engine and the multiplayer stores, and
// serves the game's tool surface over stdio or streamable HTTP.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/integration-quest/internal/config"
	"github.com/cory-johannsen/integration-quest/internal/game/combat"
	"github.com/cory-johannsen/integration-quest/internal/game/dice"
	"github.com/cory-johannsen/integration-quest/internal/game/dungeon"
	"github.com/cory-johannsen/integration-quest/internal/game/effect"
	"github.com/cory-johannsen/integration-quest/internal/game/enemy"
	"github.com/cory-johannsen/integration-quest/internal/game/item"
	"github.com/cory-johannsen/integration-quest/internal/game/session"
	"github.com/cory-johannsen/integration-quest/internal/game/skill"
	"github.com/cory-johannsen/integration-quest/internal/gameserver"
	"github.com/cory-johannsen/integration-quest/internal/mail"
	"github.com/cory-johannsen/integration-quest/internal/observability"
	"github.com/cory-johannsen/integration-quest/internal/scripting"
	"github.com/cory-johannsen/integration-quest/internal/server"
	"github.com/cory-johannsen/integration-quest/internal/storage/postgres"
	"github.com/cory-johannsen/integration-quest/internal/storage/redis"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty uses built-in defaults and IQ_* env vars")
	contentDir := flag.String("content", "", "path to YAML content directory; overrides game.content_dir")
	scriptDir := flag.String("scripts", "", "path to Lua boss ability scripts; overrides game.script_dir")
	flag.Parse()

	ctx := context.Background()

	var (
		cfg config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
	} else {
		cfg = config.Default()
	}
	if *contentDir != "" {
		cfg.Game.ContentDir = *contentDir
	}
	if *scriptDir != "" {
		cfg.Game.ScriptDir = *scriptDir
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	cryptoSrc := dice.NewCryptoSource()
	roller := dice.NewLoggedRoller(cryptoSrc, logger)

	logger.Info("starting integration quest server",
		zap.String("transport", cfg.Server.Transport),
		zap.Bool("multiplayer", cfg.Game.Multiplayer),
		zap.String("content_dir", cfg.Game.ContentDir),
	)

	// Load content tables
	contentStart := time.Now()
	classes, err := skill.LoadRegistry(filepath.Join(cfg.Game.ContentDir, "skills"))
	if err != nil {
		logger.Fatal("loading class definitions", zap.Error(err))
	}
	items, err := item.LoadRegistry(filepath.Join(cfg.Game.ContentDir, "items"))
	if err != nil {
		logger.Fatal("loading item definitions", zap.Error(err))
	}
	gear, err := item.LoadStartingGear(filepath.Join(cfg.Game.ContentDir, "starting_gear.yaml"), items)
	if err != nil {
		logger.Fatal("loading starting gear", zap.Error(err))
	}
	effects, err := effect.LoadDirectory(filepath.Join(cfg.Game.ContentDir, "effects"))
	if err != nil {
		logger.Fatal("loading effect definitions", zap.Error(err))
	}
	enemies, err := enemy.LoadRegistry(filepath.Join(cfg.Game.ContentDir, "enemies"))
	if err != nil {
		logger.Fatal("loading enemy templates", zap.Error(err))
	}
	flavors, err := dungeon.LoadFlavors(filepath.Join(cfg.Game.ContentDir, "rooms"))
	if err != nil {
		logger.Fatal("loading room flavor tables", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("classes", len(classes.Classes())),
		zap.Int("items", items.Len()),
		zap.Int("effects", len(effects.All())),
		zap.Int("enemies", enemies.Len()),
		zap.Int("bosses", len(enemies.Bosses())),
		zap.Int("room_flavors", len(flavors)),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	generator, err := dungeon.NewGenerator(enemies, items, flavors, cryptoSrc, dungeon.Config{
		RoomsPerLevel: cfg.Game.RoomsPerLevel,
	})
	if err != nil {
		logger.Fatal("creating dungeon generator", zap.Error(err))
	}

	// Load boss ability scripts. A missing directory disables scripted
	// abilities; boss turns fall back to basic attacks.
	var abilities combat.AbilityRunner
	var scriptMgr *scripting.Manager
	if info, statErr := os.Stat(cfg.Game.ScriptDir); statErr == nil && info.IsDir() {
		scriptStart := time.Now()
		scriptMgr = scripting.NewManager(roller, logger, 0)
		if err := scriptMgr.LoadDir(cfg.Game.ScriptDir); err != nil {
			logger.Fatal("loading boss scripts", zap.Error(err))
		}
		abilities = gameserver.NewScriptedAbilities(scriptMgr)
		logger.Info("boss scripts loaded",
			zap.String("dir", cfg.Game.ScriptDir),
			zap.Duration("elapsed", time.Since(scriptStart)),
		)
	} else {
		logger.Warn("script directory not found, boss abilities disabled",
			zap.String("dir", cfg.Game.ScriptDir),
		)
	}

	lifecycle := server.NewLifecycle(logger)
	runCtx, stopRun := context.WithCancel(ctx)

	// Connect to PostgreSQL for checkpoints and player accounts. Multiplayer
	// cannot run without it; single-player degrades to an ephemeral session.
	var (
		players gameserver.PlayerStore
		saves   gameserver.SaveStore
	)
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	switch {
	case err == nil:
		players = postgres.NewPlayerRepository(pool.DB())
		saves = postgres.NewSaveRepository(pool.DB())
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		lifecycle.Add("postgres", &server.FuncService{
			StartFn: func() error {
				for {
					select {
					case <-runCtx.Done():
						return nil
					case <-time.After(30 * time.Second):
					}
					if err := pool.Health(ctx, 5*time.Second); err != nil {
						logger.Warn("database health check failed", zap.Error(err))
					}
				}
			},
			StopFn: func() {
				pool.Close()
			},
		})
	case cfg.Game.Multiplayer:
		logger.Fatal("connecting to database", zap.Error(err))
	default:
		logger.Warn("database unavailable, checkpoints disabled", zap.Error(err))
	}

	// The Redis leaderboard serves live rank reads in multiplayer mode.
	// PostgreSQL stays the durable source, so a missing Redis only degrades
	// rank lookups.
	var board gameserver.Board
	if cfg.Game.Multiplayer {
		lb, err := redis.NewLeaderboard(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, ranks fall back to postgres", zap.Error(err))
		} else {
			board = lb
			logger.Info("leaderboard connected", zap.String("addr", cfg.Redis.Addr))
			lifecycle.Add("redis", &server.FuncService{
				StartFn: func() error {
					for {
						select {
						case <-runCtx.Done():
							return nil
						case <-time.After(30 * time.Second):
						}
						if err := lb.Health(ctx, 5*time.Second); err != nil {
							logger.Warn("redis health check failed", zap.Error(err))
						}
					}
				},
				StopFn: func() {
					if err := lb.Close(); err != nil {
						logger.Warn("closing redis client", zap.Error(err))
					}
				},
			})
		}
	}

	var mailer mail.Mailer
	if cfg.Email.Enabled {
		mailer = mail.NewSendGrid(cfg.Email, logger)
		logger.Info("sendgrid mailer configured", zap.String("from", cfg.Email.FromAddress))
	} else {
		mailer = mail.NewNop(logger)
	}

	sessions := session.NewManager()

	srv, err := gameserver.New(
		&cfg, logger, sessions,
		classes, items, effects, gear,
		generator, roller, abilities,
		players, saves, board, mailer,
	)
	if err != nil {
		logger.Fatal("creating game server", zap.Error(err))
	}

	lifecycle.Add("mcp", &server.FuncService{
		StartFn: func() error {
			err := srv.Run(runCtx)
			// A stdio session ends at client EOF; bring the process down
			// with it instead of waiting for a signal.
			stopRun()
			return err
		},
		StopFn: stopRun,
	})

	logger.Info("server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("server", cfg.Server.Name),
		zap.String("version", cfg.Server.Version),
	)

	if err := lifecycle.Run(runCtx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}

	if scriptMgr != nil {
		scriptMgr.Close()
	}
}
