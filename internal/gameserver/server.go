// Package gameserver exposes the Integration Quest engine as an MCP tool
// surface. Handlers read and mutate session state through the registry
// explicitly; the engine packages underneath never see the transport.
// Recoverable game failures travel in-band as structured results so a
// connected model can react to them; transport errors are reserved for
// infrastructure problems.
package gameserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/cory-johannsen/integration-quest/internal/config"
	"github.com/cory-johannsen/integration-quest/internal/game/combat"
	"github.com/cory-johannsen/integration-quest/internal/game/dice"
	"github.com/cory-johannsen/integration-quest/internal/game/dungeon"
	"github.com/cory-johannsen/integration-quest/internal/game/effect"
	"github.com/cory-johannsen/integration-quest/internal/game/hero"
	"github.com/cory-johannsen/integration-quest/internal/game/item"
	"github.com/cory-johannsen/integration-quest/internal/game/session"
	"github.com/cory-johannsen/integration-quest/internal/game/skill"
	"github.com/cory-johannsen/integration-quest/internal/mail"
	"github.com/cory-johannsen/integration-quest/internal/storage/postgres"
)

// PlayerStore persists player accounts and scores.
// *postgres.PlayerRepository satisfies it; tests substitute fakes.
type PlayerStore interface {
	Create(ctx context.Context, email, username, token string) (postgres.Player, error)
	Authenticate(ctx context.Context, email, token string) (postgres.Player, error)
	GetByEmail(ctx context.Context, email string) (postgres.Player, error)
	RefreshToken(ctx context.Context, email, newToken string) error
	AddScore(ctx context.Context, email string, points int64) error
	IncrementEnemiesDefeated(ctx context.Context, email string, n int64) error
	FinalizeRun(ctx context.Context, email string, runScore int64) error
	Top(ctx context.Context, limit int) ([]postgres.Player, error)
	Rank(ctx context.Context, email string) (int64, error)
}

// SaveStore persists game-state snapshots. *postgres.SaveRepository
// satisfies it.
type SaveStore interface {
	Create(ctx context.Context, sessionKey, playerEmail string, state []byte, runScore int64) (postgres.Save, error)
	GetByID(ctx context.Context, id uuid.UUID) (postgres.Save, error)
	LatestBySession(ctx context.Context, sessionKey string) (postgres.Save, error)
	LatestByPlayer(ctx context.Context, email string) (postgres.Save, error)
}

// Board mirrors total scores into the redis leaderboard for fast rank
// lookups. *redis.Leaderboard satisfies it. Board writes are best-effort:
// postgres stays the durable source and a failed mirror write never fails
// the player's action.
type Board interface {
	AddScore(ctx context.Context, email string, delta int64) (int64, error)
	SetScore(ctx context.Context, email string, total int64) error
	Rank(ctx context.Context, email string) (int64, error)
}

// Server wires the engine, the content registries, and the multiplayer
// stores into one MCP tool surface.
type Server struct {
	cfg       *config.Config
	logger    *zap.Logger
	sessions  *session.Manager
	classes   *skill.Registry
	items     *item.Registry
	effects   *effect.Registry
	gear      *item.StartingGear
	generator *dungeon.Generator
	roller    *dice.Roller
	abilities combat.AbilityRunner
	players   PlayerStore
	saves     SaveStore
	board     Board
	mailer    mail.Mailer
	mcp       *mcp.Server
}

// New creates a Server and registers its tool surface. The multiplayer
// tools are registered only when cfg.Game.Multiplayer is set, and require
// the player store and mailer to be wired.
//
// Precondition: cfg, logger, sessions, classes, items, effects, gear,
// generator, and roller must be non-nil. abilities, players, saves, board,
// and mailer may be nil in single-player mode.
// Postcondition: Returns a Server ready to Run, or a non-nil error naming
// the first missing dependency.
func New(
	cfg *config.Config,
	logger *zap.Logger,
	sessions *session.Manager,
	classes *skill.Registry,
	items *item.Registry,
	effects *effect.Registry,
	gear *item.StartingGear,
	generator *dungeon.Generator,
	roller *dice.Roller,
	abilities combat.AbilityRunner,
	players PlayerStore,
	saves SaveStore,
	board Board,
	mailer mail.Mailer,
) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("gameserver: config must not be nil")
	}
	if logger == nil {
		return nil, errors.New("gameserver: logger must not be nil")
	}
	if sessions == nil {
		return nil, errors.New("gameserver: session manager must not be nil")
	}
	if classes == nil || items == nil || effects == nil {
		return nil, errors.New("gameserver: content registries must not be nil")
	}
	if gear == nil {
		return nil, errors.New("gameserver: starting gear must not be nil")
	}
	if generator == nil {
		return nil, errors.New("gameserver: dungeon generator must not be nil")
	}
	if roller == nil {
		return nil, errors.New("gameserver: dice roller must not be nil")
	}
	if cfg.Game.Multiplayer {
		if players == nil {
			return nil, errors.New("gameserver: multiplayer mode requires a player store")
		}
		if mailer == nil {
			return nil, errors.New("gameserver: multiplayer mode requires a mailer")
		}
	}

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		sessions:  sessions,
		classes:   classes,
		items:     items,
		effects:   effects,
		gear:      gear,
		generator: generator,
		roller:    roller,
		abilities: abilities,
		players:   players,
		saves:     saves,
		board:     board,
		mailer:    mailer,
	}
	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Server.Name,
		Version: cfg.Server.Version,
	}, nil)
	s.registerTools()
	return s, nil
}

// registerTools binds every tool handler onto the MCP server. The
// multiplayer tools only exist on the surface when multiplayer is enabled,
// matching the single-player deployments that carry no database.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "create_character",
		Description: "Create an Integration Hero and begin your quest.",
	}, s.handleCreateCharacter)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "view_status",
		Description: "View your Integration Hero's current Uptime, API Credits, stats, inventory, and status effects.",
	}, s.handleViewStatus)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "explore",
		Description: "Explore the current system. Reveals room details, items, connectors, and integration villains.",
	}, s.handleExplore)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "examine",
		Description: "Examine an enemy, item, or system feature in detail. Critical for Undocumented API enemies: they're immune until examined!",
	}, s.handleExamine)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "move",
		Description: "Navigate to an adjacent system.",
	}, s.handleMove)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "attack",
		Description: "Attack an integration villain.",
	}, s.handleAttack)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "defend",
		Description: "Defensive stance. Reduces incoming damage by 50% and triggers retry logic if equipped.",
	}, s.handleDefend)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "use_item",
		Description: "Use a consumable from inventory.",
	}, s.handleUseItem)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "pickup",
		Description: "Pick up an item or connector from the current room.",
	}, s.handlePickup)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "equip",
		Description: "Equip a connector (weapon) or error handler (armor) from inventory.",
	}, s.handleEquip)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "rest",
		Description: "Rest to recover Uptime and API Credits. Warning: 20% chance of triggering a random encounter!",
	}, s.handleRest)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "flee",
		Description: "Attempt graceful degradation (escape combat). Success based on Rate Agility.",
	}, s.handleFlee)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "save_game",
		Description: "Create a checkpoint. Returns save ID for later restoration.",
	}, s.handleSaveGame)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "load_game",
		Description: "Restore from a previous checkpoint. Without a save_id, the most recent checkpoint is loaded.",
	}, s.handleLoadGame)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "enter_diagnostic_code",
		Description: "Run system diagnostics with a diagnostic code.",
	}, s.handleEnterDiagnosticCode)

	if !s.cfg.Game.Multiplayer {
		return
	}
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "register_player",
		Description: "Register for the Integration Quest leaderboard with your email. A login token will be sent to your email address.",
	}, s.handleRegisterPlayer)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "login",
		Description: "Login to your Integration Quest account to track scores on the leaderboard.",
	}, s.handleLogin)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "refresh_token",
		Description: "Request a new login token. The new token will be sent to your email. Your old token will no longer work.",
	}, s.handleRefreshToken)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "logout",
		Description: "Logout from your Integration Quest account. Your current game will be saved automatically.",
	}, s.handleLogout)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "view_leaderboard",
		Description: "View the Integration Quest leaderboard. See the top players ranked by total score.",
	}, s.handleViewLeaderboard)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "view_my_stats",
		Description: "View your personal stats and leaderboard rank. Requires being logged in.",
	}, s.handleViewMyStats)
}

// Run serves the tool surface until ctx is cancelled. The transport comes
// from config: "stdio" speaks MCP over stdin/stdout, "http" mounts the
// streamable HTTP handler on /mcp. Before serving, the most recent default-
// session save is restored so a restarted server resumes the adventure.
func (s *Server) Run(ctx context.Context) error {
	s.autoLoadSave(ctx)

	if s.cfg.Server.Transport == "http" {
		return s.runHTTP(ctx)
	}
	return s.runStdio(ctx)
}

// runStdio blocks serving MCP over stdin/stdout. Context cancellation is a
// clean shutdown, not an error.
func (s *Server) runStdio(ctx context.Context) error {
	s.logger.Info("serving MCP over stdio",
		zap.String("server", s.cfg.Server.Name),
		zap.String("version", s.cfg.Server.Version),
		zap.Bool("multiplayer", s.cfg.Game.Multiplayer),
	)
	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serving MCP over stdio: %w", err)
	}
	return nil
}

// runHTTP serves the same MCP server over the SDK's streamable HTTP
// transport, mounted on /mcp, with graceful shutdown on ctx cancellation.
func (s *Server) runHTTP(ctx context.Context) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)

	httpSrv := &http.Server{
		Addr:    s.cfg.Server.HTTPAddr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()
	s.logger.Info("serving MCP over HTTP",
		zap.String("addr", s.cfg.Server.HTTPAddr),
		zap.String("path", "/mcp"),
		zap.Bool("multiplayer", s.cfg.Game.Multiplayer),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving MCP over HTTP: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down HTTP transport: %w", err)
		}
		return nil
	}
}

// autoLoadSave restores the most recent default-session snapshot at
// startup. Missing or unreadable saves are logged and skipped; the server
// starts fresh either way.
func (s *Server) autoLoadSave(ctx context.Context) {
	if s.saves == nil {
		return
	}
	save, err := s.saves.LatestBySession(ctx, session.DefaultKey)
	if errors.Is(err, postgres.ErrSaveNotFound) {
		s.logger.Info("no saved game found, starting fresh")
		return
	}
	if err != nil {
		s.logger.Warn("loading latest save failed", zap.Error(err))
		return
	}
	st, err := session.DecodeSnapshot(save.State)
	if err != nil {
		s.logger.Warn("decoding latest save failed",
			zap.String("save_id", save.ID.String()),
			zap.Error(err),
		)
		return
	}
	st.SaveID = save.ID.String()
	s.sessions.PutState(session.DefaultKey, st)
	s.logger.Info("auto-loaded save",
		zap.String("save_id", save.ID.String()),
		zap.String("hero", st.Hero.Name),
		zap.Int("level", st.Hero.Level),
		zap.Int("depth", st.Depth),
	)
}

// state fetches the default session's game state.
func (s *Server) state() (*session.GameState, bool) {
	return s.sessions.GetState(session.DefaultKey)
}

// playerSession fetches the default session's login envelope, if any.
func (s *Server) playerSession() (*session.PlayerSession, bool) {
	return s.sessions.GetPlayer(session.DefaultKey)
}

// authenticated returns the login envelope only when the token check
// passed.
func (s *Server) authenticated() (*session.PlayerSession, bool) {
	ps, ok := s.playerSession()
	if !ok || !ps.Authenticated {
		return nil, false
	}
	return ps, true
}

// heroClass resolves the hero's class definition from the registry.
func (s *Server) heroClass(h *hero.Hero) (*skill.Class, bool) {
	return s.classes.Class(h.Role)
}

// playerRank resolves a player's leaderboard position, preferring the
// redis mirror and falling back to the durable postgres count when the
// mirror is down or has no entry. Returns 0 when neither source answers.
func (s *Server) playerRank(ctx context.Context, email string) int64 {
	if s.board != nil {
		if rank, err := s.board.Rank(ctx, email); err == nil {
			return rank
		}
	}
	if s.players != nil {
		if rank, err := s.players.Rank(ctx, email); err == nil {
			return rank
		}
	}
	return 0
}
