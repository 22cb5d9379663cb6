package gameserver

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/cory-johannsen/integration-quest/internal/game/session"
	"github.com/cory-johannsen/integration-quest/internal/gameerr"
	"github.com/cory-johannsen/integration-quest/internal/storage/postgres"
)

// Username format rules for registration.
const (
	minUsernameLength = 3
	maxUsernameLength = 20
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// validateUsername checks the leaderboard display-name rules. The reason is
// player-facing.
func validateUsername(username string) (bool, string) {
	if len(username) < minUsernameLength {
		return false, fmt.Sprintf("Username must be at least %d characters", minUsernameLength)
	}
	if len(username) > maxUsernameLength {
		return false, fmt.Sprintf("Username must be at most %d characters", maxUsernameLength)
	}
	if !usernamePattern.MatchString(username) {
		return false, "Username can only contain letters, numbers, and underscores"
	}
	return true, ""
}

// normalizeEmail lowercases and trims an account email. Emails are the
// account identity; case differences must not mint duplicate accounts.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterPlayerInput carries the new account's identity.
type RegisterPlayerInput struct {
	Email    string `json:"email" jsonschema:"email address used as your player ID"`
	Username string `json:"username" jsonschema:"display name for the leaderboard, 3-20 chars, alphanumeric plus underscore"`
}

// LoginInput carries the account credentials.
type LoginInput struct {
	Email string `json:"email" jsonschema:"registered email address"`
	Token string `json:"token" jsonschema:"login token received via email"`
}

// RefreshTokenInput names the account whose token to rotate.
type RefreshTokenInput struct {
	Email string `json:"email" jsonschema:"registered email address"`
}

// LogoutInput is empty; logout acts on the current session.
type LogoutInput struct{}

// handleRegisterPlayer creates an account, generates its login token, and
// emails the token to the player. The token never travels through the tool
// surface; an email failure leaves the account created and directs the
// player to refresh_token.
func (s *Server) handleRegisterPlayer(ctx context.Context, req *mcp.CallToolRequest, input RegisterPlayerInput) (*mcp.CallToolResult, ToolResult, error) {
	if !s.cfg.Game.Multiplayer {
		return nil, fail(msgMultiplayerDisabled, gameerr.MultiplayerDisabled()), nil
	}

	if ok, reason := validateUsername(input.Username); !ok {
		return nil, fail(fmt.Sprintf("❌ Invalid username: %s", reason),
			gameerr.Newf(gameerr.CodeInvalidTarget, "invalid username: %s", reason).
				WithMeta("username", input.Username)), nil
	}
	email := normalizeEmail(input.Email)

	token, err := postgres.NewToken()
	if err != nil {
		s.logger.Error("generating login token failed", zap.Error(err))
		return nil, fail("❌ Registration failed. Please try again later.",
			gameerr.Wrap(err, "generating login token")), nil
	}

	if _, err := s.players.Create(ctx, email, input.Username, token); err != nil {
		switch {
		case errors.Is(err, postgres.ErrEmailTaken):
			return nil, fail(fmt.Sprintf(
				"❌ Email '%s' is already registered. Use login() or refresh_token() if you forgot your token.", email),
				gameerr.AlreadyRegistered("email", email)), nil
		case errors.Is(err, postgres.ErrUsernameTaken):
			return nil, fail(fmt.Sprintf(
				"❌ Username '%s' is already taken. Please choose another.", input.Username),
				gameerr.AlreadyRegistered("username", input.Username)), nil
		}
		s.logger.Error("creating player failed",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, fail("❌ Registration failed. Please try again later.",
			gameerr.Wrap(err, "creating player")), nil
	}

	s.logger.Info("player registered",
		zap.String("email", email),
		zap.String("username", input.Username),
	)

	if err := s.mailer.SendWelcome(ctx, email, input.Username, token); err != nil {
		s.logger.Warn("sending welcome email failed",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, narrateState(fmt.Sprintf(
			"⚠️ **Account Created, but email failed!**\n\nYour account was created, but we couldn't send the welcome email.\nPlease use `refresh_token(\"%s\")` to get your login token.\n",
			email),
			map[string]any{"registered": true, "email_failed": true}), nil
	}

	return nil, narrateState(fmt.Sprintf(
		"✅ **Account Created!**\n\nWelcome to Integration Quest, **%s**!\n\n📧 A login token has been sent to: %s\n\nCheck your email and use the token to login:\n  `login(\"%s\", \"your-token-here\")`\n\nYour token is your password - keep it safe!\nIf you ever lose it, use `refresh_token(\"%s\")` to get a new one.\n",
		input.Username, email, email, email),
		map[string]any{"registered": true, "email": email, "username": input.Username}), nil
}

// handleLogin authenticates the token, installs the login envelope, syncs
// the leaderboard mirror, and restores the player's latest cloud save when
// one exists. Bad credentials report one combined message.
func (s *Server) handleLogin(ctx context.Context, req *mcp.CallToolRequest, input LoginInput) (*mcp.CallToolResult, ToolResult, error) {
	if !s.cfg.Game.Multiplayer {
		return nil, fail(msgMultiplayerDisabled, gameerr.MultiplayerDisabled()), nil
	}
	email := normalizeEmail(input.Email)

	p, err := s.players.Authenticate(ctx, email, input.Token)
	if err != nil {
		if errors.Is(err, postgres.ErrPlayerNotFound) || errors.Is(err, postgres.ErrInvalidToken) {
			return nil, fail("❌ Invalid email or token. Use refresh_token() if you forgot your token.",
				gameerr.New(gameerr.CodeNotRegistered, "invalid email or token")), nil
		}
		s.logger.Error("authenticating player failed",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, fail("❌ Login failed. Please try again later.",
			gameerr.Wrap(err, "authenticating player")), nil
	}

	ps := &session.PlayerSession{
		Email:         email,
		Username:      p.Username,
		Authenticated: true,
	}
	s.sessions.PutPlayer(session.DefaultKey, ps)

	if s.board != nil {
		if err := s.board.SetScore(ctx, email, p.TotalScore); err != nil {
			s.logger.Warn("syncing leaderboard mirror failed",
				zap.String("email", email),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("player logged in",
		zap.String("email", email),
		zap.String("username", p.Username),
	)

	stats := fmt.Sprintf(
		"✅ **Welcome back, %s!**\n\n📊 **Your Stats**:\n   - Total Score: %s points\n   - Best Run: %s points\n   - Enemies Defeated: %s\n   - Rank: #%d\n",
		p.Username,
		commas(p.TotalScore), commas(p.BestRunScore), commas(p.EnemiesDefeated),
		s.playerRank(ctx, email),
	)

	if st, loaded := s.restorePlayerSave(ctx, ps); loaded {
		h := st.Hero
		return nil, narrateState(stats+fmt.Sprintf(
			"\n🎮 **Saved Game Loaded**:\n   - Hero: %s (Level %d %s)\n   - Depth: %d\n   - Current Run Score: %s points\n\nUse `view_leaderboard()` to see top players!\n",
			h.Name, h.Level, titleCase(h.Role), st.Depth, commas(int64(ps.RunScore))),
			map[string]any{"logged_in": true, "game_loaded": true}), nil
	}

	return nil, narrateState(stats+
		"\n🎮 No saved game found. Use `create_character()` to start a new adventure!\n\nUse `view_leaderboard()` to see top players!\n",
		map[string]any{"logged_in": true, "game_loaded": false}), nil
}

// restorePlayerSave loads the account's latest cloud save into the default
// session and restores its run score. A missing or unreadable save is not
// an error; login proceeds without an adventure.
func (s *Server) restorePlayerSave(ctx context.Context, ps *session.PlayerSession) (*session.GameState, bool) {
	if s.saves == nil {
		return nil, false
	}
	save, err := s.saves.LatestByPlayer(ctx, ps.Email)
	if err != nil {
		if !errors.Is(err, postgres.ErrSaveNotFound) {
			s.logger.Warn("loading player save failed",
				zap.String("email", ps.Email),
				zap.Error(err),
			)
		}
		return nil, false
	}
	st, err := session.DecodeSnapshot(save.State)
	if err != nil {
		s.logger.Warn("decoding player save failed",
			zap.String("save_id", save.ID.String()),
			zap.Error(err),
		)
		return nil, false
	}
	st.SaveID = save.ID.String()
	s.sessions.PutState(session.DefaultKey, st)
	ps.RunScore = int(save.RunScore)
	return st, true
}

// handleRefreshToken rotates the account's login token and emails the new
// one. The old token stops working the moment the rotation lands, so a
// failed email is reported as a failure rather than swallowed.
func (s *Server) handleRefreshToken(ctx context.Context, req *mcp.CallToolRequest, input RefreshTokenInput) (*mcp.CallToolResult, ToolResult, error) {
	if !s.cfg.Game.Multiplayer {
		return nil, fail(msgMultiplayerDisabled, gameerr.MultiplayerDisabled()), nil
	}
	email := normalizeEmail(input.Email)

	p, err := s.players.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, postgres.ErrPlayerNotFound) {
			return nil, fail(fmt.Sprintf(
				"❌ Email '%s' is not registered. Use register_player() to create an account.", email),
				gameerr.NotRegistered(email)), nil
		}
		s.logger.Error("looking up player failed",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, fail("❌ Token refresh failed. Please try again later.",
			gameerr.Wrap(err, "looking up player")), nil
	}

	token, err := postgres.NewToken()
	if err != nil {
		s.logger.Error("generating login token failed", zap.Error(err))
		return nil, fail("❌ Token refresh failed. Please try again later.",
			gameerr.Wrap(err, "generating login token")), nil
	}
	if err := s.players.RefreshToken(ctx, email, token); err != nil {
		s.logger.Error("rotating token failed",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, fail("❌ Token refresh failed. Please try again later.",
			gameerr.Wrap(err, "rotating token")), nil
	}

	if err := s.mailer.SendTokenRefresh(ctx, email, p.Username, token); err != nil {
		s.logger.Error("sending token refresh email failed",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, fail("❌ Failed to send email. Please try again later.",
			gameerr.Wrap(err, "sending token refresh email")), nil
	}

	return nil, narrateState(fmt.Sprintf(
		"✅ **New Token Sent!**\n\nA new login token has been sent to: %s\n\nYour old token no longer works.\nCheck your email and use the new token to login.\n",
		email),
		map[string]any{"token_refreshed": true}), nil
}

// handleLogout saves the adventure against the account, records the run
// score, and drops the login envelope. Storage hiccups are logged but never
// trap the player in a session.
func (s *Server) handleLogout(ctx context.Context, req *mcp.CallToolRequest, input LogoutInput) (*mcp.CallToolResult, ToolResult, error) {
	if !s.cfg.Game.Multiplayer {
		return nil, fail(msgMultiplayerDisabled, gameerr.MultiplayerDisabled()), nil
	}
	ps, ok := s.authenticated()
	if !ok {
		return nil, fail("❌ You're not logged in.", gameerr.NotLoggedIn()), nil
	}

	if st, ok := s.state(); ok && s.saves != nil {
		if snapshot, err := st.EncodeSnapshot(); err != nil {
			s.logger.Warn("encoding snapshot at logout failed", zap.Error(err))
		} else if save, err := s.saves.Create(ctx, session.DefaultKey, ps.Email, snapshot, int64(ps.RunScore)); err != nil {
			s.logger.Warn("saving game at logout failed",
				zap.String("email", ps.Email),
				zap.Error(err),
			)
		} else {
			st.SaveID = save.ID.String()
		}
	}

	if err := s.players.FinalizeRun(ctx, ps.Email, int64(ps.RunScore)); err != nil {
		s.logger.Warn("finalizing run failed",
			zap.String("email", ps.Email),
			zap.Error(err),
		)
	}

	username := ps.Username
	if err := s.sessions.RemovePlayer(session.DefaultKey); err != nil {
		s.logger.Warn("removing login envelope failed", zap.Error(err))
	}
	s.logger.Info("player logged out",
		zap.String("email", ps.Email),
		zap.Int("run_score", ps.RunScore),
	)

	return nil, narrateState(fmt.Sprintf(
		"👋 **Goodbye, %s!**\n\nYour game has been saved and your run score recorded.\nSee you next time, Integration Hero!\n",
		username),
		map[string]any{"logged_out": true}), nil
}
